package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const activityColumns = `id, branch_id, user_id, action, entity_type, entity_id, amount, details, created_at`

func scanActivity(row rowScanner) (ActivityLog, error) {
	var i ActivityLog
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.UserID,
		&i.Action,
		&i.EntityType,
		&i.EntityID,
		&i.Amount,
		&i.Details,
		&i.CreatedAt,
	)
	return i, err
}

const createActivityLog = `
INSERT INTO activity_logs (branch_id, user_id, action, entity_type, entity_id, amount, details)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::jsonb, '{}'::jsonb))
RETURNING ` + activityColumns

type CreateActivityLogParams struct {
	BranchID   pgtype.Int8    `json:"branch_id"`
	UserID     pgtype.UUID    `json:"user_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   int64          `json:"entity_id"`
	Amount     pgtype.Numeric `json:"amount"`
	Details    []byte         `json:"details"`
}

func (q *Queries) CreateActivityLog(ctx context.Context, arg CreateActivityLogParams) (ActivityLog, error) {
	return scanActivity(q.db.QueryRow(ctx, createActivityLog,
		arg.BranchID,
		arg.UserID,
		arg.Action,
		arg.EntityType,
		arg.EntityID,
		arg.Amount,
		arg.Details,
	))
}

const listActivityLogs = `
SELECT ` + activityColumns + ` FROM activity_logs
WHERE ($1::bigint IS NULL OR branch_id = $1)
ORDER BY created_at DESC, id DESC
LIMIT NULLIF($2::int, 0)`

type ListActivityLogsParams struct {
	BranchID pgtype.Int8 `json:"branch_id"`
	Limit    int32       `json:"limit"`
}

func (q *Queries) ListActivityLogs(ctx context.Context, arg ListActivityLogsParams) ([]ActivityLog, error) {
	rows, err := q.db.Query(ctx, listActivityLogs, arg.BranchID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ActivityLog{}
	for rows.Next() {
		i, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
