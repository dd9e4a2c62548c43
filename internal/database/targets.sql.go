package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const targetColumns = `id, branch_id, month, year, target_amount, weekday_weights, daily_targets,
	created_by, created_at, updated_at`

func scanTarget(row rowScanner) (MonthlyTarget, error) {
	var i MonthlyTarget
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.Month,
		&i.Year,
		&i.TargetAmount,
		&i.WeekdayWeights,
		&i.DailyTargets,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertMonthlyTarget = `
INSERT INTO monthly_targets (branch_id, month, year, target_amount, weekday_weights, daily_targets, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (branch_id, month, year) DO UPDATE
SET target_amount = EXCLUDED.target_amount,
    weekday_weights = EXCLUDED.weekday_weights,
    daily_targets = EXCLUDED.daily_targets,
    updated_at = NOW()
RETURNING ` + targetColumns

type UpsertMonthlyTargetParams struct {
	BranchID       int64          `json:"branch_id"`
	Month          int32          `json:"month"`
	Year           int32          `json:"year"`
	TargetAmount   pgtype.Numeric `json:"target_amount"`
	WeekdayWeights []byte         `json:"weekday_weights"`
	DailyTargets   []byte         `json:"daily_targets"`
	CreatedBy      pgtype.UUID    `json:"created_by"`
}

func (q *Queries) UpsertMonthlyTarget(ctx context.Context, arg UpsertMonthlyTargetParams) (MonthlyTarget, error) {
	return scanTarget(q.db.QueryRow(ctx, upsertMonthlyTarget,
		arg.BranchID,
		arg.Month,
		arg.Year,
		arg.TargetAmount,
		arg.WeekdayWeights,
		arg.DailyTargets,
		arg.CreatedBy,
	))
}

const getMonthlyTarget = `
SELECT ` + targetColumns + ` FROM monthly_targets
WHERE branch_id = $1 AND month = $2 AND year = $3`

type GetMonthlyTargetParams struct {
	BranchID int64 `json:"branch_id"`
	Month    int32 `json:"month"`
	Year     int32 `json:"year"`
}

func (q *Queries) GetMonthlyTarget(ctx context.Context, arg GetMonthlyTargetParams) (MonthlyTarget, error) {
	return scanTarget(q.db.QueryRow(ctx, getMonthlyTarget, arg.BranchID, arg.Month, arg.Year))
}

const listMonthlyTargets = `
SELECT ` + targetColumns + ` FROM monthly_targets
WHERE month = $1 AND year = $2
  AND ($3::bigint IS NULL OR branch_id = $3)
ORDER BY branch_id`

type ListMonthlyTargetsParams struct {
	Month    int32       `json:"month"`
	Year     int32       `json:"year"`
	BranchID pgtype.Int8 `json:"branch_id"`
}

func (q *Queries) ListMonthlyTargets(ctx context.Context, arg ListMonthlyTargetsParams) ([]MonthlyTarget, error) {
	rows, err := q.db.Query(ctx, listMonthlyTargets, arg.Month, arg.Year, arg.BranchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MonthlyTarget{}
	for rows.Next() {
		i, err := scanTarget(rows)
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
