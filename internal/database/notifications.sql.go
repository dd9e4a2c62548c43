package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const notificationColumns = `id, branch_id, type, title, message, entity_type, entity_id, is_read, created_at`

func scanNotification(row rowScanner) (Notification, error) {
	var i Notification
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.Type,
		&i.Title,
		&i.Message,
		&i.EntityType,
		&i.EntityID,
		&i.IsRead,
		&i.CreatedAt,
	)
	return i, err
}

const createNotification = `
INSERT INTO notifications (branch_id, type, title, message, entity_type, entity_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + notificationColumns

type CreateNotificationParams struct {
	BranchID   pgtype.Int8 `json:"branch_id"`
	Type       string      `json:"type"`
	Title      string      `json:"title"`
	Message    string      `json:"message"`
	EntityType string      `json:"entity_type"`
	EntityID   int64       `json:"entity_id"`
}

func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error) {
	return scanNotification(q.db.QueryRow(ctx, createNotification,
		arg.BranchID, arg.Type, arg.Title, arg.Message, arg.EntityType, arg.EntityID,
	))
}

// Branch-scoped listings also include HQ-wide notifications (branch_id NULL).
const listNotifications = `
SELECT ` + notificationColumns + ` FROM notifications
WHERE ($1::bigint IS NULL OR branch_id = $1 OR branch_id IS NULL)
  AND (NOT $2::bool OR is_read = false)
ORDER BY created_at DESC, id DESC
LIMIT NULLIF($3::int, 0)`

type ListNotificationsParams struct {
	BranchID   pgtype.Int8 `json:"branch_id"`
	UnreadOnly bool        `json:"unread_only"`
	Limit      int32       `json:"limit"`
}

func (q *Queries) ListNotifications(ctx context.Context, arg ListNotificationsParams) ([]Notification, error) {
	rows, err := q.db.Query(ctx, listNotifications, arg.BranchID, arg.UnreadOnly, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Notification{}
	for rows.Next() {
		i, err := scanNotification(rows)
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

const markNotificationRead = `
UPDATE notifications SET is_read = true
WHERE id = $1
RETURNING ` + notificationColumns

func (q *Queries) MarkNotificationRead(ctx context.Context, id int64) (Notification, error) {
	return scanNotification(q.db.QueryRow(ctx, markNotificationRead, id))
}
