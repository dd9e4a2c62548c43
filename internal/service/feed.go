package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
)

const (
	defaultFeedLimit = 50
	maxFeedLimit     = 200
)

// FeedService lists the activity log and in-app notifications.
type FeedService struct {
	deps
}

func NewFeedService(store database.Store, log *logrus.Logger) *FeedService {
	return &FeedService{deps: newDeps(store, nil, log)}
}

func feedLimit(limit int32) int32 {
	switch {
	case limit <= 0:
		return defaultFeedLimit
	case limit > maxFeedLimit:
		return maxFeedLimit
	}
	return limit
}

func (s *FeedService) Activity(ctx context.Context, scope Scope, limit int32) ([]database.ActivityLog, error) {
	if !scope.valid() {
		return nil, invalid("branch scope is required")
	}
	return s.store.ListActivityLogs(ctx, database.ListActivityLogsParams{
		BranchID: scope.filter(),
		Limit:    feedLimit(limit),
	})
}

// Notifications lists the scope's notifications newest first. Branch scopes
// also see HQ-wide notifications.
func (s *FeedService) Notifications(ctx context.Context, scope Scope, unreadOnly bool, limit int32) ([]database.Notification, error) {
	if !scope.valid() {
		return nil, invalid("branch scope is required")
	}
	return s.store.ListNotifications(ctx, database.ListNotificationsParams{
		BranchID:   scope.filter(),
		UnreadOnly: unreadOnly,
		Limit:      feedLimit(limit),
	})
}

// MarkRead flags a notification read. Notifications of other branches are
// reported as missing and left untouched.
func (s *FeedService) MarkRead(ctx context.Context, id int64, scope Scope) (database.Notification, error) {
	var note database.Notification
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		var err error
		if note, err = q.MarkNotificationRead(ctx, id); err != nil {
			return notFound(err, ErrNotificationNotFound)
		}
		if note.BranchID.Valid && !scope.Includes(note.BranchID.Int64) {
			return ErrNotificationNotFound
		}
		return nil
	})
	if err != nil {
		return database.Notification{}, err
	}
	return note, nil
}
