package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/ws"
)

// Notifier pushes committed notifications to connected dashboards.
// Satisfied by *ws.Hub.
type Notifier interface {
	BroadcastToBranch(branchID int64, event ws.Event)
	BroadcastToHQ(event ws.Event)
}

type nopNotifier struct{}

func (nopNotifier) BroadcastToBranch(int64, ws.Event) {}
func (nopNotifier) BroadcastToHQ(ws.Event)            {}

// Activity actions.
const (
	ActionDailySalesCreated    = "daily_sales.created"
	ActionDailySalesApproved   = "daily_sales.approved"
	ActionDailySalesRejected   = "daily_sales.rejected"
	ActionConsolidated         = "consolidated_sales.consolidated"
	ActionConsolidatedClosed   = "consolidated_sales.closed"
	ActionConsolidatedTransfer = "consolidated_sales.transferred"
	ActionCashBoxCreated       = "cash_box.created"
	ActionCashTransaction      = "cash_box.transaction"
	ActionTransferCreated      = "transfer.created"
	ActionTransferApproved     = "transfer.approved"
	ActionTransferRejected     = "transfer.rejected"
	ActionTargetSaved          = "target.saved"
)

// Entity types stored on activity logs and notifications.
const (
	EntityDailySales   = "daily_sales"
	EntityConsolidated = "consolidated_sales"
	EntityCashBox      = "cash_box"
	EntityCashTx       = "cash_box_transaction"
	EntityTransfer     = "cash_transfer"
	EntityTarget       = "monthly_target"
)

// deps is embedded by every service.
type deps struct {
	store    database.Store
	notifier Notifier
	log      *logrus.Logger
}

func newDeps(store database.Store, notifier Notifier, log *logrus.Logger) deps {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return deps{store: store, notifier: notifier, log: log}
}

type activity struct {
	branchID   int64
	userID     uuid.UUID
	action     string
	entityType string
	entityID   int64
	amount     *decimal.Decimal
	details    map[string]any
}

func recordActivity(ctx context.Context, q database.Querier, a activity) error {
	var details []byte
	if len(a.details) > 0 {
		var err error
		if details, err = json.Marshal(a.details); err != nil {
			return fmt.Errorf("marshal activity details: %w", err)
		}
	}
	arg := database.CreateActivityLogParams{
		Action:     a.action,
		EntityType: a.entityType,
		EntityID:   a.entityID,
		Amount:     database.NullableNumeric(a.amount),
		Details:    details,
	}
	if a.branchID > 0 {
		arg.BranchID = database.Int8(a.branchID)
	}
	if a.userID != uuid.Nil {
		arg.UserID = database.UUID(a.userID)
	}
	if _, err := q.CreateActivityLog(ctx, arg); err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}

type notice struct {
	branchID   int64
	kind       string
	title      string
	message    string
	entityType string
	entityID   int64
}

func createNotification(ctx context.Context, q database.Querier, n notice) (database.Notification, error) {
	arg := database.CreateNotificationParams{
		Type:       n.kind,
		Title:      n.title,
		Message:    n.message,
		EntityType: n.entityType,
		EntityID:   n.entityID,
	}
	if n.branchID > 0 {
		arg.BranchID = database.Int8(n.branchID)
	}
	note, err := q.CreateNotification(ctx, arg)
	if err != nil {
		return database.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	return note, nil
}

// publish broadcasts committed notifications. Call only after ExecTx succeeds.
func (d deps) publish(notes ...database.Notification) {
	for _, n := range notes {
		if n.ID == 0 {
			continue
		}
		event, err := ws.NewEvent(n.Type, n)
		if err != nil {
			d.log.WithError(err).Warn("build notification event")
			continue
		}
		if n.BranchID.Valid {
			d.notifier.BroadcastToBranch(n.BranchID.Int64, event)
		} else {
			d.notifier.BroadcastToHQ(event)
		}
	}
}
