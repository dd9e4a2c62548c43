package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
)

// DailySalesService records cashier shift submissions and their review.
type DailySalesService struct {
	deps
}

func NewDailySalesService(store database.Store, notifier Notifier, log *logrus.Logger) *DailySalesService {
	return &DailySalesService{deps: newDeps(store, notifier, log)}
}

// CreateDailySalesInput is a cashier's shift submission. Derived totals are
// always recomputed server-side.
type CreateDailySalesInput struct {
	BranchID             int64
	CashierID            uuid.UUID // defaults to CreatedBy
	SalesDate            time.Time
	ShiftType            string
	ShiftStart           *time.Time
	ShiftEnd             *time.Time
	StartingCash         decimal.Decimal
	TotalCashSales       decimal.Decimal
	TotalNetworkSales    decimal.Decimal
	TotalTransactions    int32
	ActualCashInRegister *decimal.Decimal
	Notes                string
	CreatedBy            uuid.UUID
}

// DailySalesFilter narrows ListDailySales. Zero values mean "any".
type DailySalesFilter struct {
	Scope     Scope
	StartDate *time.Time
	EndDate   *time.Time
	Status    string
	CashierID uuid.UUID
	Limit     int32
	Offset    int32
}

// shiftTotals holds the server-computed fields of a shift.
type shiftTotals struct {
	totalSales    decimal.Decimal
	averageTicket decimal.Decimal
	discrepancy   *decimal.Decimal
}

func computeShiftTotals(cash, network decimal.Decimal, transactions int32, actual *decimal.Decimal) shiftTotals {
	total := cash.Add(network)
	t := shiftTotals{
		totalSales:    total,
		averageTicket: averageTicket(total, int64(transactions)),
	}
	if actual != nil {
		d := actual.Sub(cash)
		t.discrepancy = &d
	}
	return t
}

func (in CreateDailySalesInput) validate() error {
	if in.BranchID <= 0 {
		return invalid("branch_id is required")
	}
	if in.SalesDate.IsZero() {
		return invalid("sales_date is required")
	}
	if !enum.IsValidShift(in.ShiftType) {
		return invalid("shift_type must be one of morning, evening, night, full_day")
	}
	if in.TotalTransactions < 0 {
		return invalid("total_transactions must be >= 0")
	}
	for field, v := range map[string]decimal.Decimal{
		"starting_cash":       in.StartingCash,
		"total_cash_sales":    in.TotalCashSales,
		"total_network_sales": in.TotalNetworkSales,
	} {
		if err := requireNonNegative(field, v); err != nil {
			return err
		}
	}
	if in.ActualCashInRegister != nil {
		if err := requireNonNegative("actual_cash_in_register", *in.ActualCashInRegister); err != nil {
			return err
		}
	}
	if in.ShiftStart != nil && in.ShiftEnd != nil && in.ShiftEnd.Before(*in.ShiftStart) {
		return invalid("shift_end must be after shift_start")
	}
	return nil
}

func optionalTimestamp(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return database.Timestamptz(*t)
}

// Create stores a pending shift record.
func (s *DailySalesService) Create(ctx context.Context, in CreateDailySalesInput) (database.DailySale, error) {
	if err := in.validate(); err != nil {
		return database.DailySale{}, err
	}
	if in.CashierID == uuid.Nil {
		in.CashierID = in.CreatedBy
	}
	totals := computeShiftTotals(in.TotalCashSales, in.TotalNetworkSales, in.TotalTransactions, in.ActualCashInRegister)

	var (
		sale database.DailySale
		note database.Notification
	)
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		if _, err := q.GetBranch(ctx, in.BranchID); err != nil {
			return notFound(err, ErrBranchNotFound)
		}
		if _, err := q.GetUserByID(ctx, in.CashierID); err != nil {
			return notFound(err, ErrUserNotFound)
		}

		var err error
		sale, err = q.CreateDailySales(ctx, database.CreateDailySalesParams{
			BranchID:             in.BranchID,
			CashierID:            in.CashierID,
			SalesDate:            database.Date(in.SalesDate),
			ShiftType:            in.ShiftType,
			ShiftStart:           optionalTimestamp(in.ShiftStart),
			ShiftEnd:             optionalTimestamp(in.ShiftEnd),
			StartingCash:         database.Numeric(in.StartingCash),
			TotalCashSales:       database.Numeric(in.TotalCashSales),
			TotalNetworkSales:    database.Numeric(in.TotalNetworkSales),
			TotalSales:           database.Numeric(totals.totalSales),
			TotalTransactions:    in.TotalTransactions,
			AverageTicket:        database.Numeric(totals.averageTicket),
			ActualCashInRegister: database.NullableNumeric(in.ActualCashInRegister),
			Discrepancy:          database.NullableNumeric(totals.discrepancy),
			Notes:                strings.TrimSpace(in.Notes),
		})
		if err != nil {
			return fmt.Errorf("create daily sales: %w", err)
		}

		if err := recordActivity(ctx, q, activity{
			branchID:   sale.BranchID,
			userID:     in.CreatedBy,
			action:     ActionDailySalesCreated,
			entityType: EntityDailySales,
			entityID:   sale.ID,
			amount:     &totals.totalSales,
			details:    map[string]any{"shift_type": sale.ShiftType, "sales_date": in.SalesDate.Format(time.DateOnly)},
		}); err != nil {
			return err
		}

		note, err = createNotification(ctx, q, notice{
			branchID:   sale.BranchID,
			kind:       ActionDailySalesCreated,
			title:      "Daily sales submitted",
			message:    fmt.Sprintf("%s shift on %s submitted for review (%s)", sale.ShiftType, in.SalesDate.Format(time.DateOnly), totals.totalSales.StringFixed(2)),
			entityType: EntityDailySales,
			entityID:   sale.ID,
		})
		return err
	})
	if err != nil {
		return database.DailySale{}, err
	}

	s.publish(note)
	return sale, nil
}

func (s *DailySalesService) List(ctx context.Context, f DailySalesFilter) ([]database.DailySale, error) {
	if !f.Scope.valid() {
		return nil, invalid("branch scope is required")
	}
	if f.Status != "" && !enum.IsValidDailySalesStatus(f.Status) {
		return nil, invalid("unknown status %q", f.Status)
	}
	arg := database.ListDailySalesParams{
		BranchID:  f.Scope.filter(),
		StartDate: optionalDate(f.StartDate),
		EndDate:   optionalDate(f.EndDate),
		Limit:     f.Limit,
		Offset:    f.Offset,
	}
	if f.Status != "" {
		arg.Status = database.Text(f.Status)
	}
	if f.CashierID != uuid.Nil {
		arg.CashierID = database.UUID(f.CashierID)
	}
	return s.store.ListDailySales(ctx, arg)
}

// Get returns a shift record visible within scope.
func (s *DailySalesService) Get(ctx context.Context, id int64, scope Scope) (database.DailySale, error) {
	sale, err := s.store.GetDailySales(ctx, id)
	if err != nil {
		return database.DailySale{}, notFound(err, ErrDailySalesNotFound)
	}
	if !scope.Includes(sale.BranchID) {
		return database.DailySale{}, ErrDailySalesNotFound
	}
	return sale, nil
}

func (s *DailySalesService) Approve(ctx context.Context, id int64, reviewer uuid.UUID, scope Scope) (database.DailySale, error) {
	return s.review(ctx, id, reviewer, scope, enum.DailySalesStatusApproved, "")
}

func (s *DailySalesService) Reject(ctx context.Context, id int64, reviewer uuid.UUID, reason string, scope Scope) (database.DailySale, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return database.DailySale{}, invalid("rejection reason is required")
	}
	return s.review(ctx, id, reviewer, scope, enum.DailySalesStatusRejected, reason)
}

// review moves a pending shift to approved or rejected. Rows already rolled
// into a consolidated record are terminal.
func (s *DailySalesService) review(ctx context.Context, id int64, reviewer uuid.UUID, scope Scope, status, reason string) (database.DailySale, error) {
	var (
		sale database.DailySale
		note database.Notification
	)
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		current, err := q.GetDailySalesForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrDailySalesNotFound)
		}
		if !scope.Includes(current.BranchID) {
			return ErrDailySalesNotFound
		}
		if current.ConsolidatedID.Valid || current.Status != enum.DailySalesStatusPending {
			return transition("daily sales", current.Status, "review")
		}

		arg := database.ReviewDailySalesParams{ID: id, Status: status, ReviewedBy: reviewer}
		if reason != "" {
			arg.RejectionReason = database.Text(reason)
		}
		if sale, err = q.ReviewDailySales(ctx, arg); err != nil {
			return fmt.Errorf("review daily sales: %w", err)
		}

		action, title := ActionDailySalesApproved, "Daily sales approved"
		if status == enum.DailySalesStatusRejected {
			action, title = ActionDailySalesRejected, "Daily sales rejected"
		}
		total := database.Decimal(sale.TotalSales)
		if err := recordActivity(ctx, q, activity{
			branchID:   sale.BranchID,
			userID:     reviewer,
			action:     action,
			entityType: EntityDailySales,
			entityID:   sale.ID,
			amount:     &total,
			details:    map[string]any{"reason": reason},
		}); err != nil {
			return err
		}

		message := fmt.Sprintf("%s shift on %s: %s", sale.ShiftType, sale.SalesDate.Time.Format(time.DateOnly), status)
		if reason != "" {
			message += " (" + reason + ")"
		}
		note, err = createNotification(ctx, q, notice{
			branchID:   sale.BranchID,
			kind:       action,
			title:      title,
			message:    message,
			entityType: EntityDailySales,
			entityID:   sale.ID,
		})
		return err
	})
	if err != nil {
		return database.DailySale{}, err
	}

	s.publish(note)
	return sale, nil
}

func optionalDate(t *time.Time) pgtype.Date {
	if t == nil || t.IsZero() {
		return pgtype.Date{}
	}
	return database.Date(*t)
}

// notFound maps a storage miss to sentinel and passes other errors through.
func notFound(err, sentinel error) error {
	if errors.Is(err, database.ErrNotFound) {
		return sentinel
	}
	return err
}
