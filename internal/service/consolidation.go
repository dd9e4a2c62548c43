package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
)

// ConsolidationService rolls reviewed shifts into one record per branch and
// day and drives that record through open → closed → transferred.
type ConsolidationService struct {
	deps
}

func NewConsolidationService(store database.Store, notifier Notifier, log *logrus.Logger) *ConsolidationService {
	return &ConsolidationService{deps: newDeps(store, notifier, log)}
}

// ConsolidatedDetail is a consolidated record with the shifts rolled into it.
type ConsolidatedDetail struct {
	database.ConsolidatedDailySale
	DailySales []database.DailySale `json:"daily_sales"`
}

// ConsolidationResult reports whether Consolidate created or refreshed the record.
type ConsolidationResult struct {
	ConsolidatedDetail
	Created bool `json:"created"`
}

type ConsolidatedFilter struct {
	Scope     Scope
	StartDate *time.Time
	EndDate   *time.Time
	Status    string
	Limit     int32
	Offset    int32
}

// consolidationLockKey packs (branch, yyyymmdd) into one advisory lock key.
func consolidationLockKey(branchID int64, date time.Time) int64 {
	ymd := int64(date.Year())*10000 + int64(date.Month())*100 + int64(date.Day())
	return branchID*100_000_000 + ymd
}

func sumShifts(rows []database.DailySale) database.ConsolidatedTotals {
	var cash, network, total, discrepancy decimal.Decimal
	var transactions int64
	for _, r := range rows {
		cash = cash.Add(database.Decimal(r.TotalCashSales))
		network = network.Add(database.Decimal(r.TotalNetworkSales))
		total = total.Add(database.Decimal(r.TotalSales))
		discrepancy = discrepancy.Add(database.Decimal(r.Discrepancy))
		transactions += int64(r.TotalTransactions)
	}
	return database.ConsolidatedTotals{
		TotalCashSales:    database.Numeric(cash),
		TotalNetworkSales: database.Numeric(network),
		TotalSales:        database.Numeric(total),
		TotalTransactions: int32(transactions),
		AverageTicket:     database.Numeric(averageTicket(total, transactions)),
		TotalDiscrepancy:  database.Numeric(discrepancy),
		ShiftCount:        int32(len(rows)),
	}
}

// Consolidate aggregates the branch's approved shifts for date. Calling it
// again for the same day refreshes the open record's totals.
func (s *ConsolidationService) Consolidate(ctx context.Context, branchID int64, date time.Time, userID uuid.UUID) (ConsolidationResult, error) {
	if branchID <= 0 {
		return ConsolidationResult{}, invalid("branch_id is required")
	}
	if date.IsZero() {
		return ConsolidationResult{}, invalid("sales_date is required")
	}

	var res ConsolidationResult
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		if _, err := q.GetBranch(ctx, branchID); err != nil {
			return notFound(err, ErrBranchNotFound)
		}
		if err := q.AcquireConsolidationLock(ctx, consolidationLockKey(branchID, date)); err != nil {
			return fmt.Errorf("acquire consolidation lock: %w", err)
		}

		salesDate := database.Date(date)
		existing, err := q.GetConsolidatedByBranchDate(ctx, database.GetConsolidatedByBranchDateParams{
			BranchID:  branchID,
			SalesDate: salesDate,
		})
		found := true
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("get consolidated: %w", err)
			}
			found = false
		}
		if found && existing.Status != enum.ConsolidatedStatusOpen {
			return ErrConsolidationLocked
		}

		rows, err := q.ListConsolidationCandidates(ctx, database.ListConsolidationCandidatesParams{
			BranchID:  branchID,
			SalesDate: salesDate,
		})
		if err != nil {
			return fmt.Errorf("list consolidation candidates: %w", err)
		}
		if len(rows) == 0 {
			return ErrNoApprovedSales
		}

		totals := sumShifts(rows)
		var record database.ConsolidatedDailySale
		if found {
			record, err = q.UpdateConsolidatedTotals(ctx, database.UpdateConsolidatedTotalsParams{
				ID:                 existing.ID,
				ConsolidatedTotals: totals,
			})
		} else {
			record, err = q.CreateConsolidated(ctx, database.CreateConsolidatedParams{
				BranchID:           branchID,
				SalesDate:          salesDate,
				ConsolidatedTotals: totals,
				CreatedBy:          userID,
			})
		}
		if err != nil {
			return fmt.Errorf("save consolidated: %w", err)
		}

		ids := make([]int64, len(rows))
		for i, r := range rows {
			ids[i] = r.ID
		}
		if err := q.MarkDailySalesConsolidated(ctx, database.MarkDailySalesConsolidatedParams{
			ConsolidatedID: record.ID,
			IDs:            ids,
		}); err != nil {
			return fmt.Errorf("mark daily sales consolidated: %w", err)
		}

		linked, err := q.ListDailySalesByConsolidated(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("list consolidated daily sales: %w", err)
		}

		total := database.Decimal(record.TotalSales)
		if err := recordActivity(ctx, q, activity{
			branchID:   branchID,
			userID:     userID,
			action:     ActionConsolidated,
			entityType: EntityConsolidated,
			entityID:   record.ID,
			amount:     &total,
			details: map[string]any{
				"sales_date":  date.Format(time.DateOnly),
				"shift_count": record.ShiftCount,
				"created":     !found,
			},
		}); err != nil {
			return err
		}

		res = ConsolidationResult{
			ConsolidatedDetail: ConsolidatedDetail{ConsolidatedDailySale: record, DailySales: linked},
			Created:            !found,
		}
		return nil
	})
	if err != nil {
		return ConsolidationResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"branch_id":       branchID,
		"consolidated_id": res.ID,
		"shift_count":     res.ShiftCount,
		"created":         res.Created,
	}).Info("daily sales consolidated")
	return res, nil
}

// Close freezes an open record. Closing a closed record is a no-op.
func (s *ConsolidationService) Close(ctx context.Context, id int64, userID uuid.UUID, scope Scope) (database.ConsolidatedDailySale, error) {
	var (
		record database.ConsolidatedDailySale
		note   database.Notification
	)
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		current, err := s.lockRecord(ctx, q, id, scope)
		if err != nil {
			return err
		}
		switch current.Status {
		case enum.ConsolidatedStatusClosed:
			record = current
			return nil
		case enum.ConsolidatedStatusTransferred:
			return transition("consolidated sales", current.Status, "close")
		}

		if record, err = q.CloseConsolidated(ctx, database.CloseConsolidatedParams{ID: id, ClosedBy: userID}); err != nil {
			return fmt.Errorf("close consolidated: %w", err)
		}
		note, err = s.logStatusChange(ctx, q, record, userID, ActionConsolidatedClosed, "Daily sales closed")
		return err
	})
	if err != nil {
		return database.ConsolidatedDailySale{}, err
	}

	s.publish(note)
	return record, nil
}

// Transfer marks a closed record as handed over to HQ. Only closed records
// may be transferred, and only once.
func (s *ConsolidationService) Transfer(ctx context.Context, id int64, userID uuid.UUID, scope Scope) (database.ConsolidatedDailySale, error) {
	var (
		record database.ConsolidatedDailySale
		note   database.Notification
	)
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		current, err := s.lockRecord(ctx, q, id, scope)
		if err != nil {
			return err
		}
		if current.Status != enum.ConsolidatedStatusClosed {
			return transition("consolidated sales", current.Status, "transfer")
		}

		if record, err = q.TransferConsolidated(ctx, database.TransferConsolidatedParams{ID: id, TransferredBy: userID}); err != nil {
			return fmt.Errorf("transfer consolidated: %w", err)
		}
		note, err = s.logStatusChange(ctx, q, record, userID, ActionConsolidatedTransfer, "Daily sales transferred")
		return err
	})
	if err != nil {
		return database.ConsolidatedDailySale{}, err
	}

	s.publish(note)
	return record, nil
}

func (s *ConsolidationService) lockRecord(ctx context.Context, q database.Querier, id int64, scope Scope) (database.ConsolidatedDailySale, error) {
	current, err := q.GetConsolidatedForUpdate(ctx, id)
	if err != nil {
		return database.ConsolidatedDailySale{}, notFound(err, ErrConsolidatedNotFound)
	}
	if !scope.Includes(current.BranchID) {
		return database.ConsolidatedDailySale{}, ErrConsolidatedNotFound
	}
	return current, nil
}

func (s *ConsolidationService) logStatusChange(ctx context.Context, q database.Querier, record database.ConsolidatedDailySale, userID uuid.UUID, action, title string) (database.Notification, error) {
	total := database.Decimal(record.TotalSales)
	day := record.SalesDate.Time.Format(time.DateOnly)
	if err := recordActivity(ctx, q, activity{
		branchID:   record.BranchID,
		userID:     userID,
		action:     action,
		entityType: EntityConsolidated,
		entityID:   record.ID,
		amount:     &total,
		details:    map[string]any{"sales_date": day, "status": record.Status},
	}); err != nil {
		return database.Notification{}, err
	}
	return createNotification(ctx, q, notice{
		branchID:   record.BranchID,
		kind:       action,
		title:      title,
		message:    fmt.Sprintf("Sales for %s are now %s (%s)", day, record.Status, total.StringFixed(2)),
		entityType: EntityConsolidated,
		entityID:   record.ID,
	})
}

func (s *ConsolidationService) List(ctx context.Context, f ConsolidatedFilter) ([]database.ConsolidatedDailySale, error) {
	if !f.Scope.valid() {
		return nil, invalid("branch scope is required")
	}
	if f.Status != "" && !enum.IsValidConsolidatedStatus(f.Status) {
		return nil, invalid("unknown status %q", f.Status)
	}
	arg := database.ListConsolidatedParams{
		BranchID:  f.Scope.filter(),
		StartDate: optionalDate(f.StartDate),
		EndDate:   optionalDate(f.EndDate),
		Limit:     f.Limit,
		Offset:    f.Offset,
	}
	if f.Status != "" {
		arg.Status = database.Text(f.Status)
	}
	return s.store.ListConsolidated(ctx, arg)
}

func (s *ConsolidationService) Get(ctx context.Context, id int64, scope Scope) (ConsolidatedDetail, error) {
	record, err := s.store.GetConsolidated(ctx, id)
	if err != nil {
		return ConsolidatedDetail{}, notFound(err, ErrConsolidatedNotFound)
	}
	if !scope.Includes(record.BranchID) {
		return ConsolidatedDetail{}, ErrConsolidatedNotFound
	}
	rows, err := s.store.ListDailySalesByConsolidated(ctx, id)
	if err != nil {
		return ConsolidatedDetail{}, fmt.Errorf("list consolidated daily sales: %w", err)
	}
	return ConsolidatedDetail{ConsolidatedDailySale: record, DailySales: rows}, nil
}
