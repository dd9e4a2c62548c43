package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
)

// CashBoxService owns each branch's physical cash balance and its ledger.
type CashBoxService struct {
	deps
}

func NewCashBoxService(store database.Store, notifier Notifier, log *logrus.Logger) *CashBoxService {
	return &CashBoxService{deps: newDeps(store, notifier, log)}
}

type RecordTransactionInput struct {
	BranchID        int64
	Amount          decimal.Decimal
	Type            string
	Source          string // defaults to manual
	Date            time.Time
	ReferenceNumber string
	Notes           string
	CreatedBy       uuid.UUID
}

type TransactionFilter struct {
	Scope     Scope
	Type      string
	Source    string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int32
	Offset    int32
}

// LedgerEntry is a posted transaction with the balance it produced.
type LedgerEntry struct {
	Transaction database.CashBoxTransaction `json:"transaction"`
	CashBox     database.BranchCashBox      `json:"cash_box"`
}

// ProcessResult reports whether ProcessDailySales posted a new deposit.
type ProcessResult struct {
	LedgerEntry
	Created bool `json:"created"`
}

// signedDelta is the balance change a transaction of txType causes.
func signedDelta(txType string, amount decimal.Decimal) decimal.Decimal {
	if txType == enum.CashTxTypeDeposit {
		return amount
	}
	return amount.Neg()
}

type posting struct {
	box       database.BranchCashBox
	amount    decimal.Decimal
	txType    string
	source    string
	date      time.Time
	reference string
	notes     string
	createdBy uuid.UUID
}

// post inserts the ledger row and moves the balance. The caller must hold
// the cash box row lock.
func post(ctx context.Context, q database.Querier, p posting) (LedgerEntry, error) {
	tx, err := q.CreateCashBoxTransaction(ctx, database.CreateCashBoxTransactionParams{
		BranchID:        p.box.BranchID,
		CashBoxID:       p.box.ID,
		Amount:          database.Numeric(p.amount),
		Type:            p.txType,
		Source:          p.source,
		TransactionDate: database.Date(p.date),
		ReferenceNumber: p.reference,
		Notes:           p.notes,
		Status:          enum.CashTxStatusCompleted,
		CreatedBy:       p.createdBy,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return LedgerEntry{}, fmt.Errorf("%w: reference %s", ErrDuplicate, p.reference)
		}
		return LedgerEntry{}, fmt.Errorf("create cash box transaction: %w", err)
	}
	box, err := q.AdjustCashBoxBalance(ctx, database.AdjustCashBoxBalanceParams{
		ID:    p.box.ID,
		Delta: database.Numeric(signedDelta(p.txType, p.amount)),
	})
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("adjust cash box balance: %w", err)
	}
	return LedgerEntry{Transaction: tx, CashBox: box}, nil
}

func lockCashBox(ctx context.Context, q database.Querier, branchID int64) (database.BranchCashBox, error) {
	box, err := q.GetCashBoxByBranchForUpdate(ctx, branchID)
	if err != nil {
		return database.BranchCashBox{}, notFound(err, ErrCashBoxNotFound)
	}
	return box, nil
}

func (s *CashBoxService) CreateCashBox(ctx context.Context, branchID int64, notes string, userID uuid.UUID) (database.BranchCashBox, error) {
	if branchID <= 0 {
		return database.BranchCashBox{}, invalid("branch_id is required")
	}
	var box database.BranchCashBox
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		if _, err := q.GetBranch(ctx, branchID); err != nil {
			return notFound(err, ErrBranchNotFound)
		}
		var err error
		box, err = q.CreateCashBox(ctx, database.CreateCashBoxParams{BranchID: branchID, Notes: strings.TrimSpace(notes)})
		if err != nil {
			if database.IsUniqueViolation(err) {
				return ErrCashBoxExists
			}
			return fmt.Errorf("create cash box: %w", err)
		}
		return recordActivity(ctx, q, activity{
			branchID:   branchID,
			userID:     userID,
			action:     ActionCashBoxCreated,
			entityType: EntityCashBox,
			entityID:   box.ID,
		})
	})
	if err != nil {
		return database.BranchCashBox{}, err
	}
	return box, nil
}

func (s *CashBoxService) GetCashBox(ctx context.Context, branchID int64) (database.BranchCashBox, error) {
	box, err := s.store.GetCashBoxByBranch(ctx, branchID)
	if err != nil {
		return database.BranchCashBox{}, notFound(err, ErrCashBoxNotFound)
	}
	return box, nil
}

func (s *CashBoxService) ListCashBoxes(ctx context.Context, scope Scope) ([]database.BranchCashBox, error) {
	boxes, err := s.store.ListCashBoxes(ctx)
	if err != nil {
		return nil, err
	}
	if scope.IsAll() {
		return boxes, nil
	}
	out := []database.BranchCashBox{}
	for _, b := range boxes {
		if scope.Includes(b.BranchID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (in RecordTransactionInput) validate() error {
	if in.BranchID <= 0 {
		return invalid("branch_id is required")
	}
	if err := requirePositive("amount", in.Amount); err != nil {
		return err
	}
	if !enum.IsValidCashTxType(in.Type) {
		return invalid("type must be one of deposit, withdrawal, transfer_to_hq")
	}
	if !enum.IsValidCashTxSource(in.Source) {
		return invalid("source must be one of daily_sales, manual, transfer")
	}
	if in.Source == enum.CashTxSourceDailySales {
		return invalid("daily sales deposits are posted by processing the daily sales record")
	}
	return nil
}

// RecordTransaction posts a manual ledger entry. Outflows may not take the
// balance below zero.
func (s *CashBoxService) RecordTransaction(ctx context.Context, in RecordTransactionInput) (LedgerEntry, error) {
	if in.Source == "" {
		in.Source = enum.CashTxSourceManual
	}
	if err := in.validate(); err != nil {
		return LedgerEntry{}, err
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	reference := strings.TrimSpace(in.ReferenceNumber)
	if reference == "" {
		reference = "TX-" + uuid.NewString()
	}

	var entry LedgerEntry
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		box, err := lockCashBox(ctx, q, in.BranchID)
		if err != nil {
			return err
		}
		if in.Type != enum.CashTxTypeDeposit && database.Decimal(box.CurrentBalance).LessThan(in.Amount) {
			return ErrInsufficientBalance
		}

		entry, err = post(ctx, q, posting{
			box:       box,
			amount:    in.Amount,
			txType:    in.Type,
			source:    in.Source,
			date:      in.Date,
			reference: reference,
			notes:     strings.TrimSpace(in.Notes),
			createdBy: in.CreatedBy,
		})
		if err != nil {
			return err
		}
		return recordActivity(ctx, q, activity{
			branchID:   in.BranchID,
			userID:     in.CreatedBy,
			action:     ActionCashTransaction,
			entityType: EntityCashTx,
			entityID:   entry.Transaction.ID,
			amount:     &in.Amount,
			details:    map[string]any{"type": in.Type, "source": in.Source, "reference": reference},
		})
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	return entry, nil
}

func (s *CashBoxService) ListTransactions(ctx context.Context, f TransactionFilter) ([]database.CashBoxTransaction, error) {
	if !f.Scope.valid() {
		return nil, invalid("branch scope is required")
	}
	if f.Type != "" && !enum.IsValidCashTxType(f.Type) {
		return nil, invalid("unknown type %q", f.Type)
	}
	if f.Source != "" && !enum.IsValidCashTxSource(f.Source) {
		return nil, invalid("unknown source %q", f.Source)
	}
	arg := database.ListCashBoxTransactionsParams{
		BranchID:  f.Scope.filter(),
		StartDate: optionalDate(f.StartDate),
		EndDate:   optionalDate(f.EndDate),
		Limit:     f.Limit,
		Offset:    f.Offset,
	}
	if f.Type != "" {
		arg.Type = database.Text(f.Type)
	}
	if f.Source != "" {
		arg.Source = database.Text(f.Source)
	}
	return s.store.ListCashBoxTransactions(ctx, arg)
}

func dailySalesReference(id int64) string {
	return fmt.Sprintf("DS-%d", id)
}

// ProcessDailySales deposits a reviewed shift's cash into the branch cash
// box. Repeating the call returns the original deposit with Created false.
func (s *CashBoxService) ProcessDailySales(ctx context.Context, dailySalesID int64, userID uuid.UUID, scope Scope) (ProcessResult, error) {
	reference := dailySalesReference(dailySalesID)

	var (
		res  ProcessResult
		note database.Notification
	)
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		sale, err := q.GetDailySalesForUpdate(ctx, dailySalesID)
		if err != nil {
			return notFound(err, ErrDailySalesNotFound)
		}
		if !scope.Includes(sale.BranchID) {
			return ErrDailySalesNotFound
		}

		existing, err := q.GetCashBoxTransactionByReference(ctx, database.GetCashBoxTransactionByReferenceParams{
			Source:          enum.CashTxSourceDailySales,
			ReferenceNumber: reference,
		})
		switch {
		case err == nil:
			box, err := q.GetCashBoxByBranch(ctx, sale.BranchID)
			if err != nil {
				return fmt.Errorf("get cash box: %w", err)
			}
			res = ProcessResult{LedgerEntry: LedgerEntry{Transaction: existing, CashBox: box}}
			return nil
		case !errors.Is(err, database.ErrNotFound):
			return fmt.Errorf("get transaction by reference: %w", err)
		}

		if sale.Status != enum.DailySalesStatusApproved && sale.Status != enum.DailySalesStatusTransferred {
			return transition("daily sales", sale.Status, "deposit to cash box")
		}
		cash := database.Decimal(sale.TotalCashSales)
		if err := requirePositive("total_cash_sales", cash); err != nil {
			return err
		}

		created, err := q.CreateCashBoxIfMissing(ctx, database.CreateCashBoxParams{BranchID: sale.BranchID})
		if err != nil {
			return fmt.Errorf("create cash box: %w", err)
		}
		box, err := lockCashBox(ctx, q, sale.BranchID)
		if err != nil {
			return err
		}
		if created {
			if err := recordActivity(ctx, q, activity{
				branchID:   sale.BranchID,
				userID:     userID,
				action:     ActionCashBoxCreated,
				entityType: EntityCashBox,
				entityID:   box.ID,
			}); err != nil {
				return err
			}
		}

		entry, err := post(ctx, q, posting{
			box:       box,
			amount:    cash,
			txType:    enum.CashTxTypeDeposit,
			source:    enum.CashTxSourceDailySales,
			date:      sale.SalesDate.Time,
			reference: reference,
			notes:     fmt.Sprintf("%s shift cash sales", sale.ShiftType),
			createdBy: userID,
		})
		if err != nil {
			return err
		}
		if sale.Status != enum.DailySalesStatusTransferred {
			if _, err := q.SetDailySalesStatus(ctx, database.SetDailySalesStatusParams{
				ID:     sale.ID,
				Status: enum.DailySalesStatusTransferred,
			}); err != nil {
				return fmt.Errorf("set daily sales status: %w", err)
			}
		}

		if err := recordActivity(ctx, q, activity{
			branchID:   sale.BranchID,
			userID:     userID,
			action:     ActionCashTransaction,
			entityType: EntityCashTx,
			entityID:   entry.Transaction.ID,
			amount:     &cash,
			details:    map[string]any{"daily_sales_id": sale.ID, "reference": reference},
		}); err != nil {
			return err
		}
		note, err = createNotification(ctx, q, notice{
			branchID:   sale.BranchID,
			kind:       ActionCashTransaction,
			title:      "Cash deposited",
			message:    fmt.Sprintf("%s from %s shift on %s deposited to the cash box", cash.StringFixed(2), sale.ShiftType, sale.SalesDate.Time.Format(time.DateOnly)),
			entityType: EntityCashTx,
			entityID:   entry.Transaction.ID,
		})
		if err != nil {
			return err
		}
		res = ProcessResult{LedgerEntry: entry, Created: true}
		return nil
	})
	if err != nil {
		return ProcessResult{}, err
	}

	s.publish(note)
	return res, nil
}
