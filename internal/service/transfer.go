package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
)

// TransferService moves cash from a branch box to HQ. The box is debited
// when the transfer is requested; rejection posts a compensating deposit.
type TransferService struct {
	deps
}

func NewTransferService(store database.Store, notifier Notifier, log *logrus.Logger) *TransferService {
	return &TransferService{deps: newDeps(store, notifier, log)}
}

type CreateTransferInput struct {
	BranchID  int64
	Amount    decimal.Decimal
	Method    string
	Date      time.Time
	Notes     string
	CreatedBy uuid.UUID
}

type TransferFilter struct {
	Scope  Scope
	Status string
	Limit  int32
	Offset int32
}

// TransferResult is a transfer with the ledger entry its last step posted.
type TransferResult struct {
	Transfer    database.CashTransferToHQ   `json:"transfer"`
	Transaction database.CashBoxTransaction `json:"transaction"`
	CashBox     database.BranchCashBox      `json:"cash_box"`
}

func transferReference(id int64) string { return fmt.Sprintf("HQ-%d", id) }

func reversalReference(id int64) string { return fmt.Sprintf("HQR-%d", id) }

func (in CreateTransferInput) validate() error {
	if in.BranchID <= 0 {
		return invalid("branch_id is required")
	}
	if err := requirePositive("amount", in.Amount); err != nil {
		return err
	}
	if !enum.IsValidTransferMethod(in.Method) {
		return invalid("transfer_method must be one of bank_transfer, cash_delivery, other")
	}
	return nil
}

func (s *TransferService) Create(ctx context.Context, in CreateTransferInput) (TransferResult, error) {
	if in.Method == "" {
		in.Method = enum.TransferMethodBank
	}
	if err := in.validate(); err != nil {
		return TransferResult{}, err
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	var (
		res  TransferResult
		note database.Notification
	)
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		box, err := lockCashBox(ctx, q, in.BranchID)
		if err != nil {
			return err
		}
		if database.Decimal(box.CurrentBalance).LessThan(in.Amount) {
			return ErrInsufficientBalance
		}

		transfer, err := q.CreateTransfer(ctx, database.CreateTransferParams{
			BranchID:        in.BranchID,
			CashBoxID:       box.ID,
			Amount:          database.Numeric(in.Amount),
			TransferMethod:  in.Method,
			TransferDate:    database.Date(in.Date),
			ReferenceNumber: "TRF-" + uuid.NewString(),
			Notes:           strings.TrimSpace(in.Notes),
			CreatedBy:       in.CreatedBy,
		})
		if err != nil {
			return fmt.Errorf("create transfer: %w", err)
		}

		entry, err := post(ctx, q, posting{
			box:       box,
			amount:    in.Amount,
			txType:    enum.CashTxTypeTransferToHQ,
			source:    enum.CashTxSourceTransfer,
			date:      in.Date,
			reference: transferReference(transfer.ID),
			notes:     "Transfer to HQ via " + in.Method,
			createdBy: in.CreatedBy,
		})
		if err != nil {
			return err
		}
		if transfer, err = q.SetTransferTransaction(ctx, database.SetTransferTransactionParams{
			ID:            transfer.ID,
			TransactionID: entry.Transaction.ID,
		}); err != nil {
			return fmt.Errorf("link transfer transaction: %w", err)
		}

		if err := recordActivity(ctx, q, activity{
			branchID:   in.BranchID,
			userID:     in.CreatedBy,
			action:     ActionTransferCreated,
			entityType: EntityTransfer,
			entityID:   transfer.ID,
			amount:     &in.Amount,
			details:    map[string]any{"method": in.Method, "reference": transfer.ReferenceNumber},
		}); err != nil {
			return err
		}
		note, err = createNotification(ctx, q, notice{
			branchID:   in.BranchID,
			kind:       ActionTransferCreated,
			title:      "Transfer to HQ requested",
			message:    fmt.Sprintf("%s via %s awaiting HQ approval", in.Amount.StringFixed(2), in.Method),
			entityType: EntityTransfer,
			entityID:   transfer.ID,
		})
		if err != nil {
			return err
		}
		res = TransferResult{Transfer: transfer, Transaction: entry.Transaction, CashBox: entry.CashBox}
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}

	s.publish(note)
	return res, nil
}

func lockPendingTransfer(ctx context.Context, q database.Querier, id int64, scope Scope, action string) (database.CashTransferToHQ, error) {
	transfer, err := q.GetTransferForUpdate(ctx, id)
	if err != nil {
		return database.CashTransferToHQ{}, notFound(err, ErrTransferNotFound)
	}
	if !scope.Includes(transfer.BranchID) {
		return database.CashTransferToHQ{}, ErrTransferNotFound
	}
	if transfer.Status != enum.TransferStatusPending {
		return database.CashTransferToHQ{}, transition("transfer", transfer.Status, action)
	}
	return transfer, nil
}

// Approve confirms receipt at HQ. The balance already reflects the transfer.
func (s *TransferService) Approve(ctx context.Context, id int64, approver uuid.UUID, scope Scope) (database.CashTransferToHQ, error) {
	var (
		transfer database.CashTransferToHQ
		note     database.Notification
	)
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		if _, err := lockPendingTransfer(ctx, q, id, scope, "approve"); err != nil {
			return err
		}
		var err error
		if transfer, err = q.ApproveTransfer(ctx, database.ApproveTransferParams{ID: id, ApprovedBy: approver}); err != nil {
			return notFound(err, transition("transfer", "no longer pending", "approve"))
		}

		amount := database.Decimal(transfer.Amount)
		if err := recordActivity(ctx, q, activity{
			branchID:   transfer.BranchID,
			userID:     approver,
			action:     ActionTransferApproved,
			entityType: EntityTransfer,
			entityID:   transfer.ID,
			amount:     &amount,
		}); err != nil {
			return err
		}
		note, err = createNotification(ctx, q, notice{
			branchID:   transfer.BranchID,
			kind:       ActionTransferApproved,
			title:      "Transfer approved",
			message:    fmt.Sprintf("HQ received %s (%s)", amount.StringFixed(2), transfer.ReferenceNumber),
			entityType: EntityTransfer,
			entityID:   transfer.ID,
		})
		return err
	})
	if err != nil {
		return database.CashTransferToHQ{}, err
	}

	s.publish(note)
	return transfer, nil
}

// Reject returns the transferred cash to the branch box. A reason is required.
func (s *TransferService) Reject(ctx context.Context, id int64, rejecter uuid.UUID, reason string, scope Scope) (TransferResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return TransferResult{}, invalid("rejection reason is required")
	}

	var (
		res  TransferResult
		note database.Notification
	)
	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		pending, err := lockPendingTransfer(ctx, q, id, scope, "reject")
		if err != nil {
			return err
		}
		box, err := lockCashBox(ctx, q, pending.BranchID)
		if err != nil {
			return err
		}

		amount := database.Decimal(pending.Amount)
		entry, err := post(ctx, q, posting{
			box:       box,
			amount:    amount,
			txType:    enum.CashTxTypeDeposit,
			source:    enum.CashTxSourceTransfer,
			date:      time.Now(),
			reference: reversalReference(pending.ID),
			notes:     "Reversal of rejected transfer " + pending.ReferenceNumber,
			createdBy: rejecter,
		})
		if err != nil {
			return err
		}

		transfer, err := q.RejectTransfer(ctx, database.RejectTransferParams{
			ID:                    id,
			RejectedBy:            rejecter,
			RejectionReason:       database.Text(reason),
			ReversalTransactionID: entry.Transaction.ID,
		})
		if err != nil {
			return notFound(err, transition("transfer", "no longer pending", "reject"))
		}

		if err := recordActivity(ctx, q, activity{
			branchID:   transfer.BranchID,
			userID:     rejecter,
			action:     ActionTransferRejected,
			entityType: EntityTransfer,
			entityID:   transfer.ID,
			amount:     &amount,
			details:    map[string]any{"reason": reason},
		}); err != nil {
			return err
		}
		note, err = createNotification(ctx, q, notice{
			branchID:   transfer.BranchID,
			kind:       ActionTransferRejected,
			title:      "Transfer rejected",
			message:    fmt.Sprintf("%s returned to the cash box: %s", amount.StringFixed(2), reason),
			entityType: EntityTransfer,
			entityID:   transfer.ID,
		})
		if err != nil {
			return err
		}
		res = TransferResult{Transfer: transfer, Transaction: entry.Transaction, CashBox: entry.CashBox}
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}

	s.publish(note)
	return res, nil
}

func (s *TransferService) List(ctx context.Context, f TransferFilter) ([]database.CashTransferToHQ, error) {
	if !f.Scope.valid() {
		return nil, invalid("branch scope is required")
	}
	if f.Status != "" && !enum.IsValidTransferStatus(f.Status) {
		return nil, invalid("unknown status %q", f.Status)
	}
	arg := database.ListTransfersParams{BranchID: f.Scope.filter(), Limit: f.Limit, Offset: f.Offset}
	if f.Status != "" {
		arg.Status = database.Text(f.Status)
	}
	return s.store.ListTransfers(ctx, arg)
}

func (s *TransferService) Get(ctx context.Context, id int64, scope Scope) (database.CashTransferToHQ, error) {
	transfer, err := s.store.GetTransfer(ctx, id)
	if err != nil {
		return database.CashTransferToHQ{}, notFound(err, ErrTransferNotFound)
	}
	if !scope.Includes(transfer.BranchID) {
		return database.CashTransferToHQ{}, ErrTransferNotFound
	}
	return transfer, nil
}
