package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const transferColumns = `id, branch_id, cash_box_id, amount, transfer_method, transfer_date,
	reference_number, notes, status, transaction_id, reversal_transaction_id, created_by, created_at,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason`

func scanTransfer(row rowScanner) (CashTransferToHQ, error) {
	var i CashTransferToHQ
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.CashBoxID,
		&i.Amount,
		&i.TransferMethod,
		&i.TransferDate,
		&i.ReferenceNumber,
		&i.Notes,
		&i.Status,
		&i.TransactionID,
		&i.ReversalTransactionID,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.ApprovedBy,
		&i.ApprovedAt,
		&i.RejectedBy,
		&i.RejectedAt,
		&i.RejectionReason,
	)
	return i, err
}

const createTransfer = `
INSERT INTO cash_transfers_to_hq (
    branch_id, cash_box_id, amount, transfer_method, transfer_date, reference_number, notes, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + transferColumns

type CreateTransferParams struct {
	BranchID        int64          `json:"branch_id"`
	CashBoxID       int64          `json:"cash_box_id"`
	Amount          pgtype.Numeric `json:"amount"`
	TransferMethod  string         `json:"transfer_method"`
	TransferDate    pgtype.Date    `json:"transfer_date"`
	ReferenceNumber string         `json:"reference_number"`
	Notes           string         `json:"notes"`
	CreatedBy       uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreateTransfer(ctx context.Context, arg CreateTransferParams) (CashTransferToHQ, error) {
	return scanTransfer(q.db.QueryRow(ctx, createTransfer,
		arg.BranchID,
		arg.CashBoxID,
		arg.Amount,
		arg.TransferMethod,
		arg.TransferDate,
		arg.ReferenceNumber,
		arg.Notes,
		arg.CreatedBy,
	))
}

const setTransferTransaction = `
UPDATE cash_transfers_to_hq SET transaction_id = $2
WHERE id = $1
RETURNING ` + transferColumns

type SetTransferTransactionParams struct {
	ID            int64 `json:"id"`
	TransactionID int64 `json:"transaction_id"`
}

func (q *Queries) SetTransferTransaction(ctx context.Context, arg SetTransferTransactionParams) (CashTransferToHQ, error) {
	return scanTransfer(q.db.QueryRow(ctx, setTransferTransaction, arg.ID, arg.TransactionID))
}

const getTransfer = `SELECT ` + transferColumns + ` FROM cash_transfers_to_hq WHERE id = $1`

func (q *Queries) GetTransfer(ctx context.Context, id int64) (CashTransferToHQ, error) {
	return scanTransfer(q.db.QueryRow(ctx, getTransfer, id))
}

const getTransferForUpdate = getTransfer + ` FOR UPDATE`

func (q *Queries) GetTransferForUpdate(ctx context.Context, id int64) (CashTransferToHQ, error) {
	return scanTransfer(q.db.QueryRow(ctx, getTransferForUpdate, id))
}

const approveTransfer = `
UPDATE cash_transfers_to_hq
SET status = 'approved', approved_by = $2, approved_at = NOW()
WHERE id = $1 AND status = 'pending'
RETURNING ` + transferColumns

type ApproveTransferParams struct {
	ID         int64     `json:"id"`
	ApprovedBy uuid.UUID `json:"approved_by"`
}

func (q *Queries) ApproveTransfer(ctx context.Context, arg ApproveTransferParams) (CashTransferToHQ, error) {
	return scanTransfer(q.db.QueryRow(ctx, approveTransfer, arg.ID, arg.ApprovedBy))
}

const rejectTransfer = `
UPDATE cash_transfers_to_hq
SET status = 'rejected', rejected_by = $2, rejected_at = NOW(), rejection_reason = $3,
    reversal_transaction_id = $4
WHERE id = $1 AND status = 'pending'
RETURNING ` + transferColumns

type RejectTransferParams struct {
	ID                    int64       `json:"id"`
	RejectedBy            uuid.UUID   `json:"rejected_by"`
	RejectionReason       pgtype.Text `json:"rejection_reason"`
	ReversalTransactionID int64       `json:"reversal_transaction_id"`
}

func (q *Queries) RejectTransfer(ctx context.Context, arg RejectTransferParams) (CashTransferToHQ, error) {
	return scanTransfer(q.db.QueryRow(ctx, rejectTransfer,
		arg.ID, arg.RejectedBy, arg.RejectionReason, arg.ReversalTransactionID,
	))
}

const listTransfers = `
SELECT ` + transferColumns + ` FROM cash_transfers_to_hq
WHERE ($1::bigint IS NULL OR branch_id = $1)
  AND ($2::text IS NULL OR status = $2)
ORDER BY created_at DESC, id DESC
LIMIT NULLIF($3::int, 0) OFFSET $4`

type ListTransfersParams struct {
	BranchID pgtype.Int8 `json:"branch_id"`
	Status   pgtype.Text `json:"status"`
	Limit    int32       `json:"limit"`
	Offset   int32       `json:"offset"`
}

func (q *Queries) ListTransfers(ctx context.Context, arg ListTransfersParams) ([]CashTransferToHQ, error) {
	rows, err := q.db.Query(ctx, listTransfers, arg.BranchID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CashTransferToHQ{}
	for rows.Next() {
		i, err := scanTransfer(rows)
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
