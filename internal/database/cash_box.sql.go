package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const cashBoxColumns = `id, branch_id, current_balance, notes, last_updated, created_at`

func scanCashBox(row rowScanner) (BranchCashBox, error) {
	var i BranchCashBox
	err := row.Scan(&i.ID, &i.BranchID, &i.CurrentBalance, &i.Notes, &i.LastUpdated, &i.CreatedAt)
	return i, err
}

const createCashBox = `
INSERT INTO branch_cash_boxes (branch_id, notes)
VALUES ($1, $2)
RETURNING ` + cashBoxColumns

type CreateCashBoxParams struct {
	BranchID int64  `json:"branch_id"`
	Notes    string `json:"notes"`
}

func (q *Queries) CreateCashBox(ctx context.Context, arg CreateCashBoxParams) (BranchCashBox, error) {
	return scanCashBox(q.db.QueryRow(ctx, createCashBox, arg.BranchID, arg.Notes))
}

const createCashBoxIfMissing = `
INSERT INTO branch_cash_boxes (branch_id, notes)
VALUES ($1, $2)
ON CONFLICT (branch_id) DO NOTHING`

// CreateCashBoxIfMissing reports whether a new box was inserted. Concurrent
// callers for the same branch wait on the unique index instead of failing.
func (q *Queries) CreateCashBoxIfMissing(ctx context.Context, arg CreateCashBoxParams) (bool, error) {
	tag, err := q.db.Exec(ctx, createCashBoxIfMissing, arg.BranchID, arg.Notes)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const getCashBoxByBranch = `SELECT ` + cashBoxColumns + ` FROM branch_cash_boxes WHERE branch_id = $1`

func (q *Queries) GetCashBoxByBranch(ctx context.Context, branchID int64) (BranchCashBox, error) {
	return scanCashBox(q.db.QueryRow(ctx, getCashBoxByBranch, branchID))
}

const getCashBoxByBranchForUpdate = getCashBoxByBranch + ` FOR UPDATE`

func (q *Queries) GetCashBoxByBranchForUpdate(ctx context.Context, branchID int64) (BranchCashBox, error) {
	return scanCashBox(q.db.QueryRow(ctx, getCashBoxByBranchForUpdate, branchID))
}

const listCashBoxes = `SELECT ` + cashBoxColumns + ` FROM branch_cash_boxes ORDER BY branch_id`

func (q *Queries) ListCashBoxes(ctx context.Context) ([]BranchCashBox, error) {
	rows, err := q.db.Query(ctx, listCashBoxes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BranchCashBox{}
	for rows.Next() {
		i, err := scanCashBox(rows)
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

const adjustCashBoxBalance = `
UPDATE branch_cash_boxes
SET current_balance = current_balance + $2, last_updated = NOW()
WHERE id = $1
RETURNING ` + cashBoxColumns

type AdjustCashBoxBalanceParams struct {
	ID    int64          `json:"id"`
	Delta pgtype.Numeric `json:"delta"`
}

func (q *Queries) AdjustCashBoxBalance(ctx context.Context, arg AdjustCashBoxBalanceParams) (BranchCashBox, error) {
	return scanCashBox(q.db.QueryRow(ctx, adjustCashBoxBalance, arg.ID, arg.Delta))
}

const cashTxColumns = `id, branch_id, cash_box_id, amount, type, source, transaction_date,
	reference_number, notes, status, created_by, created_at`

func scanCashTx(row rowScanner) (CashBoxTransaction, error) {
	var i CashBoxTransaction
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.CashBoxID,
		&i.Amount,
		&i.Type,
		&i.Source,
		&i.TransactionDate,
		&i.ReferenceNumber,
		&i.Notes,
		&i.Status,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const createCashBoxTransaction = `
INSERT INTO cash_box_transactions (
    branch_id, cash_box_id, amount, type, source, transaction_date,
    reference_number, notes, status, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + cashTxColumns

type CreateCashBoxTransactionParams struct {
	BranchID        int64          `json:"branch_id"`
	CashBoxID       int64          `json:"cash_box_id"`
	Amount          pgtype.Numeric `json:"amount"`
	Type            string         `json:"type"`
	Source          string         `json:"source"`
	TransactionDate pgtype.Date    `json:"transaction_date"`
	ReferenceNumber string         `json:"reference_number"`
	Notes           string         `json:"notes"`
	Status          string         `json:"status"`
	CreatedBy       uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreateCashBoxTransaction(ctx context.Context, arg CreateCashBoxTransactionParams) (CashBoxTransaction, error) {
	return scanCashTx(q.db.QueryRow(ctx, createCashBoxTransaction,
		arg.BranchID,
		arg.CashBoxID,
		arg.Amount,
		arg.Type,
		arg.Source,
		arg.TransactionDate,
		arg.ReferenceNumber,
		arg.Notes,
		arg.Status,
		arg.CreatedBy,
	))
}

const getCashBoxTransactionByReference = `
SELECT ` + cashTxColumns + ` FROM cash_box_transactions
WHERE source = $1 AND reference_number = $2
ORDER BY id
LIMIT 1`

type GetCashBoxTransactionByReferenceParams struct {
	Source          string `json:"source"`
	ReferenceNumber string `json:"reference_number"`
}

func (q *Queries) GetCashBoxTransactionByReference(ctx context.Context, arg GetCashBoxTransactionByReferenceParams) (CashBoxTransaction, error) {
	return scanCashTx(q.db.QueryRow(ctx, getCashBoxTransactionByReference, arg.Source, arg.ReferenceNumber))
}

const listCashBoxTransactions = `
SELECT ` + cashTxColumns + ` FROM cash_box_transactions
WHERE ($1::bigint IS NULL OR branch_id = $1)
  AND ($2::text IS NULL OR type = $2)
  AND ($3::text IS NULL OR source = $3)
  AND ($4::date IS NULL OR transaction_date >= $4)
  AND ($5::date IS NULL OR transaction_date <= $5)
ORDER BY created_at DESC, id DESC
LIMIT NULLIF($6::int, 0) OFFSET $7`

type ListCashBoxTransactionsParams struct {
	BranchID  pgtype.Int8 `json:"branch_id"`
	Type      pgtype.Text `json:"type"`
	Source    pgtype.Text `json:"source"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
	Limit     int32       `json:"limit"`
	Offset    int32       `json:"offset"`
}

func (q *Queries) ListCashBoxTransactions(ctx context.Context, arg ListCashBoxTransactionsParams) ([]CashBoxTransaction, error) {
	rows, err := q.db.Query(ctx, listCashBoxTransactions,
		arg.BranchID, arg.Type, arg.Source, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CashBoxTransaction{}
	for rows.Next() {
		i, err := scanCashTx(rows)
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
