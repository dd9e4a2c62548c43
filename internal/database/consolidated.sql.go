package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const consolidatedColumns = `id, branch_id, sales_date, total_cash_sales, total_network_sales, total_sales,
	total_transactions, average_ticket, total_discrepancy, shift_count, status,
	created_by, created_at, updated_at, closed_by, closed_at, transferred_by, transferred_at`

func scanConsolidated(row rowScanner) (ConsolidatedDailySale, error) {
	var i ConsolidatedDailySale
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.SalesDate,
		&i.TotalCashSales,
		&i.TotalNetworkSales,
		&i.TotalSales,
		&i.TotalTransactions,
		&i.AverageTicket,
		&i.TotalDiscrepancy,
		&i.ShiftCount,
		&i.Status,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ClosedBy,
		&i.ClosedAt,
		&i.TransferredBy,
		&i.TransferredAt,
	)
	return i, err
}

const acquireConsolidationLock = `SELECT pg_advisory_xact_lock($1::bigint)`

// AcquireConsolidationLock blocks until the transaction holds the advisory
// lock for key. Released automatically on commit or rollback.
func (q *Queries) AcquireConsolidationLock(ctx context.Context, key int64) error {
	_, err := q.db.Exec(ctx, acquireConsolidationLock, key)
	return err
}

const getConsolidatedByBranchDate = `
SELECT ` + consolidatedColumns + ` FROM consolidated_daily_sales
WHERE branch_id = $1 AND sales_date = $2
FOR UPDATE`

type GetConsolidatedByBranchDateParams struct {
	BranchID  int64       `json:"branch_id"`
	SalesDate pgtype.Date `json:"sales_date"`
}

func (q *Queries) GetConsolidatedByBranchDate(ctx context.Context, arg GetConsolidatedByBranchDateParams) (ConsolidatedDailySale, error) {
	return scanConsolidated(q.db.QueryRow(ctx, getConsolidatedByBranchDate, arg.BranchID, arg.SalesDate))
}

const getConsolidated = `SELECT ` + consolidatedColumns + ` FROM consolidated_daily_sales WHERE id = $1`

func (q *Queries) GetConsolidated(ctx context.Context, id int64) (ConsolidatedDailySale, error) {
	return scanConsolidated(q.db.QueryRow(ctx, getConsolidated, id))
}

const getConsolidatedForUpdate = getConsolidated + ` FOR UPDATE`

func (q *Queries) GetConsolidatedForUpdate(ctx context.Context, id int64) (ConsolidatedDailySale, error) {
	return scanConsolidated(q.db.QueryRow(ctx, getConsolidatedForUpdate, id))
}

type ConsolidatedTotals struct {
	TotalCashSales    pgtype.Numeric `json:"total_cash_sales"`
	TotalNetworkSales pgtype.Numeric `json:"total_network_sales"`
	TotalSales        pgtype.Numeric `json:"total_sales"`
	TotalTransactions int32          `json:"total_transactions"`
	AverageTicket     pgtype.Numeric `json:"average_ticket"`
	TotalDiscrepancy  pgtype.Numeric `json:"total_discrepancy"`
	ShiftCount        int32          `json:"shift_count"`
}

const createConsolidated = `
INSERT INTO consolidated_daily_sales (
    branch_id, sales_date, total_cash_sales, total_network_sales, total_sales,
    total_transactions, average_ticket, total_discrepancy, shift_count, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + consolidatedColumns

type CreateConsolidatedParams struct {
	BranchID  int64       `json:"branch_id"`
	SalesDate pgtype.Date `json:"sales_date"`
	ConsolidatedTotals
	CreatedBy uuid.UUID `json:"created_by"`
}

func (q *Queries) CreateConsolidated(ctx context.Context, arg CreateConsolidatedParams) (ConsolidatedDailySale, error) {
	return scanConsolidated(q.db.QueryRow(ctx, createConsolidated,
		arg.BranchID,
		arg.SalesDate,
		arg.TotalCashSales,
		arg.TotalNetworkSales,
		arg.TotalSales,
		arg.TotalTransactions,
		arg.AverageTicket,
		arg.TotalDiscrepancy,
		arg.ShiftCount,
		arg.CreatedBy,
	))
}

const updateConsolidatedTotals = `
UPDATE consolidated_daily_sales
SET total_cash_sales = $2, total_network_sales = $3, total_sales = $4,
    total_transactions = $5, average_ticket = $6, total_discrepancy = $7,
    shift_count = $8, updated_at = NOW()
WHERE id = $1
RETURNING ` + consolidatedColumns

type UpdateConsolidatedTotalsParams struct {
	ID int64 `json:"id"`
	ConsolidatedTotals
}

func (q *Queries) UpdateConsolidatedTotals(ctx context.Context, arg UpdateConsolidatedTotalsParams) (ConsolidatedDailySale, error) {
	return scanConsolidated(q.db.QueryRow(ctx, updateConsolidatedTotals,
		arg.ID,
		arg.TotalCashSales,
		arg.TotalNetworkSales,
		arg.TotalSales,
		arg.TotalTransactions,
		arg.AverageTicket,
		arg.TotalDiscrepancy,
		arg.ShiftCount,
	))
}

const closeConsolidated = `
UPDATE consolidated_daily_sales
SET status = 'closed', closed_by = $2, closed_at = NOW(), updated_at = NOW()
WHERE id = $1
RETURNING ` + consolidatedColumns

type CloseConsolidatedParams struct {
	ID       int64     `json:"id"`
	ClosedBy uuid.UUID `json:"closed_by"`
}

func (q *Queries) CloseConsolidated(ctx context.Context, arg CloseConsolidatedParams) (ConsolidatedDailySale, error) {
	return scanConsolidated(q.db.QueryRow(ctx, closeConsolidated, arg.ID, arg.ClosedBy))
}

const transferConsolidated = `
UPDATE consolidated_daily_sales
SET status = 'transferred', transferred_by = $2, transferred_at = NOW(), updated_at = NOW()
WHERE id = $1
RETURNING ` + consolidatedColumns

type TransferConsolidatedParams struct {
	ID            int64     `json:"id"`
	TransferredBy uuid.UUID `json:"transferred_by"`
}

func (q *Queries) TransferConsolidated(ctx context.Context, arg TransferConsolidatedParams) (ConsolidatedDailySale, error) {
	return scanConsolidated(q.db.QueryRow(ctx, transferConsolidated, arg.ID, arg.TransferredBy))
}

const listConsolidated = `
SELECT ` + consolidatedColumns + ` FROM consolidated_daily_sales
WHERE ($1::bigint IS NULL OR branch_id = $1)
  AND ($2::text IS NULL OR status = $2)
  AND ($3::date IS NULL OR sales_date >= $3)
  AND ($4::date IS NULL OR sales_date <= $4)
ORDER BY sales_date DESC, branch_id
LIMIT NULLIF($5::int, 0) OFFSET $6`

type ListConsolidatedParams struct {
	BranchID  pgtype.Int8 `json:"branch_id"`
	Status    pgtype.Text `json:"status"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
	Limit     int32       `json:"limit"`
	Offset    int32       `json:"offset"`
}

func (q *Queries) ListConsolidated(ctx context.Context, arg ListConsolidatedParams) ([]ConsolidatedDailySale, error) {
	rows, err := q.db.Query(ctx, listConsolidated,
		arg.BranchID, arg.Status, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ConsolidatedDailySale{}
	for rows.Next() {
		i, err := scanConsolidated(rows)
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
