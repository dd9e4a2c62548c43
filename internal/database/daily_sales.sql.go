package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const dailySaleColumns = `id, branch_id, cashier_id, sales_date, shift_type, shift_start, shift_end,
	starting_cash, total_cash_sales, total_network_sales, total_sales, total_transactions,
	average_ticket, actual_cash_in_register, discrepancy, status, consolidated_id, notes,
	reviewed_by, reviewed_at, rejection_reason, created_at`

func scanDailySale(row rowScanner) (DailySale, error) {
	var i DailySale
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.CashierID,
		&i.SalesDate,
		&i.ShiftType,
		&i.ShiftStart,
		&i.ShiftEnd,
		&i.StartingCash,
		&i.TotalCashSales,
		&i.TotalNetworkSales,
		&i.TotalSales,
		&i.TotalTransactions,
		&i.AverageTicket,
		&i.ActualCashInRegister,
		&i.Discrepancy,
		&i.Status,
		&i.ConsolidatedID,
		&i.Notes,
		&i.ReviewedBy,
		&i.ReviewedAt,
		&i.RejectionReason,
		&i.CreatedAt,
	)
	return i, err
}

func collectDailySales(rows pgx.Rows) ([]DailySale, error) {
	defer rows.Close()
	items := []DailySale{}
	for rows.Next() {
		i, err := scanDailySale(rows)
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

const createDailySales = `
INSERT INTO daily_sales (
    branch_id, cashier_id, sales_date, shift_type, shift_start, shift_end,
    starting_cash, total_cash_sales, total_network_sales, total_sales, total_transactions,
    average_ticket, actual_cash_in_register, discrepancy, notes
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + dailySaleColumns

type CreateDailySalesParams struct {
	BranchID             int64              `json:"branch_id"`
	CashierID            uuid.UUID          `json:"cashier_id"`
	SalesDate            pgtype.Date        `json:"sales_date"`
	ShiftType            string             `json:"shift_type"`
	ShiftStart           pgtype.Timestamptz `json:"shift_start"`
	ShiftEnd             pgtype.Timestamptz `json:"shift_end"`
	StartingCash         pgtype.Numeric     `json:"starting_cash"`
	TotalCashSales       pgtype.Numeric     `json:"total_cash_sales"`
	TotalNetworkSales    pgtype.Numeric     `json:"total_network_sales"`
	TotalSales           pgtype.Numeric     `json:"total_sales"`
	TotalTransactions    int32              `json:"total_transactions"`
	AverageTicket        pgtype.Numeric     `json:"average_ticket"`
	ActualCashInRegister pgtype.Numeric     `json:"actual_cash_in_register"`
	Discrepancy          pgtype.Numeric     `json:"discrepancy"`
	Notes                string             `json:"notes"`
}

func (q *Queries) CreateDailySales(ctx context.Context, arg CreateDailySalesParams) (DailySale, error) {
	return scanDailySale(q.db.QueryRow(ctx, createDailySales,
		arg.BranchID,
		arg.CashierID,
		arg.SalesDate,
		arg.ShiftType,
		arg.ShiftStart,
		arg.ShiftEnd,
		arg.StartingCash,
		arg.TotalCashSales,
		arg.TotalNetworkSales,
		arg.TotalSales,
		arg.TotalTransactions,
		arg.AverageTicket,
		arg.ActualCashInRegister,
		arg.Discrepancy,
		arg.Notes,
	))
}

const getDailySales = `SELECT ` + dailySaleColumns + ` FROM daily_sales WHERE id = $1`

func (q *Queries) GetDailySales(ctx context.Context, id int64) (DailySale, error) {
	return scanDailySale(q.db.QueryRow(ctx, getDailySales, id))
}

const getDailySalesForUpdate = getDailySales + ` FOR UPDATE`

func (q *Queries) GetDailySalesForUpdate(ctx context.Context, id int64) (DailySale, error) {
	return scanDailySale(q.db.QueryRow(ctx, getDailySalesForUpdate, id))
}

// LIMIT NULL (limit = 0) returns every matching row.
const listDailySales = `
SELECT ` + dailySaleColumns + ` FROM daily_sales
WHERE ($1::bigint IS NULL OR branch_id = $1)
  AND ($2::uuid IS NULL OR cashier_id = $2)
  AND ($3::text IS NULL OR status = $3)
  AND ($4::date IS NULL OR sales_date >= $4)
  AND ($5::date IS NULL OR sales_date <= $5)
ORDER BY sales_date DESC, id DESC
LIMIT NULLIF($6::int, 0) OFFSET $7`

type ListDailySalesParams struct {
	BranchID  pgtype.Int8 `json:"branch_id"`
	CashierID pgtype.UUID `json:"cashier_id"`
	Status    pgtype.Text `json:"status"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
	Limit     int32       `json:"limit"`
	Offset    int32       `json:"offset"`
}

func (q *Queries) ListDailySales(ctx context.Context, arg ListDailySalesParams) ([]DailySale, error) {
	rows, err := q.db.Query(ctx, listDailySales,
		arg.BranchID,
		arg.CashierID,
		arg.Status,
		arg.StartDate,
		arg.EndDate,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collectDailySales(rows)
}

// Rows eligible for consolidation: approved shifts plus shifts already rolled
// into the branch/date record (status transferred). Locked for the caller's tx.
const listConsolidationCandidates = `
SELECT ` + dailySaleColumns + ` FROM daily_sales
WHERE branch_id = $1
  AND sales_date = $2
  AND status IN ('approved', 'transferred')
ORDER BY id
FOR UPDATE`

type ListConsolidationCandidatesParams struct {
	BranchID  int64       `json:"branch_id"`
	SalesDate pgtype.Date `json:"sales_date"`
}

func (q *Queries) ListConsolidationCandidates(ctx context.Context, arg ListConsolidationCandidatesParams) ([]DailySale, error) {
	rows, err := q.db.Query(ctx, listConsolidationCandidates, arg.BranchID, arg.SalesDate)
	if err != nil {
		return nil, err
	}
	return collectDailySales(rows)
}

const listDailySalesByConsolidated = `
SELECT ` + dailySaleColumns + ` FROM daily_sales
WHERE consolidated_id = $1
ORDER BY id`

func (q *Queries) ListDailySalesByConsolidated(ctx context.Context, consolidatedID int64) ([]DailySale, error) {
	rows, err := q.db.Query(ctx, listDailySalesByConsolidated, consolidatedID)
	if err != nil {
		return nil, err
	}
	return collectDailySales(rows)
}

const reviewDailySales = `
UPDATE daily_sales
SET status = $2, reviewed_by = $3, reviewed_at = NOW(), rejection_reason = $4
WHERE id = $1
RETURNING ` + dailySaleColumns

type ReviewDailySalesParams struct {
	ID              int64       `json:"id"`
	Status          string      `json:"status"`
	ReviewedBy      uuid.UUID   `json:"reviewed_by"`
	RejectionReason pgtype.Text `json:"rejection_reason"`
}

func (q *Queries) ReviewDailySales(ctx context.Context, arg ReviewDailySalesParams) (DailySale, error) {
	return scanDailySale(q.db.QueryRow(ctx, reviewDailySales,
		arg.ID, arg.Status, arg.ReviewedBy, arg.RejectionReason,
	))
}

const setDailySalesStatus = `
UPDATE daily_sales SET status = $2
WHERE id = $1
RETURNING ` + dailySaleColumns

type SetDailySalesStatusParams struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func (q *Queries) SetDailySalesStatus(ctx context.Context, arg SetDailySalesStatusParams) (DailySale, error) {
	return scanDailySale(q.db.QueryRow(ctx, setDailySalesStatus, arg.ID, arg.Status))
}

const markDailySalesConsolidated = `
UPDATE daily_sales
SET status = 'transferred', consolidated_id = $1
WHERE id = ANY($2::bigint[])`

type MarkDailySalesConsolidatedParams struct {
	ConsolidatedID int64   `json:"consolidated_id"`
	IDs            []int64 `json:"ids"`
}

func (q *Queries) MarkDailySalesConsolidated(ctx context.Context, arg MarkDailySalesConsolidatedParams) error {
	_, err := q.db.Exec(ctx, markDailySalesConsolidated, arg.ConsolidatedID, arg.IDs)
	return err
}
