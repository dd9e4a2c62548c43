package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Branch struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID             uuid.UUID   `json:"id"`
	BranchID       pgtype.Int8 `json:"branch_id"`
	Email          string      `json:"email"`
	HashedPassword string      `json:"hashed_password"`
	FullName       string      `json:"full_name"`
	Role           string      `json:"role"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
}

type DailySale struct {
	ID                   int64              `json:"id"`
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
	Status               string             `json:"status"`
	ConsolidatedID       pgtype.Int8        `json:"consolidated_id"`
	Notes                string             `json:"notes"`
	ReviewedBy           pgtype.UUID        `json:"reviewed_by"`
	ReviewedAt           pgtype.Timestamptz `json:"reviewed_at"`
	RejectionReason      pgtype.Text        `json:"rejection_reason"`
	CreatedAt            time.Time          `json:"created_at"`
}

type ConsolidatedDailySale struct {
	ID                int64              `json:"id"`
	BranchID          int64              `json:"branch_id"`
	SalesDate         pgtype.Date        `json:"sales_date"`
	TotalCashSales    pgtype.Numeric     `json:"total_cash_sales"`
	TotalNetworkSales pgtype.Numeric     `json:"total_network_sales"`
	TotalSales        pgtype.Numeric     `json:"total_sales"`
	TotalTransactions int32              `json:"total_transactions"`
	AverageTicket     pgtype.Numeric     `json:"average_ticket"`
	TotalDiscrepancy  pgtype.Numeric     `json:"total_discrepancy"`
	ShiftCount        int32              `json:"shift_count"`
	Status            string             `json:"status"`
	CreatedBy         uuid.UUID          `json:"created_by"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	ClosedBy          pgtype.UUID        `json:"closed_by"`
	ClosedAt          pgtype.Timestamptz `json:"closed_at"`
	TransferredBy     pgtype.UUID        `json:"transferred_by"`
	TransferredAt     pgtype.Timestamptz `json:"transferred_at"`
}

type BranchCashBox struct {
	ID             int64          `json:"id"`
	BranchID       int64          `json:"branch_id"`
	CurrentBalance pgtype.Numeric `json:"current_balance"`
	Notes          string         `json:"notes"`
	LastUpdated    time.Time      `json:"last_updated"`
	CreatedAt      time.Time      `json:"created_at"`
}

type CashBoxTransaction struct {
	ID              int64          `json:"id"`
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
	CreatedAt       time.Time      `json:"created_at"`
}

type CashTransferToHQ struct {
	ID                    int64              `json:"id"`
	BranchID              int64              `json:"branch_id"`
	CashBoxID             int64              `json:"cash_box_id"`
	Amount                pgtype.Numeric     `json:"amount"`
	TransferMethod        string             `json:"transfer_method"`
	TransferDate          pgtype.Date        `json:"transfer_date"`
	ReferenceNumber       string             `json:"reference_number"`
	Notes                 string             `json:"notes"`
	Status                string             `json:"status"`
	TransactionID         pgtype.Int8        `json:"transaction_id"`
	ReversalTransactionID pgtype.Int8        `json:"reversal_transaction_id"`
	CreatedBy             uuid.UUID          `json:"created_by"`
	CreatedAt             time.Time          `json:"created_at"`
	ApprovedBy            pgtype.UUID        `json:"approved_by"`
	ApprovedAt            pgtype.Timestamptz `json:"approved_at"`
	RejectedBy            pgtype.UUID        `json:"rejected_by"`
	RejectedAt            pgtype.Timestamptz `json:"rejected_at"`
	RejectionReason       pgtype.Text        `json:"rejection_reason"`
}

type MonthlyTarget struct {
	ID             int64          `json:"id"`
	BranchID       int64          `json:"branch_id"`
	Month          int32          `json:"month"`
	Year           int32          `json:"year"`
	TargetAmount   pgtype.Numeric `json:"target_amount"`
	WeekdayWeights []byte         `json:"weekday_weights"`
	DailyTargets   []byte         `json:"daily_targets"`
	CreatedBy      pgtype.UUID    `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type ActivityLog struct {
	ID         int64          `json:"id"`
	BranchID   pgtype.Int8    `json:"branch_id"`
	UserID     pgtype.UUID    `json:"user_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   int64          `json:"entity_id"`
	Amount     pgtype.Numeric `json:"amount"`
	Details    []byte         `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}

type Notification struct {
	ID         int64       `json:"id"`
	BranchID   pgtype.Int8 `json:"branch_id"`
	Type       string      `json:"type"`
	Title      string      `json:"title"`
	Message    string      `json:"message"`
	EntityType string      `json:"entity_type"`
	EntityID   int64       `json:"entity_id"`
	IsRead     bool        `json:"is_read"`
	CreatedAt  time.Time   `json:"created_at"`
}
