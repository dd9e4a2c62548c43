package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is implemented by *Queries and by the in-memory store.
type Querier interface {
	// Branches
	CreateBranch(ctx context.Context, arg CreateBranchParams) (Branch, error)
	GetBranch(ctx context.Context, id int64) (Branch, error)
	ListBranches(ctx context.Context) ([]Branch, error)

	// Users
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	ListUsers(ctx context.Context, branchID pgtype.Int8) ([]User, error)

	// Daily sales
	CreateDailySales(ctx context.Context, arg CreateDailySalesParams) (DailySale, error)
	GetDailySales(ctx context.Context, id int64) (DailySale, error)
	GetDailySalesForUpdate(ctx context.Context, id int64) (DailySale, error)
	ListDailySales(ctx context.Context, arg ListDailySalesParams) ([]DailySale, error)
	ListConsolidationCandidates(ctx context.Context, arg ListConsolidationCandidatesParams) ([]DailySale, error)
	ListDailySalesByConsolidated(ctx context.Context, consolidatedID int64) ([]DailySale, error)
	ReviewDailySales(ctx context.Context, arg ReviewDailySalesParams) (DailySale, error)
	SetDailySalesStatus(ctx context.Context, arg SetDailySalesStatusParams) (DailySale, error)
	MarkDailySalesConsolidated(ctx context.Context, arg MarkDailySalesConsolidatedParams) error

	// Consolidated daily sales
	AcquireConsolidationLock(ctx context.Context, key int64) error
	GetConsolidatedByBranchDate(ctx context.Context, arg GetConsolidatedByBranchDateParams) (ConsolidatedDailySale, error)
	GetConsolidated(ctx context.Context, id int64) (ConsolidatedDailySale, error)
	GetConsolidatedForUpdate(ctx context.Context, id int64) (ConsolidatedDailySale, error)
	CreateConsolidated(ctx context.Context, arg CreateConsolidatedParams) (ConsolidatedDailySale, error)
	UpdateConsolidatedTotals(ctx context.Context, arg UpdateConsolidatedTotalsParams) (ConsolidatedDailySale, error)
	CloseConsolidated(ctx context.Context, arg CloseConsolidatedParams) (ConsolidatedDailySale, error)
	TransferConsolidated(ctx context.Context, arg TransferConsolidatedParams) (ConsolidatedDailySale, error)
	ListConsolidated(ctx context.Context, arg ListConsolidatedParams) ([]ConsolidatedDailySale, error)

	// Cash box ledger
	CreateCashBox(ctx context.Context, arg CreateCashBoxParams) (BranchCashBox, error)
	CreateCashBoxIfMissing(ctx context.Context, arg CreateCashBoxParams) (bool, error)
	GetCashBoxByBranch(ctx context.Context, branchID int64) (BranchCashBox, error)
	GetCashBoxByBranchForUpdate(ctx context.Context, branchID int64) (BranchCashBox, error)
	ListCashBoxes(ctx context.Context) ([]BranchCashBox, error)
	AdjustCashBoxBalance(ctx context.Context, arg AdjustCashBoxBalanceParams) (BranchCashBox, error)
	CreateCashBoxTransaction(ctx context.Context, arg CreateCashBoxTransactionParams) (CashBoxTransaction, error)
	GetCashBoxTransactionByReference(ctx context.Context, arg GetCashBoxTransactionByReferenceParams) (CashBoxTransaction, error)
	ListCashBoxTransactions(ctx context.Context, arg ListCashBoxTransactionsParams) ([]CashBoxTransaction, error)

	// HQ transfers
	CreateTransfer(ctx context.Context, arg CreateTransferParams) (CashTransferToHQ, error)
	SetTransferTransaction(ctx context.Context, arg SetTransferTransactionParams) (CashTransferToHQ, error)
	GetTransfer(ctx context.Context, id int64) (CashTransferToHQ, error)
	GetTransferForUpdate(ctx context.Context, id int64) (CashTransferToHQ, error)
	ApproveTransfer(ctx context.Context, arg ApproveTransferParams) (CashTransferToHQ, error)
	RejectTransfer(ctx context.Context, arg RejectTransferParams) (CashTransferToHQ, error)
	ListTransfers(ctx context.Context, arg ListTransfersParams) ([]CashTransferToHQ, error)

	// Targets
	UpsertMonthlyTarget(ctx context.Context, arg UpsertMonthlyTargetParams) (MonthlyTarget, error)
	GetMonthlyTarget(ctx context.Context, arg GetMonthlyTargetParams) (MonthlyTarget, error)
	ListMonthlyTargets(ctx context.Context, arg ListMonthlyTargetsParams) ([]MonthlyTarget, error)

	// Activity and notifications
	CreateActivityLog(ctx context.Context, arg CreateActivityLogParams) (ActivityLog, error)
	ListActivityLogs(ctx context.Context, arg ListActivityLogsParams) ([]ActivityLog, error)
	CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error)
	ListNotifications(ctx context.Context, arg ListNotificationsParams) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) (Notification, error)
}

var _ Querier = (*Queries)(nil)
