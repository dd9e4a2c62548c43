package memstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rotiroti/backoffice/internal/database"
)

func (s *Store) CreateBranch(ctx context.Context, arg database.CreateBranchParams) (database.Branch, error) {
	return write(s, func(t *tables) (database.Branch, error) { return t.CreateBranch(ctx, arg) })
}

func (s *Store) GetBranch(ctx context.Context, id int64) (database.Branch, error) {
	return read(s, func(t *tables) (database.Branch, error) { return t.GetBranch(ctx, id) })
}

func (s *Store) ListBranches(ctx context.Context) ([]database.Branch, error) {
	return read(s, func(t *tables) ([]database.Branch, error) { return t.ListBranches(ctx) })
}

func (s *Store) CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error) {
	return write(s, func(t *tables) (database.User, error) { return t.CreateUser(ctx, arg) })
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (database.User, error) {
	return read(s, func(t *tables) (database.User, error) { return t.GetUserByEmail(ctx, email) })
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	return read(s, func(t *tables) (database.User, error) { return t.GetUserByID(ctx, id) })
}

func (s *Store) ListUsers(ctx context.Context, branchID pgtype.Int8) ([]database.User, error) {
	return read(s, func(t *tables) ([]database.User, error) { return t.ListUsers(ctx, branchID) })
}

func (s *Store) CreateDailySales(ctx context.Context, arg database.CreateDailySalesParams) (database.DailySale, error) {
	return write(s, func(t *tables) (database.DailySale, error) { return t.CreateDailySales(ctx, arg) })
}

func (s *Store) GetDailySales(ctx context.Context, id int64) (database.DailySale, error) {
	return read(s, func(t *tables) (database.DailySale, error) { return t.GetDailySales(ctx, id) })
}

func (s *Store) GetDailySalesForUpdate(ctx context.Context, id int64) (database.DailySale, error) {
	return read(s, func(t *tables) (database.DailySale, error) { return t.GetDailySalesForUpdate(ctx, id) })
}

func (s *Store) ListDailySales(ctx context.Context, arg database.ListDailySalesParams) ([]database.DailySale, error) {
	return read(s, func(t *tables) ([]database.DailySale, error) { return t.ListDailySales(ctx, arg) })
}

func (s *Store) ListConsolidationCandidates(ctx context.Context, arg database.ListConsolidationCandidatesParams) ([]database.DailySale, error) {
	return read(s, func(t *tables) ([]database.DailySale, error) { return t.ListConsolidationCandidates(ctx, arg) })
}

func (s *Store) ListDailySalesByConsolidated(ctx context.Context, consolidatedID int64) ([]database.DailySale, error) {
	return read(s, func(t *tables) ([]database.DailySale, error) { return t.ListDailySalesByConsolidated(ctx, consolidatedID) })
}

func (s *Store) ReviewDailySales(ctx context.Context, arg database.ReviewDailySalesParams) (database.DailySale, error) {
	return write(s, func(t *tables) (database.DailySale, error) { return t.ReviewDailySales(ctx, arg) })
}

func (s *Store) SetDailySalesStatus(ctx context.Context, arg database.SetDailySalesStatusParams) (database.DailySale, error) {
	return write(s, func(t *tables) (database.DailySale, error) { return t.SetDailySalesStatus(ctx, arg) })
}

func (s *Store) MarkDailySalesConsolidated(ctx context.Context, arg database.MarkDailySalesConsolidatedParams) error {
	_, err := write(s, func(t *tables) (struct{}, error) { return struct{}{}, t.MarkDailySalesConsolidated(ctx, arg) })
	return err
}

func (s *Store) AcquireConsolidationLock(ctx context.Context, key int64) error {
	_, err := read(s, func(t *tables) (struct{}, error) { return struct{}{}, t.AcquireConsolidationLock(ctx, key) })
	return err
}

func (s *Store) GetConsolidatedByBranchDate(ctx context.Context, arg database.GetConsolidatedByBranchDateParams) (database.ConsolidatedDailySale, error) {
	return read(s, func(t *tables) (database.ConsolidatedDailySale, error) { return t.GetConsolidatedByBranchDate(ctx, arg) })
}

func (s *Store) GetConsolidated(ctx context.Context, id int64) (database.ConsolidatedDailySale, error) {
	return read(s, func(t *tables) (database.ConsolidatedDailySale, error) { return t.GetConsolidated(ctx, id) })
}

func (s *Store) GetConsolidatedForUpdate(ctx context.Context, id int64) (database.ConsolidatedDailySale, error) {
	return read(s, func(t *tables) (database.ConsolidatedDailySale, error) { return t.GetConsolidatedForUpdate(ctx, id) })
}

func (s *Store) CreateConsolidated(ctx context.Context, arg database.CreateConsolidatedParams) (database.ConsolidatedDailySale, error) {
	return write(s, func(t *tables) (database.ConsolidatedDailySale, error) { return t.CreateConsolidated(ctx, arg) })
}

func (s *Store) UpdateConsolidatedTotals(ctx context.Context, arg database.UpdateConsolidatedTotalsParams) (database.ConsolidatedDailySale, error) {
	return write(s, func(t *tables) (database.ConsolidatedDailySale, error) { return t.UpdateConsolidatedTotals(ctx, arg) })
}

func (s *Store) CloseConsolidated(ctx context.Context, arg database.CloseConsolidatedParams) (database.ConsolidatedDailySale, error) {
	return write(s, func(t *tables) (database.ConsolidatedDailySale, error) { return t.CloseConsolidated(ctx, arg) })
}

func (s *Store) TransferConsolidated(ctx context.Context, arg database.TransferConsolidatedParams) (database.ConsolidatedDailySale, error) {
	return write(s, func(t *tables) (database.ConsolidatedDailySale, error) { return t.TransferConsolidated(ctx, arg) })
}

func (s *Store) ListConsolidated(ctx context.Context, arg database.ListConsolidatedParams) ([]database.ConsolidatedDailySale, error) {
	return read(s, func(t *tables) ([]database.ConsolidatedDailySale, error) { return t.ListConsolidated(ctx, arg) })
}

func (s *Store) CreateCashBox(ctx context.Context, arg database.CreateCashBoxParams) (database.BranchCashBox, error) {
	return write(s, func(t *tables) (database.BranchCashBox, error) { return t.CreateCashBox(ctx, arg) })
}

func (s *Store) CreateCashBoxIfMissing(ctx context.Context, arg database.CreateCashBoxParams) (bool, error) {
	return write(s, func(t *tables) (bool, error) { return t.CreateCashBoxIfMissing(ctx, arg) })
}

func (s *Store) GetCashBoxByBranch(ctx context.Context, branchID int64) (database.BranchCashBox, error) {
	return read(s, func(t *tables) (database.BranchCashBox, error) { return t.GetCashBoxByBranch(ctx, branchID) })
}

func (s *Store) GetCashBoxByBranchForUpdate(ctx context.Context, branchID int64) (database.BranchCashBox, error) {
	return read(s, func(t *tables) (database.BranchCashBox, error) { return t.GetCashBoxByBranchForUpdate(ctx, branchID) })
}

func (s *Store) ListCashBoxes(ctx context.Context) ([]database.BranchCashBox, error) {
	return read(s, func(t *tables) ([]database.BranchCashBox, error) { return t.ListCashBoxes(ctx) })
}

func (s *Store) AdjustCashBoxBalance(ctx context.Context, arg database.AdjustCashBoxBalanceParams) (database.BranchCashBox, error) {
	return write(s, func(t *tables) (database.BranchCashBox, error) { return t.AdjustCashBoxBalance(ctx, arg) })
}

func (s *Store) CreateCashBoxTransaction(ctx context.Context, arg database.CreateCashBoxTransactionParams) (database.CashBoxTransaction, error) {
	return write(s, func(t *tables) (database.CashBoxTransaction, error) { return t.CreateCashBoxTransaction(ctx, arg) })
}

func (s *Store) GetCashBoxTransactionByReference(ctx context.Context, arg database.GetCashBoxTransactionByReferenceParams) (database.CashBoxTransaction, error) {
	return read(s, func(t *tables) (database.CashBoxTransaction, error) { return t.GetCashBoxTransactionByReference(ctx, arg) })
}

func (s *Store) ListCashBoxTransactions(ctx context.Context, arg database.ListCashBoxTransactionsParams) ([]database.CashBoxTransaction, error) {
	return read(s, func(t *tables) ([]database.CashBoxTransaction, error) { return t.ListCashBoxTransactions(ctx, arg) })
}

func (s *Store) CreateTransfer(ctx context.Context, arg database.CreateTransferParams) (database.CashTransferToHQ, error) {
	return write(s, func(t *tables) (database.CashTransferToHQ, error) { return t.CreateTransfer(ctx, arg) })
}

func (s *Store) SetTransferTransaction(ctx context.Context, arg database.SetTransferTransactionParams) (database.CashTransferToHQ, error) {
	return write(s, func(t *tables) (database.CashTransferToHQ, error) { return t.SetTransferTransaction(ctx, arg) })
}

func (s *Store) GetTransfer(ctx context.Context, id int64) (database.CashTransferToHQ, error) {
	return read(s, func(t *tables) (database.CashTransferToHQ, error) { return t.GetTransfer(ctx, id) })
}

func (s *Store) GetTransferForUpdate(ctx context.Context, id int64) (database.CashTransferToHQ, error) {
	return read(s, func(t *tables) (database.CashTransferToHQ, error) { return t.GetTransferForUpdate(ctx, id) })
}

func (s *Store) ApproveTransfer(ctx context.Context, arg database.ApproveTransferParams) (database.CashTransferToHQ, error) {
	return write(s, func(t *tables) (database.CashTransferToHQ, error) { return t.ApproveTransfer(ctx, arg) })
}

func (s *Store) RejectTransfer(ctx context.Context, arg database.RejectTransferParams) (database.CashTransferToHQ, error) {
	return write(s, func(t *tables) (database.CashTransferToHQ, error) { return t.RejectTransfer(ctx, arg) })
}

func (s *Store) ListTransfers(ctx context.Context, arg database.ListTransfersParams) ([]database.CashTransferToHQ, error) {
	return read(s, func(t *tables) ([]database.CashTransferToHQ, error) { return t.ListTransfers(ctx, arg) })
}

func (s *Store) UpsertMonthlyTarget(ctx context.Context, arg database.UpsertMonthlyTargetParams) (database.MonthlyTarget, error) {
	return write(s, func(t *tables) (database.MonthlyTarget, error) { return t.UpsertMonthlyTarget(ctx, arg) })
}

func (s *Store) GetMonthlyTarget(ctx context.Context, arg database.GetMonthlyTargetParams) (database.MonthlyTarget, error) {
	return read(s, func(t *tables) (database.MonthlyTarget, error) { return t.GetMonthlyTarget(ctx, arg) })
}

func (s *Store) ListMonthlyTargets(ctx context.Context, arg database.ListMonthlyTargetsParams) ([]database.MonthlyTarget, error) {
	return read(s, func(t *tables) ([]database.MonthlyTarget, error) { return t.ListMonthlyTargets(ctx, arg) })
}

func (s *Store) CreateActivityLog(ctx context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error) {
	return write(s, func(t *tables) (database.ActivityLog, error) { return t.CreateActivityLog(ctx, arg) })
}

func (s *Store) ListActivityLogs(ctx context.Context, arg database.ListActivityLogsParams) ([]database.ActivityLog, error) {
	return read(s, func(t *tables) ([]database.ActivityLog, error) { return t.ListActivityLogs(ctx, arg) })
}

func (s *Store) CreateNotification(ctx context.Context, arg database.CreateNotificationParams) (database.Notification, error) {
	return write(s, func(t *tables) (database.Notification, error) { return t.CreateNotification(ctx, arg) })
}

func (s *Store) ListNotifications(ctx context.Context, arg database.ListNotificationsParams) ([]database.Notification, error) {
	return read(s, func(t *tables) ([]database.Notification, error) { return t.ListNotifications(ctx, arg) })
}

func (s *Store) MarkNotificationRead(ctx context.Context, id int64) (database.Notification, error) {
	return write(s, func(t *tables) (database.Notification, error) { return t.MarkNotificationRead(ctx, id) })
}
