package memstore

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
)

// tables holds one consistent version of every row. Methods take no locks;
// Store decides which version a caller sees.
type tables struct {
	seq           int64
	branches      map[int64]database.Branch
	users         map[uuid.UUID]database.User
	dailySales    map[int64]database.DailySale
	consolidated  map[int64]database.ConsolidatedDailySale
	cashBoxes     map[int64]database.BranchCashBox
	cashTxs       map[int64]database.CashBoxTransaction
	transfers     map[int64]database.CashTransferToHQ
	targets       map[int64]database.MonthlyTarget
	activity      map[int64]database.ActivityLog
	notifications map[int64]database.Notification
}

var _ database.Querier = (*tables)(nil)

func newTables() *tables {
	return &tables{
		branches:      map[int64]database.Branch{},
		users:         map[uuid.UUID]database.User{},
		dailySales:    map[int64]database.DailySale{},
		consolidated:  map[int64]database.ConsolidatedDailySale{},
		cashBoxes:     map[int64]database.BranchCashBox{},
		cashTxs:       map[int64]database.CashBoxTransaction{},
		transfers:     map[int64]database.CashTransferToHQ{},
		targets:       map[int64]database.MonthlyTarget{},
		activity:      map[int64]database.ActivityLog{},
		notifications: map[int64]database.Notification{},
	}
}

// clone copies every map. Row values are copied by value; byte slices and
// numerics are never mutated in place so sharing them is safe.
func (t *tables) clone() *tables {
	return &tables{
		seq:           t.seq,
		branches:      maps.Clone(t.branches),
		users:         maps.Clone(t.users),
		dailySales:    maps.Clone(t.dailySales),
		consolidated:  maps.Clone(t.consolidated),
		cashBoxes:     maps.Clone(t.cashBoxes),
		cashTxs:       maps.Clone(t.cashTxs),
		transfers:     maps.Clone(t.transfers),
		targets:       maps.Clone(t.targets),
		activity:      maps.Clone(t.activity),
		notifications: maps.Clone(t.notifications),
	}
}

func (t *tables) nextID() int64 {
	t.seq++
	return t.seq
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func matchInt8(f pgtype.Int8, v int64) bool {
	return !f.Valid || f.Int64 == v
}

func matchText(f pgtype.Text, v string) bool {
	return !f.Valid || f.String == v
}

func inRange(d pgtype.Date, start, end pgtype.Date) bool {
	if start.Valid && d.Time.Before(start.Time) {
		return false
	}
	if end.Valid && d.Time.After(end.Time) {
		return false
	}
	return true
}

func sameDate(a, b pgtype.Date) bool {
	return a.Valid && b.Valid && a.Time.Equal(b.Time)
}

// page applies OFFSET then LIMIT; a zero limit returns the remainder.
func page[T any](items []T, limit, offset int32) []T {
	if offset > 0 {
		if int(offset) >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && int(limit) < len(items) {
		items = items[:limit]
	}
	return items
}

func now() time.Time { return time.Now().UTC() }

func tsNow() pgtype.Timestamptz { return database.Timestamptz(now()) }

// ── Branches ──

func (t *tables) CreateBranch(_ context.Context, arg database.CreateBranchParams) (database.Branch, error) {
	for _, b := range t.branches {
		if strings.EqualFold(b.Name, arg.Name) {
			return database.Branch{}, uniqueViolation("branches_name_key")
		}
	}
	b := database.Branch{
		ID:        t.nextID(),
		Name:      arg.Name,
		Address:   arg.Address,
		Phone:     arg.Phone,
		IsActive:  true,
		CreatedAt: now(),
	}
	t.branches[b.ID] = b
	return b, nil
}

func (t *tables) GetBranch(_ context.Context, id int64) (database.Branch, error) {
	b, ok := t.branches[id]
	if !ok {
		return database.Branch{}, database.ErrNotFound
	}
	return b, nil
}

func (t *tables) ListBranches(_ context.Context) ([]database.Branch, error) {
	items := slices.Collect(maps.Values(t.branches))
	slices.SortFunc(items, func(a, b database.Branch) int { return cmp.Compare(a.ID, b.ID) })
	return items, nil
}

// ── Users ──

func (t *tables) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	for _, u := range t.users {
		if strings.EqualFold(u.Email, arg.Email) {
			return database.User{}, uniqueViolation("users_email_key")
		}
	}
	u := database.User{
		ID:             uuid.New(),
		BranchID:       arg.BranchID,
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		FullName:       arg.FullName,
		Role:           arg.Role,
		IsActive:       true,
		CreatedAt:      now(),
	}
	t.users[u.ID] = u
	return u, nil
}

func (t *tables) GetUserByEmail(_ context.Context, email string) (database.User, error) {
	for _, u := range t.users {
		if u.IsActive && u.Email == email {
			return u, nil
		}
	}
	return database.User{}, database.ErrNotFound
}

func (t *tables) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	u, ok := t.users[id]
	if !ok {
		return database.User{}, database.ErrNotFound
	}
	return u, nil
}

func (t *tables) ListUsers(_ context.Context, branchID pgtype.Int8) ([]database.User, error) {
	items := []database.User{}
	for _, u := range t.users {
		if branchID.Valid && (!u.BranchID.Valid || u.BranchID.Int64 != branchID.Int64) {
			continue
		}
		items = append(items, u)
	}
	slices.SortFunc(items, func(a, b database.User) int { return strings.Compare(a.FullName, b.FullName) })
	return items, nil
}

// ── Daily sales ──

func (t *tables) CreateDailySales(_ context.Context, arg database.CreateDailySalesParams) (database.DailySale, error) {
	d := database.DailySale{
		ID:                   t.nextID(),
		BranchID:             arg.BranchID,
		CashierID:            arg.CashierID,
		SalesDate:            arg.SalesDate,
		ShiftType:            arg.ShiftType,
		ShiftStart:           arg.ShiftStart,
		ShiftEnd:             arg.ShiftEnd,
		StartingCash:         arg.StartingCash,
		TotalCashSales:       arg.TotalCashSales,
		TotalNetworkSales:    arg.TotalNetworkSales,
		TotalSales:           arg.TotalSales,
		TotalTransactions:    arg.TotalTransactions,
		AverageTicket:        arg.AverageTicket,
		ActualCashInRegister: arg.ActualCashInRegister,
		Discrepancy:          arg.Discrepancy,
		Status:               enum.DailySalesStatusPending,
		Notes:                arg.Notes,
		CreatedAt:            now(),
	}
	t.dailySales[d.ID] = d
	return d, nil
}

func (t *tables) GetDailySales(_ context.Context, id int64) (database.DailySale, error) {
	d, ok := t.dailySales[id]
	if !ok {
		return database.DailySale{}, database.ErrNotFound
	}
	return d, nil
}

func (t *tables) GetDailySalesForUpdate(ctx context.Context, id int64) (database.DailySale, error) {
	return t.GetDailySales(ctx, id)
}

func sortDailySalesDesc(items []database.DailySale) {
	slices.SortFunc(items, func(a, b database.DailySale) int {
		if c := b.SalesDate.Time.Compare(a.SalesDate.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

func (t *tables) ListDailySales(_ context.Context, arg database.ListDailySalesParams) ([]database.DailySale, error) {
	items := []database.DailySale{}
	for _, d := range t.dailySales {
		if !matchInt8(arg.BranchID, d.BranchID) || !matchText(arg.Status, d.Status) {
			continue
		}
		if arg.CashierID.Valid && uuid.UUID(arg.CashierID.Bytes) != d.CashierID {
			continue
		}
		if !inRange(d.SalesDate, arg.StartDate, arg.EndDate) {
			continue
		}
		items = append(items, d)
	}
	sortDailySalesDesc(items)
	return page(items, arg.Limit, arg.Offset), nil
}

func (t *tables) ListConsolidationCandidates(_ context.Context, arg database.ListConsolidationCandidatesParams) ([]database.DailySale, error) {
	items := []database.DailySale{}
	for _, d := range t.dailySales {
		if d.BranchID != arg.BranchID || !sameDate(d.SalesDate, arg.SalesDate) {
			continue
		}
		if d.Status != enum.DailySalesStatusApproved && d.Status != enum.DailySalesStatusTransferred {
			continue
		}
		items = append(items, d)
	}
	slices.SortFunc(items, func(a, b database.DailySale) int { return cmp.Compare(a.ID, b.ID) })
	return items, nil
}

func (t *tables) ListDailySalesByConsolidated(_ context.Context, consolidatedID int64) ([]database.DailySale, error) {
	items := []database.DailySale{}
	for _, d := range t.dailySales {
		if d.ConsolidatedID.Valid && d.ConsolidatedID.Int64 == consolidatedID {
			items = append(items, d)
		}
	}
	slices.SortFunc(items, func(a, b database.DailySale) int { return cmp.Compare(a.ID, b.ID) })
	return items, nil
}

func (t *tables) ReviewDailySales(_ context.Context, arg database.ReviewDailySalesParams) (database.DailySale, error) {
	d, ok := t.dailySales[arg.ID]
	if !ok {
		return database.DailySale{}, database.ErrNotFound
	}
	d.Status = arg.Status
	d.ReviewedBy = database.UUID(arg.ReviewedBy)
	d.ReviewedAt = tsNow()
	d.RejectionReason = arg.RejectionReason
	t.dailySales[d.ID] = d
	return d, nil
}

func (t *tables) SetDailySalesStatus(_ context.Context, arg database.SetDailySalesStatusParams) (database.DailySale, error) {
	d, ok := t.dailySales[arg.ID]
	if !ok {
		return database.DailySale{}, database.ErrNotFound
	}
	d.Status = arg.Status
	t.dailySales[d.ID] = d
	return d, nil
}

func (t *tables) MarkDailySalesConsolidated(_ context.Context, arg database.MarkDailySalesConsolidatedParams) error {
	for _, id := range arg.IDs {
		d, ok := t.dailySales[id]
		if !ok {
			continue
		}
		d.Status = enum.DailySalesStatusTransferred
		d.ConsolidatedID = database.Int8(arg.ConsolidatedID)
		t.dailySales[id] = d
	}
	return nil
}

// ── Consolidated daily sales ──

// AcquireConsolidationLock is a no-op: units of work are already serialized.
func (t *tables) AcquireConsolidationLock(_ context.Context, _ int64) error {
	return nil
}

func (t *tables) GetConsolidatedByBranchDate(_ context.Context, arg database.GetConsolidatedByBranchDateParams) (database.ConsolidatedDailySale, error) {
	for _, c := range t.consolidated {
		if c.BranchID == arg.BranchID && sameDate(c.SalesDate, arg.SalesDate) {
			return c, nil
		}
	}
	return database.ConsolidatedDailySale{}, database.ErrNotFound
}

func (t *tables) GetConsolidated(_ context.Context, id int64) (database.ConsolidatedDailySale, error) {
	c, ok := t.consolidated[id]
	if !ok {
		return database.ConsolidatedDailySale{}, database.ErrNotFound
	}
	return c, nil
}

func (t *tables) GetConsolidatedForUpdate(ctx context.Context, id int64) (database.ConsolidatedDailySale, error) {
	return t.GetConsolidated(ctx, id)
}

func applyTotals(c *database.ConsolidatedDailySale, totals database.ConsolidatedTotals) {
	c.TotalCashSales = totals.TotalCashSales
	c.TotalNetworkSales = totals.TotalNetworkSales
	c.TotalSales = totals.TotalSales
	c.TotalTransactions = totals.TotalTransactions
	c.AverageTicket = totals.AverageTicket
	c.TotalDiscrepancy = totals.TotalDiscrepancy
	c.ShiftCount = totals.ShiftCount
}

func (t *tables) CreateConsolidated(ctx context.Context, arg database.CreateConsolidatedParams) (database.ConsolidatedDailySale, error) {
	if _, err := t.GetConsolidatedByBranchDate(ctx, database.GetConsolidatedByBranchDateParams{
		BranchID: arg.BranchID, SalesDate: arg.SalesDate,
	}); err == nil {
		return database.ConsolidatedDailySale{}, uniqueViolation("consolidated_daily_sales_branch_id_sales_date_key")
	}
	ts := now()
	c := database.ConsolidatedDailySale{
		ID:        t.nextID(),
		BranchID:  arg.BranchID,
		SalesDate: arg.SalesDate,
		Status:    enum.ConsolidatedStatusOpen,
		CreatedBy: arg.CreatedBy,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	applyTotals(&c, arg.ConsolidatedTotals)
	t.consolidated[c.ID] = c
	return c, nil
}

func (t *tables) UpdateConsolidatedTotals(_ context.Context, arg database.UpdateConsolidatedTotalsParams) (database.ConsolidatedDailySale, error) {
	c, ok := t.consolidated[arg.ID]
	if !ok {
		return database.ConsolidatedDailySale{}, database.ErrNotFound
	}
	applyTotals(&c, arg.ConsolidatedTotals)
	c.UpdatedAt = now()
	t.consolidated[c.ID] = c
	return c, nil
}

func (t *tables) CloseConsolidated(_ context.Context, arg database.CloseConsolidatedParams) (database.ConsolidatedDailySale, error) {
	c, ok := t.consolidated[arg.ID]
	if !ok {
		return database.ConsolidatedDailySale{}, database.ErrNotFound
	}
	c.Status = enum.ConsolidatedStatusClosed
	c.ClosedBy = database.UUID(arg.ClosedBy)
	c.ClosedAt = tsNow()
	c.UpdatedAt = now()
	t.consolidated[c.ID] = c
	return c, nil
}

func (t *tables) TransferConsolidated(_ context.Context, arg database.TransferConsolidatedParams) (database.ConsolidatedDailySale, error) {
	c, ok := t.consolidated[arg.ID]
	if !ok {
		return database.ConsolidatedDailySale{}, database.ErrNotFound
	}
	c.Status = enum.ConsolidatedStatusTransferred
	c.TransferredBy = database.UUID(arg.TransferredBy)
	c.TransferredAt = tsNow()
	c.UpdatedAt = now()
	t.consolidated[c.ID] = c
	return c, nil
}

func (t *tables) ListConsolidated(_ context.Context, arg database.ListConsolidatedParams) ([]database.ConsolidatedDailySale, error) {
	items := []database.ConsolidatedDailySale{}
	for _, c := range t.consolidated {
		if !matchInt8(arg.BranchID, c.BranchID) || !matchText(arg.Status, c.Status) {
			continue
		}
		if !inRange(c.SalesDate, arg.StartDate, arg.EndDate) {
			continue
		}
		items = append(items, c)
	}
	slices.SortFunc(items, func(a, b database.ConsolidatedDailySale) int {
		if c := b.SalesDate.Time.Compare(a.SalesDate.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.BranchID, b.BranchID)
	})
	return page(items, arg.Limit, arg.Offset), nil
}

// ── Cash box ledger ──

func (t *tables) CreateCashBox(ctx context.Context, arg database.CreateCashBoxParams) (database.BranchCashBox, error) {
	if _, err := t.GetCashBoxByBranch(ctx, arg.BranchID); err == nil {
		return database.BranchCashBox{}, uniqueViolation("branch_cash_boxes_branch_id_key")
	}
	ts := now()
	b := database.BranchCashBox{
		ID:             t.nextID(),
		BranchID:       arg.BranchID,
		CurrentBalance: database.Numeric(decimal.Zero),
		Notes:          arg.Notes,
		LastUpdated:    ts,
		CreatedAt:      ts,
	}
	t.cashBoxes[b.ID] = b
	return b, nil
}

func (t *tables) CreateCashBoxIfMissing(ctx context.Context, arg database.CreateCashBoxParams) (bool, error) {
	if _, err := t.GetCashBoxByBranch(ctx, arg.BranchID); err == nil {
		return false, nil
	}
	_, err := t.CreateCashBox(ctx, arg)
	return err == nil, err
}

func (t *tables) GetCashBoxByBranch(_ context.Context, branchID int64) (database.BranchCashBox, error) {
	for _, b := range t.cashBoxes {
		if b.BranchID == branchID {
			return b, nil
		}
	}
	return database.BranchCashBox{}, database.ErrNotFound
}

func (t *tables) GetCashBoxByBranchForUpdate(ctx context.Context, branchID int64) (database.BranchCashBox, error) {
	return t.GetCashBoxByBranch(ctx, branchID)
}

func (t *tables) ListCashBoxes(_ context.Context) ([]database.BranchCashBox, error) {
	items := slices.Collect(maps.Values(t.cashBoxes))
	slices.SortFunc(items, func(a, b database.BranchCashBox) int { return cmp.Compare(a.BranchID, b.BranchID) })
	return items, nil
}

func (t *tables) AdjustCashBoxBalance(_ context.Context, arg database.AdjustCashBoxBalanceParams) (database.BranchCashBox, error) {
	b, ok := t.cashBoxes[arg.ID]
	if !ok {
		return database.BranchCashBox{}, database.ErrNotFound
	}
	balance := database.Decimal(b.CurrentBalance).Add(database.Decimal(arg.Delta))
	b.CurrentBalance = database.Numeric(balance)
	b.LastUpdated = now()
	t.cashBoxes[b.ID] = b
	return b, nil
}

func (t *tables) CreateCashBoxTransaction(ctx context.Context, arg database.CreateCashBoxTransactionParams) (database.CashBoxTransaction, error) {
	if arg.Source == enum.CashTxSourceDailySales {
		if _, err := t.GetCashBoxTransactionByReference(ctx, database.GetCashBoxTransactionByReferenceParams{
			Source: arg.Source, ReferenceNumber: arg.ReferenceNumber,
		}); err == nil {
			return database.CashBoxTransaction{}, uniqueViolation("idx_cash_box_tx_daily_sales_ref")
		}
	}
	tx := database.CashBoxTransaction{
		ID:              t.nextID(),
		BranchID:        arg.BranchID,
		CashBoxID:       arg.CashBoxID,
		Amount:          arg.Amount,
		Type:            arg.Type,
		Source:          arg.Source,
		TransactionDate: arg.TransactionDate,
		ReferenceNumber: arg.ReferenceNumber,
		Notes:           arg.Notes,
		Status:          arg.Status,
		CreatedBy:       arg.CreatedBy,
		CreatedAt:       now(),
	}
	t.cashTxs[tx.ID] = tx
	return tx, nil
}

func (t *tables) GetCashBoxTransactionByReference(_ context.Context, arg database.GetCashBoxTransactionByReferenceParams) (database.CashBoxTransaction, error) {
	var found *database.CashBoxTransaction
	for _, tx := range t.cashTxs {
		if tx.Source != arg.Source || tx.ReferenceNumber != arg.ReferenceNumber {
			continue
		}
		if found == nil || tx.ID < found.ID {
			found = &tx
		}
	}
	if found == nil {
		return database.CashBoxTransaction{}, database.ErrNotFound
	}
	return *found, nil
}

func (t *tables) ListCashBoxTransactions(_ context.Context, arg database.ListCashBoxTransactionsParams) ([]database.CashBoxTransaction, error) {
	items := []database.CashBoxTransaction{}
	for _, tx := range t.cashTxs {
		if !matchInt8(arg.BranchID, tx.BranchID) || !matchText(arg.Type, tx.Type) || !matchText(arg.Source, tx.Source) {
			continue
		}
		if !inRange(tx.TransactionDate, arg.StartDate, arg.EndDate) {
			continue
		}
		items = append(items, tx)
	}
	slices.SortFunc(items, func(a, b database.CashBoxTransaction) int { return cmp.Compare(b.ID, a.ID) })
	return page(items, arg.Limit, arg.Offset), nil
}

// ── HQ transfers ──

func (t *tables) CreateTransfer(_ context.Context, arg database.CreateTransferParams) (database.CashTransferToHQ, error) {
	tr := database.CashTransferToHQ{
		ID:              t.nextID(),
		BranchID:        arg.BranchID,
		CashBoxID:       arg.CashBoxID,
		Amount:          arg.Amount,
		TransferMethod:  arg.TransferMethod,
		TransferDate:    arg.TransferDate,
		ReferenceNumber: arg.ReferenceNumber,
		Notes:           arg.Notes,
		Status:          enum.TransferStatusPending,
		CreatedBy:       arg.CreatedBy,
		CreatedAt:       now(),
	}
	t.transfers[tr.ID] = tr
	return tr, nil
}

func (t *tables) SetTransferTransaction(_ context.Context, arg database.SetTransferTransactionParams) (database.CashTransferToHQ, error) {
	tr, ok := t.transfers[arg.ID]
	if !ok {
		return database.CashTransferToHQ{}, database.ErrNotFound
	}
	tr.TransactionID = database.Int8(arg.TransactionID)
	t.transfers[tr.ID] = tr
	return tr, nil
}

func (t *tables) GetTransfer(_ context.Context, id int64) (database.CashTransferToHQ, error) {
	tr, ok := t.transfers[id]
	if !ok {
		return database.CashTransferToHQ{}, database.ErrNotFound
	}
	return tr, nil
}

func (t *tables) GetTransferForUpdate(ctx context.Context, id int64) (database.CashTransferToHQ, error) {
	return t.GetTransfer(ctx, id)
}

// ApproveTransfer and RejectTransfer mirror the SQL "AND status = 'pending'"
// guard: a non-pending row yields ErrNotFound.
func (t *tables) ApproveTransfer(_ context.Context, arg database.ApproveTransferParams) (database.CashTransferToHQ, error) {
	tr, ok := t.transfers[arg.ID]
	if !ok || tr.Status != enum.TransferStatusPending {
		return database.CashTransferToHQ{}, database.ErrNotFound
	}
	tr.Status = enum.TransferStatusApproved
	tr.ApprovedBy = database.UUID(arg.ApprovedBy)
	tr.ApprovedAt = tsNow()
	t.transfers[tr.ID] = tr
	return tr, nil
}

func (t *tables) RejectTransfer(_ context.Context, arg database.RejectTransferParams) (database.CashTransferToHQ, error) {
	tr, ok := t.transfers[arg.ID]
	if !ok || tr.Status != enum.TransferStatusPending {
		return database.CashTransferToHQ{}, database.ErrNotFound
	}
	tr.Status = enum.TransferStatusRejected
	tr.RejectedBy = database.UUID(arg.RejectedBy)
	tr.RejectedAt = tsNow()
	tr.RejectionReason = arg.RejectionReason
	tr.ReversalTransactionID = database.Int8(arg.ReversalTransactionID)
	t.transfers[tr.ID] = tr
	return tr, nil
}

func (t *tables) ListTransfers(_ context.Context, arg database.ListTransfersParams) ([]database.CashTransferToHQ, error) {
	items := []database.CashTransferToHQ{}
	for _, tr := range t.transfers {
		if matchInt8(arg.BranchID, tr.BranchID) && matchText(arg.Status, tr.Status) {
			items = append(items, tr)
		}
	}
	slices.SortFunc(items, func(a, b database.CashTransferToHQ) int { return cmp.Compare(b.ID, a.ID) })
	return page(items, arg.Limit, arg.Offset), nil
}

// ── Targets ──

func (t *tables) UpsertMonthlyTarget(_ context.Context, arg database.UpsertMonthlyTargetParams) (database.MonthlyTarget, error) {
	for id, mt := range t.targets {
		if mt.BranchID == arg.BranchID && mt.Month == arg.Month && mt.Year == arg.Year {
			mt.TargetAmount = arg.TargetAmount
			mt.WeekdayWeights = arg.WeekdayWeights
			mt.DailyTargets = arg.DailyTargets
			mt.UpdatedAt = now()
			t.targets[id] = mt
			return mt, nil
		}
	}
	ts := now()
	mt := database.MonthlyTarget{
		ID:             t.nextID(),
		BranchID:       arg.BranchID,
		Month:          arg.Month,
		Year:           arg.Year,
		TargetAmount:   arg.TargetAmount,
		WeekdayWeights: arg.WeekdayWeights,
		DailyTargets:   arg.DailyTargets,
		CreatedBy:      arg.CreatedBy,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	t.targets[mt.ID] = mt
	return mt, nil
}

func (t *tables) GetMonthlyTarget(_ context.Context, arg database.GetMonthlyTargetParams) (database.MonthlyTarget, error) {
	for _, mt := range t.targets {
		if mt.BranchID == arg.BranchID && mt.Month == arg.Month && mt.Year == arg.Year {
			return mt, nil
		}
	}
	return database.MonthlyTarget{}, database.ErrNotFound
}

func (t *tables) ListMonthlyTargets(_ context.Context, arg database.ListMonthlyTargetsParams) ([]database.MonthlyTarget, error) {
	items := []database.MonthlyTarget{}
	for _, mt := range t.targets {
		if mt.Month == arg.Month && mt.Year == arg.Year && matchInt8(arg.BranchID, mt.BranchID) {
			items = append(items, mt)
		}
	}
	slices.SortFunc(items, func(a, b database.MonthlyTarget) int { return cmp.Compare(a.BranchID, b.BranchID) })
	return items, nil
}

// ── Activity and notifications ──

func (t *tables) CreateActivityLog(_ context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error) {
	details := arg.Details
	if len(details) == 0 {
		details = []byte("{}")
	}
	a := database.ActivityLog{
		ID:         t.nextID(),
		BranchID:   arg.BranchID,
		UserID:     arg.UserID,
		Action:     arg.Action,
		EntityType: arg.EntityType,
		EntityID:   arg.EntityID,
		Amount:     arg.Amount,
		Details:    details,
		CreatedAt:  now(),
	}
	t.activity[a.ID] = a
	return a, nil
}

func (t *tables) ListActivityLogs(_ context.Context, arg database.ListActivityLogsParams) ([]database.ActivityLog, error) {
	items := []database.ActivityLog{}
	for _, a := range t.activity {
		if !arg.BranchID.Valid || (a.BranchID.Valid && a.BranchID.Int64 == arg.BranchID.Int64) {
			items = append(items, a)
		}
	}
	slices.SortFunc(items, func(a, b database.ActivityLog) int { return cmp.Compare(b.ID, a.ID) })
	return page(items, arg.Limit, 0), nil
}

func (t *tables) CreateNotification(_ context.Context, arg database.CreateNotificationParams) (database.Notification, error) {
	n := database.Notification{
		ID:         t.nextID(),
		BranchID:   arg.BranchID,
		Type:       arg.Type,
		Title:      arg.Title,
		Message:    arg.Message,
		EntityType: arg.EntityType,
		EntityID:   arg.EntityID,
		CreatedAt:  now(),
	}
	t.notifications[n.ID] = n
	return n, nil
}

func (t *tables) ListNotifications(_ context.Context, arg database.ListNotificationsParams) ([]database.Notification, error) {
	items := []database.Notification{}
	for _, n := range t.notifications {
		if arg.BranchID.Valid && n.BranchID.Valid && n.BranchID.Int64 != arg.BranchID.Int64 {
			continue
		}
		if arg.UnreadOnly && n.IsRead {
			continue
		}
		items = append(items, n)
	}
	slices.SortFunc(items, func(a, b database.Notification) int { return cmp.Compare(b.ID, a.ID) })
	return page(items, arg.Limit, 0), nil
}

func (t *tables) MarkNotificationRead(_ context.Context, id int64) (database.Notification, error) {
	n, ok := t.notifications[id]
	if !ok {
		return database.Notification{}, database.ErrNotFound
	}
	n.IsRead = true
	t.notifications[id] = n
	return n, nil
}
