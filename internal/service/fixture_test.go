package service_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/logger"
	"github.com/rotiroti/backoffice/internal/memstore"
	"github.com/rotiroti/backoffice/internal/service"
	"github.com/rotiroti/backoffice/internal/ws"
)

type sentEvent struct {
	branchID int64 // 0 for HQ-only
	event    ws.Event
}

// recorder is a Notifier that keeps every broadcast.
type recorder struct {
	mu     sync.Mutex
	events []sentEvent
}

func (r *recorder) BroadcastToBranch(branchID int64, e ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{branchID: branchID, event: e})
}

func (r *recorder) BroadcastToHQ(e ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{event: e})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.event.Type
	}
	return out
}

type fixture struct {
	ctx      context.Context
	store    *memstore.Store
	notifier *recorder

	main, north int64
	admin       uuid.UUID
	manager     uuid.UUID
	supervisor  uuid.UUID
	cashier     uuid.UUID

	sales         *service.DailySalesService
	consolidation *service.ConsolidationService
	cashBox       *service.CashBoxService
	transfers     *service.TransferService
	targets       *service.TargetService
	performance   *service.PerformanceService
	dashboard     *service.DashboardService
	feed          *service.FeedService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	demo, err := store.SeedDemo(ctx, "secret")
	require.NoError(t, err)

	log := logger.Discard()
	rec := &recorder{}
	return &fixture{
		ctx:           ctx,
		store:         store,
		notifier:      rec,
		main:          demo.Branches[0].ID,
		north:         demo.Branches[1].ID,
		admin:         demo.Users[0].ID,
		manager:       demo.Users[1].ID,
		supervisor:    demo.Users[2].ID,
		cashier:       demo.Users[3].ID,
		sales:         service.NewDailySalesService(store, rec, log),
		consolidation: service.NewConsolidationService(store, rec, log),
		cashBox:       service.NewCashBoxService(store, rec, log),
		transfers:     service.NewTransferService(store, rec, log),
		targets:       service.NewTargetService(store, rec, log),
		performance:   service.NewPerformanceService(store, log),
		dashboard:     service.NewDashboardService(store, log),
		feed:          service.NewFeedService(store, log),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func requireNumeric(t *testing.T, want string, got pgtype.Numeric) {
	t.Helper()
	requireDecimal(t, want, database.Decimal(got))
}

type shift struct {
	branch       int64
	cashier      uuid.UUID
	date         string
	cash         string
	network      string
	transactions int32
	actual       string
}

// submit creates a shift record for the main branch cashier unless overridden.
func (f *fixture) submit(t *testing.T, s shift) database.DailySale {
	t.Helper()
	if s.branch == 0 {
		s.branch = f.main
	}
	if s.cashier == uuid.Nil {
		s.cashier = f.cashier
	}
	in := service.CreateDailySalesInput{
		BranchID:          s.branch,
		CashierID:         s.cashier,
		SalesDate:         day(s.date),
		ShiftType:         "morning",
		StartingCash:      dec("100"),
		TotalCashSales:    dec(s.cash),
		TotalNetworkSales: dec(s.network),
		TotalTransactions: s.transactions,
		CreatedBy:         s.cashier,
	}
	if s.actual != "" {
		a := dec(s.actual)
		in.ActualCashInRegister = &a
	}
	sale, err := f.sales.Create(f.ctx, in)
	require.NoError(t, err)
	return sale
}

// approved submits and approves a shift.
func (f *fixture) approved(t *testing.T, s shift) database.DailySale {
	t.Helper()
	sale := f.submit(t, s)
	sale, err := f.sales.Approve(f.ctx, sale.ID, f.supervisor, service.AllBranches())
	require.NoError(t, err)
	return sale
}

func (f *fixture) openCashBox(t *testing.T, branchID int64, balance string) {
	t.Helper()
	_, err := f.cashBox.CreateCashBox(f.ctx, branchID, "", f.manager)
	require.NoError(t, err)
	if amount := dec(balance); amount.IsPositive() {
		_, err = f.cashBox.RecordTransaction(f.ctx, service.RecordTransactionInput{
			BranchID:  branchID,
			Amount:    amount,
			Type:      "deposit",
			Date:      day("2025-06-01"),
			CreatedBy: f.manager,
		})
		require.NoError(t, err)
	}
}

func (f *fixture) balance(t *testing.T, branchID int64) decimal.Decimal {
	t.Helper()
	box, err := f.cashBox.GetCashBox(f.ctx, branchID)
	require.NoError(t, err)
	return database.Decimal(box.CurrentBalance)
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
