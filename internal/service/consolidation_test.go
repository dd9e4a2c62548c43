package service_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotiroti/backoffice/internal/enum"
	"github.com/rotiroti/backoffice/internal/service"
)

func TestConsolidateAggregatesApprovedShifts(t *testing.T) {
	f := newFixture(t)
	a := f.approved(t, shift{date: "2025-06-10", cash: "300", network: "200", transactions: 20, actual: "290"})
	b := f.approved(t, shift{date: "2025-06-10", cash: "150", network: "50", transactions: 10, actual: "155"})
	f.submit(t, shift{date: "2025-06-10", cash: "999", network: "0", transactions: 1})
	f.approved(t, shift{date: "2025-06-11", cash: "70", network: "0", transactions: 1})
	f.approved(t, shift{branch: f.north, cashier: f.admin, date: "2025-06-10", cash: "40", network: "0", transactions: 1})

	res, err := f.consolidation.Consolidate(f.ctx, f.main, day("2025-06-10"), f.supervisor)
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, enum.ConsolidatedStatusOpen, res.Status)
	assert.EqualValues(t, 2, res.ShiftCount)
	assert.EqualValues(t, 30, res.TotalTransactions)
	requireNumeric(t, "450", res.TotalCashSales)
	requireNumeric(t, "250", res.TotalNetworkSales)
	requireNumeric(t, "700", res.TotalSales)
	requireNumeric(t, "23.33", res.AverageTicket)
	requireNumeric(t, "-5", res.TotalDiscrepancy)

	require.Len(t, res.DailySales, 2)
	for _, row := range res.DailySales {
		assert.Contains(t, []int64{a.ID, b.ID}, row.ID)
		assert.Equal(t, enum.DailySalesStatusTransferred, row.Status)
		assert.Equal(t, res.ID, row.ConsolidatedID.Int64)
	}

	logs, err := f.feed.Activity(f.ctx, service.Branch(f.main), 100)
	require.NoError(t, err)
	assert.Equal(t, service.ActionConsolidated, logs[0].Action)
	requireNumeric(t, "700", logs[0].Amount)
}

func TestConsolidateIsAnUpsert(t *testing.T) {
	f := newFixture(t)
	f.approved(t, shift{date: "2025-06-10", cash: "100", network: "0", transactions: 4})

	first, err := f.consolidation.Consolidate(f.ctx, f.main, day("2025-06-10"), f.supervisor)
	require.NoError(t, err)

	f.approved(t, shift{date: "2025-06-10", cash: "50", network: "25", transactions: 3})
	second, err := f.consolidation.Consolidate(f.ctx, f.main, day("2025-06-10"), f.supervisor)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 2, second.ShiftCount)
	requireNumeric(t, "175", second.TotalSales)

	records, err := f.consolidation.List(f.ctx, service.ConsolidatedFilter{Scope: service.Branch(f.main)})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestConsolidateWithoutApprovedSales(t *testing.T) {
	f := newFixture(t)
	f.submit(t, shift{date: "2025-06-10", cash: "100", network: "0"})
	rejected := f.submit(t, shift{date: "2025-06-10", cash: "80", network: "0"})
	_, err := f.sales.Reject(f.ctx, rejected.ID, f.supervisor, "void", service.AllBranches())
	require.NoError(t, err)

	_, err = f.consolidation.Consolidate(f.ctx, f.main, day("2025-06-10"), f.supervisor)
	require.ErrorIs(t, err, service.ErrNoApprovedSales)
	require.ErrorIs(t, err, service.ErrNotFound)

	records, err := f.consolidation.List(f.ctx, service.ConsolidatedFilter{Scope: service.AllBranches()})
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = f.consolidation.Consolidate(f.ctx, 999, day("2025-06-10"), f.supervisor)
	require.ErrorIs(t, err, service.ErrBranchNotFound)
}

func TestConsolidatedLifecycle(t *testing.T) {
	f := newFixture(t)
	f.approved(t, shift{date: "2025-06-10", cash: "100", network: "0", transactions: 4})
	res, err := f.consolidation.Consolidate(f.ctx, f.main, day("2025-06-10"), f.supervisor)
	require.NoError(t, err)
	scope := service.Branch(f.main)

	_, err = f.consolidation.Transfer(f.ctx, res.ID, f.manager, scope)
	require.ErrorIs(t, err, service.ErrInvalidTransition, "open records cannot be transferred")

	closed, err := f.consolidation.Close(f.ctx, res.ID, f.supervisor, scope)
	require.NoError(t, err)
	assert.Equal(t, enum.ConsolidatedStatusClosed, closed.Status)
	assert.True(t, closed.ClosedAt.Valid)

	again, err := f.consolidation.Close(f.ctx, res.ID, f.supervisor, scope)
	require.NoError(t, err)
	assert.Equal(t, closed.ClosedAt, again.ClosedAt)

	_, err = f.consolidation.Consolidate(f.ctx, f.main, day("2025-06-10"), f.supervisor)
	require.ErrorIs(t, err, service.ErrConsolidationLocked)

	transferred, err := f.consolidation.Transfer(f.ctx, res.ID, f.manager, scope)
	require.NoError(t, err)
	assert.Equal(t, enum.ConsolidatedStatusTransferred, transferred.Status)
	assert.True(t, transferred.TransferredAt.Valid)

	_, err = f.consolidation.Transfer(f.ctx, res.ID, f.manager, scope)
	require.ErrorIs(t, err, service.ErrConflict)
	_, err = f.consolidation.Close(f.ctx, res.ID, f.supervisor, scope)
	require.ErrorIs(t, err, service.ErrConflict)

	assert.Equal(t, []string{
		service.ActionDailySalesCreated,
		service.ActionDailySalesApproved,
		service.ActionConsolidatedClosed,
		service.ActionConsolidatedTransfer,
	}, f.notifier.types())
}

func TestConsolidatedRowsAreTerminal(t *testing.T) {
	f := newFixture(t)
	sale := f.approved(t, shift{date: "2025-06-10", cash: "100", network: "0"})
	_, err := f.consolidation.Consolidate(f.ctx, f.main, day("2025-06-10"), f.supervisor)
	require.NoError(t, err)

	_, err = f.sales.Reject(f.ctx, sale.ID, f.supervisor, "too late", service.AllBranches())
	require.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestConsolidatedScope(t *testing.T) {
	f := newFixture(t)
	f.approved(t, shift{date: "2025-06-10", cash: "100", network: "0"})
	res, err := f.consolidation.Consolidate(f.ctx, f.main, day("2025-06-10"), f.supervisor)
	require.NoError(t, err)

	_, err = f.consolidation.Get(f.ctx, res.ID, service.Branch(f.north))
	require.ErrorIs(t, err, service.ErrConsolidatedNotFound)
	_, err = f.consolidation.Close(f.ctx, res.ID, f.supervisor, service.Branch(f.north))
	require.ErrorIs(t, err, service.ErrConsolidatedNotFound)

	detail, err := f.consolidation.Get(f.ctx, res.ID, service.AllBranches())
	require.NoError(t, err)
	assert.Len(t, detail.DailySales, 1)
}

func TestConcurrentConsolidationCreatesOneRecord(t *testing.T) {
	f := newFixture(t)
	f.approved(t, shift{date: "2025-06-10", cash: "100", network: "0", transactions: 2})
	f.approved(t, shift{date: "2025-06-10", cash: "60", network: "40", transactions: 3})

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[int64]bool{}
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.consolidation.Consolidate(f.ctx, f.main, day("2025-06-10"), f.supervisor)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			ids[res.ID] = true
			if res.Created {
				created++
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 1)
	assert.Equal(t, 1, created)
	records, err := f.consolidation.List(f.ctx, service.ConsolidatedFilter{Scope: service.Branch(f.main)})
	require.NoError(t, err)
	require.Len(t, records, 1)
	requireNumeric(t, "200", records[0].TotalSales)
}
