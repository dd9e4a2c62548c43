package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotiroti/backoffice/internal/service"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	_, err := f.targets.Upsert(f.ctx, service.UpsertTargetInput{BranchID: f.main, Month: 6, Year: 2025, TargetAmount: dec("1000")})
	require.NoError(t, err)

	f.approved(t, shift{date: "2025-06-10", cash: "300", network: "200", transactions: 20})
	f.submit(t, shift{date: "2025-06-10", cash: "100", network: "0", transactions: 5})
	f.approved(t, shift{date: "2025-06-09", cash: "250", network: "0", transactions: 5})
	_, err = f.consolidation.Consolidate(f.ctx, f.main, day("2025-06-10"), f.supervisor)
	require.NoError(t, err)
	f.openCashBox(t, f.main, "800")
	f.requestTransfer(t, "300")
	f.openCashBox(t, f.north, "50")

	stats, err := f.dashboard.Stats(f.ctx, service.Branch(f.main), day("2025-06-10"))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", stats.Date)
	assert.Equal(t, 2, stats.Today.Shifts)
	requireDecimal(t, "600", stats.Today.TotalSales)
	assert.EqualValues(t, 25, stats.Today.Transactions)
	assert.Equal(t, 1, stats.PendingDailySales)
	assert.Equal(t, 1, stats.OpenConsolidations)
	requireDecimal(t, "500", stats.CashBoxBalance)
	assert.Equal(t, 1, stats.PendingTransfers.Count)
	requireDecimal(t, "300", stats.PendingTransfers.Amount)
	requireDecimal(t, "850", stats.MonthTarget.Achieved)
	requireDecimal(t, "85", stats.MonthTarget.Percentage)
	assert.Equal(t, service.TierVeryGood, stats.MonthTarget.Status)

	all, err := f.dashboard.Stats(f.ctx, service.AllBranches(), day("2025-06-10"))
	require.NoError(t, err)
	requireDecimal(t, "550", all.CashBoxBalance)
	assert.True(t, all.MonthTarget.Aggregate)
}

func TestSalesAnalytics(t *testing.T) {
	f := newFixture(t)
	f.approved(t, shift{date: "2025-06-01", cash: "300", network: "100", transactions: 8})
	f.approved(t, shift{date: "2025-06-03", cash: "200", network: "400", transactions: 12})
	rejected := f.submit(t, shift{date: "2025-06-03", cash: "999", network: "0"})
	_, err := f.sales.Reject(f.ctx, rejected.ID, f.supervisor, "test", service.AllBranches())
	require.NoError(t, err)

	res, err := f.dashboard.SalesAnalytics(f.ctx, service.Branch(f.main), day("2025-06-01"), day("2025-06-04"))
	require.NoError(t, err)

	require.Len(t, res.Series, 4)
	assert.Equal(t, "2025-06-02", res.Series[1].Date)
	assert.True(t, res.Series[1].TotalSales.IsZero())
	requireDecimal(t, "1000", res.Totals.TotalSales)
	requireDecimal(t, "50", res.CashShare)
	requireDecimal(t, "50", res.NetworkShare)
	requireDecimal(t, "250", res.AverageDaily)
	require.NotNil(t, res.BestDay)
	assert.Equal(t, "2025-06-03", res.BestDay.Date)

	_, err = f.dashboard.SalesAnalytics(f.ctx, service.AllBranches(), day("2025-06-04"), day("2025-06-01"))
	require.ErrorIs(t, err, service.ErrValidation)
	_, err = f.dashboard.SalesAnalytics(f.ctx, service.AllBranches(), day("2024-01-01"), day("2025-06-01"))
	require.ErrorIs(t, err, service.ErrValidation)
}
