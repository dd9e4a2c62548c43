package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotiroti/backoffice/internal/service"
)

func TestPerformanceScore(t *testing.T) {
	tests := []struct {
		sales, discrepancy string
		want               int
	}{
		{"0", "0", 100},
		{"0", "-25", 100},
		{"1000", "-60", 70},
		{"1000", "50", 85},
		{"1000", "30", 85},
		{"1000", "-20", 95},
		{"1000", "0", 95},
	}
	for _, tt := range tests {
		got := service.PerformanceScore(dec(tt.sales), dec(tt.discrepancy))
		assert.Equal(t, tt.want, got, "sales %s discrepancy %s", tt.sales, tt.discrepancy)
	}
}

func TestDailyCashierPerformance(t *testing.T) {
	f := newFixture(t)
	f.approved(t, shift{cashier: f.cashier, date: "2025-06-03", cash: "400", network: "100", transactions: 10, actual: "390"})
	f.submit(t, shift{cashier: f.cashier, date: "2025-06-03", cash: "500", network: "0", transactions: 10, actual: "480"})
	f.approved(t, shift{cashier: f.supervisor, date: "2025-06-03", cash: "100", network: "0", transactions: 2, actual: "80"})
	f.approved(t, shift{cashier: f.cashier, date: "2025-06-04", cash: "1", network: "0", transactions: 1})

	rows, err := f.performance.Daily(f.ctx, service.Branch(f.main), day("2025-06-03"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	best := rows[0]
	assert.Equal(t, f.cashier, best.CashierID)
	assert.Equal(t, "Front Cashier", best.CashierName)
	assert.Equal(t, 2, best.Shifts)
	assert.EqualValues(t, 20, best.TotalTransactions)
	requireDecimal(t, "1000", best.TotalSales)
	requireDecimal(t, "-30", best.TotalDiscrepancy)
	requireDecimal(t, "50", best.AverageTicket)
	assert.Equal(t, 85, best.Score)

	worst := rows[1]
	assert.Equal(t, f.supervisor, worst.CashierID)
	assert.Equal(t, 70, worst.Score)

	_, err = f.performance.Daily(f.ctx, service.Scope{}, day("2025-06-03"))
	require.ErrorIs(t, err, service.ErrValidation)
}
