package service_test

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
	"github.com/rotiroti/backoffice/internal/service"
)

func TestCreateCashBox(t *testing.T) {
	f := newFixture(t)

	box, err := f.cashBox.CreateCashBox(f.ctx, f.main, "front safe", f.manager)
	require.NoError(t, err)
	requireNumeric(t, "0", box.CurrentBalance)
	assert.Equal(t, "front safe", box.Notes)

	_, err = f.cashBox.CreateCashBox(f.ctx, f.main, "", f.manager)
	require.ErrorIs(t, err, service.ErrCashBoxExists)
	_, err = f.cashBox.CreateCashBox(f.ctx, 999, "", f.manager)
	require.ErrorIs(t, err, service.ErrBranchNotFound)

	boxes, err := f.cashBox.ListCashBoxes(f.ctx, service.Branch(f.north))
	require.NoError(t, err)
	assert.Empty(t, boxes)
}

func TestRecordTransactionMovesBalance(t *testing.T) {
	f := newFixture(t)
	f.openCashBox(t, f.main, "1000")

	entry, err := f.cashBox.RecordTransaction(f.ctx, service.RecordTransactionInput{
		BranchID:  f.main,
		Amount:    dec("250.75"),
		Type:      enum.CashTxTypeWithdrawal,
		Notes:     "flour supplier",
		CreatedBy: f.supervisor,
	})
	require.NoError(t, err)
	requireNumeric(t, "749.25", entry.CashBox.CurrentBalance)
	assert.Equal(t, enum.CashTxSourceManual, entry.Transaction.Source)
	assert.Equal(t, enum.CashTxStatusCompleted, entry.Transaction.Status)
	assert.NotEmpty(t, entry.Transaction.ReferenceNumber)
	requireDecimal(t, "749.25", f.balance(t, f.main))
}

func TestRecordTransactionRejections(t *testing.T) {
	f := newFixture(t)
	f.openCashBox(t, f.main, "100")

	tests := []struct {
		name string
		in   service.RecordTransactionInput
		want error
	}{
		{"zero amount", service.RecordTransactionInput{BranchID: f.main, Amount: dec("0"), Type: "deposit"}, service.ErrValidation},
		{"bad type", service.RecordTransactionInput{BranchID: f.main, Amount: dec("1"), Type: "refund"}, service.ErrValidation},
		{"daily sales source", service.RecordTransactionInput{BranchID: f.main, Amount: dec("1"), Type: "deposit", Source: "daily_sales"}, service.ErrValidation},
		{"no cash box", service.RecordTransactionInput{BranchID: f.north, Amount: dec("1"), Type: "deposit"}, service.ErrCashBoxNotFound},
		{"overdraw", service.RecordTransactionInput{BranchID: f.main, Amount: dec("100.01"), Type: "withdrawal"}, service.ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.cashBox.RecordTransaction(f.ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
	requireDecimal(t, "100", f.balance(t, f.main))
}

// The balance always equals the signed sum of the branch ledger.
func TestBalanceMatchesLedger(t *testing.T) {
	f := newFixture(t)
	f.openCashBox(t, f.main, "500")

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			txType := enum.CashTxTypeDeposit
			if i%2 == 1 {
				txType = enum.CashTxTypeWithdrawal
			}
			_, err := f.cashBox.RecordTransaction(f.ctx, service.RecordTransactionInput{
				BranchID:  f.main,
				Amount:    dec("10"),
				Type:      txType,
				CreatedBy: f.supervisor,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	txs, err := f.cashBox.ListTransactions(f.ctx, service.TransactionFilter{Scope: service.Branch(f.main)})
	require.NoError(t, err)
	require.Len(t, txs, 21)

	sum := decimal.Zero
	for _, tx := range txs {
		amount := database.Decimal(tx.Amount)
		if tx.Type == enum.CashTxTypeDeposit {
			sum = sum.Add(amount)
		} else {
			sum = sum.Sub(amount)
		}
	}
	requireDecimal(t, "500", sum)
	requireDecimal(t, sum.String(), f.balance(t, f.main))
}

func TestProcessDailySalesIsIdempotent(t *testing.T) {
	f := newFixture(t)
	sale := f.approved(t, shift{date: "2025-06-10", cash: "500", network: "300", transactions: 12})

	first, err := f.cashBox.ProcessDailySales(f.ctx, sale.ID, f.supervisor, service.Branch(f.main))
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "DS-"+itoa(sale.ID), first.Transaction.ReferenceNumber)
	assert.Equal(t, enum.CashTxSourceDailySales, first.Transaction.Source)
	assert.Equal(t, sale.SalesDate, first.Transaction.TransactionDate)
	requireNumeric(t, "500", first.Transaction.Amount)
	requireNumeric(t, "500", first.CashBox.CurrentBalance)

	second, err := f.cashBox.ProcessDailySales(f.ctx, sale.ID, f.supervisor, service.Branch(f.main))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Transaction.ID, second.Transaction.ID)
	requireDecimal(t, "500", f.balance(t, f.main))

	updated, err := f.sales.Get(f.ctx, sale.ID, service.AllBranches())
	require.NoError(t, err)
	assert.Equal(t, enum.DailySalesStatusTransferred, updated.Status)

	txs, err := f.cashBox.ListTransactions(f.ctx, service.TransactionFilter{
		Scope:  service.Branch(f.main),
		Source: enum.CashTxSourceDailySales,
	})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestProcessDistinctShiftsOpensOneCashBox(t *testing.T) {
	f := newFixture(t)
	sales := []database.DailySale{
		f.approved(t, shift{date: "2025-06-11", cash: "400", network: "100", transactions: 8}),
		f.approved(t, shift{date: "2025-06-12", cash: "250", network: "50", transactions: 5}),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(sales))
	for i, sale := range sales {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.cashBox.ProcessDailySales(f.ctx, sale.ID, f.supervisor, service.Branch(f.main))
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	requireDecimal(t, "650", f.balance(t, f.main))
	boxes, err := f.cashBox.ListCashBoxes(f.ctx, service.Branch(f.main))
	require.NoError(t, err)
	assert.Len(t, boxes, 1)

	activity, err := f.feed.Activity(f.ctx, service.Branch(f.main), 50)
	require.NoError(t, err)
	var opened int
	for _, a := range activity {
		if a.Action == service.ActionCashBoxCreated {
			opened++
		}
	}
	assert.Equal(t, 1, opened)
}

func TestProcessDailySalesRequiresReview(t *testing.T) {
	f := newFixture(t)
	pending := f.submit(t, shift{date: "2025-06-10", cash: "500", network: "0"})

	_, err := f.cashBox.ProcessDailySales(f.ctx, pending.ID, f.supervisor, service.AllBranches())
	require.ErrorIs(t, err, service.ErrInvalidTransition)
	_, err = f.cashBox.ProcessDailySales(f.ctx, pending.ID, f.supervisor, service.Branch(f.north))
	require.ErrorIs(t, err, service.ErrDailySalesNotFound)
	_, err = f.cashBox.ProcessDailySales(f.ctx, 9999, f.supervisor, service.AllBranches())
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.cashBox.GetCashBox(f.ctx, f.main)
	require.ErrorIs(t, err, service.ErrCashBoxNotFound, "failed processing must not create the cash box")
}

func TestProcessConsolidatedDailySales(t *testing.T) {
	f := newFixture(t)
	f.openCashBox(t, f.main, "100")
	sale := f.approved(t, shift{date: "2025-06-10", cash: "40", network: "10"})
	_, err := f.consolidation.Consolidate(f.ctx, f.main, day("2025-06-10"), f.supervisor)
	require.NoError(t, err)

	res, err := f.cashBox.ProcessDailySales(f.ctx, sale.ID, f.supervisor, service.AllBranches())
	require.NoError(t, err)
	assert.True(t, res.Created)
	requireNumeric(t, "140", res.CashBox.CurrentBalance)
}
