package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
)

// PerformanceService scores cashiers on cash accuracy.
type PerformanceService struct {
	deps
}

func NewPerformanceService(store database.Store, log *logrus.Logger) *PerformanceService {
	return &PerformanceService{deps: newDeps(store, nil, log)}
}

// CashierPerformance is one cashier's totals for a day.
type CashierPerformance struct {
	CashierID         uuid.UUID       `json:"cashier_id"`
	CashierName       string          `json:"cashier_name"`
	BranchID          int64           `json:"branch_id"`
	Shifts            int             `json:"shifts"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalTransactions int64           `json:"total_transactions"`
	AverageTicket     decimal.Decimal `json:"average_ticket"`
	TotalDiscrepancy  decimal.Decimal `json:"total_discrepancy"`
	Score             int             `json:"score"`
}

var (
	fivePercent = decimal.NewFromFloat(0.05)
	twoPercent  = decimal.NewFromFloat(0.02)
)

// PerformanceScore grades the share of sales lost or gained as cash
// discrepancy: 100 without sales, 70 above 5%, 85 above 2%, 95 otherwise.
func PerformanceScore(totalSales, discrepancy decimal.Decimal) int {
	if !totalSales.IsPositive() {
		return 100
	}
	ratio := discrepancy.Abs().Div(totalSales)
	switch {
	case ratio.GreaterThan(fivePercent):
		return 70
	case ratio.GreaterThan(twoPercent):
		return 85
	default:
		return 95
	}
}

type cashierTally struct {
	shifts       int
	sales        decimal.Decimal
	transactions int64
	discrepancy  decimal.Decimal
}

func (t *cashierTally) add(r database.DailySale) {
	t.shifts++
	t.sales = t.sales.Add(database.Decimal(r.TotalSales))
	t.transactions += int64(r.TotalTransactions)
	t.discrepancy = t.discrepancy.Add(database.Decimal(r.Discrepancy))
}

// userNames resolves cashier display names, caching each lookup.
type userNames struct {
	q     database.Querier
	cache map[uuid.UUID]string
}

func newUserNames(q database.Querier) *userNames {
	return &userNames{q: q, cache: make(map[uuid.UUID]string)}
}

func (n *userNames) lookup(ctx context.Context, id uuid.UUID) string {
	if name, ok := n.cache[id]; ok {
		return name
	}
	name := ""
	if u, err := n.q.GetUserByID(ctx, id); err == nil {
		name = u.FullName
	}
	n.cache[id] = name
	return name
}

// Daily returns per-cashier totals and scores for date, best score first.
func (s *PerformanceService) Daily(ctx context.Context, scope Scope, date time.Time) ([]CashierPerformance, error) {
	if !scope.valid() {
		return nil, invalid("branch scope is required")
	}
	if date.IsZero() {
		return nil, invalid("date is required")
	}
	day := database.Date(date)
	rows, err := s.store.ListDailySales(ctx, database.ListDailySalesParams{
		BranchID:  scope.filter(),
		StartDate: day,
		EndDate:   day,
	})
	if err != nil {
		return nil, err
	}

	tallies := make(map[uuid.UUID]*cashierTally)
	branchOf := make(map[uuid.UUID]int64)
	for _, r := range rows {
		if r.Status == enum.DailySalesStatusRejected {
			continue
		}
		if tallies[r.CashierID] == nil {
			tallies[r.CashierID] = &cashierTally{}
			branchOf[r.CashierID] = r.BranchID
		}
		tallies[r.CashierID].add(r)
	}

	names := newUserNames(s.store)
	out := make([]CashierPerformance, 0, len(tallies))
	for id, t := range tallies {
		out = append(out, CashierPerformance{
			CashierID:         id,
			CashierName:       names.lookup(ctx, id),
			BranchID:          branchOf[id],
			Shifts:            t.shifts,
			TotalSales:        t.sales,
			TotalTransactions: t.transactions,
			AverageTicket:     averageTicket(t.sales, t.transactions),
			TotalDiscrepancy:  t.discrepancy,
			Score:             PerformanceScore(t.sales, t.discrepancy),
		})
	}
	slices.SortFunc(out, func(a, b CashierPerformance) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := b.TotalSales.Cmp(a.TotalSales); c != 0 {
			return c
		}
		return cmp.Compare(a.CashierName, b.CashierName)
	})
	return out, nil
}
