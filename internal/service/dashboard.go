package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
)

const maxAnalyticsDays = 366

// DashboardService computes read-only aggregates for the back-office home page.
type DashboardService struct {
	deps
}

func NewDashboardService(store database.Store, log *logrus.Logger) *DashboardService {
	return &DashboardService{deps: newDeps(store, nil, log)}
}

type SalesTotals struct {
	CashSales    decimal.Decimal `json:"cash_sales"`
	NetworkSales decimal.Decimal `json:"network_sales"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	Transactions int64           `json:"transactions"`
	Shifts       int             `json:"shifts"`
}

func (t *SalesTotals) add(r database.DailySale) {
	t.CashSales = t.CashSales.Add(database.Decimal(r.TotalCashSales))
	t.NetworkSales = t.NetworkSales.Add(database.Decimal(r.TotalNetworkSales))
	t.TotalSales = t.TotalSales.Add(database.Decimal(r.TotalSales))
	t.Transactions += int64(r.TotalTransactions)
	t.Shifts++
}

type PendingTransfers struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type DashboardStats struct {
	Date               string           `json:"date"`
	Today              SalesTotals      `json:"today"`
	PendingDailySales  int              `json:"pending_daily_sales"`
	OpenConsolidations int              `json:"open_consolidations"`
	CashBoxBalance     decimal.Decimal  `json:"cash_box_balance"`
	PendingTransfers   PendingTransfers `json:"pending_transfers"`
	MonthTarget        Achievement      `json:"month_target"`
}

// Stats summarizes the day and the month-to-date target within scope.
func (s *DashboardService) Stats(ctx context.Context, scope Scope, date time.Time) (DashboardStats, error) {
	if !scope.valid() {
		return DashboardStats{}, invalid("branch scope is required")
	}
	if date.IsZero() {
		return DashboardStats{}, invalid("date is required")
	}
	branch := scope.filter()
	stats := DashboardStats{Date: date.Format(time.DateOnly)}

	day := database.Date(date)
	today, err := s.store.ListDailySales(ctx, database.ListDailySalesParams{BranchID: branch, StartDate: day, EndDate: day})
	if err != nil {
		return DashboardStats{}, fmt.Errorf("list daily sales: %w", err)
	}
	for _, r := range today {
		if r.Status != enum.DailySalesStatusRejected {
			stats.Today.add(r)
		}
	}

	pending, err := s.store.ListDailySales(ctx, database.ListDailySalesParams{
		BranchID: branch,
		Status:   database.Text(enum.DailySalesStatusPending),
	})
	if err != nil {
		return DashboardStats{}, fmt.Errorf("list pending daily sales: %w", err)
	}
	stats.PendingDailySales = len(pending)

	open, err := s.store.ListConsolidated(ctx, database.ListConsolidatedParams{
		BranchID: branch,
		Status:   database.Text(enum.ConsolidatedStatusOpen),
	})
	if err != nil {
		return DashboardStats{}, fmt.Errorf("list open consolidations: %w", err)
	}
	stats.OpenConsolidations = len(open)

	boxes, err := s.store.ListCashBoxes(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("list cash boxes: %w", err)
	}
	for _, b := range boxes {
		if scope.Includes(b.BranchID) {
			stats.CashBoxBalance = stats.CashBoxBalance.Add(database.Decimal(b.CurrentBalance))
		}
	}

	transfers, err := s.store.ListTransfers(ctx, database.ListTransfersParams{
		BranchID: branch,
		Status:   database.Text(enum.TransferStatusPending),
	})
	if err != nil {
		return DashboardStats{}, fmt.Errorf("list pending transfers: %w", err)
	}
	for _, t := range transfers {
		stats.PendingTransfers.Count++
		stats.PendingTransfers.Amount = stats.PendingTransfers.Amount.Add(database.Decimal(t.Amount))
	}

	targets, err := s.store.ListMonthlyTargets(ctx, database.ListMonthlyTargetsParams{
		Month:    int32(date.Month()),
		Year:     int32(date.Year()),
		BranchID: branch,
	})
	if err != nil {
		return DashboardStats{}, fmt.Errorf("list monthly targets: %w", err)
	}
	target := decimal.Zero
	for _, t := range targets {
		target = target.Add(database.Decimal(t.TargetAmount))
	}
	month, err := monthSales(ctx, s.store, scope, date.Year(), date.Month())
	if err != nil {
		return DashboardStats{}, err
	}
	achieved := decimal.Zero
	for _, r := range month {
		achieved = achieved.Add(database.Decimal(r.TotalSales))
	}
	stats.MonthTarget = newAchievement(target, achieved)
	if id, ok := scope.BranchID(); ok {
		stats.MonthTarget.BranchID = id
	} else {
		stats.MonthTarget.Aggregate = true
	}
	return stats, nil
}

type DayPoint struct {
	Date string `json:"date"`
	SalesTotals
}

type SalesAnalytics struct {
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Series       []DayPoint      `json:"series"`
	Totals       SalesTotals     `json:"totals"`
	CashShare    decimal.Decimal `json:"cash_share"`
	NetworkShare decimal.Decimal `json:"network_share"`
	AverageDaily decimal.Decimal `json:"average_daily"`
	BestDay      *DayPoint       `json:"best_day"`
}

// SalesAnalytics returns one point per calendar day in [start, end],
// zero-filled, with period totals and payment mix.
func (s *DashboardService) SalesAnalytics(ctx context.Context, scope Scope, start, end time.Time) (SalesAnalytics, error) {
	if !scope.valid() {
		return SalesAnalytics{}, invalid("branch scope is required")
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return SalesAnalytics{}, invalid("end_date must not be before start_date")
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxAnalyticsDays {
		return SalesAnalytics{}, invalid("date range must not exceed %d days", maxAnalyticsDays)
	}

	rows, err := s.store.ListDailySales(ctx, database.ListDailySalesParams{
		BranchID:  scope.filter(),
		StartDate: database.Date(start),
		EndDate:   database.Date(end),
	})
	if err != nil {
		return SalesAnalytics{}, fmt.Errorf("list daily sales: %w", err)
	}

	byDay := make(map[string]*SalesTotals, days)
	for _, r := range rows {
		if r.Status == enum.DailySalesStatusRejected {
			continue
		}
		key := r.SalesDate.Time.Format(time.DateOnly)
		if byDay[key] == nil {
			byDay[key] = &SalesTotals{}
		}
		byDay[key].add(r)
	}

	res := SalesAnalytics{
		StartDate: start.Format(time.DateOnly),
		EndDate:   end.Format(time.DateOnly),
		Series:    make([]DayPoint, 0, days),
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		p := DayPoint{Date: d.Format(time.DateOnly)}
		if t := byDay[p.Date]; t != nil {
			p.SalesTotals = *t
		}
		res.Series = append(res.Series, p)

		res.Totals.CashSales = res.Totals.CashSales.Add(p.CashSales)
		res.Totals.NetworkSales = res.Totals.NetworkSales.Add(p.NetworkSales)
		res.Totals.TotalSales = res.Totals.TotalSales.Add(p.TotalSales)
		res.Totals.Transactions += p.Transactions
		res.Totals.Shifts += p.Shifts
	}
	for i := range res.Series {
		p := &res.Series[i]
		if p.TotalSales.IsPositive() && (res.BestDay == nil || p.TotalSales.GreaterThan(res.BestDay.TotalSales)) {
			res.BestDay = p
		}
	}

	res.CashShare = percentOf(res.Totals.CashSales, res.Totals.TotalSales)
	res.NetworkShare = percentOf(res.Totals.NetworkSales, res.Totals.TotalSales)
	res.AverageDaily = res.Totals.TotalSales.Div(decimal.NewFromInt(int64(days))).Round(2)
	return res, nil
}
