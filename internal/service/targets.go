package service

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
)

// Achievement labels.
const (
	TierExcellent        = "excellent"
	TierVeryGood         = "very_good"
	TierGood             = "good"
	TierNeedsImprovement = "needs_improvement"
)

// Daily target sources.
const (
	DailyTargetOverride = "override"
	DailyTargetWeighted = "weighted"
	DailyTargetEven     = "even"
)

// TargetService manages monthly sales targets and the figures derived from them.
type TargetService struct {
	deps
}

func NewTargetService(store database.Store, notifier Notifier, log *logrus.Logger) *TargetService {
	return &TargetService{deps: newDeps(store, notifier, log)}
}

// MonthlyTarget is a decoded monthly_targets row. WeekdayWeights is keyed by
// lower-case English weekday name, DailyTargets by yyyy-mm-dd.
type MonthlyTarget struct {
	ID             int64                      `json:"id"`
	BranchID       int64                      `json:"branch_id"`
	Month          int                        `json:"month"`
	Year           int                        `json:"year"`
	TargetAmount   decimal.Decimal            `json:"target_amount"`
	WeekdayWeights map[string]decimal.Decimal `json:"weekday_weights"`
	DailyTargets   map[string]decimal.Decimal `json:"daily_targets"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

type UpsertTargetInput struct {
	BranchID       int64
	Month          int
	Year           int
	TargetAmount   decimal.Decimal
	WeekdayWeights map[string]decimal.Decimal
	DailyTargets   map[string]decimal.Decimal
	CreatedBy      uuid.UUID
}

// DailyTargetResult is the target for one day and how it was derived.
type DailyTargetResult struct {
	BranchID int64           `json:"branch_id"`
	Date     string          `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Source   string          `json:"source"`
}

// Achievement is one row of the monthly target report. The aggregate row
// has BranchID 0 and Aggregate set.
type Achievement struct {
	BranchID   int64           `json:"branch_id,omitempty"`
	BranchName string          `json:"branch_name"`
	Target     decimal.Decimal `json:"target"`
	Achieved   decimal.Decimal `json:"achieved"`
	Percentage decimal.Decimal `json:"percentage"`
	Status     string          `json:"status"`
	Aggregate  bool            `json:"aggregate,omitempty"`
}

func isWeekdayName(s string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s == weekdayKey(d) {
			return true
		}
	}
	return false
}

func weekdayKey(d time.Weekday) string { return strings.ToLower(d.String()) }

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// monthRange returns the first and last day of the month.
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

func (in *UpsertTargetInput) normalize() error {
	if in.BranchID <= 0 {
		return invalid("branch_id is required")
	}
	if in.Month < 1 || in.Month > 12 {
		return invalid("month must be between 1 and 12")
	}
	if in.Year < 2000 {
		return invalid("year must be >= 2000")
	}
	if err := requireNonNegative("target_amount", in.TargetAmount); err != nil {
		return err
	}

	weights := make(map[string]decimal.Decimal, len(in.WeekdayWeights))
	for k, w := range in.WeekdayWeights {
		key := strings.ToLower(strings.TrimSpace(k))
		if !isWeekdayName(key) {
			return invalid("unknown weekday %q", k)
		}
		if w.IsNegative() {
			return invalid("weight for %s must be >= 0", key)
		}
		weights[key] = w
	}
	in.WeekdayWeights = weights

	for k, v := range in.DailyTargets {
		day, err := time.Parse(time.DateOnly, k)
		if err != nil {
			return invalid("daily target key %q is not a yyyy-mm-dd date", k)
		}
		if day.Year() != in.Year || int(day.Month()) != in.Month {
			return invalid("daily target %s is outside %04d-%02d", k, in.Year, in.Month)
		}
		if v.IsNegative() {
			return invalid("daily target for %s must be >= 0", k)
		}
	}
	if in.DailyTargets == nil {
		in.DailyTargets = map[string]decimal.Decimal{}
	}
	return nil
}

func decodeTarget(row database.MonthlyTarget) (MonthlyTarget, error) {
	t := MonthlyTarget{
		ID:             row.ID,
		BranchID:       row.BranchID,
		Month:          int(row.Month),
		Year:           int(row.Year),
		TargetAmount:   database.Decimal(row.TargetAmount),
		WeekdayWeights: map[string]decimal.Decimal{},
		DailyTargets:   map[string]decimal.Decimal{},
		UpdatedAt:      row.UpdatedAt,
	}
	if len(row.WeekdayWeights) > 0 {
		if err := json.Unmarshal(row.WeekdayWeights, &t.WeekdayWeights); err != nil {
			return MonthlyTarget{}, fmt.Errorf("decode weekday weights: %w", err)
		}
	}
	if len(row.DailyTargets) > 0 {
		if err := json.Unmarshal(row.DailyTargets, &t.DailyTargets); err != nil {
			return MonthlyTarget{}, fmt.Errorf("decode daily targets: %w", err)
		}
	}
	return t, nil
}

func (s *TargetService) Upsert(ctx context.Context, in UpsertTargetInput) (MonthlyTarget, error) {
	if err := in.normalize(); err != nil {
		return MonthlyTarget{}, err
	}
	weights, err := json.Marshal(in.WeekdayWeights)
	if err != nil {
		return MonthlyTarget{}, fmt.Errorf("encode weekday weights: %w", err)
	}
	overrides, err := json.Marshal(in.DailyTargets)
	if err != nil {
		return MonthlyTarget{}, fmt.Errorf("encode daily targets: %w", err)
	}

	var row database.MonthlyTarget
	err = s.store.ExecTx(ctx, func(q database.Querier) error {
		if _, err := q.GetBranch(ctx, in.BranchID); err != nil {
			return notFound(err, ErrBranchNotFound)
		}
		arg := database.UpsertMonthlyTargetParams{
			BranchID:       in.BranchID,
			Month:          int32(in.Month),
			Year:           int32(in.Year),
			TargetAmount:   database.Numeric(in.TargetAmount),
			WeekdayWeights: weights,
			DailyTargets:   overrides,
		}
		if in.CreatedBy != uuid.Nil {
			arg.CreatedBy = database.UUID(in.CreatedBy)
		}
		var err error
		if row, err = q.UpsertMonthlyTarget(ctx, arg); err != nil {
			return fmt.Errorf("upsert monthly target: %w", err)
		}
		return recordActivity(ctx, q, activity{
			branchID:   in.BranchID,
			userID:     in.CreatedBy,
			action:     ActionTargetSaved,
			entityType: EntityTarget,
			entityID:   row.ID,
			amount:     &in.TargetAmount,
			details:    map[string]any{"month": in.Month, "year": in.Year},
		})
	})
	if err != nil {
		return MonthlyTarget{}, err
	}
	return decodeTarget(row)
}

func (s *TargetService) Get(ctx context.Context, branchID int64, month, year int) (MonthlyTarget, error) {
	row, err := s.store.GetMonthlyTarget(ctx, database.GetMonthlyTargetParams{
		BranchID: branchID,
		Month:    int32(month),
		Year:     int32(year),
	})
	if err != nil {
		return MonthlyTarget{}, notFound(err, ErrTargetNotFound)
	}
	return decodeTarget(row)
}

func (s *TargetService) List(ctx context.Context, scope Scope, month, year int) ([]MonthlyTarget, error) {
	if month < 1 || month > 12 {
		return nil, invalid("month must be between 1 and 12")
	}
	rows, err := s.store.ListMonthlyTargets(ctx, database.ListMonthlyTargetsParams{
		Month:    int32(month),
		Year:     int32(year),
		BranchID: scope.filter(),
	})
	if err != nil {
		return nil, err
	}
	out := make([]MonthlyTarget, 0, len(rows))
	for _, r := range rows {
		t, err := decodeTarget(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// DailyTarget derives the target for date: an explicit override wins, then
// the weekday's share of the month's total weight, then an even split.
// Weekdays missing from a non-empty weight map weigh 1.
func DailyTarget(t MonthlyTarget, date time.Time) (decimal.Decimal, string) {
	if v, ok := t.DailyTargets[date.Format(time.DateOnly)]; ok {
		return v, DailyTargetOverride
	}

	days := daysIn(date.Year(), date.Month())
	if len(t.WeekdayWeights) > 0 {
		weight := func(d time.Weekday) decimal.Decimal {
			if w, ok := t.WeekdayWeights[weekdayKey(d)]; ok {
				return w
			}
			return decimal.NewFromInt(1)
		}
		total := decimal.Zero
		for day := 1; day <= days; day++ {
			total = total.Add(weight(time.Date(date.Year(), date.Month(), day, 0, 0, 0, 0, time.UTC).Weekday()))
		}
		if total.IsPositive() {
			return t.TargetAmount.Mul(weight(date.Weekday())).Div(total).Round(2), DailyTargetWeighted
		}
	}
	return t.TargetAmount.Div(decimal.NewFromInt(int64(days))).Round(2), DailyTargetEven
}

func (s *TargetService) DailyTargetFor(ctx context.Context, branchID int64, date time.Time) (DailyTargetResult, error) {
	t, err := s.Get(ctx, branchID, int(date.Month()), date.Year())
	if err != nil {
		return DailyTargetResult{}, err
	}
	amount, source := DailyTarget(t, date)
	return DailyTargetResult{
		BranchID: branchID,
		Date:     date.Format(time.DateOnly),
		Amount:   amount,
		Source:   source,
	}, nil
}

// AchievementTier labels a percentage of target reached.
func AchievementTier(pct decimal.Decimal) string {
	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(95)):
		return TierExcellent
	case pct.GreaterThanOrEqual(decimal.NewFromInt(85)):
		return TierVeryGood
	case pct.GreaterThanOrEqual(decimal.NewFromInt(75)):
		return TierGood
	default:
		return TierNeedsImprovement
	}
}

func newAchievement(target, achieved decimal.Decimal) Achievement {
	pct := percentOf(achieved, target)
	return Achievement{
		Target:     target,
		Achieved:   achieved,
		Percentage: pct,
		Status:     AchievementTier(pct),
	}
}

// monthSales returns the non-rejected shifts of the month within scope.
func monthSales(ctx context.Context, q database.Querier, scope Scope, year int, month time.Month) ([]database.DailySale, error) {
	first, last := monthRange(year, month)
	rows, err := q.ListDailySales(ctx, database.ListDailySalesParams{
		BranchID:  scope.filter(),
		StartDate: database.Date(first),
		EndDate:   database.Date(last),
	})
	if err != nil {
		return nil, fmt.Errorf("list daily sales: %w", err)
	}
	return slices.DeleteFunc(rows, func(r database.DailySale) bool {
		return r.Status == enum.DailySalesStatusRejected
	}), nil
}

// BranchTargetAchievement reports each branch's progress toward its monthly
// target. An all-branch scope appends an aggregate row.
func (s *TargetService) BranchTargetAchievement(ctx context.Context, month, year int, scope Scope) ([]Achievement, error) {
	if month < 1 || month > 12 {
		return nil, invalid("month must be between 1 and 12")
	}
	if !scope.valid() {
		return nil, invalid("branch scope is required")
	}

	branches, err := s.store.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	targets, err := s.store.ListMonthlyTargets(ctx, database.ListMonthlyTargetsParams{
		Month:    int32(month),
		Year:     int32(year),
		BranchID: scope.filter(),
	})
	if err != nil {
		return nil, fmt.Errorf("list monthly targets: %w", err)
	}
	sales, err := monthSales(ctx, s.store, scope, year, time.Month(month))
	if err != nil {
		return nil, err
	}

	targetBy := make(map[int64]decimal.Decimal, len(targets))
	for _, t := range targets {
		targetBy[t.BranchID] = database.Decimal(t.TargetAmount)
	}
	achievedBy := make(map[int64]decimal.Decimal)
	for _, r := range sales {
		achievedBy[r.BranchID] = achievedBy[r.BranchID].Add(database.Decimal(r.TotalSales))
	}

	var (
		out                        []Achievement
		totalTarget, totalAchieved decimal.Decimal
	)
	for _, b := range branches {
		if !scope.Includes(b.ID) {
			continue
		}
		a := newAchievement(targetBy[b.ID], achievedBy[b.ID])
		a.BranchID, a.BranchName = b.ID, b.Name
		out = append(out, a)
		totalTarget = totalTarget.Add(a.Target)
		totalAchieved = totalAchieved.Add(a.Achieved)
	}
	if scope.IsAll() {
		agg := newAchievement(totalTarget, totalAchieved)
		agg.BranchName, agg.Aggregate = "All branches", true
		out = append(out, agg)
	}
	if out == nil {
		return nil, ErrBranchNotFound
	}
	return out, nil
}

// LeaderboardEntry ranks a cashier over a month.
type LeaderboardEntry struct {
	Rank              int             `json:"rank"`
	CashierID         uuid.UUID       `json:"cashier_id"`
	CashierName       string          `json:"cashier_name"`
	BranchID          int64           `json:"branch_id"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalTransactions int64           `json:"total_transactions"`
	Shifts            int             `json:"shifts"`
	AverageScore      decimal.Decimal `json:"average_score"`
}

// Leaderboard ranks cashiers by monthly sales, then by average daily score.
func (s *TargetService) Leaderboard(ctx context.Context, month, year int, scope Scope) ([]LeaderboardEntry, error) {
	if month < 1 || month > 12 {
		return nil, invalid("month must be between 1 and 12")
	}
	if !scope.valid() {
		return nil, invalid("branch scope is required")
	}
	sales, err := monthSales(ctx, s.store, scope, year, time.Month(month))
	if err != nil {
		return nil, err
	}

	type dayKey struct {
		cashier uuid.UUID
		day     string
	}
	days := make(map[dayKey]*cashierTally)
	entries := make(map[uuid.UUID]*LeaderboardEntry)
	for _, r := range sales {
		e, ok := entries[r.CashierID]
		if !ok {
			e = &LeaderboardEntry{CashierID: r.CashierID, BranchID: r.BranchID}
			entries[r.CashierID] = e
		}
		e.TotalSales = e.TotalSales.Add(database.Decimal(r.TotalSales))
		e.TotalTransactions += int64(r.TotalTransactions)
		e.Shifts++

		k := dayKey{r.CashierID, r.SalesDate.Time.Format(time.DateOnly)}
		if days[k] == nil {
			days[k] = &cashierTally{}
		}
		days[k].add(r)
	}

	scores := make(map[uuid.UUID][]int)
	for k, t := range days {
		scores[k.cashier] = append(scores[k.cashier], PerformanceScore(t.sales, t.discrepancy))
	}

	names := newUserNames(s.store)
	out := make([]LeaderboardEntry, 0, len(entries))
	for id, e := range entries {
		sum := 0
		for _, sc := range scores[id] {
			sum += sc
		}
		e.AverageScore = decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(scores[id])))).Round(1)
		e.CashierName = names.lookup(ctx, id)
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b LeaderboardEntry) int {
		if c := b.TotalSales.Cmp(a.TotalSales); c != 0 {
			return c
		}
		if c := b.AverageScore.Cmp(a.AverageScore); c != 0 {
			return c
		}
		return cmp.Compare(a.CashierName, b.CashierName)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}
