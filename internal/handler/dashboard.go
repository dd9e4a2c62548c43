package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/service"
)

// DashboardService is satisfied by *service.DashboardService.
type DashboardService interface {
	Stats(ctx context.Context, scope service.Scope, date time.Time) (service.DashboardStats, error)
	SalesAnalytics(ctx context.Context, scope service.Scope, start, end time.Time) (service.SalesAnalytics, error)
}

// PerformanceService is satisfied by *service.PerformanceService.
type PerformanceService interface {
	Daily(ctx context.Context, scope service.Scope, date time.Time) ([]service.CashierPerformance, error)
}

// AchievementService is the subset of *service.TargetService the dashboard reads.
type AchievementService interface {
	BranchTargetAchievement(ctx context.Context, month, year int, scope service.Scope) ([]service.Achievement, error)
	Leaderboard(ctx context.Context, month, year int, scope service.Scope) ([]service.LeaderboardEntry, error)
}

type DashboardHandler struct {
	dashboard   DashboardService
	performance PerformanceService
	targets     AchievementService
	loc         *time.Location
	log         *logrus.Logger
}

func NewDashboardHandler(dashboard DashboardService, performance PerformanceService, targets AchievementService, loc *time.Location, log *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, performance: performance, targets: targets, loc: loc, log: log}
}

// RegisterRoutes registers read-only report endpoints. Mounted at /dashboard.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats", h.Stats)
	r.Get("/target-achievement", h.TargetAchievement)
	r.Get("/cashier-performance", h.CashierPerformance)
	r.Get("/sales-analytics", h.SalesAnalytics)
	r.Get("/leaderboard", h.Leaderboard)
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r, claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return
	}
	date, err := dateOrToday(r, "date", h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.dashboard.Stats(r.Context(), scope, date)
	if err != nil {
		writeServiceError(w, h.log, "dashboard stats", err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (h *DashboardHandler) TargetAchievement(w http.ResponseWriter, r *http.Request) {
	scope, month, year, ok := h.monthScope(w, r)
	if !ok {
		return
	}
	rows, err := h.targets.BranchTargetAchievement(r.Context(), month, year, scope)
	if err != nil {
		writeServiceError(w, h.log, "target achievement", err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

func (h *DashboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	scope, month, year, ok := h.monthScope(w, r)
	if !ok {
		return
	}
	rows, err := h.targets.Leaderboard(r.Context(), month, year, scope)
	if err != nil {
		writeServiceError(w, h.log, "leaderboard", err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

func (h *DashboardHandler) CashierPerformance(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r, claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return
	}
	date, err := dateOrToday(r, "date", h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.performance.Daily(r.Context(), scope, date)
	if err != nil {
		writeServiceError(w, h.log, "cashier performance", err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

// SalesAnalytics defaults to the 30 days ending today.
func (h *DashboardHandler) SalesAnalytics(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r, claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return
	}
	end, err := dateOrToday(r, "end_date", h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	start := end.AddDate(0, 0, -29)
	if d, err := parseOptionalDate(r, "start_date"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	} else if d != nil {
		start = *d
	}
	res, err := h.dashboard.SalesAnalytics(r.Context(), scope, start, end)
	if err != nil {
		writeServiceError(w, h.log, "sales analytics", err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (h *DashboardHandler) monthScope(w http.ResponseWriter, r *http.Request) (service.Scope, int, int, bool) {
	scope, err := requestScope(r, claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return service.Scope{}, 0, 0, false
	}
	month, year, err := monthOrCurrent(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return service.Scope{}, 0, 0, false
	}
	return scope, month, year, true
}
