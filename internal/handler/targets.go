package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/enum"
	mw "github.com/rotiroti/backoffice/internal/middleware"
	"github.com/rotiroti/backoffice/internal/service"
)

// TargetService is satisfied by *service.TargetService.
type TargetService interface {
	Upsert(ctx context.Context, in service.UpsertTargetInput) (service.MonthlyTarget, error)
	List(ctx context.Context, scope service.Scope, month, year int) ([]service.MonthlyTarget, error)
	DailyTargetFor(ctx context.Context, branchID int64, date time.Time) (service.DailyTargetResult, error)
}

type TargetHandler struct {
	svc TargetService
	loc *time.Location
	log *logrus.Logger
}

func NewTargetHandler(svc TargetService, loc *time.Location, log *logrus.Logger) *TargetHandler {
	return &TargetHandler{svc: svc, loc: loc, log: log}
}

// RegisterRoutes registers monthly target endpoints. Mounted at /targets.
func (h *TargetHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/daily", h.Daily)
	r.With(mw.RequireRole(enum.RoleAdmin)).Post("/", h.Upsert)
}

type upsertTargetRequest struct {
	BranchID       int64                      `json:"branch_id"`
	Month          int                        `json:"month"`
	Year           int                        `json:"year"`
	TargetAmount   decimal.Decimal            `json:"target_amount"`
	WeekdayWeights map[string]decimal.Decimal `json:"weekday_weights"`
	DailyTargets   map[string]decimal.Decimal `json:"daily_targets"`
}

func (h *TargetHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r, claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return
	}
	month, year, err := monthOrCurrent(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	targets, err := h.svc.List(r.Context(), scope, month, year)
	if err != nil {
		writeServiceError(w, h.log, "list targets", err)
		return
	}
	writeData(w, http.StatusOK, targets)
}

// Upsert creates or replaces the target of one branch-month.
func (h *TargetHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertTargetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.BranchID <= 0 {
		writeError(w, http.StatusBadRequest, "branch_id is required")
		return
	}
	t, err := h.svc.Upsert(r.Context(), service.UpsertTargetInput{
		BranchID:       req.BranchID,
		Month:          req.Month,
		Year:           req.Year,
		TargetAmount:   req.TargetAmount,
		WeekdayWeights: req.WeekdayWeights,
		DailyTargets:   req.DailyTargets,
		CreatedBy:      claimsOf(r).UserID,
	})
	if err != nil {
		writeServiceError(w, h.log, "upsert target", err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (h *TargetHandler) Daily(w http.ResponseWriter, r *http.Request) {
	var requested int64
	if v := r.URL.Query().Get("branch_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid branch_id")
			return
		}
		requested = id
	}
	branchID, err := targetBranch(claimsOf(r), requested)
	if err != nil {
		writeScopeError(w, err)
		return
	}
	date, err := dateOrToday(r, "date", h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.DailyTargetFor(r.Context(), branchID, date)
	if err != nil {
		writeServiceError(w, h.log, "daily target", err)
		return
	}
	writeData(w, http.StatusOK, res)
}
