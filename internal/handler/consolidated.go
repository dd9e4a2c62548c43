package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
	mw "github.com/rotiroti/backoffice/internal/middleware"
	"github.com/rotiroti/backoffice/internal/service"
)

// ConsolidationService is satisfied by *service.ConsolidationService.
type ConsolidationService interface {
	Consolidate(ctx context.Context, branchID int64, date time.Time, userID uuid.UUID) (service.ConsolidationResult, error)
	Close(ctx context.Context, id int64, userID uuid.UUID, scope service.Scope) (database.ConsolidatedDailySale, error)
	Transfer(ctx context.Context, id int64, userID uuid.UUID, scope service.Scope) (database.ConsolidatedDailySale, error)
	List(ctx context.Context, f service.ConsolidatedFilter) ([]database.ConsolidatedDailySale, error)
	Get(ctx context.Context, id int64, scope service.Scope) (service.ConsolidatedDetail, error)
}

type ConsolidatedHandler struct {
	svc ConsolidationService
	loc *time.Location
	log *logrus.Logger
}

func NewConsolidatedHandler(svc ConsolidationService, loc *time.Location, log *logrus.Logger) *ConsolidatedHandler {
	return &ConsolidatedHandler{svc: svc, loc: loc, log: log}
}

// RegisterRoutes registers consolidation endpoints. Mounted at /consolidated-sales.
func (h *ConsolidatedHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.With(mw.RequireAtLeast(enum.RoleSupervisor)).Post("/", h.Consolidate)
	r.With(mw.RequireAtLeast(enum.RoleSupervisor)).Post("/{id}/close", h.Close)
	r.With(mw.RequireAtLeast(enum.RoleBranchManager)).Post("/{id}/transfer", h.Transfer)
}

type consolidateRequest struct {
	BranchID  int64  `json:"branch_id"`
	SalesDate string `json:"sales_date"`
}

func (h *ConsolidatedHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r, claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return
	}
	f := service.ConsolidatedFilter{Scope: scope, Status: r.URL.Query().Get("status")}
	if f.StartDate, err = parseOptionalDate(r, "start_date"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.EndDate, err = parseOptionalDate(r, "end_date"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.Limit, f.Offset = parsePagination(r)

	rows, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, h.log, "list consolidated sales", err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

// Consolidate rolls the approved shifts of one branch-day into a single
// record. A repeat call refreshes the open record and answers 200.
func (h *ConsolidatedHandler) Consolidate(w http.ResponseWriter, r *http.Request) {
	claims := claimsOf(r)
	var req consolidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	branchID, err := targetBranch(claims, req.BranchID)
	if err != nil {
		writeScopeError(w, err)
		return
	}
	date := today(h.loc)
	if req.SalesDate != "" {
		if date, err = parseDate(req.SalesDate); err != nil {
			writeError(w, http.StatusBadRequest, "sales_date must be yyyy-mm-dd")
			return
		}
	}

	res, err := h.svc.Consolidate(r.Context(), branchID, date, claims.UserID)
	if err != nil {
		writeServiceError(w, h.log, "consolidate daily sales", err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeData(w, status, res)
}

func (h *ConsolidatedHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, scope, ok := idAndScope(w, r)
	if !ok {
		return
	}
	detail, err := h.svc.Get(r.Context(), id, scope)
	if err != nil {
		writeServiceError(w, h.log, "get consolidated sales", err)
		return
	}
	writeData(w, http.StatusOK, detail)
}

func (h *ConsolidatedHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, scope, ok := idAndScope(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Close(r.Context(), id, claimsOf(r).UserID, scope)
	if err != nil {
		writeServiceError(w, h.log, "close consolidated sales", err)
		return
	}
	writeData(w, http.StatusOK, rec)
}

func (h *ConsolidatedHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	id, scope, ok := idAndScope(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Transfer(r.Context(), id, claimsOf(r).UserID, scope)
	if err != nil {
		writeServiceError(w, h.log, "transfer consolidated sales", err)
		return
	}
	writeData(w, http.StatusOK, rec)
}
