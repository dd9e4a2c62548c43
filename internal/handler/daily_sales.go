package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
	mw "github.com/rotiroti/backoffice/internal/middleware"
	"github.com/rotiroti/backoffice/internal/service"
)

// DailySalesService is the business logic behind the daily sales endpoints.
// Satisfied by *service.DailySalesService.
type DailySalesService interface {
	Create(ctx context.Context, in service.CreateDailySalesInput) (database.DailySale, error)
	List(ctx context.Context, f service.DailySalesFilter) ([]database.DailySale, error)
	Get(ctx context.Context, id int64, scope service.Scope) (database.DailySale, error)
	Approve(ctx context.Context, id int64, reviewer uuid.UUID, scope service.Scope) (database.DailySale, error)
	Reject(ctx context.Context, id int64, reviewer uuid.UUID, reason string, scope service.Scope) (database.DailySale, error)
}

type DailySalesHandler struct {
	svc DailySalesService
	loc *time.Location
	log *logrus.Logger
}

func NewDailySalesHandler(svc DailySalesService, loc *time.Location, log *logrus.Logger) *DailySalesHandler {
	return &DailySalesHandler{svc: svc, loc: loc, log: log}
}

// RegisterRoutes registers daily sales endpoints. Mounted at /daily-sales.
func (h *DailySalesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAtLeast(enum.RoleSupervisor))
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})
}

type createDailySalesRequest struct {
	BranchID             int64            `json:"branch_id"`
	CashierID            *uuid.UUID       `json:"cashier_id"`
	SalesDate            string           `json:"sales_date"`
	ShiftType            string           `json:"shift_type"`
	ShiftStart           *time.Time       `json:"shift_start"`
	ShiftEnd             *time.Time       `json:"shift_end"`
	StartingCash         decimal.Decimal  `json:"starting_cash"`
	TotalCashSales       decimal.Decimal  `json:"total_cash_sales"`
	TotalNetworkSales    decimal.Decimal  `json:"total_network_sales"`
	TotalTransactions    int32            `json:"total_transactions"`
	ActualCashInRegister *decimal.Decimal `json:"actual_cash_in_register"`
	Notes                string           `json:"notes"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *DailySalesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := claimsOf(r)
	scope, err := requestScope(r, claims)
	if err != nil {
		writeScopeError(w, err)
		return
	}
	f := service.DailySalesFilter{Scope: scope, Status: r.URL.Query().Get("status")}
	if f.StartDate, err = parseOptionalDate(r, "start_date"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.EndDate, err = parseOptionalDate(r, "end_date"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if v := r.URL.Query().Get("cashier_id"); v != "" {
		if f.CashierID, err = uuid.Parse(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid cashier_id")
			return
		}
	}
	f.Limit, f.Offset = parsePagination(r)

	rows, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, h.log, "list daily sales", err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

// Create records a shift. Cashiers always submit for themselves.
func (h *DailySalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsOf(r)
	var req createDailySalesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	branchID, err := targetBranch(claims, req.BranchID)
	if err != nil {
		writeScopeError(w, err)
		return
	}

	salesDate := today(h.loc)
	if req.SalesDate != "" {
		if salesDate, err = parseDate(req.SalesDate); err != nil {
			writeError(w, http.StatusBadRequest, "sales_date must be yyyy-mm-dd")
			return
		}
	}

	in := service.CreateDailySalesInput{
		BranchID:             branchID,
		CashierID:            claims.UserID,
		SalesDate:            salesDate,
		ShiftType:            req.ShiftType,
		ShiftStart:           req.ShiftStart,
		ShiftEnd:             req.ShiftEnd,
		StartingCash:         req.StartingCash,
		TotalCashSales:       req.TotalCashSales,
		TotalNetworkSales:    req.TotalNetworkSales,
		TotalTransactions:    req.TotalTransactions,
		ActualCashInRegister: req.ActualCashInRegister,
		Notes:                req.Notes,
		CreatedBy:            claims.UserID,
	}
	if req.CashierID != nil && claims.Role.AtLeast(enum.RoleSupervisor) {
		in.CashierID = *req.CashierID
	}

	sale, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.log, "create daily sales", err)
		return
	}
	writeData(w, http.StatusCreated, sale)
}

func (h *DailySalesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, scope, ok := idAndScope(w, r)
	if !ok {
		return
	}
	sale, err := h.svc.Get(r.Context(), id, scope)
	if err != nil {
		writeServiceError(w, h.log, "get daily sales", err)
		return
	}
	writeData(w, http.StatusOK, sale)
}

func (h *DailySalesHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, scope, ok := idAndScope(w, r)
	if !ok {
		return
	}
	sale, err := h.svc.Approve(r.Context(), id, claimsOf(r).UserID, scope)
	if err != nil {
		writeServiceError(w, h.log, "approve daily sales", err)
		return
	}
	writeData(w, http.StatusOK, sale)
}

func (h *DailySalesHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, scope, ok := idAndScope(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sale, err := h.svc.Reject(r.Context(), id, claimsOf(r).UserID, req.Reason, scope)
	if err != nil {
		writeServiceError(w, h.log, "reject daily sales", err)
		return
	}
	writeData(w, http.StatusOK, sale)
}

// idAndScope parses the {id} segment and the caller's scope, answering the
// request itself on failure.
func idAndScope(w http.ResponseWriter, r *http.Request) (int64, service.Scope, bool) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, service.Scope{}, false
	}
	scope, err := callerScope(claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return 0, service.Scope{}, false
	}
	return id, scope, true
}
