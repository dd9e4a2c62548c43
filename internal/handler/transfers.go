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

// TransferService is satisfied by *service.TransferService.
type TransferService interface {
	Create(ctx context.Context, in service.CreateTransferInput) (service.TransferResult, error)
	Approve(ctx context.Context, id int64, approver uuid.UUID, scope service.Scope) (database.CashTransferToHQ, error)
	Reject(ctx context.Context, id int64, rejecter uuid.UUID, reason string, scope service.Scope) (service.TransferResult, error)
	List(ctx context.Context, f service.TransferFilter) ([]database.CashTransferToHQ, error)
	Get(ctx context.Context, id int64, scope service.Scope) (database.CashTransferToHQ, error)
}

type TransferHandler struct {
	svc TransferService
	loc *time.Location
	log *logrus.Logger
}

func NewTransferHandler(svc TransferService, loc *time.Location, log *logrus.Logger) *TransferHandler {
	return &TransferHandler{svc: svc, loc: loc, log: log}
}

// RegisterRoutes registers HQ transfer endpoints. Mounted at /cash-box/transfers.
func (h *TransferHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.With(mw.RequireAtLeast(enum.RoleBranchManager)).Post("/", h.Create)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRole(enum.RoleAdmin))
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})
}

type createTransferRequest struct {
	BranchID int64           `json:"branch_id"`
	Amount   decimal.Decimal `json:"amount"`
	Method   string          `json:"transfer_method"`
	Date     string          `json:"transfer_date"`
	Notes    string          `json:"notes"`
}

func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r, claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return
	}
	f := service.TransferFilter{Scope: scope, Status: r.URL.Query().Get("status")}
	f.Limit, f.Offset = parsePagination(r)

	rows, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, h.log, "list transfers", err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsOf(r)
	var req createTransferRequest
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
	if req.Date != "" {
		if date, err = parseDate(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "transfer_date must be yyyy-mm-dd")
			return
		}
	}

	res, err := h.svc.Create(r.Context(), service.CreateTransferInput{
		BranchID:  branchID,
		Amount:    req.Amount,
		Method:    req.Method,
		Date:      date,
		Notes:     req.Notes,
		CreatedBy: claims.UserID,
	})
	if err != nil {
		writeServiceError(w, h.log, "create transfer", err)
		return
	}
	writeData(w, http.StatusCreated, res)
}

func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, scope, ok := idAndScope(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Get(r.Context(), id, scope)
	if err != nil {
		writeServiceError(w, h.log, "get transfer", err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (h *TransferHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, scope, ok := idAndScope(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Approve(r.Context(), id, claimsOf(r).UserID, scope)
	if err != nil {
		writeServiceError(w, h.log, "approve transfer", err)
		return
	}
	writeData(w, http.StatusOK, t)
}

// Reject returns the transfer amount to the branch cash box.
func (h *TransferHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, scope, ok := idAndScope(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Reject(r.Context(), id, claimsOf(r).UserID, req.Reason, scope)
	if err != nil {
		writeServiceError(w, h.log, "reject transfer", err)
		return
	}
	writeData(w, http.StatusOK, res)
}
