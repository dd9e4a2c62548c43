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

// CashBoxService is satisfied by *service.CashBoxService.
type CashBoxService interface {
	CreateCashBox(ctx context.Context, branchID int64, notes string, userID uuid.UUID) (database.BranchCashBox, error)
	GetCashBox(ctx context.Context, branchID int64) (database.BranchCashBox, error)
	ListCashBoxes(ctx context.Context, scope service.Scope) ([]database.BranchCashBox, error)
	RecordTransaction(ctx context.Context, in service.RecordTransactionInput) (service.LedgerEntry, error)
	ListTransactions(ctx context.Context, f service.TransactionFilter) ([]database.CashBoxTransaction, error)
	ProcessDailySales(ctx context.Context, dailySalesID int64, userID uuid.UUID, scope service.Scope) (service.ProcessResult, error)
}

type CashBoxHandler struct {
	svc CashBoxService
	loc *time.Location
	log *logrus.Logger
}

func NewCashBoxHandler(svc CashBoxService, loc *time.Location, log *logrus.Logger) *CashBoxHandler {
	return &CashBoxHandler{svc: svc, loc: loc, log: log}
}

// RegisterRoutes registers cash box endpoints. Mounted at /cash-box.
func (h *CashBoxHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListCashBoxes)
	r.Get("/transactions", h.ListTransactions)
	r.With(mw.RequireAtLeast(enum.RoleSupervisor)).Post("/transactions", h.RecordTransaction)
	r.With(mw.RequireAtLeast(enum.RoleSupervisor)).Post("/daily-sales/{id}", h.ProcessDailySales)

	r.Route("/{branchId}", func(r chi.Router) {
		r.Use(mw.RequireBranchParam("branchId"))
		r.Get("/", h.GetCashBox)
		r.With(mw.RequireAtLeast(enum.RoleBranchManager)).Post("/", h.CreateCashBox)
		r.Get("/transactions", h.ListBranchTransactions)
	})
}

type createCashBoxRequest struct {
	Notes string `json:"notes"`
}

type recordTransactionRequest struct {
	BranchID        int64           `json:"branch_id"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Date            string          `json:"transaction_date"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

func (h *CashBoxHandler) ListCashBoxes(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r, claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return
	}
	boxes, err := h.svc.ListCashBoxes(r.Context(), scope)
	if err != nil {
		writeServiceError(w, h.log, "list cash boxes", err)
		return
	}
	writeData(w, http.StatusOK, boxes)
}

func (h *CashBoxHandler) GetCashBox(w http.ResponseWriter, r *http.Request) {
	branchID, err := parseID(r, "branchId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	box, err := h.svc.GetCashBox(r.Context(), branchID)
	if err != nil {
		writeServiceError(w, h.log, "get cash box", err)
		return
	}
	writeData(w, http.StatusOK, box)
}

func (h *CashBoxHandler) CreateCashBox(w http.ResponseWriter, r *http.Request) {
	branchID, err := parseID(r, "branchId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req createCashBoxRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	box, err := h.svc.CreateCashBox(r.Context(), branchID, req.Notes, claimsOf(r).UserID)
	if err != nil {
		writeServiceError(w, h.log, "create cash box", err)
		return
	}
	writeData(w, http.StatusCreated, box)
}

func (h *CashBoxHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r, claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return
	}
	h.listTransactions(w, r, scope)
}

func (h *CashBoxHandler) ListBranchTransactions(w http.ResponseWriter, r *http.Request) {
	branchID, err := parseID(r, "branchId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.listTransactions(w, r, service.Branch(branchID))
}

func (h *CashBoxHandler) listTransactions(w http.ResponseWriter, r *http.Request, scope service.Scope) {
	q := r.URL.Query()
	f := service.TransactionFilter{Scope: scope, Type: q.Get("type"), Source: q.Get("source")}
	var err error
	if f.StartDate, err = parseOptionalDate(r, "start_date"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.EndDate, err = parseOptionalDate(r, "end_date"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.Limit, f.Offset = parsePagination(r)

	txs, err := h.svc.ListTransactions(r.Context(), f)
	if err != nil {
		writeServiceError(w, h.log, "list cash box transactions", err)
		return
	}
	writeData(w, http.StatusOK, txs)
}

func (h *CashBoxHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	claims := claimsOf(r)
	var req recordTransactionRequest
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
			writeError(w, http.StatusBadRequest, "transaction_date must be yyyy-mm-dd")
			return
		}
	}

	entry, err := h.svc.RecordTransaction(r.Context(), service.RecordTransactionInput{
		BranchID:        branchID,
		Amount:          req.Amount,
		Type:            req.Type,
		Source:          req.Source,
		Date:            date,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		CreatedBy:       claims.UserID,
	})
	if err != nil {
		writeServiceError(w, h.log, "record cash box transaction", err)
		return
	}
	writeData(w, http.StatusCreated, entry)
}

// ProcessDailySales deposits an approved shift's cash. Replays answer 200
// with the original posting.
func (h *CashBoxHandler) ProcessDailySales(w http.ResponseWriter, r *http.Request) {
	id, scope, ok := idAndScope(w, r)
	if !ok {
		return
	}
	res, err := h.svc.ProcessDailySales(r.Context(), id, claimsOf(r).UserID, scope)
	if err != nil {
		writeServiceError(w, h.log, "process daily sales", err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeData(w, status, res)
}
