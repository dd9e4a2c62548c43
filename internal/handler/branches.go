package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
	mw "github.com/rotiroti/backoffice/internal/middleware"
)

// BranchStore defines the database methods needed by branch handlers.
type BranchStore interface {
	CreateBranch(ctx context.Context, arg database.CreateBranchParams) (database.Branch, error)
	GetBranch(ctx context.Context, id int64) (database.Branch, error)
	ListBranches(ctx context.Context) ([]database.Branch, error)
}

type BranchHandler struct {
	store BranchStore
	log   *logrus.Logger
}

func NewBranchHandler(store BranchStore, log *logrus.Logger) *BranchHandler {
	return &BranchHandler{store: store, log: log}
}

// RegisterRoutes registers branch endpoints. Mounted at /branches.
func (h *BranchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.With(mw.RequireRole(enum.RoleAdmin)).Post("/", h.Create)
	r.With(mw.RequireBranchParam("id")).Get("/{id}", h.Get)
}

type createBranchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// List returns every branch for HQ and the caller's own branch otherwise.
func (h *BranchHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := claimsOf(r)
	branches, err := h.store.ListBranches(r.Context())
	if err != nil {
		h.log.WithError(err).Error("list branches")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !claims.IsHQ() {
		visible := []database.Branch{}
		for _, b := range branches {
			if claims.CanAccessBranch(b.ID) {
				visible = append(visible, b)
			}
		}
		branches = visible
	}
	writeData(w, http.StatusOK, branches)
}

func (h *BranchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	branch, err := h.store.GetBranch(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "branch not found")
			return
		}
		h.log.WithError(err).Error("get branch")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeData(w, http.StatusOK, branch)
}

func (h *BranchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBranchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	branch, err := h.store.CreateBranch(r.Context(), database.CreateBranchParams{
		Name:    req.Name,
		Address: strings.TrimSpace(req.Address),
		Phone:   strings.TrimSpace(req.Phone),
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "branch name already exists")
			return
		}
		h.log.WithError(err).Error("create branch")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeData(w, http.StatusCreated, branch)
}
