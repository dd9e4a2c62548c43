package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
)

// UserStore defines the database methods needed by user handlers.
type UserStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	ListUsers(ctx context.Context, branchID pgtype.Int8) ([]database.User, error)
	GetBranch(ctx context.Context, id int64) (database.Branch, error)
}

// UserHandler manages staff accounts. Mounted at /users behind the admin role.
type UserHandler struct {
	store UserStore
	log   *logrus.Logger
}

func NewUserHandler(store UserStore, log *logrus.Logger) *UserHandler {
	return &UserHandler{store: store, log: log}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	BranchID *int64 `json:"branch_id"`
}

const minPasswordLength = 8

// List returns active users, optionally filtered by ?branch_id.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r, claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return
	}
	var filter pgtype.Int8
	if id, ok := scope.BranchID(); ok {
		filter = database.Int8(id)
	}

	users, err := h.store.ListUsers(r.Context(), filter)
	if err != nil {
		h.log.WithError(err).Error("list users")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeData(w, http.StatusOK, resp)
}

// Create adds a user. Every role but admin must belong to a branch.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "email, password, full_name, and role are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	role, err := enum.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	var branch pgtype.Int8
	if req.BranchID != nil {
		if _, err := h.store.GetBranch(r.Context(), *req.BranchID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "branch does not exist")
				return
			}
			h.log.WithError(err).Error("create user: get branch")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		branch = database.Int8(*req.BranchID)
	} else if role != enum.RoleAdmin {
		writeError(w, http.StatusBadRequest, "branch_id is required for branch roles")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.WithError(err).Error("create user: hash password")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		BranchID:       branch,
		Email:          req.Email,
		HashedPassword: string(hashed),
		FullName:       req.FullName,
		Role:           string(role),
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		h.log.WithError(err).Error("create user")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeData(w, http.StatusCreated, toUserResponse(user))
}
