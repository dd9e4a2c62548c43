package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/auth"
	"github.com/rotiroti/backoffice/internal/middleware"
	"github.com/rotiroti/backoffice/internal/service"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("encode JSON response")
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Message: message})
}

// writeServiceError maps service error classes onto HTTP statuses. Anything
// unclassified is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, log *logrus.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		log.WithError(err).Error(op)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body")
	}
	return nil
}

func parseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, strings.TrimSpace(s))
}

// parseOptionalDate reads a yyyy-mm-dd query parameter; absent means nil.
func parseOptionalDate(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be yyyy-mm-dd", name)
	}
	return &d, nil
}

// dateOrToday reads a yyyy-mm-dd query parameter, defaulting to today in loc.
func dateOrToday(r *http.Request, name string, loc *time.Location) (time.Time, error) {
	d, err := parseOptionalDate(r, name)
	if err != nil {
		return time.Time{}, err
	}
	if d != nil {
		return *d, nil
	}
	return today(loc), nil
}

// today is the current calendar date in loc, as UTC midnight.
func today(loc *time.Location) time.Time {
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// monthOrCurrent reads month and year query parameters, defaulting to the
// current month in loc.
func monthOrCurrent(r *http.Request, loc *time.Location) (int, int, error) {
	now := time.Now().In(loc)
	month, year := int(now.Month()), now.Year()
	q := r.URL.Query()
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("month must be between 1 and 12")
		}
		month = m
	}
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 2000 {
			return 0, 0, fmt.Errorf("invalid year")
		}
		year = y
	}
	return month, year, nil
}

func parsePagination(r *http.Request) (int32, int32) {
	limit, offset := 50, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		offset = v
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return int32(limit), int32(offset)
}

// errForbiddenBranch is returned when a branch-bound caller names another branch.
var errForbiddenBranch = errors.New("access denied for this branch")

// callerScope is everything the caller may see: every branch for HQ,
// otherwise their own branch.
func callerScope(claims *auth.Claims) (service.Scope, error) {
	if claims.IsHQ() {
		return service.AllBranches(), nil
	}
	if claims.BranchID == nil {
		return service.Scope{}, errForbiddenBranch
	}
	return service.Branch(*claims.BranchID), nil
}

// requestScope narrows callerScope by the branch_id query parameter.
// HQ callers get every branch for "", "0" or "all".
func requestScope(r *http.Request, claims *auth.Claims) (service.Scope, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("branch_id"))
	if raw == "" || raw == "0" || strings.EqualFold(raw, "all") {
		return callerScope(claims)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return service.Scope{}, fmt.Errorf("%w: invalid branch_id", service.ErrValidation)
	}
	if !claims.CanAccessBranch(id) {
		return service.Scope{}, errForbiddenBranch
	}
	return service.Branch(id), nil
}

// targetBranch resolves the branch a write applies to. Branch-bound callers
// default to their own branch; HQ callers must name one.
func targetBranch(claims *auth.Claims, requested int64) (int64, error) {
	if requested == 0 {
		if claims.BranchID != nil && !claims.IsHQ() {
			return *claims.BranchID, nil
		}
		return 0, fmt.Errorf("%w: branch_id is required", service.ErrValidation)
	}
	if !claims.CanAccessBranch(requested) {
		return 0, errForbiddenBranch
	}
	return requested, nil
}

// writeScopeError answers a failed scope or branch resolution.
func writeScopeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errForbiddenBranch) {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// claimsOf returns the authenticated caller. Routes using it sit behind
// middleware.Authenticate.
func claimsOf(r *http.Request) *auth.Claims {
	return middleware.ClaimsFromContext(r.Context())
}
