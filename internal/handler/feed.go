package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/service"
)

// FeedService is satisfied by *service.FeedService.
type FeedService interface {
	Activity(ctx context.Context, scope service.Scope, limit int32) ([]database.ActivityLog, error)
	Notifications(ctx context.Context, scope service.Scope, unreadOnly bool, limit int32) ([]database.Notification, error)
	MarkRead(ctx context.Context, id int64, scope service.Scope) (database.Notification, error)
}

type FeedHandler struct {
	svc FeedService
	log *logrus.Logger
}

func NewFeedHandler(svc FeedService, log *logrus.Logger) *FeedHandler {
	return &FeedHandler{svc: svc, log: log}
}

// RegisterRoutes registers the activity and notification feeds at the API root.
func (h *FeedHandler) RegisterRoutes(r chi.Router) {
	r.Get("/activity", h.Activity)
	r.Get("/notifications", h.Notifications)
	r.Post("/notifications/{id}/read", h.MarkRead)
}

func feedLimitParam(r *http.Request) int32 {
	v, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || v < 0 {
		return 0
	}
	return int32(v)
}

func (h *FeedHandler) Activity(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r, claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return
	}
	rows, err := h.svc.Activity(r.Context(), scope, feedLimitParam(r))
	if err != nil {
		writeServiceError(w, h.log, "list activity", err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

func (h *FeedHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r, claimsOf(r))
	if err != nil {
		writeScopeError(w, err)
		return
	}
	unread, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	rows, err := h.svc.Notifications(r.Context(), scope, unread, feedLimitParam(r))
	if err != nil {
		writeServiceError(w, h.log, "list notifications", err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

func (h *FeedHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, scope, ok := idAndScope(w, r)
	if !ok {
		return
	}
	n, err := h.svc.MarkRead(r.Context(), id, scope)
	if err != nil {
		writeServiceError(w, h.log, "mark notification read", err)
		return
	}
	writeData(w, http.StatusOK, n)
}
