package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/rotiroti/backoffice/internal/config"
	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
	"github.com/rotiroti/backoffice/internal/handler"
	mw "github.com/rotiroti/backoffice/internal/middleware"
	"github.com/rotiroti/backoffice/internal/service"
	"github.com/rotiroti/backoffice/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// hub may be nil, in which case notifications are stored but not pushed.
func New(cfg *config.Config, store database.Store, hub *ws.Hub, log *logrus.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var notifier service.Notifier
	if hub != nil {
		notifier = hub
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	dailySales := service.NewDailySalesService(store, notifier, log)
	consolidation := service.NewConsolidationService(store, notifier, log)
	cashBox := service.NewCashBoxService(store, notifier, log)
	transfers := service.NewTransferService(store, notifier, log)
	targets := service.NewTargetService(store, notifier, log)
	performance := service.NewPerformanceService(store, log)
	dashboard := service.NewDashboardService(store, log)
	feed := service.NewFeedService(store, log)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status, code := "ok", http.StatusOK
		if err := store.Ping(ctx); err != nil {
			log.WithError(err).Warn("health check")
			status, code = "unavailable", http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]string{"status": status, "version": cfg.AppVersion})
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": cfg.AppVersion})
	})

	// WebSocket route (handles auth internally via query param)
	if hub != nil {
		r.Get("/ws/events", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWS(hub, cfg.JWTSecret, cfg.AllowedOrigins, w, r)
		})
	}

	authHandler := handler.NewAuthHandler(store, cfg.JWTSecret, log)

	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r)

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/branches", handler.NewBranchHandler(store, log).RegisterRoutes)
			r.Route("/users", func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleAdmin))
				handler.NewUserHandler(store, log).RegisterRoutes(r)
			})

			r.Route("/daily-sales", handler.NewDailySalesHandler(dailySales, loc, log).RegisterRoutes)
			r.Route("/consolidated-sales", handler.NewConsolidatedHandler(consolidation, loc, log).RegisterRoutes)
			r.Route("/cash-box", func(r chi.Router) {
				r.Route("/transfers", handler.NewTransferHandler(transfers, loc, log).RegisterRoutes)
				handler.NewCashBoxHandler(cashBox, loc, log).RegisterRoutes(r)
			})
			r.Route("/targets", handler.NewTargetHandler(targets, loc, log).RegisterRoutes)
			r.Route("/dashboard", handler.NewDashboardHandler(dashboard, performance, targets, loc, log).RegisterRoutes)
			handler.NewFeedHandler(feed, log).RegisterRoutes(r)
		})
	})

	log.WithField("version", cfg.AppVersion).Debug("router initialized")
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
