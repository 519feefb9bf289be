// Package router exposes the engine's operational HTTP surface: health,
// metrics and the internal sweep and query endpoints. This is an internal
// API; it carries no authentication and must not be reachable from outside
// the service mesh.
package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"merithub/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// New builds the ops router.
func New(sc *services.ServiceCollection, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	h := &handlers{services: sc, logger: logger}

	r.Get("/health", h.health)

	r.Route("/internal", func(r chi.Router) {
		r.Get("/metrics", h.metrics)
		r.Get("/badges", h.listDefinitions)
		r.Post("/sweeps/{userRef}", h.triggerSweep)
		r.Get("/users/{userRef}/badges", h.listUserBadges)
	})

	return r
}

type handlers struct {
	services *services.ServiceCollection
	logger   *zap.Logger
}

// health reports readiness of the database, cache and event bus.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	if err := h.services.HealthCheck(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// metrics exposes database and event bus counters for scraping.
func (h *handlers) metrics(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"database": h.services.DBManager.Metrics(),
	}
	if h.services.EventBus != nil {
		payload["event_bus"] = h.services.EventBus.Stats()
	}
	if h.services.Cache != nil {
		if stats, err := h.services.Cache.Stats(r.Context()); err == nil {
			payload["cache"] = stats
		}
	}
	h.writeJSON(w, http.StatusOK, payload)
}

// listDefinitions returns the registered badge catalog.
func (h *handlers) listDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := h.services.Badge.ListDefinitions(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"definitions": defs,
		"count":       len(defs),
	})
}

// triggerSweep runs a synchronous sweep for one user and returns its result.
func (h *handlers) triggerSweep(w http.ResponseWriter, r *http.Request) {
	userRef := chi.URLParam(r, "userRef")

	result, err := h.services.Badge.ProcessUserBadges(r.Context(), userRef)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// listUserBadges returns one user's grants, newest first.
func (h *handlers) listUserBadges(w http.ResponseWriter, r *http.Request) {
	userRef := chi.URLParam(r, "userRef")

	badges, err := h.services.Badge.GetUserBadges(r.Context(), userRef)
	if err != nil {
		h.writeError(w, err)
		return
	}
	count, err := h.services.Badge.CountUserBadges(r.Context(), userRef)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_ref": userRef,
		"badges":   badges,
		"count":    count,
	})
}

// ===============================
// RESPONSE HELPERS
// ===============================

func (h *handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) {
		status = serviceErr.GetStatusCode()
		message = serviceErr.Message
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Error(err))
	}

	h.writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
