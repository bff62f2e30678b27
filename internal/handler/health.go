package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/medcircle/commons/api/internal/database"
)

// HealthHandler reports service liveness and store reachability
type HealthHandler struct {
	store   database.Store
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store database.Store, version string) *HealthHandler {
	return &HealthHandler{store: store, version: version}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	storeStatus := "ok"
	code := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		status = "degraded"
		storeStatus = "unreachable"
		code = http.StatusServiceUnavailable
	}

	WriteJSON(w, code, map[string]string{
		"status":  status,
		"store":   storeStatus,
		"version": h.version,
	})
}
