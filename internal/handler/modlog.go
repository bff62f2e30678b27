package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/medcircle/commons/api/internal/middleware"
	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/service"
)

// ModLogHandler handles moderation log and queue HTTP requests
type ModLogHandler struct {
	svc *service.ModLogService
}

// NewModLogHandler creates a new moderation log handler
func NewModLogHandler(svc *service.ModLogService) *ModLogHandler {
	return &ModLogHandler{svc: svc}
}

// RegisterRoutes registers moderation log routes
func (h *ModLogHandler) RegisterRoutes(mux *http.ServeMux, auth middleware.Middleware) {
	mux.Handle("GET /v1/moderation/log", auth(http.HandlerFunc(h.List)))
	mux.Handle("GET /v1/moderation/log/summary", auth(http.HandlerFunc(h.Summary)))
	mux.Handle("GET /v1/moderation/queue", auth(http.HandlerFunc(h.GlobalQueue)))
	mux.Handle("GET /v1/moderation/cascades/{rootId}", auth(http.HandlerFunc(h.CascadeArchive)))
}

// List handles GET /v1/moderation/log
func (h *ModLogHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var filter model.ModLogFilter
	q := r.URL.Query()
	if v := q.Get("action"); v != "" {
		action := model.ModerationActionType(v)
		filter.Action = &action
	}
	if v := q.Get("performed_by"); v != "" {
		filter.PerformedBy = &v
	}
	if v := q.Get("since"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			WriteError(w, model.NewValidationError([]model.FieldError{
				{Field: "since", Message: "must be an RFC 3339 timestamp"},
			}))
			return
		}
		filter.Since = &ts
	}
	if v := q.Get("until"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			WriteError(w, model.NewValidationError([]model.FieldError{
				{Field: "until", Message: "must be an RFC 3339 timestamp"},
			}))
			return
		}
		filter.Until = &ts
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			filter.Limit = n
		}
	}

	entries, err := h.svc.List(ctx, userID, filter)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, entries, len(entries))
}

// Summary handles GET /v1/moderation/log/summary
func (h *ModLogHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	summary, err := h.svc.Summary(ctx, userID, r.URL.Query().Get("window"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, summary)
}

// GlobalQueue handles GET /v1/moderation/queue
func (h *ModLogHandler) GlobalQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.svc.GlobalQueue(ctx, userID, limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, entries, len(entries))
}

// CascadeArchive handles GET /v1/moderation/cascades/{rootId} - the archived
// snapshots left behind by a cascading comment delete
func (h *ModLogHandler) CascadeArchive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	rootID := r.PathValue("rootId")
	if rootID == "" {
		WriteError(w, model.NewBadRequestError("root comment ID required"))
		return
	}

	entries, err := h.svc.CascadeArchive(ctx, userID, rootID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, entries, len(entries))
}
