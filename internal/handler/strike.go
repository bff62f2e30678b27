package handler

import (
	"net/http"

	"github.com/medcircle/commons/api/internal/middleware"
	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/service"
)

// StrikeHandler handles strike and suspension HTTP requests
type StrikeHandler struct {
	svc *service.StrikeService
}

// NewStrikeHandler creates a new strike handler
func NewStrikeHandler(svc *service.StrikeService) *StrikeHandler {
	return &StrikeHandler{svc: svc}
}

// RegisterRoutes registers strike routes
func (h *StrikeHandler) RegisterRoutes(mux *http.ServeMux, auth middleware.Middleware) {
	mux.Handle("POST /v1/users/{userId}/strikes", auth(http.HandlerFunc(h.Issue)))
	mux.Handle("GET /v1/users/{userId}/strikes", auth(http.HandlerFunc(h.Summary)))
	mux.Handle("POST /v1/strikes/{strikeId}/lift", auth(http.HandlerFunc(h.Lift)))
	mux.Handle("POST /v1/users/{userId}/suspend", auth(http.HandlerFunc(h.Suspend)))
	mux.Handle("POST /v1/users/{userId}/unsuspend", auth(http.HandlerFunc(h.Unsuspend)))
}

// Issue handles POST /v1/users/{userId}/strikes
func (h *StrikeHandler) Issue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	var req model.IssueStrikeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	strike, err := h.svc.Issue(ctx, actorID, userID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, strike)
}

// Summary handles GET /v1/users/{userId}/strikes - the user's strike
// standing, visible to the user themselves and to moderators
func (h *StrikeHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	summary, err := h.svc.Summary(ctx, actorID, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, summary)
}

// Lift handles POST /v1/strikes/{strikeId}/lift
func (h *StrikeHandler) Lift(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	strikeID := r.PathValue("strikeId")
	if strikeID == "" {
		WriteError(w, model.NewBadRequestError("strike ID required"))
		return
	}

	var req model.LiftStrikeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.svc.Lift(ctx, actorID, strikeID, &req); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

type suspendRequest struct {
	Reason string `json:"reason"`
	Days   int    `json:"days"` // -1 for permanent
}

// Suspend handles POST /v1/users/{userId}/suspend - manual suspension, admin only
func (h *StrikeHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	var req suspendRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.Days == 0 || req.Days < -1 {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "days", Message: "days must be positive, or -1 for permanent"},
		}))
		return
	}

	if err := h.svc.Suspend(ctx, actorID, userID, req.Reason, req.Days); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

type unsuspendRequest struct {
	Reason string `json:"reason"`
}

// Unsuspend handles POST /v1/users/{userId}/unsuspend - admin only
func (h *StrikeHandler) Unsuspend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	var req unsuspendRequest
	if r.ContentLength > 0 {
		if err := DecodeJSON(r, &req); err != nil {
			WriteError(w, model.NewBadRequestError("invalid request body"))
			return
		}
	}

	if err := h.svc.Unsuspend(ctx, actorID, userID, req.Reason); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
