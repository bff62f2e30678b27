package handler

import (
	"net/http"
	"strconv"

	"github.com/medcircle/commons/api/internal/middleware"
	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/service"
)

// ForumHandler handles forum membership and ownership requests
type ForumHandler struct {
	svc *service.ForumService
}

// NewForumHandler creates a new forum handler
func NewForumHandler(svc *service.ForumService) *ForumHandler {
	return &ForumHandler{svc: svc}
}

// RegisterRoutes registers forum routes
func (h *ForumHandler) RegisterRoutes(mux *http.ServeMux, auth middleware.Middleware) {
	mux.Handle("GET /v1/forums", auth(http.HandlerFunc(h.List)))
	mux.Handle("POST /v1/forums", auth(http.HandlerFunc(h.Create)))
	mux.Handle("GET /v1/forums/{forumId}", auth(http.HandlerFunc(h.Get)))
	mux.Handle("POST /v1/forums/{forumId}/join", auth(http.HandlerFunc(h.Join)))
	mux.Handle("POST /v1/forums/{forumId}/leave", auth(http.HandlerFunc(h.Leave)))
	mux.Handle("POST /v1/forums/{forumId}/requests/{userId}/decide", auth(http.HandlerFunc(h.DecideJoin)))
	mux.Handle("POST /v1/forums/{forumId}/ban", auth(http.HandlerFunc(h.Ban)))
	mux.Handle("POST /v1/forums/{forumId}/bans/{userId}/unban", auth(http.HandlerFunc(h.Unban)))
	mux.Handle("POST /v1/forums/{forumId}/moderators", auth(http.HandlerFunc(h.AppointModerator)))
}

// List handles GET /v1/forums
func (h *ForumHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if middleware.GetUserID(ctx) == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	forums, err := h.svc.List(ctx, limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, forums, len(forums))
}

// Create handles POST /v1/forums
func (h *ForumHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreateForumRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	forum, err := h.svc.Create(ctx, userID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, forum)
}

// Get handles GET /v1/forums/{forumId}
func (h *ForumHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if middleware.GetUserID(ctx) == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	forumID := r.PathValue("forumId")
	if forumID == "" {
		WriteError(w, model.NewBadRequestError("forum ID required"))
		return
	}

	forum, err := h.svc.Get(ctx, forumID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, forum)
}

// Join handles POST /v1/forums/{forumId}/join
func (h *ForumHandler) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	forumID := r.PathValue("forumId")
	if forumID == "" {
		WriteError(w, model.NewBadRequestError("forum ID required"))
		return
	}

	// Body is optional; an empty body joins with no message.
	var req model.JoinForumRequest
	if r.ContentLength > 0 {
		if err := DecodeJSON(r, &req); err != nil {
			WriteError(w, model.NewBadRequestError("invalid request body"))
			return
		}
	}

	forum, err := h.svc.Join(ctx, userID, forumID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, forum)
}

// Leave handles POST /v1/forums/{forumId}/leave
func (h *ForumHandler) Leave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	forumID := r.PathValue("forumId")
	if forumID == "" {
		WriteError(w, model.NewBadRequestError("forum ID required"))
		return
	}

	forum, err := h.svc.Leave(ctx, userID, forumID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, forum)
}

// DecideJoin handles POST /v1/forums/{forumId}/requests/{userId}/decide
func (h *ForumHandler) DecideJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	forumID := r.PathValue("forumId")
	userID := r.PathValue("userId")
	if forumID == "" || userID == "" {
		WriteError(w, model.NewBadRequestError("forum ID and user ID required"))
		return
	}

	var req model.DecideJoinRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	forum, err := h.svc.DecideJoin(ctx, actorID, forumID, userID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, forum)
}

// Ban handles POST /v1/forums/{forumId}/ban
func (h *ForumHandler) Ban(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	forumID := r.PathValue("forumId")
	if forumID == "" {
		WriteError(w, model.NewBadRequestError("forum ID required"))
		return
	}

	var req model.BanMemberRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "user_id", Message: "user_id is required"},
		}))
		return
	}

	forum, err := h.svc.Ban(ctx, actorID, forumID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, forum)
}

// Unban handles POST /v1/forums/{forumId}/bans/{userId}/unban
func (h *ForumHandler) Unban(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	forumID := r.PathValue("forumId")
	userID := r.PathValue("userId")
	if forumID == "" || userID == "" {
		WriteError(w, model.NewBadRequestError("forum ID and user ID required"))
		return
	}

	forum, err := h.svc.Unban(ctx, actorID, forumID, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, forum)
}

// AppointModerator handles POST /v1/forums/{forumId}/moderators
func (h *ForumHandler) AppointModerator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	forumID := r.PathValue("forumId")
	if forumID == "" {
		WriteError(w, model.NewBadRequestError("forum ID required"))
		return
	}

	var req model.AppointModeratorRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "user_id", Message: "user_id is required"},
		}))
		return
	}

	forum, err := h.svc.AppointModerator(ctx, actorID, forumID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, forum)
}
