package handler

import (
	"net/http"

	"github.com/medcircle/commons/api/internal/middleware"
	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/service"
)

// ReactionHandler handles reaction toggle requests
type ReactionHandler struct {
	svc *service.MutationService
}

// NewReactionHandler creates a new reaction handler
func NewReactionHandler(svc *service.MutationService) *ReactionHandler {
	return &ReactionHandler{svc: svc}
}

// RegisterRoutes registers reaction routes
func (h *ReactionHandler) RegisterRoutes(mux *http.ServeMux, auth middleware.Middleware) {
	mux.Handle("POST /v1/posts/{postId}/reaction", auth(http.HandlerFunc(h.ReactToPost)))
	mux.Handle("POST /v1/comments/{commentId}/reaction", auth(http.HandlerFunc(h.ReactToComment)))
}

// ReactToPost handles POST /v1/posts/{postId}/reaction
func (h *ReactionHandler) ReactToPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	postID := r.PathValue("postId")
	if postID == "" {
		WriteError(w, model.NewBadRequestError("post ID required"))
		return
	}

	var req model.ReactionRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.svc.ReactToPost(ctx, userID, postID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result)
}

// ReactToComment handles POST /v1/comments/{commentId}/reaction
func (h *ReactionHandler) ReactToComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	commentID := r.PathValue("commentId")
	if commentID == "" {
		WriteError(w, model.NewBadRequestError("comment ID required"))
		return
	}

	var req model.ReactionRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.svc.ReactToComment(ctx, userID, commentID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result)
}
