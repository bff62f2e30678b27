package handler

import (
	"net/http"

	"github.com/medcircle/commons/api/internal/middleware"
	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/service"
)

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	svc *service.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// RegisterRoutes registers comment routes
func (h *CommentHandler) RegisterRoutes(mux *http.ServeMux, auth middleware.Middleware) {
	mux.Handle("POST /v1/posts/{postId}/comments", auth(http.HandlerFunc(h.Create)))
	mux.Handle("GET /v1/posts/{postId}/comments", auth(http.HandlerFunc(h.ListByPost)))
	mux.Handle("GET /v1/comments/{commentId}", auth(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /v1/comments/{commentId}", auth(http.HandlerFunc(h.Edit)))
	mux.Handle("DELETE /v1/comments/{commentId}", auth(http.HandlerFunc(h.SelfDelete)))
	mux.Handle("DELETE /v1/comments/{commentId}/cascade", auth(http.HandlerFunc(h.CascadeDelete)))
	mux.Handle("POST /v1/comments/{commentId}/approve", auth(http.HandlerFunc(h.Approve)))
	mux.Handle("POST /v1/comments/{commentId}/reject", auth(http.HandlerFunc(h.Reject)))
}

// Create handles POST /v1/posts/{postId}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req model.CreateCommentRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	comment, err := h.svc.Create(ctx, userID, postID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, comment)
}

// ListByPost handles GET /v1/posts/{postId}/comments
func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if middleware.GetUserID(ctx) == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	postID := r.PathValue("postId")
	if postID == "" {
		WriteError(w, model.NewBadRequestError("post ID required"))
		return
	}

	comments, err := h.svc.ListByPost(ctx, postID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, comments, len(comments))
}

// Get handles GET /v1/comments/{commentId}
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if middleware.GetUserID(ctx) == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	commentID := r.PathValue("commentId")
	if commentID == "" {
		WriteError(w, model.NewBadRequestError("comment ID required"))
		return
	}

	comment, err := h.svc.Get(ctx, commentID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, comment)
}

// Edit handles PATCH /v1/comments/{commentId}
func (h *CommentHandler) Edit(w http.ResponseWriter, r *http.Request) {
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

	var req model.EditCommentRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	comment, err := h.svc.Edit(ctx, userID, commentID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, comment)
}

// SelfDelete handles DELETE /v1/comments/{commentId} - author removes own comment
func (h *CommentHandler) SelfDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.SelfDelete(ctx, userID, commentID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// CascadeDelete handles DELETE /v1/comments/{commentId}/cascade - moderator
// removes a comment and its entire reply subtree
func (h *CommentHandler) CascadeDelete(w http.ResponseWriter, r *http.Request) {
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

	var req model.CascadeDeleteRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.svc.CascadeDelete(ctx, userID, commentID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result)
}

// Approve handles POST /v1/comments/{commentId}/approve
func (h *CommentHandler) Approve(w http.ResponseWriter, r *http.Request) {
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

	comment, err := h.svc.Approve(ctx, userID, commentID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, comment)
}

// Reject handles POST /v1/comments/{commentId}/reject
func (h *CommentHandler) Reject(w http.ResponseWriter, r *http.Request) {
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

	var req model.RejectContentRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.svc.Reject(ctx, userID, commentID, &req); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
