package handler

import (
	"net/http"
	"strconv"

	"github.com/medcircle/commons/api/internal/middleware"
	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/service"
)

// PostHandler handles post HTTP requests
type PostHandler struct {
	svc *service.PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// RegisterRoutes registers post routes
func (h *PostHandler) RegisterRoutes(mux *http.ServeMux, auth middleware.Middleware) {
	mux.Handle("POST /v1/forums/{forumId}/posts", auth(http.HandlerFunc(h.Create)))
	mux.Handle("GET /v1/forums/{forumId}/posts", auth(http.HandlerFunc(h.ListByForum)))
	mux.Handle("GET /v1/forums/{forumId}/posts/pending", auth(http.HandlerFunc(h.ListPending)))
	mux.Handle("GET /v1/posts/{postId}", auth(http.HandlerFunc(h.Get)))
	mux.Handle("POST /v1/posts/{postId}/view", auth(http.HandlerFunc(h.View)))
	mux.Handle("POST /v1/posts/{postId}/approve", auth(http.HandlerFunc(h.Approve)))
	mux.Handle("POST /v1/posts/{postId}/reject", auth(http.HandlerFunc(h.Reject)))
	mux.Handle("DELETE /v1/posts/{postId}", auth(http.HandlerFunc(h.Remove)))
}

// Create handles POST /v1/forums/{forumId}/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req model.CreatePostRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	post, err := h.svc.Create(ctx, userID, forumID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, post)
}

// ListByForum handles GET /v1/forums/{forumId}/posts
func (h *PostHandler) ListByForum(w http.ResponseWriter, r *http.Request) {
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

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	posts, err := h.svc.ListByForum(ctx, forumID, limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, posts, len(posts))
}

// ListPending handles GET /v1/forums/{forumId}/posts/pending
func (h *PostHandler) ListPending(w http.ResponseWriter, r *http.Request) {
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

	posts, err := h.svc.ListPending(ctx, userID, forumID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, posts, len(posts))
}

// Get handles GET /v1/posts/{postId}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	post, err := h.svc.Get(ctx, postID, false)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, post)
}

// View handles POST /v1/posts/{postId}/view - fetch a post and count the view
func (h *PostHandler) View(w http.ResponseWriter, r *http.Request) {
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

	post, err := h.svc.Get(ctx, postID, true)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, post)
}

// Approve handles POST /v1/posts/{postId}/approve
func (h *PostHandler) Approve(w http.ResponseWriter, r *http.Request) {
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

	post, err := h.svc.Approve(ctx, userID, postID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, post)
}

// Reject handles POST /v1/posts/{postId}/reject
func (h *PostHandler) Reject(w http.ResponseWriter, r *http.Request) {
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

	var req model.RejectContentRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.svc.Reject(ctx, userID, postID, &req); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Remove handles DELETE /v1/posts/{postId}
func (h *PostHandler) Remove(w http.ResponseWriter, r *http.Request) {
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

	reason := r.URL.Query().Get("reason")

	if err := h.svc.Remove(ctx, userID, postID, reason); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
