package handler

import (
	"fmt"
	"net/http"

	"github.com/medcircle/commons/api/internal/middleware"
	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/service"
	"github.com/google/uuid"
)

// EventsHandler handles SSE event streaming
type EventsHandler struct {
	eventHub *service.EventHub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(eventHub *service.EventHub) *EventsHandler {
	return &EventsHandler{eventHub: eventHub}
}

// RegisterRoutes registers event streaming routes
func (h *EventsHandler) RegisterRoutes(mux *http.ServeMux, auth middleware.Middleware) {
	mux.Handle("GET /v1/events/stream", auth(http.HandlerFunc(h.Stream)))
}

// Stream handles GET /v1/events/stream. With a forum query param it streams
// forum activity; without one it streams events directed at the caller
// (join decisions, rejections, strikes, suspensions).
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, model.NewInternalError("streaming not supported"))
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	subscriberID := uuid.New().String()
	forumID := r.URL.Query().Get("forum")

	var sub *service.Subscriber
	if forumID != "" {
		sub = h.eventHub.Subscribe(forumID, subscriberID)
		defer h.eventHub.Unsubscribe(forumID, subscriberID)
	} else {
		sub = h.eventHub.SubscribeUser(userID, subscriberID)
		defer h.eventHub.UnsubscribeUser(userID, subscriberID)
	}

	// Send initial connection event
	fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":\"%s\"}\n\n", subscriberID)
	flusher.Flush()

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			fmt.Fprint(w, event.Format())
			flusher.Flush()

		case <-sub.Done:
			return

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}
