package service

import (
	"context"
	"log/slog"
)

// Notifier is the notification sink consumed by the engines. Sends are
// fire-and-forget: failures are logged and never block or fail the
// moderation action that triggered them.
type Notifier interface {
	Send(ctx context.Context, userID string, eventType EventType, payload map[string]interface{})
}

// HubNotifier delivers notifications over the event hub's user topic.
type HubNotifier struct {
	hub    *EventHub
	logger *slog.Logger
}

// NewHubNotifier creates a hub-backed notifier
func NewHubNotifier(hub *EventHub, logger *slog.Logger) *HubNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &HubNotifier{hub: hub, logger: logger}
}

// Send publishes the notification to the user's subscribers.
func (n *HubNotifier) Send(ctx context.Context, userID string, eventType EventType, payload map[string]interface{}) {
	if n.hub == nil {
		n.logger.Warn("notification dropped, no hub configured",
			"user_id", userID,
			"type", eventType)
		return
	}
	n.hub.SendToUser(userID, Event{Type: eventType, Data: payload})
	n.logger.Debug("notification sent",
		"user_id", userID,
		"type", eventType)
}
