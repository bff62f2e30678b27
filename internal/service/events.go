package service

import (
	"encoding/json"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	// Forum events
	EventMemberJoined    EventType = "forum.member_joined"
	EventMemberLeft      EventType = "forum.member_left"
	EventMemberBanned    EventType = "forum.member_banned"
	EventOwnerChanged    EventType = "forum.owner_changed"
	EventPostCreated     EventType = "forum.post_created"
	EventReactionUpdated EventType = "forum.reaction_updated"
	EventCommentCreated  EventType = "forum.comment_created"
	EventCommentsRemoved EventType = "forum.comments_removed"

	// Moderation events
	EventReportCreated  EventType = "moderation.report_created"
	EventReportReviewed EventType = "moderation.report_reviewed"

	// User-directed events
	EventJoinDecided     EventType = "membership.decided"
	EventContentRejected EventType = "content.rejected"
	EventContentApproved EventType = "content.approved"
	EventStrikeIssued    EventType = "strike.issued"
	EventSuspended       EventType = "account.suspended"
	EventUnsuspended     EventType = "account.unsuspended"

	// System events
	EventHeartbeat EventType = "heartbeat"
)

// Event represents a server-sent event
type Event struct {
	Type    EventType   `json:"type"`
	Data    interface{} `json:"data"`
	ForumID string      `json:"-"` // Used for routing, not sent to client
}

// Format returns the SSE formatted string
func (e *Event) Format() string {
	data, _ := json.Marshal(e.Data)
	return "event: " + string(e.Type) + "\ndata: " + string(data) + "\n\n"
}

// Subscriber represents a connected SSE client
type Subscriber struct {
	ID      string
	ForumID string
	Events  chan *Event
	Done    chan struct{}
}

// EventHub manages SSE subscriptions and event broadcasting. Subscriptions
// are long-lived and independently cancelable; publishing never blocks the
// mutation that triggered it (full subscriber buffers are skipped).
type EventHub struct {
	mu              sync.RWMutex
	subscribers     map[string]map[string]*Subscriber // forumID -> subscriberID -> subscriber
	userSubscribers map[string]map[string]*Subscriber // userID -> subscriberID -> subscriber
	heartbeat       *time.Ticker
	done            chan struct{}
}

// NewEventHub creates a new event hub
func NewEventHub() *EventHub {
	hub := &EventHub{
		subscribers:     make(map[string]map[string]*Subscriber),
		userSubscribers: make(map[string]map[string]*Subscriber),
		done:            make(chan struct{}),
	}
	// Start heartbeat
	hub.heartbeat = time.NewTicker(30 * time.Second)
	go hub.sendHeartbeats()
	return hub
}

// Subscribe adds a new subscriber for a forum
func (h *EventHub) Subscribe(forumID, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:      subscriberID,
		ForumID: forumID,
		Events:  make(chan *Event, 100), // Buffer to prevent blocking
		Done:    make(chan struct{}),
	}

	if h.subscribers[forumID] == nil {
		h.subscribers[forumID] = make(map[string]*Subscriber)
	}
	h.subscribers[forumID][subscriberID] = sub

	return sub
}

// Unsubscribe removes a subscriber
func (h *EventHub) Unsubscribe(forumID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if forumSubs, ok := h.subscribers[forumID]; ok {
		if sub, ok := forumSubs[subscriberID]; ok {
			close(sub.Done)
			close(sub.Events)
			delete(forumSubs, subscriberID)
		}
		if len(forumSubs) == 0 {
			delete(h.subscribers, forumID)
		}
	}
}

// Publish sends an event to all subscribers of a forum
func (h *EventHub) Publish(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	forumSubs, ok := h.subscribers[event.ForumID]
	if !ok {
		return
	}

	for _, sub := range forumSubs {
		select {
		case sub.Events <- event:
			// Event sent successfully
		default:
			// Buffer full, skip this subscriber
		}
	}
}

// SubscribeUser adds a new subscriber for a specific user (decisions,
// rejections, suspensions)
func (h *EventHub) SubscribeUser(userID, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:     subscriberID,
		Events: make(chan *Event, 100),
		Done:   make(chan struct{}),
	}

	if h.userSubscribers[userID] == nil {
		h.userSubscribers[userID] = make(map[string]*Subscriber)
	}
	h.userSubscribers[userID][subscriberID] = sub

	return sub
}

// UnsubscribeUser removes a user subscriber
func (h *EventHub) UnsubscribeUser(userID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userSubs, ok := h.userSubscribers[userID]; ok {
		if sub, ok := userSubs[subscriberID]; ok {
			close(sub.Done)
			close(sub.Events)
			delete(userSubs, subscriberID)
		}
		if len(userSubs) == 0 {
			delete(h.userSubscribers, userID)
		}
	}
}

// SendToUser sends an event to all subscribers of a specific user
func (h *EventHub) SendToUser(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userSubs, ok := h.userSubscribers[userID]
	if !ok {
		return
	}

	for _, sub := range userSubs {
		select {
		case sub.Events <- &event:
			// Event sent successfully
		default:
			// Buffer full, skip this subscriber
		}
	}
}

// sendHeartbeats sends periodic heartbeats to all subscribers
func (h *EventHub) sendHeartbeats() {
	for {
		select {
		case <-h.heartbeat.C:
			h.mu.RLock()
			event := &Event{
				Type: EventHeartbeat,
				Data: map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				},
			}
			for forumID, forumSubs := range h.subscribers {
				event.ForumID = forumID
				for _, sub := range forumSubs {
					select {
					case sub.Events <- event:
					default:
					}
				}
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}

// Close stops the event hub
func (h *EventHub) Close() {
	close(h.done)
	h.heartbeat.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()

	for forumID, forumSubs := range h.subscribers {
		for _, sub := range forumSubs {
			close(sub.Done)
			close(sub.Events)
		}
		delete(h.subscribers, forumID)
	}
	for userID, userSubs := range h.userSubscribers {
		for _, sub := range userSubs {
			close(sub.Done)
			close(sub.Events)
		}
		delete(h.userSubscribers, userID)
	}
}

// SubscriberCount returns the number of subscribers for a forum
func (h *EventHub) SubscriberCount(forumID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if forumSubs, ok := h.subscribers[forumID]; ok {
		return len(forumSubs)
	}
	return 0
}
