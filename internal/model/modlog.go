package model

import "time"

// ModerationActionType labels a moderation log entry.
type ModerationActionType string

const (
	ActionWarning             ModerationActionType = "warning"
	ActionRemoveContent       ModerationActionType = "remove_content"
	ActionRejectContent       ModerationActionType = "reject_content"
	ActionCascadeDelete       ModerationActionType = "cascade_delete"
	ActionBan                 ModerationActionType = "ban"
	ActionSuspension          ModerationActionType = "suspension"
	ActionAutomatedSuspension ModerationActionType = "automated_suspension"
	ActionUnsuspension        ModerationActionType = "unsuspension"
	ActionStrike              ModerationActionType = "strike"
	ActionStrikeLifted        ModerationActionType = "strike_lifted"
)

// ModerationLogEntry is one append-only audit record. Every engine action
// produces exactly one entry; automated entries come from the strike engine,
// never from a moderator.
type ModerationLogEntry struct {
	ID          string                 `json:"id"`
	Action      ModerationActionType   `json:"action"`
	TargetType  string                 `json:"target_type"`
	TargetID    string                 `json:"target_id"`
	Reason      string                 `json:"reason"`
	PerformedBy string                 `json:"performed_by"`
	Severity    string                 `json:"severity,omitempty"`
	Automated   bool                   `json:"automated"`
	Details     map[string]interface{} `json:"details,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// ModLogFilter narrows log queries to a time window and optional dimensions.
type ModLogFilter struct {
	Action      *ModerationActionType
	PerformedBy *string
	Since       *time.Time
	Until       *time.Time
	Limit       int
}

// ModLogSummary aggregates entries for the dashboard over a window.
type ModLogSummary struct {
	Window       string         `json:"window"`
	Total        int            `json:"total"`
	ByAction     map[string]int `json:"by_action"`
	ByModerator  map[string]int `json:"by_moderator"`
	BySeverity   map[string]int `json:"by_severity"`
	Automated    int            `json:"automated"`
}

// GlobalQueueEntry is a copy of a forum-scoped moderation event forwarded to
// the platform-wide review queue for cross-community pattern detection.
type GlobalQueueEntry struct {
	ID        string                 `json:"id"`
	Kind      string                 `json:"kind"` // ban, rejection
	ForumID   string                 `json:"forum_id,omitempty"`
	UserID    string                 `json:"user_id"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedOn time.Time              `json:"created_on"`
}
