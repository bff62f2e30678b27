package model

import "time"

// UserStats holds the per-user counters maintained by the mutation engine.
// Aura is the reputation score derived from reactions to the user's content.
type UserStats struct {
	PostCount          int `json:"post_count"`
	CommentCount       int `json:"comment_count"`
	Aura               int `json:"aura"`
	ContributionCount  int `json:"contribution_count"`
	JoinedForumsCount  int `json:"joined_forums_count"`
}

// Suspension describes a user's current suspension state. EndDate is nil for
// permanent suspensions.
type Suspension struct {
	IsSuspended bool       `json:"is_suspended"`
	Reason      string     `json:"reason,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Automated   bool       `json:"automated,omitempty"`
}

// User represents a platform member.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	DisplayName  string       `json:"display_name"`
	Role         PlatformRole `json:"role"`
	Stats        UserStats    `json:"stats"`
	Suspension   Suspension   `json:"suspension"`
	JoinedForums []string     `json:"joined_forums,omitempty"`

	// HighestStrikeThreshold records the highest suspension threshold the
	// user's active strike points have crossed, so a crossing fires exactly
	// once even when points fluctuate above it.
	HighestStrikeThreshold int `json:"highest_strike_threshold,omitempty"`

	CreatedOn time.Time `json:"created_on"`
}

// HasJoined reports whether the user is a member of the given forum.
func (u *User) HasJoined(forumID string) bool {
	for _, id := range u.JoinedForums {
		if id == forumID {
			return true
		}
	}
	return false
}
