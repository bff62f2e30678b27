package model

import "time"

// ModeratorEntry records when and by whom a forum moderator was appointed.
// AddedAt drives ownership succession; ties break on userId order.
type ModeratorEntry struct {
	AddedAt time.Time `json:"added_at"`
	AddedBy string    `json:"added_by"`
}

// PendingMember is a join request awaiting a moderator decision on a forum
// with RequiresApproval set.
type PendingMember struct {
	RequestedAt time.Time `json:"requested_at"`
	Message     string    `json:"message,omitempty"`
}

// BanEntry is an append-only record on the forum's ban list. Older entries
// for the same user stay with IsActive false.
type BanEntry struct {
	UserID   string    `json:"user_id"`
	Reason   string    `json:"reason"`
	Duration *int      `json:"duration_days,omitempty"`
	IsActive bool      `json:"is_active"`
	BannedBy string    `json:"banned_by"`
	BannedAt time.Time `json:"banned_at"`
}

// Forum is a community namespace with its own membership, moderator roles
// and ban list. MemberCount always equals len(Members); the invariant is
// preserved by routing every membership change through one atomic batch.
// The owner's role is derived from OwnerID at query time, never stored.
type Forum struct {
	ID                   string                    `json:"id"`
	Name                 string                    `json:"name"`
	Description          string                    `json:"description,omitempty"`
	OwnerID              string                    `json:"owner_id"`
	Moderators           map[string]ModeratorEntry `json:"moderators"`
	Members              []string                  `json:"members"`
	PendingMembers       map[string]PendingMember  `json:"pending_members"`
	BannedUsers          []BanEntry                `json:"banned_users"`
	RequiresApproval     bool                      `json:"requires_approval"`
	RequiresPostApproval bool                      `json:"requires_post_approval"`
	MemberCount          int                       `json:"member_count"`
	PostCount            int                       `json:"post_count"`
	CreatedOn            time.Time                 `json:"created_on"`
}

// IsMember reports whether userID is in the member set.
func (f *Forum) IsMember(userID string) bool {
	for _, id := range f.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// IsBanned reports whether userID has an active ban on this forum.
func (f *Forum) IsBanned(userID string) bool {
	for _, b := range f.BannedUsers {
		if b.UserID == userID && b.IsActive {
			return true
		}
	}
	return false
}

// Constraints
const (
	MaxForumNameLength = 80
	MaxForumDescLength = 2000
	MinBanReasonLength = 5
)

// CreateForumRequest creates a new forum owned by the caller.
type CreateForumRequest struct {
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	RequiresApproval     bool   `json:"requires_approval"`
	RequiresPostApproval bool   `json:"requires_post_approval"`
}

// Validate checks the request fields.
func (r *CreateForumRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if len(r.Name) > MaxForumNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name exceeds maximum length"})
	}
	if len(r.Description) > MaxForumDescLength {
		errs = append(errs, FieldError{Field: "description", Message: "description exceeds maximum length"})
	}
	return errs
}

// JoinForumRequest carries an optional message for approval-gated forums.
type JoinForumRequest struct {
	Message string `json:"message,omitempty"`
}

// DecideJoinRequest is a moderator decision on a pending membership request.
type DecideJoinRequest struct {
	Approve bool `json:"approve"`
}

// BanMemberRequest bans a user from a forum.
type BanMemberRequest struct {
	UserID   string `json:"user_id"`
	Reason   string `json:"reason"`
	Duration *int   `json:"duration_days,omitempty"`
}

// AppointModeratorRequest appoints a forum moderator.
type AppointModeratorRequest struct {
	UserID string `json:"user_id"`
}
