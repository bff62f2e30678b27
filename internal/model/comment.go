package model

import "time"

// CommentEdit is one entry of a comment's edit history.
type CommentEdit struct {
	Content  string    `json:"content"`
	EditedAt time.Time `json:"edited_at"`
}

// Comment is a reply on a post. ParentCommentID is nil for top-level
// comments and is set exactly once at creation; the parent graph is acyclic
// by construction and reparenting is not exposed.
type Comment struct {
	ID              string        `json:"id"`
	PostID          string        `json:"post_id"`
	AuthorID        string        `json:"author_id"`
	ParentCommentID *string       `json:"parent_comment_id,omitempty"`
	Content         string        `json:"content"`
	Status          PostStatus    `json:"status"`
	IsDeleted       bool          `json:"is_deleted"`
	Likes           []string      `json:"likes"`
	EditHistory     []CommentEdit `json:"edit_history,omitempty"`
	CreatedOn       time.Time     `json:"created_on"`
}

// LikeState returns the user's current reaction on the comment. Comments
// carry likes only, so the state is never ReactionDisliked.
func (c *Comment) LikeState(userID string) ReactionState {
	for _, id := range c.Likes {
		if id == userID {
			return ReactionLiked
		}
	}
	return ReactionNone
}

// CommentArchiveEntry is the pre-deletion snapshot written for every node a
// moderator cascade removes, so audits survive the deletion.
type CommentArchiveEntry struct {
	ID          string    `json:"id"`
	CommentID   string    `json:"comment_id"`
	PostID      string    `json:"post_id"`
	AuthorID    string    `json:"author_id"`
	Content     string    `json:"content"`
	LikeCount   int       `json:"like_count"`
	DeletedBy   string    `json:"deleted_by"`
	Reason      string    `json:"reason"`
	ArchivedOn  time.Time `json:"archived_on"`
	CascadeRoot string    `json:"cascade_root,omitempty"`
}

// CascadeIntentStatus tracks a cascading deletion saga.
type CascadeIntentStatus string

const (
	CascadeIntentPending  CascadeIntentStatus = "pending"
	CascadeIntentComplete CascadeIntentStatus = "complete"
)

// CascadeIntent is the durable intent record for a moderator cascade. It is
// written before any node is touched; the recovery sweep resumes any intent
// left pending by a crash mid-cascade. Remaining holds the ids not yet
// soft-deleted, in traversal order.
type CascadeIntent struct {
	ID          string              `json:"id"`
	RootID      string              `json:"root_id"`
	PostID      string              `json:"post_id"`
	ModeratorID string              `json:"moderator_id"`
	Reason      string              `json:"reason"`
	Remaining   []string            `json:"remaining"`
	DeletedSoFar int                `json:"deleted_so_far"`
	Status      CascadeIntentStatus `json:"status"`
	CreatedOn   time.Time           `json:"created_on"`
	CompletedOn *time.Time          `json:"completed_on,omitempty"`
}

// Constraints. CascadeChunkSize is sized so a chunk's worst-case statement
// count (tombstone, archive snapshot, and per-author counters for every
// node, plus the intent update) stays under the store's batch limit.
const (
	MaxCommentLength   = 10000
	MinModReasonLength = 5
	CascadeChunkSize   = 12
)

// CreateCommentRequest creates a comment on a post.
type CreateCommentRequest struct {
	Content         string  `json:"content"`
	ParentCommentID *string `json:"parent_comment_id,omitempty"`
}

// Validate checks the request fields.
func (r *CreateCommentRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Content == "" {
		errs = append(errs, FieldError{Field: "content", Message: "content is required"})
	}
	if len(r.Content) > MaxCommentLength {
		errs = append(errs, FieldError{Field: "content", Message: "content exceeds maximum length"})
	}
	return errs
}

// EditCommentRequest edits a comment's content.
type EditCommentRequest struct {
	Content string `json:"content"`
}

// CascadeDeleteRequest is a moderator cascading delete of a comment thread.
type CascadeDeleteRequest struct {
	Reason string `json:"reason"`
}

// CascadeDeleteResult reports the outcome of a cascading delete.
type CascadeDeleteResult struct {
	IntentID     string `json:"intent_id"`
	DeletedCount int    `json:"deleted_count"`
}
