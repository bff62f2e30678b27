package model

import "time"

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusActive  PostStatus = "active"
	PostStatusPending PostStatus = "pending"
)

// PostStats holds per-post counters.
type PostStats struct {
	CommentCount int `json:"comment_count"`
	ViewCount    int `json:"view_count"`
}

// Post is a forum post. Likes and Dislikes are disjoint user-id sets; the
// mutation engine keeps them disjoint and mirrors every transition into the
// author's aura.
type Post struct {
	ID        string     `json:"id"`
	AuthorID  string     `json:"author_id"`
	ForumID   string     `json:"forum_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Status    PostStatus `json:"status"`
	Likes     []string   `json:"likes"`
	Dislikes  []string   `json:"dislikes"`
	Stats     PostStats  `json:"stats"`
	IsDeleted bool       `json:"is_deleted"`
	CreatedOn time.Time  `json:"created_on"`
}

// ReactionState returns the user's current reaction on the post.
func (p *Post) ReactionState(userID string) ReactionState {
	for _, id := range p.Likes {
		if id == userID {
			return ReactionLiked
		}
	}
	for _, id := range p.Dislikes {
		if id == userID {
			return ReactionDisliked
		}
	}
	return ReactionNone
}

// ReactionState is a user's existing reaction on a piece of content.
type ReactionState string

const (
	ReactionNone     ReactionState = "none"
	ReactionLiked    ReactionState = "like"
	ReactionDisliked ReactionState = "dislike"
)

// ReactionAction is the requested reaction change.
type ReactionAction string

const (
	ReactionActionLike    ReactionAction = "like"
	ReactionActionDislike ReactionAction = "dislike"
	ReactionActionRemove  ReactionAction = "remove"
)

// IsValidReactionAction reports whether action is a known reaction action.
func IsValidReactionAction(action string) bool {
	switch ReactionAction(action) {
	case ReactionActionLike, ReactionActionDislike, ReactionActionRemove:
		return true
	}
	return false
}

// Constraints
const (
	MaxPostTitleLength   = 200
	MaxPostContentLength = 20000
)

// CreatePostRequest creates a post in a forum.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate checks the request fields.
func (r *CreatePostRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}
	if len(r.Title) > MaxPostTitleLength {
		errs = append(errs, FieldError{Field: "title", Message: "title exceeds maximum length"})
	}
	if r.Content == "" {
		errs = append(errs, FieldError{Field: "content", Message: "content is required"})
	}
	if len(r.Content) > MaxPostContentLength {
		errs = append(errs, FieldError{Field: "content", Message: "content exceeds maximum length"})
	}
	return errs
}

// ReactionRequest toggles a reaction on a post or comment.
type ReactionRequest struct {
	Action string `json:"action"` // like, dislike, remove
}

// ReactionResult is the authoritative post-mutation state returned to the
// caller so it never re-reads to converge.
type ReactionResult struct {
	State        ReactionState `json:"state"`
	LikeCount    int           `json:"like_count"`
	DislikeCount int           `json:"dislike_count"`
	AuraDelta    int           `json:"aura_delta"`
}

// RejectContentRequest rejects a pending post or comment before publication.
type RejectContentRequest struct {
	Reason string `json:"reason"`
}
