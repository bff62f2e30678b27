package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// PostRepository handles post data access
type PostRepository struct {
	db database.Store
}

// NewPostRepository creates a new post repository
func NewPostRepository(db database.Store) *PostRepository {
	return &PostRepository{db: db}
}

// CreateStatement inserts a post with a caller-chosen id so the insert can
// join an atomic batch alongside the forum and author counter updates.
func (r *PostRepository) CreateStatement(id string, post *model.Post) database.Statement {
	return database.Statement{
		Query: `
			CREATE type::thing("post", $pid) CONTENT {
				author_id: $author_id,
				forum_id: $forum_id,
				title: $title,
				content: $content,
				status: $status,
				likes: [],
				dislikes: [],
				stats: { comment_count: 0, view_count: 0 },
				is_deleted: false,
				created_on: time::now()
			}
		`,
		Vars: map[string]interface{}{
			"pid":       id,
			"author_id": post.AuthorID,
			"forum_id":  post.ForumID,
			"title":     post.Title,
			"content":   post.Content,
			"status":    post.Status,
		},
	}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	query := `SELECT * FROM type::record($id)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return parsePostFromMap(m), nil
}

// ListByForum retrieves non-deleted posts in a forum. Pending posts are
// included only when includePending is set (moderator views).
func (r *PostRepository) ListByForum(ctx context.Context, forumID string, includePending bool, limit int) ([]*model.Post, error) {
	query := `
		SELECT * FROM post
		WHERE forum_id = $forum_id
		AND is_deleted = false
	`
	if !includePending {
		query += ` AND status = "active"`
	}
	query += ` ORDER BY created_on DESC LIMIT $limit`

	result, err := r.db.Query(ctx, query, map[string]interface{}{
		"forum_id": forumID,
		"limit":    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return parsePostsFromQuery(result), nil
}

// ListPendingByForum retrieves posts awaiting approval in a forum.
func (r *PostRepository) ListPendingByForum(ctx context.Context, forumID string) ([]*model.Post, error) {
	query := `
		SELECT * FROM post
		WHERE forum_id = $forum_id
		AND status = "pending"
		AND is_deleted = false
		ORDER BY created_on ASC
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{"forum_id": forumID})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending posts: %w", err)
	}
	return parsePostsFromQuery(result), nil
}

// IncrementViewCount bumps the view counter outside any batch; view counts
// are best-effort and never part of a consistency contract.
func (r *PostRepository) IncrementViewCount(ctx context.Context, id string) error {
	query := `UPDATE type::record($id) SET stats.view_count += 1`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": id})
}

// Statement builders for atomic batches

// AddLikeStatement adds userID to the like set.
func (r *PostRepository) AddLikeStatement(postID, userID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET likes += $user_id`,
		Vars:  map[string]interface{}{"id": postID, "user_id": userID},
	}
}

// RemoveLikeStatement removes userID from the like set.
func (r *PostRepository) RemoveLikeStatement(postID, userID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET likes -= $user_id`,
		Vars:  map[string]interface{}{"id": postID, "user_id": userID},
	}
}

// AddDislikeStatement adds userID to the dislike set.
func (r *PostRepository) AddDislikeStatement(postID, userID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET dislikes += $user_id`,
		Vars:  map[string]interface{}{"id": postID, "user_id": userID},
	}
}

// RemoveDislikeStatement removes userID from the dislike set.
func (r *PostRepository) RemoveDislikeStatement(postID, userID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET dislikes -= $user_id`,
		Vars:  map[string]interface{}{"id": postID, "user_id": userID},
	}
}

// SetStatusStatement moves a post between pending and active.
func (r *PostRepository) SetStatusStatement(postID string, status model.PostStatus) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET status = $status`,
		Vars:  map[string]interface{}{"id": postID, "status": status},
	}
}

// SoftDeleteStatement tombstones a post.
func (r *PostRepository) SoftDeleteStatement(postID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET is_deleted = true`,
		Vars:  map[string]interface{}{"id": postID},
	}
}

// DeleteStatement hard-deletes a post (pre-publication rejection only;
// published content is soft-deleted).
func (r *PostRepository) DeleteStatement(postID string) database.Statement {
	return database.Statement{
		Query: `DELETE type::record($id)`,
		Vars:  map[string]interface{}{"id": postID},
	}
}

// IncrementCommentCountStatement shifts the post's comment counter by delta.
func (r *PostRepository) IncrementCommentCountStatement(postID string, delta int) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET stats.comment_count += $delta`,
		Vars:  map[string]interface{}{"id": postID, "delta": delta},
	}
}

// Parsing

func parsePostFromMap(m map[string]interface{}) *model.Post {
	p := &model.Post{
		ID:        extractRecordID(m["id"]),
		AuthorID:  convertSurrealID(m["author_id"]),
		ForumID:   convertSurrealID(m["forum_id"]),
		Title:     getString(m, "title"),
		Content:   getString(m, "content"),
		Status:    model.PostStatus(getString(m, "status")),
		Likes:     getStringSlice(m, "likes"),
		Dislikes:  getStringSlice(m, "dislikes"),
		IsDeleted: getBool(m, "is_deleted"),
		CreatedOn: parseTime(m["created_on"]),
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Dislikes == nil {
		p.Dislikes = []string{}
	}
	if stats := getMap(m, "stats"); stats != nil {
		p.Stats = model.PostStats{
			CommentCount: getInt(stats, "comment_count"),
			ViewCount:    getInt(stats, "view_count"),
		}
	}
	return p
}

func parsePostsFromQuery(result []interface{}) []*model.Post {
	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.Post{}
	}
	posts := make([]*model.Post, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			posts = append(posts, parsePostFromMap(m))
		}
	}
	return posts
}
