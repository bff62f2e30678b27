package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// CommentRepository handles comment data access
type CommentRepository struct {
	db database.Store
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db database.Store) *CommentRepository {
	return &CommentRepository{db: db}
}

// CreateStatement inserts a comment with a caller-chosen id so the insert
// joins the batch that bumps the post and author counters.
func (r *CommentRepository) CreateStatement(id string, comment *model.Comment) database.Statement {
	vars := map[string]interface{}{
		"cid":       id,
		"post_id":   comment.PostID,
		"author_id": comment.AuthorID,
		"content":   comment.Content,
		"status":    comment.Status,
	}
	parentClause := "NONE"
	if comment.ParentCommentID != nil {
		parentClause = "$parent_id"
		vars["parent_id"] = *comment.ParentCommentID
	}
	return database.Statement{
		Query: fmt.Sprintf(`
			CREATE type::thing("comment", $cid) CONTENT {
				post_id: $post_id,
				author_id: $author_id,
				parent_comment_id: %s,
				content: $content,
				status: $status,
				is_deleted: false,
				likes: [],
				edit_history: [],
				created_on: time::now()
			}
		`, parentClause),
		Vars: vars,
	}
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	query := `SELECT * FROM type::record($id)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return parseCommentFromMap(m), nil
}

// ListByPost retrieves non-deleted comments on a post in creation order.
func (r *CommentRepository) ListByPost(ctx context.Context, postID string, includePending bool) ([]*model.Comment, error) {
	query := `
		SELECT * FROM comment
		WHERE post_id = $post_id
		AND is_deleted = false
	`
	if !includePending {
		query += ` AND status = "active"`
	}
	query += ` ORDER BY created_on ASC`

	result, err := r.db.Query(ctx, query, map[string]interface{}{"post_id": postID})
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return parseCommentsFromQuery(result), nil
}

// GetChildren retrieves the direct replies of the given comments, tombstoned
// ones included: a self-deleted node still anchors its subtree, so traversal
// must continue through it. The cascade calls this level by level with an
// explicit work stack, never recursion.
func (r *CommentRepository) GetChildren(ctx context.Context, parentIDs []string) ([]*model.Comment, error) {
	if len(parentIDs) == 0 {
		return []*model.Comment{}, nil
	}
	query := `
		SELECT * FROM comment
		WHERE parent_comment_id IN $parent_ids
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{"parent_ids": parentIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to get replies: %w", err)
	}
	return parseCommentsFromQuery(result), nil
}

// GetMany retrieves comments by id, skipping ids that no longer resolve.
func (r *CommentRepository) GetMany(ctx context.Context, ids []string) ([]*model.Comment, error) {
	if len(ids) == 0 {
		return []*model.Comment{}, nil
	}
	query := `SELECT * FROM comment WHERE id IN $ids`
	result, err := r.db.Query(ctx, query, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return parseCommentsFromQuery(result), nil
}

// UpdateContent edits a comment, appending the previous content to the edit
// history.
func (r *CommentRepository) UpdateContent(ctx context.Context, id, previous, content string) (*model.Comment, error) {
	query := `
		UPDATE type::record($id)
		SET content = $content,
		    edit_history += $edit
		RETURN AFTER
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{
		"id":      id,
		"content": content,
		"edit": map[string]interface{}{
			"content":   previous,
			"edited_at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit comment: %w", err)
	}
	m, ok := extractFirstRow(result)
	if !ok {
		return nil, errors.New("no comment returned")
	}
	return parseCommentFromMap(m), nil
}

// Statement builders for atomic batches

// SoftDeleteStatement tombstones a comment. The tombstone keeps the node in
// the tree so replies stay attached.
func (r *CommentRepository) SoftDeleteStatement(commentID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET is_deleted = true, content = "[deleted]"`,
		Vars:  map[string]interface{}{"id": commentID},
	}
}

// DeleteStatement hard-deletes a comment (pre-publication rejection only).
func (r *CommentRepository) DeleteStatement(commentID string) database.Statement {
	return database.Statement{
		Query: `DELETE type::record($id)`,
		Vars:  map[string]interface{}{"id": commentID},
	}
}

// SetStatusStatement moves a comment between pending and active.
func (r *CommentRepository) SetStatusStatement(commentID string, status model.PostStatus) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET status = $status`,
		Vars:  map[string]interface{}{"id": commentID, "status": status},
	}
}

// AddLikeStatement adds userID to the like set.
func (r *CommentRepository) AddLikeStatement(commentID, userID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET likes += $user_id`,
		Vars:  map[string]interface{}{"id": commentID, "user_id": userID},
	}
}

// RemoveLikeStatement removes userID from the like set.
func (r *CommentRepository) RemoveLikeStatement(commentID, userID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET likes -= $user_id`,
		Vars:  map[string]interface{}{"id": commentID, "user_id": userID},
	}
}

// Parsing

func parseCommentFromMap(m map[string]interface{}) *model.Comment {
	c := &model.Comment{
		ID:        extractRecordID(m["id"]),
		PostID:    convertSurrealID(m["post_id"]),
		AuthorID:  convertSurrealID(m["author_id"]),
		Content:   getString(m, "content"),
		Status:    model.PostStatus(getString(m, "status")),
		IsDeleted: getBool(m, "is_deleted"),
		Likes:     getStringSlice(m, "likes"),
		CreatedOn: parseTime(m["created_on"]),
	}
	if c.Likes == nil {
		c.Likes = []string{}
	}
	if v, ok := m["parent_comment_id"]; ok && v != nil {
		if parent := convertSurrealID(v); parent != "" {
			c.ParentCommentID = &parent
		}
	}
	for _, entry := range getMapSlice(m, "edit_history") {
		c.EditHistory = append(c.EditHistory, model.CommentEdit{
			Content:  getString(entry, "content"),
			EditedAt: parseTime(entry["edited_at"]),
		})
	}
	return c
}

func parseCommentsFromQuery(result []interface{}) []*model.Comment {
	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.Comment{}
	}
	comments := make([]*model.Comment, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			comments = append(comments, parseCommentFromMap(m))
		}
	}
	return comments
}
