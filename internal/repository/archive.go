package repository

import (
	"context"
	"fmt"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// ArchiveRepository handles the comment deletion archive and the global
// moderation review queue. Both are append-only.
type ArchiveRepository struct {
	db database.Store
}

// NewArchiveRepository creates a new archive repository
func NewArchiveRepository(db database.Store) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// ArchiveCommentStatement snapshots a comment before a cascade deletes it.
func (r *ArchiveRepository) ArchiveCommentStatement(entry model.CommentArchiveEntry) database.Statement {
	return database.Statement{
		Query: `
			CREATE comment_archive CONTENT {
				comment_id: $comment_id,
				post_id: $post_id,
				author_id: $author_id,
				content: $content,
				like_count: $like_count,
				deleted_by: $deleted_by,
				reason: $reason,
				cascade_root: IF $cascade_root IS NOT NULL THEN $cascade_root ELSE NONE END,
				archived_on: time::now()
			}
		`,
		Vars: map[string]interface{}{
			"comment_id":   entry.CommentID,
			"post_id":      entry.PostID,
			"author_id":    entry.AuthorID,
			"content":      entry.Content,
			"like_count":   entry.LikeCount,
			"deleted_by":   entry.DeletedBy,
			"reason":       entry.Reason,
			"cascade_root": nilIfEmpty(entry.CascadeRoot),
		},
	}
}

// ListByCascade retrieves the archived nodes of one cascade.
func (r *ArchiveRepository) ListByCascade(ctx context.Context, rootID string) ([]model.CommentArchiveEntry, error) {
	query := `
		SELECT * FROM comment_archive
		WHERE cascade_root = $root_id
		ORDER BY archived_on ASC
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{"root_id": rootID})
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}

	rows, _ := extractQueryResults(result)
	entries := make([]model.CommentArchiveEntry, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			entries = append(entries, parseArchiveEntryFromMap(m))
		}
	}
	return entries, nil
}

// EnqueueGlobalStatement forwards a forum-scoped event to the platform-wide
// review queue.
func (r *ArchiveRepository) EnqueueGlobalStatement(entry model.GlobalQueueEntry) database.Statement {
	return database.Statement{
		Query: `
			CREATE global_queue CONTENT {
				kind: $kind,
				forum_id: IF $forum_id IS NOT NULL THEN $forum_id ELSE NONE END,
				user_id: $user_id,
				payload: $payload,
				created_on: time::now()
			}
		`,
		Vars: map[string]interface{}{
			"kind":     entry.Kind,
			"forum_id": nilIfEmpty(entry.ForumID),
			"user_id":  entry.UserID,
			"payload":  entry.Payload,
		},
	}
}

// ListGlobalQueue retrieves recent global queue entries, newest first.
func (r *ArchiveRepository) ListGlobalQueue(ctx context.Context, limit int) ([]model.GlobalQueueEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT * FROM global_queue ORDER BY created_on DESC LIMIT $limit`
	result, err := r.db.Query(ctx, query, map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list global queue: %w", err)
	}

	rows, _ := extractQueryResults(result)
	entries := make([]model.GlobalQueueEntry, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			entries = append(entries, model.GlobalQueueEntry{
				ID:        extractRecordID(m["id"]),
				Kind:      getString(m, "kind"),
				ForumID:   getString(m, "forum_id"),
				UserID:    getString(m, "user_id"),
				Payload:   getMap(m, "payload"),
				CreatedOn: parseTime(m["created_on"]),
			})
		}
	}
	return entries, nil
}

func parseArchiveEntryFromMap(m map[string]interface{}) model.CommentArchiveEntry {
	return model.CommentArchiveEntry{
		ID:          extractRecordID(m["id"]),
		CommentID:   getString(m, "comment_id"),
		PostID:      getString(m, "post_id"),
		AuthorID:    getString(m, "author_id"),
		Content:     getString(m, "content"),
		LikeCount:   getInt(m, "like_count"),
		DeletedBy:   getString(m, "deleted_by"),
		Reason:      getString(m, "reason"),
		ArchivedOn:  parseTime(m["archived_on"]),
		CascadeRoot: getString(m, "cascade_root"),
	}
}
