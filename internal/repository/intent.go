package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// IntentRepository handles cascade deletion intent records. An intent is
// written durably before any node of a cascade is touched; a pending intent
// left behind by a crash is picked up by the recovery sweep.
type IntentRepository struct {
	db database.Store
}

// NewIntentRepository creates a new intent repository
func NewIntentRepository(db database.Store) *IntentRepository {
	return &IntentRepository{db: db}
}

// Create writes an intent record. This happens outside any batch: the intent
// must hit disk before the first deletion chunk runs.
func (r *IntentRepository) Create(ctx context.Context, intent *model.CascadeIntent) error {
	query := `
		CREATE cascade_intent CONTENT {
			root_id: $root_id,
			post_id: $post_id,
			moderator_id: $moderator_id,
			reason: $reason,
			remaining: $remaining,
			deleted_so_far: 0,
			status: $status,
			created_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"root_id":      intent.RootID,
		"post_id":      intent.PostID,
		"moderator_id": intent.ModeratorID,
		"reason":       intent.Reason,
		"remaining":    intent.Remaining,
		"status":       model.CascadeIntentPending,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return fmt.Errorf("failed to create intent: %w", err)
	}

	m, ok := extractFirstRow(result)
	if !ok {
		return errors.New("no intent returned")
	}
	created := parseIntentFromMap(m)
	intent.ID = created.ID
	intent.Status = created.Status
	intent.CreatedOn = created.CreatedOn
	return nil
}

// GetByID retrieves an intent by ID
func (r *IntentRepository) GetByID(ctx context.Context, id string) (*model.CascadeIntent, error) {
	query := `SELECT * FROM type::record($id)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get intent: %w", err)
	}

	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return parseIntentFromMap(m), nil
}

// ListPending retrieves pending intents older than the grace window, oldest
// first. Fresh intents are skipped so the sweep never races a live cascade.
func (r *IntentRepository) ListPending(ctx context.Context, olderThan time.Duration) ([]*model.CascadeIntent, error) {
	cutoff := time.Now().Add(-olderThan)
	query := `
		SELECT * FROM cascade_intent
		WHERE status = "pending"
		AND created_on < $cutoff
		ORDER BY created_on ASC
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{
		"cutoff": cutoff.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending intents: %w", err)
	}

	rows, _ := extractQueryResults(result)
	intents := make([]*model.CascadeIntent, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			intents = append(intents, parseIntentFromMap(m))
		}
	}
	return intents, nil
}

// ProgressStatement records a completed chunk: the ids it deleted leave
// remaining and join the running total, in the same batch as the deletions.
func (r *IntentRepository) ProgressStatement(intentID string, remaining []string, deletedSoFar int) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET remaining = $remaining, deleted_so_far = $deleted_so_far`,
		Vars: map[string]interface{}{
			"id":             intentID,
			"remaining":      remaining,
			"deleted_so_far": deletedSoFar,
		},
	}
}

// CompleteStatement closes an intent.
func (r *IntentRepository) CompleteStatement(intentID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET status = "complete", remaining = [], completed_on = time::now()`,
		Vars:  map[string]interface{}{"id": intentID},
	}
}

func parseIntentFromMap(m map[string]interface{}) *model.CascadeIntent {
	intent := &model.CascadeIntent{
		ID:           extractRecordID(m["id"]),
		RootID:       getString(m, "root_id"),
		PostID:       getString(m, "post_id"),
		ModeratorID:  getString(m, "moderator_id"),
		Reason:       getString(m, "reason"),
		Remaining:    getStringSlice(m, "remaining"),
		DeletedSoFar: getInt(m, "deleted_so_far"),
		Status:       model.CascadeIntentStatus(getString(m, "status")),
		CreatedOn:    parseTime(m["created_on"]),
		CompletedOn:  getTime(m, "completed_on"),
	}
	if intent.Remaining == nil {
		intent.Remaining = []string{}
	}
	return intent
}
