package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// StrikeRepository handles strike data access
type StrikeRepository struct {
	db database.Store
}

// NewStrikeRepository creates a new strike repository
func NewStrikeRepository(db database.Store) *StrikeRepository {
	return &StrikeRepository{db: db}
}

// CreateStatement inserts a strike with a caller-chosen id so the insert
// joins the batch that updates the user's suspension and the audit log.
func (r *StrikeRepository) CreateStatement(id string, strike *model.Strike) database.Statement {
	vars := map[string]interface{}{
		"sid":       id,
		"user_id":   strike.UserID,
		"points":    strike.Points,
		"severity":  strike.Severity,
		"reason":    strike.Reason,
		"issued_by": strike.IssuedBy,
	}

	expiresClause := "NONE"
	if strike.ExpiresAt != nil {
		expiresClause = "$expires_at"
		vars["expires_at"] = strike.ExpiresAt.UTC().Format(time.RFC3339)
	}

	relatedClause := "NONE"
	if strike.RelatedContent != nil {
		relatedClause = "$related_content"
		vars["related_content"] = map[string]interface{}{
			"type": strike.RelatedContent.Type,
			"id":   strike.RelatedContent.ID,
		}
	}

	return database.Statement{
		Query: fmt.Sprintf(`
			CREATE type::thing("strike", $sid) CONTENT {
				user_id: $user_id,
				points: $points,
				severity: $severity,
				reason: $reason,
				issued_by: $issued_by,
				expires_at: %s,
				is_active: true,
				related_content: %s,
				created_on: time::now()
			}
		`, expiresClause, relatedClause),
		Vars: vars,
	}
}

// GetByID retrieves a strike by ID
func (r *StrikeRepository) GetByID(ctx context.Context, id string) (*model.Strike, error) {
	query := `SELECT * FROM type::record($id)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get strike: %w", err)
	}

	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return parseStrikeFromMap(m), nil
}

// GetAllForUser retrieves every strike ever issued to a user, newest first.
func (r *StrikeRepository) GetAllForUser(ctx context.Context, userID string) ([]*model.Strike, error) {
	query := `
		SELECT * FROM strike
		WHERE user_id = $user_id
		ORDER BY created_on DESC
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get strikes: %w", err)
	}
	return parseStrikesFromQuery(result), nil
}

// GetActiveForUser retrieves the user's active, unexpired strikes.
func (r *StrikeRepository) GetActiveForUser(ctx context.Context, userID string) ([]*model.Strike, error) {
	query := `
		SELECT * FROM strike
		WHERE user_id = $user_id
		AND is_active = true
		AND (expires_at = NONE OR expires_at > time::now())
		ORDER BY created_on DESC
	`
	result, err := r.db.Query(ctx, query, map[string]interface{}{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get active strikes: %w", err)
	}
	return parseStrikesFromQuery(result), nil
}

// LiftStatement voids a strike. The row stays for audit.
func (r *StrikeRepository) LiftStatement(strikeID, liftedBy, reason string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET is_active = false, lifted_by = $lifted_by, lift_reason = $lift_reason`,
		Vars: map[string]interface{}{
			"id":          strikeID,
			"lifted_by":   liftedBy,
			"lift_reason": reason,
		},
	}
}

// ExpireDue deactivates strikes past their expiry and returns the affected
// rows so the sweep can recompute each user's standing.
func (r *StrikeRepository) ExpireDue(ctx context.Context) ([]*model.Strike, error) {
	query := `
		UPDATE strike
		SET is_active = false
		WHERE is_active = true
		AND expires_at != NONE
		AND expires_at < time::now()
		RETURN AFTER
	`
	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to expire strikes: %w", err)
	}
	return parseStrikesFromQuery(result), nil
}

// Parsing

func parseStrikeFromMap(m map[string]interface{}) *model.Strike {
	s := &model.Strike{
		ID:         extractRecordID(m["id"]),
		UserID:     convertSurrealID(m["user_id"]),
		Points:     getInt(m, "points"),
		Severity:   model.StrikeSeverity(getString(m, "severity")),
		Reason:     getString(m, "reason"),
		IssuedBy:   getString(m, "issued_by"),
		ExpiresAt:  getTime(m, "expires_at"),
		IsActive:   getBool(m, "is_active"),
		LiftedBy:   getStringPtr(m, "lifted_by"),
		LiftReason: getStringPtr(m, "lift_reason"),
		CreatedOn:  parseTime(m["created_on"]),
	}
	if related := getMap(m, "related_content"); related != nil {
		s.RelatedContent = &model.RelatedContent{
			Type: getString(related, "type"),
			ID:   getString(related, "id"),
		}
	}
	return s
}

func parseStrikesFromQuery(result []interface{}) []*model.Strike {
	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.Strike{}
	}
	strikes := make([]*model.Strike, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			strikes = append(strikes, parseStrikeFromMap(m))
		}
	}
	return strikes
}
