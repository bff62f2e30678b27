package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// statFields whitelists the per-user counters a statement may touch.
var statFields = map[string]bool{
	"post_count":          true,
	"comment_count":       true,
	"contribution_count":  true,
	"joined_forums_count": true,
}

// UserRepository handles user data access
type UserRepository struct {
	db database.Store
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Store) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		CREATE user CONTENT {
			email: $email,
			password_hash: IF $password_hash IS NOT NULL THEN $password_hash ELSE NONE END,
			display_name: $display_name,
			role: $role,
			stats: {
				post_count: 0,
				comment_count: 0,
				aura: 0,
				contribution_count: 0,
				joined_forums_count: 0
			},
			suspension: { is_suspended: false },
			joined_forums: [],
			highest_strike_threshold: 0,
			created_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"email":         user.Email,
		"password_hash": nilIfEmpty(user.PasswordHash),
		"display_name":  user.DisplayName,
		"role":          user.Role,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: email already registered", database.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	m, ok := extractFirstRow(result)
	if !ok {
		return errors.New("no user returned")
	}
	created := parseUserFromMap(m)
	user.ID = created.ID
	user.Stats = created.Stats
	user.CreatedOn = created.CreatedOn
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT * FROM type::record($id)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return parseUserFromMap(m), nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM user WHERE email = $email LIMIT 1`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"email": email})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return parseUserFromMap(m), nil
}

// GetMany retrieves users by id, skipping ids that no longer resolve.
func (r *UserRepository) GetMany(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	query := `SELECT * FROM user WHERE id IN $ids`
	result, err := r.db.Query(ctx, query, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return parseUsersFromQuery(result), nil
}

// ListSuspendedPastEnd retrieves users whose timed suspension has lapsed.
func (r *UserRepository) ListSuspendedPastEnd(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT * FROM user
		WHERE suspension.is_suspended = true
		AND suspension.end_date != NONE
		AND suspension.end_date < time::now()
	`
	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list suspended users: %w", err)
	}
	return parseUsersFromQuery(result), nil
}

// Statement builders for atomic batches

// IncrementAuraStatement shifts the user's aura by delta.
func (r *UserRepository) IncrementAuraStatement(userID string, delta int) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET stats.aura += $delta`,
		Vars:  map[string]interface{}{"id": userID, "delta": delta},
	}
}

// IncrementStatStatement shifts one of the whitelisted user counters by
// delta. Field names are internal constants, never request input.
func (r *UserRepository) IncrementStatStatement(userID, field string, delta int) database.Statement {
	if !statFields[field] {
		panic(fmt.Sprintf("unknown user stat field %q", field))
	}
	return database.Statement{
		Query: fmt.Sprintf(`UPDATE type::record($id) SET stats.%s += $delta`, field),
		Vars:  map[string]interface{}{"id": userID, "delta": delta},
	}
}

// AddJoinedForumStatement records forum membership on the user document.
func (r *UserRepository) AddJoinedForumStatement(userID, forumID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET joined_forums += $forum_id, stats.joined_forums_count += 1`,
		Vars:  map[string]interface{}{"id": userID, "forum_id": forumID},
	}
}

// RemoveJoinedForumStatement removes forum membership from the user document.
func (r *UserRepository) RemoveJoinedForumStatement(userID, forumID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET joined_forums -= $forum_id, stats.joined_forums_count -= 1`,
		Vars:  map[string]interface{}{"id": userID, "forum_id": forumID},
	}
}

// SetSuspensionStatement replaces the user's suspension state.
func (r *UserRepository) SetSuspensionStatement(userID string, s model.Suspension) database.Statement {
	susp := map[string]interface{}{
		"is_suspended": s.IsSuspended,
		"automated":    s.Automated,
	}
	if s.Reason != "" {
		susp["reason"] = s.Reason
	}
	if s.EndDate != nil {
		susp["end_date"] = s.EndDate.UTC().Format(time.RFC3339)
	}
	return database.Statement{
		Query: `UPDATE type::record($id) SET suspension = $suspension`,
		Vars:  map[string]interface{}{"id": userID, "suspension": susp},
	}
}

// SetHighestThresholdStatement persists the highest suspension threshold the
// user's strike points have crossed.
func (r *UserRepository) SetHighestThresholdStatement(userID string, threshold int) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET highest_strike_threshold = $threshold`,
		Vars:  map[string]interface{}{"id": userID, "threshold": threshold},
	}
}

// Parsing

func parseUserFromMap(m map[string]interface{}) *model.User {
	u := &model.User{
		ID:                     extractRecordID(m["id"]),
		Email:                  getString(m, "email"),
		PasswordHash:           getString(m, "password_hash"),
		DisplayName:            getString(m, "display_name"),
		Role:                   model.PlatformRole(getString(m, "role")),
		JoinedForums:           getStringSlice(m, "joined_forums"),
		HighestStrikeThreshold: getInt(m, "highest_strike_threshold"),
		CreatedOn:              parseTime(m["created_on"]),
	}

	if stats := getMap(m, "stats"); stats != nil {
		u.Stats = model.UserStats{
			PostCount:         getInt(stats, "post_count"),
			CommentCount:      getInt(stats, "comment_count"),
			Aura:              getInt(stats, "aura"),
			ContributionCount: getInt(stats, "contribution_count"),
			JoinedForumsCount: getInt(stats, "joined_forums_count"),
		}
	}

	if susp := getMap(m, "suspension"); susp != nil {
		u.Suspension = model.Suspension{
			IsSuspended: getBool(susp, "is_suspended"),
			Reason:      getString(susp, "reason"),
			EndDate:     getTime(susp, "end_date"),
			Automated:   getBool(susp, "automated"),
		}
	}

	return u
}

func parseUsersFromQuery(result []interface{}) []*model.User {
	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.User{}
	}
	users := make([]*model.User, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			users = append(users, parseUserFromMap(m))
		}
	}
	return users
}
