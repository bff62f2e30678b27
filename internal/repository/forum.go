package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// ForumRepository handles forum data access
type ForumRepository struct {
	db database.Store
}

// NewForumRepository creates a new forum repository
func NewForumRepository(db database.Store) *ForumRepository {
	return &ForumRepository{db: db}
}

// CreateStatement inserts a forum with a caller-chosen id so creation joins
// the batch that records the owner's membership on their user document. The
// owner starts as the sole member; owner role is derived from owner_id and
// never written to the moderator map.
func (r *ForumRepository) CreateStatement(id string, forum *model.Forum) database.Statement {
	return database.Statement{
		Query: `
			CREATE type::thing("forum", $fid) CONTENT {
				name: $name,
				description: IF $description IS NOT NULL THEN $description ELSE NONE END,
				owner_id: $owner_id,
				moderators: {},
				members: [$owner_id],
				pending_members: {},
				banned_users: [],
				requires_approval: $requires_approval,
				requires_post_approval: $requires_post_approval,
				member_count: 1,
				post_count: 0,
				created_on: time::now()
			}
		`,
		Vars: map[string]interface{}{
			"fid":                    id,
			"name":                   forum.Name,
			"description":            nilIfEmpty(forum.Description),
			"owner_id":               forum.OwnerID,
			"requires_approval":      forum.RequiresApproval,
			"requires_post_approval": forum.RequiresPostApproval,
		},
	}
}

// Create creates a new forum outside a batch (seeder and tests).
func (r *ForumRepository) Create(ctx context.Context, forum *model.Forum) error {
	query := `
		CREATE forum CONTENT {
			name: $name,
			description: IF $description IS NOT NULL THEN $description ELSE NONE END,
			owner_id: $owner_id,
			moderators: {},
			members: [$owner_id],
			pending_members: {},
			banned_users: [],
			requires_approval: $requires_approval,
			requires_post_approval: $requires_post_approval,
			member_count: 1,
			post_count: 0,
			created_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"name":                   forum.Name,
		"description":            nilIfEmpty(forum.Description),
		"owner_id":               forum.OwnerID,
		"requires_approval":      forum.RequiresApproval,
		"requires_post_approval": forum.RequiresPostApproval,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: forum name already exists", database.ErrDuplicate)
		}
		return fmt.Errorf("failed to create forum: %w", err)
	}

	m, ok := extractFirstRow(result)
	if !ok {
		return errors.New("no forum returned")
	}
	created := parseForumFromMap(m)
	forum.ID = created.ID
	forum.Members = created.Members
	forum.MemberCount = created.MemberCount
	forum.CreatedOn = created.CreatedOn
	return nil
}

// GetByID retrieves a forum by ID
func (r *ForumRepository) GetByID(ctx context.Context, id string) (*model.Forum, error) {
	query := `SELECT * FROM type::record($id)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get forum: %w", err)
	}

	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return parseForumFromMap(m), nil
}

// List retrieves forums ordered by member count.
func (r *ForumRepository) List(ctx context.Context, limit int) ([]*model.Forum, error) {
	query := `SELECT * FROM forum ORDER BY member_count DESC LIMIT $limit`
	result, err := r.db.Query(ctx, query, map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list forums: %w", err)
	}
	return parseForumsFromQuery(result), nil
}

// Statement builders for atomic batches.
//
// The member array and member_count always move in the same statement so the
// count can never drift from the array.

// AddMemberStatement adds userID to the member set.
func (r *ForumRepository) AddMemberStatement(forumID, userID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET members += $user_id, member_count += 1`,
		Vars:  map[string]interface{}{"id": forumID, "user_id": userID},
	}
}

// RemoveMemberStatement removes userID from the member set.
func (r *ForumRepository) RemoveMemberStatement(forumID, userID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET members -= $user_id, member_count -= 1`,
		Vars:  map[string]interface{}{"id": forumID, "user_id": userID},
	}
}

// SetPendingMembersStatement replaces the pending-member map.
func (r *ForumRepository) SetPendingMembersStatement(forumID string, pending map[string]model.PendingMember) database.Statement {
	doc := make(map[string]interface{}, len(pending))
	for uid, p := range pending {
		entry := map[string]interface{}{
			"requested_at": p.RequestedAt.UTC().Format(time.RFC3339),
		}
		if p.Message != "" {
			entry["message"] = p.Message
		}
		doc[uid] = entry
	}
	return database.Statement{
		Query: `UPDATE type::record($id) SET pending_members = $pending`,
		Vars:  map[string]interface{}{"id": forumID, "pending": doc},
	}
}

// SetModeratorsStatement replaces the moderator map.
func (r *ForumRepository) SetModeratorsStatement(forumID string, mods map[string]model.ModeratorEntry) database.Statement {
	doc := make(map[string]interface{}, len(mods))
	for uid, m := range mods {
		doc[uid] = map[string]interface{}{
			"added_at": m.AddedAt.UTC().Format(time.RFC3339),
			"added_by": m.AddedBy,
		}
	}
	return database.Statement{
		Query: `UPDATE type::record($id) SET moderators = $moderators`,
		Vars:  map[string]interface{}{"id": forumID, "moderators": doc},
	}
}

// SetOwnerStatement transfers forum ownership.
func (r *ForumRepository) SetOwnerStatement(forumID, userID string) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET owner_id = $user_id`,
		Vars:  map[string]interface{}{"id": forumID, "user_id": userID},
	}
}

// AppendBanStatement appends a ban entry; earlier entries for the same user
// stay in the list.
func (r *ForumRepository) AppendBanStatement(forumID string, ban model.BanEntry) database.Statement {
	doc := map[string]interface{}{
		"user_id":   ban.UserID,
		"reason":    ban.Reason,
		"is_active": ban.IsActive,
		"banned_by": ban.BannedBy,
		"banned_at": ban.BannedAt.UTC().Format(time.RFC3339),
	}
	if ban.Duration != nil {
		doc["duration_days"] = *ban.Duration
	}
	return database.Statement{
		Query: `UPDATE type::record($id) SET banned_users += $ban`,
		Vars:  map[string]interface{}{"id": forumID, "ban": doc},
	}
}

// SetBannedUsersStatement replaces the whole ban list (used when lifting a
// ban flips is_active on an existing entry).
func (r *ForumRepository) SetBannedUsersStatement(forumID string, bans []model.BanEntry) database.Statement {
	docs := make([]interface{}, 0, len(bans))
	for _, ban := range bans {
		doc := map[string]interface{}{
			"user_id":   ban.UserID,
			"reason":    ban.Reason,
			"is_active": ban.IsActive,
			"banned_by": ban.BannedBy,
			"banned_at": ban.BannedAt.UTC().Format(time.RFC3339),
		}
		if ban.Duration != nil {
			doc["duration_days"] = *ban.Duration
		}
		docs = append(docs, doc)
	}
	return database.Statement{
		Query: `UPDATE type::record($id) SET banned_users = $bans`,
		Vars:  map[string]interface{}{"id": forumID, "bans": docs},
	}
}

// IncrementPostCountStatement shifts the forum's post counter by delta.
func (r *ForumRepository) IncrementPostCountStatement(forumID string, delta int) database.Statement {
	return database.Statement{
		Query: `UPDATE type::record($id) SET post_count += $delta`,
		Vars:  map[string]interface{}{"id": forumID, "delta": delta},
	}
}

// Parsing

func parseForumFromMap(m map[string]interface{}) *model.Forum {
	f := &model.Forum{
		ID:                   extractRecordID(m["id"]),
		Name:                 getString(m, "name"),
		Description:          getString(m, "description"),
		OwnerID:              convertSurrealID(m["owner_id"]),
		Members:              getStringSlice(m, "members"),
		RequiresApproval:     getBool(m, "requires_approval"),
		RequiresPostApproval: getBool(m, "requires_post_approval"),
		MemberCount:          getInt(m, "member_count"),
		PostCount:            getInt(m, "post_count"),
		CreatedOn:            parseTime(m["created_on"]),
	}

	f.Moderators = make(map[string]model.ModeratorEntry)
	for uid, v := range getMap(m, "moderators") {
		if entry, ok := v.(map[string]interface{}); ok {
			f.Moderators[uid] = model.ModeratorEntry{
				AddedAt: parseTime(entry["added_at"]),
				AddedBy: getString(entry, "added_by"),
			}
		}
	}

	f.PendingMembers = make(map[string]model.PendingMember)
	for uid, v := range getMap(m, "pending_members") {
		if entry, ok := v.(map[string]interface{}); ok {
			f.PendingMembers[uid] = model.PendingMember{
				RequestedAt: parseTime(entry["requested_at"]),
				Message:     getString(entry, "message"),
			}
		}
	}

	for _, entry := range getMapSlice(m, "banned_users") {
		f.BannedUsers = append(f.BannedUsers, model.BanEntry{
			UserID:   getString(entry, "user_id"),
			Reason:   getString(entry, "reason"),
			Duration: getIntPtr(entry, "duration_days"),
			IsActive: getBool(entry, "is_active"),
			BannedBy: getString(entry, "banned_by"),
			BannedAt: parseTime(entry["banned_at"]),
		})
	}

	return f
}

func parseForumsFromQuery(result []interface{}) []*model.Forum {
	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.Forum{}
	}
	forums := make([]*model.Forum, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			forums = append(forums, parseForumFromMap(m))
		}
	}
	return forums
}
