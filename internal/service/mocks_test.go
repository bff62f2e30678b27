package service

import (
	"context"
	"fmt"
	"time"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// ============================================================================
// Mock Store
// ============================================================================

// mockStore records every query it receives so tests can assert on batch
// composition. Statement builders in the mock repositories emit tagged
// queries for that purpose.
type mockStore struct {
	queries   []string
	vars      []map[string]interface{}
	queryFunc func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
}

func (m *mockStore) Connect(ctx context.Context) error { return nil }
func (m *mockStore) Close() error                      { return nil }
func (m *mockStore) Ping(ctx context.Context) error    { return nil }

func (m *mockStore) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	m.queries = append(m.queries, query)
	m.vars = append(m.vars, vars)
	if m.queryFunc != nil {
		return m.queryFunc(ctx, query, vars)
	}
	return nil, nil
}

func (m *mockStore) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	m.queries = append(m.queries, query)
	m.vars = append(m.vars, vars)
	return nil, database.ErrNotFound
}

func (m *mockStore) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	m.queries = append(m.queries, query)
	m.vars = append(m.vars, vars)
	return nil
}

// batchContains reports whether any recorded query contains the tag.
func (m *mockStore) batchContains(tag string) bool {
	for _, q := range m.queries {
		if containsTag(q, tag) {
			return true
		}
	}
	return false
}

// tagCount counts tag occurrences across all recorded queries.
func (m *mockStore) tagCount(tag string) int {
	n := 0
	for _, q := range m.queries {
		n += countTag(q, tag)
	}
	return n
}

func containsTag(q, tag string) bool { return countTag(q, tag) > 0 }

func countTag(q, tag string) int {
	n := 0
	for i := 0; i+len(tag) <= len(q); i++ {
		if q[i:i+len(tag)] == tag {
			n++
		}
	}
	return n
}

func stmt(tag string, vars map[string]interface{}) database.Statement {
	return database.Statement{Query: "-- " + tag, Vars: vars}
}

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	createFunc               func(ctx context.Context, user *model.User) error
	getByIDFunc              func(ctx context.Context, id string) (*model.User, error)
	getByEmailFunc           func(ctx context.Context, email string) (*model.User, error)
	getManyFunc              func(ctx context.Context, ids []string) ([]*model.User, error)
	listSuspendedPastEndFunc func(ctx context.Context) ([]*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) GetMany(ctx context.Context, ids []string) ([]*model.User, error) {
	if m.getManyFunc != nil {
		return m.getManyFunc(ctx, ids)
	}
	return nil, nil
}

func (m *mockUserRepo) ListSuspendedPastEnd(ctx context.Context) ([]*model.User, error) {
	if m.listSuspendedPastEndFunc != nil {
		return m.listSuspendedPastEndFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) IncrementAuraStatement(userID string, delta int) database.Statement {
	return stmt(fmt.Sprintf("user.aura:%s:%+d", userID, delta), nil)
}

func (m *mockUserRepo) IncrementStatStatement(userID, field string, delta int) database.Statement {
	return stmt(fmt.Sprintf("user.stat:%s:%s:%+d", userID, field, delta), nil)
}

func (m *mockUserRepo) AddJoinedForumStatement(userID, forumID string) database.Statement {
	return stmt("user.join:"+userID+":"+forumID, nil)
}

func (m *mockUserRepo) RemoveJoinedForumStatement(userID, forumID string) database.Statement {
	return stmt("user.unjoin:"+userID+":"+forumID, nil)
}

func (m *mockUserRepo) SetSuspensionStatement(userID string, s model.Suspension) database.Statement {
	if s.IsSuspended {
		return stmt("user.suspend:"+userID, nil)
	}
	return stmt("user.unsuspend:"+userID, nil)
}

func (m *mockUserRepo) SetHighestThresholdStatement(userID string, threshold int) database.Statement {
	return stmt(fmt.Sprintf("user.threshold:%s:%d", userID, threshold), nil)
}

type mockForumRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*model.Forum, error)
	listFunc    func(ctx context.Context, limit int) ([]*model.Forum, error)

	setModerators     map[string]model.ModeratorEntry
	setPendingMembers map[string]model.PendingMember
	setOwner          string
}

func (m *mockForumRepo) GetByID(ctx context.Context, id string) (*model.Forum, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockForumRepo) List(ctx context.Context, limit int) ([]*model.Forum, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockForumRepo) CreateStatement(id string, forum *model.Forum) database.Statement {
	return stmt("forum.create:"+id, nil)
}

func (m *mockForumRepo) AddMemberStatement(forumID, userID string) database.Statement {
	return stmt("forum.add_member:"+forumID+":"+userID, nil)
}

func (m *mockForumRepo) RemoveMemberStatement(forumID, userID string) database.Statement {
	return stmt("forum.remove_member:"+forumID+":"+userID, nil)
}

func (m *mockForumRepo) SetPendingMembersStatement(forumID string, pending map[string]model.PendingMember) database.Statement {
	m.setPendingMembers = pending
	return stmt("forum.set_pending:"+forumID, nil)
}

func (m *mockForumRepo) SetModeratorsStatement(forumID string, mods map[string]model.ModeratorEntry) database.Statement {
	m.setModerators = mods
	return stmt("forum.set_moderators:"+forumID, nil)
}

func (m *mockForumRepo) SetOwnerStatement(forumID, userID string) database.Statement {
	m.setOwner = userID
	return stmt("forum.set_owner:"+forumID+":"+userID, nil)
}

func (m *mockForumRepo) AppendBanStatement(forumID string, ban model.BanEntry) database.Statement {
	return stmt("forum.ban:"+forumID+":"+ban.UserID, nil)
}

func (m *mockForumRepo) SetBannedUsersStatement(forumID string, bans []model.BanEntry) database.Statement {
	return stmt("forum.set_bans:"+forumID, nil)
}

func (m *mockForumRepo) IncrementPostCountStatement(forumID string, delta int) database.Statement {
	return stmt(fmt.Sprintf("forum.post_count:%s:%+d", forumID, delta), nil)
}

type mockPostRepo struct {
	getByIDFunc            func(ctx context.Context, id string) (*model.Post, error)
	listByForumFunc        func(ctx context.Context, forumID string, includePending bool, limit int) ([]*model.Post, error)
	listPendingByForumFunc func(ctx context.Context, forumID string) ([]*model.Post, error)
	incrementViewCountFunc func(ctx context.Context, id string) error
}

func (m *mockPostRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockPostRepo) ListByForum(ctx context.Context, forumID string, includePending bool, limit int) ([]*model.Post, error) {
	if m.listByForumFunc != nil {
		return m.listByForumFunc(ctx, forumID, includePending, limit)
	}
	return nil, nil
}

func (m *mockPostRepo) ListPendingByForum(ctx context.Context, forumID string) ([]*model.Post, error) {
	if m.listPendingByForumFunc != nil {
		return m.listPendingByForumFunc(ctx, forumID)
	}
	return nil, nil
}

func (m *mockPostRepo) IncrementViewCount(ctx context.Context, id string) error {
	if m.incrementViewCountFunc != nil {
		return m.incrementViewCountFunc(ctx, id)
	}
	return nil
}

func (m *mockPostRepo) CreateStatement(id string, post *model.Post) database.Statement {
	return stmt("post.create:"+id, nil)
}

func (m *mockPostRepo) AddLikeStatement(postID, userID string) database.Statement {
	return stmt("post.add_like:"+postID+":"+userID, nil)
}

func (m *mockPostRepo) RemoveLikeStatement(postID, userID string) database.Statement {
	return stmt("post.remove_like:"+postID+":"+userID, nil)
}

func (m *mockPostRepo) AddDislikeStatement(postID, userID string) database.Statement {
	return stmt("post.add_dislike:"+postID+":"+userID, nil)
}

func (m *mockPostRepo) RemoveDislikeStatement(postID, userID string) database.Statement {
	return stmt("post.remove_dislike:"+postID+":"+userID, nil)
}

func (m *mockPostRepo) SetStatusStatement(postID string, status model.PostStatus) database.Statement {
	return stmt("post.set_status:"+postID+":"+string(status), nil)
}

func (m *mockPostRepo) SoftDeleteStatement(postID string) database.Statement {
	return stmt("post.soft_delete:"+postID, nil)
}

func (m *mockPostRepo) DeleteStatement(postID string) database.Statement {
	return stmt("post.delete:"+postID, nil)
}

func (m *mockPostRepo) IncrementCommentCountStatement(postID string, delta int) database.Statement {
	return stmt(fmt.Sprintf("post.comment_count:%s:%+d", postID, delta), nil)
}

type mockCommentRepo struct {
	getByIDFunc       func(ctx context.Context, id string) (*model.Comment, error)
	getManyFunc       func(ctx context.Context, ids []string) ([]*model.Comment, error)
	listByPostFunc    func(ctx context.Context, postID string, includePending bool) ([]*model.Comment, error)
	getChildrenFunc   func(ctx context.Context, parentIDs []string) ([]*model.Comment, error)
	updateContentFunc func(ctx context.Context, id, previous, content string) (*model.Comment, error)
}

func (m *mockCommentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCommentRepo) GetMany(ctx context.Context, ids []string) ([]*model.Comment, error) {
	if m.getManyFunc != nil {
		return m.getManyFunc(ctx, ids)
	}
	return nil, nil
}

func (m *mockCommentRepo) ListByPost(ctx context.Context, postID string, includePending bool) ([]*model.Comment, error) {
	if m.listByPostFunc != nil {
		return m.listByPostFunc(ctx, postID, includePending)
	}
	return nil, nil
}

func (m *mockCommentRepo) GetChildren(ctx context.Context, parentIDs []string) ([]*model.Comment, error) {
	if m.getChildrenFunc != nil {
		return m.getChildrenFunc(ctx, parentIDs)
	}
	return nil, nil
}

func (m *mockCommentRepo) UpdateContent(ctx context.Context, id, previous, content string) (*model.Comment, error) {
	if m.updateContentFunc != nil {
		return m.updateContentFunc(ctx, id, previous, content)
	}
	return nil, nil
}

func (m *mockCommentRepo) CreateStatement(id string, comment *model.Comment) database.Statement {
	return stmt("comment.create:"+id, nil)
}

func (m *mockCommentRepo) SoftDeleteStatement(commentID string) database.Statement {
	return stmt("comment.soft_delete:"+commentID, nil)
}

func (m *mockCommentRepo) DeleteStatement(commentID string) database.Statement {
	return stmt("comment.delete:"+commentID, nil)
}

func (m *mockCommentRepo) SetStatusStatement(commentID string, status model.PostStatus) database.Statement {
	return stmt("comment.set_status:"+commentID+":"+string(status), nil)
}

func (m *mockCommentRepo) AddLikeStatement(commentID, userID string) database.Statement {
	return stmt("comment.add_like:"+commentID+":"+userID, nil)
}

func (m *mockCommentRepo) RemoveLikeStatement(commentID, userID string) database.Statement {
	return stmt("comment.remove_like:"+commentID+":"+userID, nil)
}

type mockReportRepo struct {
	createFunc           func(ctx context.Context, report *model.Report) error
	getByIDFunc          func(ctx context.Context, id string) (*model.Report, error)
	findOpenByTargetFunc func(ctx context.Context, targetType model.ReportTargetType, targetID string) (*model.Report, error)
	incrementCountFunc   func(ctx context.Context, id string, urgency model.ReportUrgency) (*model.Report, error)
	updateFunc           func(ctx context.Context, id string, updates map[string]interface{}) (*model.Report, error)
	listFunc             func(ctx context.Context, filter model.ReportFilter) ([]*model.Report, error)
	dashboardFunc        func(ctx context.Context) (*model.ReportDashboard, error)
}

func (m *mockReportRepo) Create(ctx context.Context, report *model.Report) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, report)
	}
	return nil
}

func (m *mockReportRepo) GetByID(ctx context.Context, id string) (*model.Report, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockReportRepo) FindOpenByTarget(ctx context.Context, targetType model.ReportTargetType, targetID string) (*model.Report, error) {
	if m.findOpenByTargetFunc != nil {
		return m.findOpenByTargetFunc(ctx, targetType, targetID)
	}
	return nil, nil
}

func (m *mockReportRepo) IncrementCount(ctx context.Context, id string, urgency model.ReportUrgency) (*model.Report, error) {
	if m.incrementCountFunc != nil {
		return m.incrementCountFunc(ctx, id, urgency)
	}
	return nil, nil
}

func (m *mockReportRepo) Update(ctx context.Context, id string, updates map[string]interface{}) (*model.Report, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return nil, nil
}

func (m *mockReportRepo) List(ctx context.Context, filter model.ReportFilter) ([]*model.Report, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockReportRepo) Dashboard(ctx context.Context) (*model.ReportDashboard, error) {
	if m.dashboardFunc != nil {
		return m.dashboardFunc(ctx)
	}
	return nil, nil
}

type mockStrikeRepo struct {
	getByIDFunc          func(ctx context.Context, id string) (*model.Strike, error)
	getAllForUserFunc    func(ctx context.Context, userID string) ([]*model.Strike, error)
	getActiveForUserFunc func(ctx context.Context, userID string) ([]*model.Strike, error)
	expireDueFunc        func(ctx context.Context) ([]*model.Strike, error)
}

func (m *mockStrikeRepo) GetByID(ctx context.Context, id string) (*model.Strike, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockStrikeRepo) GetAllForUser(ctx context.Context, userID string) ([]*model.Strike, error) {
	if m.getAllForUserFunc != nil {
		return m.getAllForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockStrikeRepo) GetActiveForUser(ctx context.Context, userID string) ([]*model.Strike, error) {
	if m.getActiveForUserFunc != nil {
		return m.getActiveForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockStrikeRepo) ExpireDue(ctx context.Context) ([]*model.Strike, error) {
	if m.expireDueFunc != nil {
		return m.expireDueFunc(ctx)
	}
	return nil, nil
}

func (m *mockStrikeRepo) CreateStatement(id string, strike *model.Strike) database.Statement {
	return stmt("strike.create:"+strike.UserID, nil)
}

func (m *mockStrikeRepo) LiftStatement(strikeID, liftedBy, reason string) database.Statement {
	return stmt("strike.lift:"+strikeID, nil)
}

type mockModLogRepo struct {
	listFunc         func(ctx context.Context, filter model.ModLogFilter) ([]*model.ModerationLogEntry, error)
	summarizeFunc    func(ctx context.Context, since time.Time, window string) (*model.ModLogSummary, error)
	counterValueFunc func(ctx context.Context, key string) (int, error)
}

func (m *mockModLogRepo) List(ctx context.Context, filter model.ModLogFilter) ([]*model.ModerationLogEntry, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockModLogRepo) Summarize(ctx context.Context, since time.Time, window string) (*model.ModLogSummary, error) {
	if m.summarizeFunc != nil {
		return m.summarizeFunc(ctx, since, window)
	}
	return nil, nil
}

func (m *mockModLogRepo) CounterValue(ctx context.Context, key string) (int, error) {
	if m.counterValueFunc != nil {
		return m.counterValueFunc(ctx, key)
	}
	return 0, nil
}

func (m *mockModLogRepo) AppendStatement(id string, entry *model.ModerationLogEntry) database.Statement {
	return stmt("modlog.append:"+string(entry.Action), nil)
}

func (m *mockModLogRepo) CounterStatements(entry *model.ModerationLogEntry) []database.Statement {
	return []database.Statement{stmt("modlog.counter:"+string(entry.Action), nil)}
}

type mockArchiveRepo struct {
	listByCascadeFunc   func(ctx context.Context, rootID string) ([]model.CommentArchiveEntry, error)
	listGlobalQueueFunc func(ctx context.Context, limit int) ([]model.GlobalQueueEntry, error)
}

func (m *mockArchiveRepo) ListByCascade(ctx context.Context, rootID string) ([]model.CommentArchiveEntry, error) {
	if m.listByCascadeFunc != nil {
		return m.listByCascadeFunc(ctx, rootID)
	}
	return nil, nil
}

func (m *mockArchiveRepo) ListGlobalQueue(ctx context.Context, limit int) ([]model.GlobalQueueEntry, error) {
	if m.listGlobalQueueFunc != nil {
		return m.listGlobalQueueFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockArchiveRepo) ArchiveCommentStatement(entry model.CommentArchiveEntry) database.Statement {
	return stmt("archive.comment:"+entry.CommentID, nil)
}

func (m *mockArchiveRepo) EnqueueGlobalStatement(entry model.GlobalQueueEntry) database.Statement {
	return stmt("archive.global:"+entry.Kind+":"+entry.UserID, nil)
}

type mockIntentRepo struct {
	created        *model.CascadeIntent
	createFunc     func(ctx context.Context, intent *model.CascadeIntent) error
	getByIDFunc    func(ctx context.Context, id string) (*model.CascadeIntent, error)
	listPendingFunc func(ctx context.Context, olderThan time.Duration) ([]*model.CascadeIntent, error)
}

func (m *mockIntentRepo) Create(ctx context.Context, intent *model.CascadeIntent) error {
	m.created = intent
	if m.createFunc != nil {
		return m.createFunc(ctx, intent)
	}
	return nil
}

func (m *mockIntentRepo) GetByID(ctx context.Context, id string) (*model.CascadeIntent, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockIntentRepo) ListPending(ctx context.Context, olderThan time.Duration) ([]*model.CascadeIntent, error) {
	if m.listPendingFunc != nil {
		return m.listPendingFunc(ctx, olderThan)
	}
	return nil, nil
}

func (m *mockIntentRepo) ProgressStatement(intentID string, remaining []string, deletedSoFar int) database.Statement {
	return stmt(fmt.Sprintf("intent.progress:%s:%d", intentID, deletedSoFar), nil)
}

func (m *mockIntentRepo) CompleteStatement(intentID string) database.Statement {
	return stmt("intent.complete:"+intentID, nil)
}

// ============================================================================
// Fixtures
// ============================================================================

func activeUser(id string, role model.PlatformRole) *model.User {
	return &model.User{ID: id, Role: role, CreatedOn: time.Now().UTC()}
}

func userLookup(users ...*model.User) func(ctx context.Context, id string) (*model.User, error) {
	index := make(map[string]*model.User, len(users))
	for _, u := range users {
		index[u.ID] = u
	}
	return func(ctx context.Context, id string) (*model.User, error) {
		return index[id], nil
	}
}
