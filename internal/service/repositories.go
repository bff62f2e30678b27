package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// Repository interfaces consumed by the services. Statement builders return
// database.Statement values that services assemble into atomic batches.

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetMany(ctx context.Context, ids []string) ([]*model.User, error)
	ListSuspendedPastEnd(ctx context.Context) ([]*model.User, error)

	IncrementAuraStatement(userID string, delta int) database.Statement
	IncrementStatStatement(userID, field string, delta int) database.Statement
	AddJoinedForumStatement(userID, forumID string) database.Statement
	RemoveJoinedForumStatement(userID, forumID string) database.Statement
	SetSuspensionStatement(userID string, s model.Suspension) database.Statement
	SetHighestThresholdStatement(userID string, threshold int) database.Statement
}

// ForumRepository defines the interface for forum data access
type ForumRepository interface {
	GetByID(ctx context.Context, id string) (*model.Forum, error)
	List(ctx context.Context, limit int) ([]*model.Forum, error)

	CreateStatement(id string, forum *model.Forum) database.Statement
	AddMemberStatement(forumID, userID string) database.Statement
	RemoveMemberStatement(forumID, userID string) database.Statement
	SetPendingMembersStatement(forumID string, pending map[string]model.PendingMember) database.Statement
	SetModeratorsStatement(forumID string, mods map[string]model.ModeratorEntry) database.Statement
	SetOwnerStatement(forumID, userID string) database.Statement
	AppendBanStatement(forumID string, ban model.BanEntry) database.Statement
	SetBannedUsersStatement(forumID string, bans []model.BanEntry) database.Statement
	IncrementPostCountStatement(forumID string, delta int) database.Statement
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListByForum(ctx context.Context, forumID string, includePending bool, limit int) ([]*model.Post, error)
	ListPendingByForum(ctx context.Context, forumID string) ([]*model.Post, error)
	IncrementViewCount(ctx context.Context, id string) error

	CreateStatement(id string, post *model.Post) database.Statement
	AddLikeStatement(postID, userID string) database.Statement
	RemoveLikeStatement(postID, userID string) database.Statement
	AddDislikeStatement(postID, userID string) database.Statement
	RemoveDislikeStatement(postID, userID string) database.Statement
	SetStatusStatement(postID string, status model.PostStatus) database.Statement
	SoftDeleteStatement(postID string) database.Statement
	DeleteStatement(postID string) database.Statement
	IncrementCommentCountStatement(postID string, delta int) database.Statement
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	GetMany(ctx context.Context, ids []string) ([]*model.Comment, error)
	ListByPost(ctx context.Context, postID string, includePending bool) ([]*model.Comment, error)
	GetChildren(ctx context.Context, parentIDs []string) ([]*model.Comment, error)
	UpdateContent(ctx context.Context, id, previous, content string) (*model.Comment, error)

	CreateStatement(id string, comment *model.Comment) database.Statement
	SoftDeleteStatement(commentID string) database.Statement
	DeleteStatement(commentID string) database.Statement
	SetStatusStatement(commentID string, status model.PostStatus) database.Statement
	AddLikeStatement(commentID, userID string) database.Statement
	RemoveLikeStatement(commentID, userID string) database.Statement
}

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id string) (*model.Report, error)
	FindOpenByTarget(ctx context.Context, targetType model.ReportTargetType, targetID string) (*model.Report, error)
	IncrementCount(ctx context.Context, id string, urgency model.ReportUrgency) (*model.Report, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*model.Report, error)
	List(ctx context.Context, filter model.ReportFilter) ([]*model.Report, error)
	Dashboard(ctx context.Context) (*model.ReportDashboard, error)
}

// StrikeRepository defines the interface for strike data access
type StrikeRepository interface {
	GetByID(ctx context.Context, id string) (*model.Strike, error)
	GetAllForUser(ctx context.Context, userID string) ([]*model.Strike, error)
	GetActiveForUser(ctx context.Context, userID string) ([]*model.Strike, error)
	ExpireDue(ctx context.Context) ([]*model.Strike, error)

	CreateStatement(id string, strike *model.Strike) database.Statement
	LiftStatement(strikeID, liftedBy, reason string) database.Statement
}

// ModLogRepository defines the interface for the moderation action log
type ModLogRepository interface {
	List(ctx context.Context, filter model.ModLogFilter) ([]*model.ModerationLogEntry, error)
	Summarize(ctx context.Context, since time.Time, window string) (*model.ModLogSummary, error)
	CounterValue(ctx context.Context, key string) (int, error)

	AppendStatement(id string, entry *model.ModerationLogEntry) database.Statement
	CounterStatements(entry *model.ModerationLogEntry) []database.Statement
}

// ArchiveRepository defines the interface for the deletion archive and the
// global moderation queue
type ArchiveRepository interface {
	ListByCascade(ctx context.Context, rootID string) ([]model.CommentArchiveEntry, error)
	ListGlobalQueue(ctx context.Context, limit int) ([]model.GlobalQueueEntry, error)

	ArchiveCommentStatement(entry model.CommentArchiveEntry) database.Statement
	EnqueueGlobalStatement(entry model.GlobalQueueEntry) database.Statement
}

// IntentRepository defines the interface for cascade intent records
type IntentRepository interface {
	Create(ctx context.Context, intent *model.CascadeIntent) error
	GetByID(ctx context.Context, id string) (*model.CascadeIntent, error)
	ListPending(ctx context.Context, olderThan time.Duration) ([]*model.CascadeIntent, error)

	ProgressStatement(intentID string, remaining []string, deletedSoFar int) database.Statement
	CompleteStatement(intentID string) database.Statement
}

// newID returns a record id suffix safe to embed via type::thing.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
