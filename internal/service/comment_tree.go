package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// CommentService handles the comment tree: creation, edits, self-deletion,
// and the moderator cascade. A cascade is a chunked saga: a durable intent
// record is written first, each chunk of deletions plus its archive
// snapshots and counter moves commits as one batch, and the final chunk
// closes the intent. A crash between chunks leaves a pending intent that
// the recovery sweep resumes.
type CommentService struct {
	store    database.Store
	comments CommentRepository
	posts    PostRepository
	forums   ForumRepository
	users    UserRepository
	archive  ArchiveRepository
	intents  IntentRepository
	modlog   ModLogRepository
	hub      *EventHub
	notifier Notifier
	logger   *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(store database.Store, comments CommentRepository, posts PostRepository, forums ForumRepository, users UserRepository, archive ArchiveRepository, intents IntentRepository, modlog ModLogRepository, hub *EventHub, notifier Notifier, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		store:    store,
		comments: comments,
		posts:    posts,
		forums:   forums,
		users:    users,
		archive:  archive,
		intents:  intents,
		modlog:   modlog,
		hub:      hub,
		notifier: notifier,
		logger:   logger,
	}
}

// Create adds a comment to a post, optionally as a reply. The parent must
// be a live comment on the same post. On forums with requires_post_approval,
// comments from non-moderators enter pending, mirroring posts. Counters move
// only for comments that go live immediately.
func (s *CommentService) Create(ctx context.Context, authorID, postID string, req *model.CreateCommentRequest) (*model.Comment, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrUserNotFound
	}
	if author.Suspension.IsSuspended {
		return nil, ErrUserSuspended
	}
	if !model.CanPublish(author.Role) {
		return nil, ErrNotAuthorized
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.IsDeleted {
		return nil, ErrPostNotFound
	}
	if post.Status != model.PostStatusActive {
		return nil, ErrContentNotPublished
	}

	if req.ParentCommentID != nil {
		parent, err := s.comments.GetByID(ctx, *req.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.IsDeleted {
			return nil, ErrParentNotFound
		}
		if parent.PostID != postID {
			return nil, ErrParentDifferentPost
		}
	}

	forum, err := s.forums.GetByID(ctx, post.ForumID)
	if err != nil {
		return nil, err
	}
	if forum == nil {
		return nil, ErrForumNotFound
	}

	status := model.PostStatusActive
	if forum.RequiresPostApproval && !model.CanModerateForum(authorID, author.Role, forum) {
		status = model.PostStatusPending
	}

	cid := newID()
	comment := &model.Comment{
		ID:              "comment:" + cid,
		PostID:          postID,
		AuthorID:        authorID,
		ParentCommentID: req.ParentCommentID,
		Content:         req.Content,
		Status:          status,
		Likes:           []string{},
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.comments.CreateStatement(cid, comment))
	if status == model.PostStatusActive {
		batch.AddStatement(s.posts.IncrementCommentCountStatement(postID, 1))
		batch.AddStatement(s.users.IncrementStatStatement(authorID, "comment_count", 1))
		batch.AddStatement(s.users.IncrementStatStatement(authorID, "contribution_count", 1))
	}
	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}

	if status == model.PostStatusActive && s.hub != nil {
		s.hub.Publish(&Event{
			Type:    EventCommentCreated,
			ForumID: post.ForumID,
			Data:    map[string]interface{}{"comment_id": comment.ID, "post_id": postID},
		})
	}
	return comment, nil
}

// Approve publishes a pending comment. Counters that were deferred at
// creation move now, in the same batch as the status flip.
func (s *CommentService) Approve(ctx context.Context, actorID, commentID string) (*model.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil || comment.IsDeleted {
		return nil, ErrCommentNotFound
	}
	if comment.Status != model.PostStatusPending {
		return nil, ErrContentNotPending
	}
	post, err := s.posts.GetByID(ctx, comment.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if _, err := s.requireForumModerator(ctx, actorID, post.ForumID); err != nil {
		return nil, err
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.comments.SetStatusStatement(commentID, model.PostStatusActive))
	batch.AddStatement(s.posts.IncrementCommentCountStatement(comment.PostID, 1))
	batch.AddStatement(s.users.IncrementStatStatement(comment.AuthorID, "comment_count", 1))
	batch.AddStatement(s.users.IncrementStatStatement(comment.AuthorID, "contribution_count", 1))
	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}

	comment.Status = model.PostStatusActive
	if s.notifier != nil {
		s.notifier.Send(ctx, comment.AuthorID, EventContentApproved, map[string]interface{}{
			"comment_id": commentID,
		})
	}
	if s.hub != nil {
		s.hub.Publish(&Event{
			Type:    EventCommentCreated,
			ForumID: post.ForumID,
			Data:    map[string]interface{}{"comment_id": commentID, "post_id": comment.PostID},
		})
	}
	return comment, nil
}

// Get retrieves a single comment.
func (s *CommentService) Get(ctx context.Context, id string) (*model.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil || comment.IsDeleted {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

// ListByPost retrieves a post's live comments.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	return s.comments.ListByPost(ctx, postID, false)
}

// Edit replaces a comment's content. Author only; the previous content is
// appended to the edit history.
func (s *CommentService) Edit(ctx context.Context, actorID, commentID string, req *model.EditCommentRequest) (*model.Comment, error) {
	if _, err := s.requireActiveUser(ctx, actorID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil || comment.IsDeleted {
		return nil, ErrCommentNotFound
	}
	if comment.AuthorID != actorID {
		return nil, ErrNotCommentAuthor
	}
	if req.Content == "" || len(req.Content) > model.MaxCommentLength {
		return nil, ErrInvalidContent
	}
	return s.comments.UpdateContent(ctx, commentID, comment.Content, req.Content)
}

// SelfDelete soft-deletes the author's own comment. Only the one node is
// tombstoned; replies stay visible under a "[deleted]" placeholder. The
// post's comment counter and the author's stats decrement by exactly one.
func (s *CommentService) SelfDelete(ctx context.Context, actorID, commentID string) error {
	if _, err := s.requireActiveUser(ctx, actorID); err != nil {
		return err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil || comment.IsDeleted {
		return ErrCommentNotFound
	}
	if comment.AuthorID != actorID {
		return ErrNotCommentAuthor
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.comments.SoftDeleteStatement(commentID))
	batch.AddStatement(s.posts.IncrementCommentCountStatement(comment.PostID, -1))
	batch.AddStatement(s.users.IncrementStatStatement(actorID, "comment_count", -1))
	batch.AddStatement(s.users.IncrementStatStatement(actorID, "contribution_count", -1))
	return batch.Execute(ctx, s.store)
}

// CascadeDelete removes a comment and its entire reply subtree as a
// moderation action. The full subtree is collected level by level up front,
// an intent record with the ordered id list is persisted, and then the ids
// are worked through in chunks. Every removed node gets an archive snapshot.
func (s *CommentService) CascadeDelete(ctx context.Context, actorID, commentID string, req *model.CascadeDeleteRequest) (*model.CascadeDeleteResult, error) {
	if len(req.Reason) < model.MinModReasonLength {
		return nil, ErrReasonTooShort
	}
	root, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if root == nil || root.IsDeleted {
		return nil, ErrCommentNotFound
	}
	post, err := s.posts.GetByID(ctx, root.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if _, err := s.requireForumModerator(ctx, actorID, post.ForumID); err != nil {
		return nil, err
	}

	subtree, err := s.collectSubtree(ctx, root)
	if err != nil {
		return nil, err
	}

	intent := &model.CascadeIntent{
		ID:          "cascade_intent:" + newID(),
		RootID:      root.ID,
		PostID:      root.PostID,
		ModeratorID: actorID,
		Reason:      req.Reason,
		Remaining:   commentIDs(subtree),
		Status:      model.CascadeIntentPending,
	}
	if err := s.intents.Create(ctx, intent); err != nil {
		return nil, err
	}

	deleted, err := s.runCascade(ctx, intent, subtree)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Publish(&Event{
			Type:    EventCommentsRemoved,
			ForumID: post.ForumID,
			Data: map[string]interface{}{
				"post_id":       root.PostID,
				"root_id":       root.ID,
				"deleted_count": deleted,
			},
		})
	}
	return &model.CascadeDeleteResult{IntentID: intent.ID, DeletedCount: deleted}, nil
}

// PendingIntents lists cascade intents still pending after the grace
// window, for the recovery sweep.
func (s *CommentService) PendingIntents(ctx context.Context, olderThan time.Duration) ([]*model.CascadeIntent, error) {
	return s.intents.ListPending(ctx, olderThan)
}

// Resume picks up a pending intent left behind by a crash and finishes its
// remaining chunks. Called by the recovery sweep.
func (s *CommentService) Resume(ctx context.Context, intentID string) (int, error) {
	intent, err := s.intents.GetByID(ctx, intentID)
	if err != nil {
		return 0, err
	}
	if intent == nil {
		return 0, ErrIntentNotFound
	}
	if intent.Status != model.CascadeIntentPending {
		return 0, nil
	}
	remaining, err := s.comments.GetMany(ctx, intent.Remaining)
	if err != nil {
		return 0, err
	}
	// Ids already tombstoned by a chunk that committed before the crash
	// come back deleted; they are filtered inside runCascade.
	return s.runCascade(ctx, intent, remaining)
}

// runCascade works through the intent's remaining ids in chunks. Each chunk
// commits its tombstones, archive snapshots, counter moves, and the intent's
// progress in one batch; the last chunk also writes the moderation log entry
// and closes the intent.
func (s *CommentService) runCascade(ctx context.Context, intent *model.CascadeIntent, nodes []*model.Comment) (int, error) {
	live := make([]*model.Comment, 0, len(nodes))
	for _, c := range nodes {
		if c != nil && !c.IsDeleted {
			live = append(live, c)
		}
	}

	deleted := intent.DeletedSoFar
	start := 0
	for {
		end := start + model.CascadeChunkSize
		if end > len(live) {
			end = len(live)
		}
		chunk := live[start:end]
		last := end >= len(live)

		batch := database.NewAtomicBatch()
		perAuthor := make(map[string]int)
		for _, c := range chunk {
			batch.AddStatement(s.comments.SoftDeleteStatement(c.ID))
			batch.AddStatement(s.archive.ArchiveCommentStatement(model.CommentArchiveEntry{
				CommentID:   c.ID,
				PostID:      c.PostID,
				AuthorID:    c.AuthorID,
				Content:     c.Content,
				LikeCount:   len(c.Likes),
				DeletedBy:   intent.ModeratorID,
				Reason:      intent.Reason,
				CascadeRoot: intent.RootID,
			}))
			perAuthor[c.AuthorID]++
		}
		if len(chunk) > 0 {
			batch.AddStatement(s.posts.IncrementCommentCountStatement(intent.PostID, -len(chunk)))
		}
		for authorID, n := range perAuthor {
			batch.AddStatement(s.users.IncrementStatStatement(authorID, "comment_count", -n))
			batch.AddStatement(s.users.IncrementStatStatement(authorID, "contribution_count", -n))
		}

		deleted += len(chunk)
		if last {
			logEntry := &model.ModerationLogEntry{
				Action:      model.ActionCascadeDelete,
				TargetType:  "comment",
				TargetID:    intent.RootID,
				Reason:      intent.Reason,
				PerformedBy: intent.ModeratorID,
				Details:     map[string]interface{}{"deleted_count": deleted},
			}
			batch.AddStatement(s.modlog.AppendStatement(newID(), logEntry))
			for _, stmt := range s.modlog.CounterStatements(logEntry) {
				batch.AddStatement(stmt)
			}
			batch.AddStatement(s.intents.CompleteStatement(intent.ID))
		} else {
			batch.AddStatement(s.intents.ProgressStatement(intent.ID, commentIDs(live[end:]), deleted))
		}

		if err := batch.Execute(ctx, s.store); err != nil {
			return deleted - len(chunk), err
		}
		if last {
			break
		}
		start = end
	}
	return deleted, nil
}

// collectSubtree walks the reply tree breadth-first from the root, one
// query per level. The returned order is root first, then each level in
// turn, so chunked deletion never tombstones a child before its ancestor's
// chunk has at least been planned.
func (s *CommentService) collectSubtree(ctx context.Context, root *model.Comment) ([]*model.Comment, error) {
	all := []*model.Comment{root}
	frontier := []string{root.ID}
	for len(frontier) > 0 {
		children, err := s.comments.GetChildren(ctx, frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, c := range children {
			all = append(all, c)
			frontier = append(frontier, c.ID)
		}
	}
	return all, nil
}

// Reject hard-deletes a pending comment before publication and forwards a
// copy to the global queue. Pending comments were never counted.
func (s *CommentService) Reject(ctx context.Context, actorID, commentID string, req *model.RejectContentRequest) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil || comment.IsDeleted {
		return ErrCommentNotFound
	}
	if comment.Status != model.PostStatusPending {
		return ErrContentNotPending
	}
	post, err := s.posts.GetByID(ctx, comment.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if _, err := s.requireForumModerator(ctx, actorID, post.ForumID); err != nil {
		return err
	}
	if len(req.Reason) < model.MinModReasonLength {
		return ErrReasonTooShort
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.comments.DeleteStatement(commentID))
	batch.AddStatement(s.archive.EnqueueGlobalStatement(model.GlobalQueueEntry{
		Kind:    "rejection",
		ForumID: post.ForumID,
		UserID:  comment.AuthorID,
		Payload: map[string]interface{}{
			"target_type": "comment",
			"target_id":   commentID,
			"content":     comment.Content,
			"reason":      req.Reason,
			"rejected_by": actorID,
		},
	}))
	logEntry := &model.ModerationLogEntry{
		Action:      model.ActionRejectContent,
		TargetType:  "comment",
		TargetID:    commentID,
		Reason:      req.Reason,
		PerformedBy: actorID,
	}
	batch.AddStatement(s.modlog.AppendStatement(newID(), logEntry))
	for _, stmt := range s.modlog.CounterStatements(logEntry) {
		batch.AddStatement(stmt)
	}
	if err := batch.Execute(ctx, s.store); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.Send(ctx, comment.AuthorID, EventContentRejected, map[string]interface{}{
			"comment_id": commentID,
			"reason":     req.Reason,
		})
	}
	return nil
}

func (s *CommentService) requireActiveUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Suspension.IsSuspended {
		return nil, ErrUserSuspended
	}
	return user, nil
}

func (s *CommentService) requireForumModerator(ctx context.Context, actorID, forumID string) (*model.User, error) {
	actor, err := s.requireActiveUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	forum, err := s.forums.GetByID(ctx, forumID)
	if err != nil {
		return nil, err
	}
	if forum == nil {
		return nil, ErrForumNotFound
	}
	if !model.CanModerateForum(actorID, actor.Role, forum) {
		return nil, ErrNotAuthorized
	}
	return actor, nil
}

func commentIDs(comments []*model.Comment) []string {
	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	return ids
}
