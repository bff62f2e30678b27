package service

import (
	"context"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// PostService handles post creation and the pre-publication approval path.
// On forums with requires_post_approval, posts from non-moderators enter
// pending and are counted only once approved.
type PostService struct {
	store    database.Store
	posts    PostRepository
	forums   ForumRepository
	users    UserRepository
	archive  ArchiveRepository
	modlog   ModLogRepository
	hub      *EventHub
	notifier Notifier
}

// NewPostService creates a new post service
func NewPostService(store database.Store, posts PostRepository, forums ForumRepository, users UserRepository, archive ArchiveRepository, modlog ModLogRepository, hub *EventHub, notifier Notifier) *PostService {
	return &PostService{
		store:    store,
		posts:    posts,
		forums:   forums,
		users:    users,
		archive:  archive,
		modlog:   modlog,
		hub:      hub,
		notifier: notifier,
	}
}

// Create creates a post in a forum. The author must be a publishing-capable
// member; counters move only for posts that go live immediately.
func (s *PostService) Create(ctx context.Context, authorID, forumID string, req *model.CreatePostRequest) (*model.Post, error) {
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

	forum, err := s.forums.GetByID(ctx, forumID)
	if err != nil {
		return nil, err
	}
	if forum == nil {
		return nil, ErrForumNotFound
	}
	if !forum.IsMember(authorID) {
		return nil, ErrNotMember
	}

	status := model.PostStatusActive
	if forum.RequiresPostApproval && !model.CanModerateForum(authorID, author.Role, forum) {
		status = model.PostStatusPending
	}

	pid := newID()
	post := &model.Post{
		ID:       "post:" + pid,
		AuthorID: authorID,
		ForumID:  forumID,
		Title:    req.Title,
		Content:  req.Content,
		Status:   status,
		Likes:    []string{},
		Dislikes: []string{},
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.posts.CreateStatement(pid, post))
	if status == model.PostStatusActive {
		batch.AddStatement(s.forums.IncrementPostCountStatement(forumID, 1))
		batch.AddStatement(s.users.IncrementStatStatement(authorID, "post_count", 1))
		batch.AddStatement(s.users.IncrementStatStatement(authorID, "contribution_count", 1))
	}
	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}

	if status == model.PostStatusActive && s.hub != nil {
		s.hub.Publish(&Event{
			Type:    EventPostCreated,
			ForumID: forumID,
			Data:    map[string]interface{}{"post_id": post.ID, "title": post.Title},
		})
	}
	return post, nil
}

// Get retrieves a post and bumps its view counter. The view bump is
// best-effort and single-document, outside the batch interface.
func (s *PostService) Get(ctx context.Context, id string, countView bool) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil || post.IsDeleted {
		return nil, ErrPostNotFound
	}
	if countView {
		if err := s.posts.IncrementViewCount(ctx, id); err == nil {
			post.Stats.ViewCount++
		}
	}
	return post, nil
}

// ListByForum retrieves the active posts of a forum.
func (s *PostService) ListByForum(ctx context.Context, forumID string, limit int) ([]*model.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.posts.ListByForum(ctx, forumID, false, limit)
}

// ListPending retrieves a forum's posts awaiting approval, for moderators.
func (s *PostService) ListPending(ctx context.Context, actorID, forumID string) ([]*model.Post, error) {
	if _, _, err := s.requireForumModerator(ctx, actorID, forumID); err != nil {
		return nil, err
	}
	return s.posts.ListPendingByForum(ctx, forumID)
}

// Approve publishes a pending post. Counters that were deferred at creation
// move now, in the same batch as the status flip.
func (s *PostService) Approve(ctx context.Context, actorID, postID string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.IsDeleted {
		return nil, ErrPostNotFound
	}
	if post.Status != model.PostStatusPending {
		return nil, ErrContentNotPending
	}
	if _, _, err := s.requireForumModerator(ctx, actorID, post.ForumID); err != nil {
		return nil, err
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.posts.SetStatusStatement(postID, model.PostStatusActive))
	batch.AddStatement(s.forums.IncrementPostCountStatement(post.ForumID, 1))
	batch.AddStatement(s.users.IncrementStatStatement(post.AuthorID, "post_count", 1))
	batch.AddStatement(s.users.IncrementStatStatement(post.AuthorID, "contribution_count", 1))
	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}

	post.Status = model.PostStatusActive
	if s.notifier != nil {
		s.notifier.Send(ctx, post.AuthorID, EventContentApproved, map[string]interface{}{
			"post_id": postID,
		})
	}
	if s.hub != nil {
		s.hub.Publish(&Event{
			Type:    EventPostCreated,
			ForumID: post.ForumID,
			Data:    map[string]interface{}{"post_id": postID, "title": post.Title},
		})
	}
	return post, nil
}

// Reject hard-deletes a pending post before publication, records the
// rejection in the moderation log, forwards a copy to the global queue, and
// notifies the author. A pending post was never counted, so no counters move.
func (s *PostService) Reject(ctx context.Context, actorID, postID string, req *model.RejectContentRequest) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.IsDeleted {
		return ErrPostNotFound
	}
	if post.Status != model.PostStatusPending {
		return ErrContentNotPending
	}
	if _, _, err := s.requireForumModerator(ctx, actorID, post.ForumID); err != nil {
		return err
	}
	if len(req.Reason) < model.MinModReasonLength {
		return ErrReasonTooShort
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.posts.DeleteStatement(postID))
	batch.AddStatement(s.archive.EnqueueGlobalStatement(model.GlobalQueueEntry{
		Kind:    "rejection",
		ForumID: post.ForumID,
		UserID:  post.AuthorID,
		Payload: map[string]interface{}{
			"target_type": "post",
			"target_id":   postID,
			"title":       post.Title,
			"reason":      req.Reason,
			"rejected_by": actorID,
		},
	}))
	logEntry := &model.ModerationLogEntry{
		Action:      model.ActionRejectContent,
		TargetType:  "post",
		TargetID:    postID,
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
		s.notifier.Send(ctx, post.AuthorID, EventContentRejected, map[string]interface{}{
			"post_id": postID,
			"reason":  req.Reason,
		})
	}
	return nil
}

// Remove soft-deletes a published post as a moderation action (resolving a
// report, or direct). The post's forum and author counters decrement with
// the tombstone in one batch.
func (s *PostService) Remove(ctx context.Context, actorID, postID, reason string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.IsDeleted {
		return ErrPostNotFound
	}
	if _, _, err := s.requireForumModerator(ctx, actorID, post.ForumID); err != nil {
		return err
	}
	if len(reason) < model.MinModReasonLength {
		return ErrReasonTooShort
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.posts.SoftDeleteStatement(postID))
	if post.Status == model.PostStatusActive {
		batch.AddStatement(s.forums.IncrementPostCountStatement(post.ForumID, -1))
		batch.AddStatement(s.users.IncrementStatStatement(post.AuthorID, "post_count", -1))
		batch.AddStatement(s.users.IncrementStatStatement(post.AuthorID, "contribution_count", -1))
	}
	logEntry := &model.ModerationLogEntry{
		Action:      model.ActionRemoveContent,
		TargetType:  "post",
		TargetID:    postID,
		Reason:      reason,
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
		s.notifier.Send(ctx, post.AuthorID, EventContentRejected, map[string]interface{}{
			"post_id": postID,
			"reason":  reason,
		})
	}
	return nil
}

func (s *PostService) requireForumModerator(ctx context.Context, actorID, forumID string) (*model.User, *model.Forum, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if actor == nil {
		return nil, nil, ErrUserNotFound
	}
	if actor.Suspension.IsSuspended {
		return nil, nil, ErrUserSuspended
	}
	forum, err := s.forums.GetByID(ctx, forumID)
	if err != nil {
		return nil, nil, err
	}
	if forum == nil {
		return nil, nil, ErrForumNotFound
	}
	if !model.CanModerateForum(actorID, actor.Role, forum) {
		return nil, nil, ErrNotAuthorized
	}
	return actor, forum, nil
}
