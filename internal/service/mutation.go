package service

import (
	"context"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// MutationService is the reaction side of the mutation engine. Every toggle
// mirrors exactly one reaction-state transition into the author's aura, and
// the set change plus the aura delta commit in one batch.
type MutationService struct {
	store    database.Store
	posts    PostRepository
	comments CommentRepository
	users    UserRepository
	hub      *EventHub
}

// NewMutationService creates a new mutation service
func NewMutationService(store database.Store, posts PostRepository, comments CommentRepository, users UserRepository, hub *EventHub) *MutationService {
	return &MutationService{
		store:    store,
		posts:    posts,
		comments: comments,
		users:    users,
		hub:      hub,
	}
}

// reactionTransition resolves the next state and the author aura delta for a
// toggle. Requesting the current state toggles it off.
//
//	prev      action    next      delta
//	none      like      like      +1
//	like      like      none      -1
//	dislike   like      like      +2
//	none      dislike   dislike   -1
//	dislike   dislike   none      +1
//	like      dislike   dislike   -2
//	like      remove    none      -1
//	dislike   remove    none      +1
//	none      remove    none       0
func reactionTransition(prev model.ReactionState, action model.ReactionAction) (next model.ReactionState, delta int) {
	switch action {
	case model.ReactionActionLike:
		switch prev {
		case model.ReactionNone:
			return model.ReactionLiked, 1
		case model.ReactionLiked:
			return model.ReactionNone, -1
		case model.ReactionDisliked:
			return model.ReactionLiked, 2
		}
	case model.ReactionActionDislike:
		switch prev {
		case model.ReactionNone:
			return model.ReactionDisliked, -1
		case model.ReactionDisliked:
			return model.ReactionNone, 1
		case model.ReactionLiked:
			return model.ReactionDisliked, -2
		}
	case model.ReactionActionRemove:
		switch prev {
		case model.ReactionLiked:
			return model.ReactionNone, -1
		case model.ReactionDisliked:
			return model.ReactionNone, 1
		}
		return model.ReactionNone, 0
	}
	return prev, 0
}

// ReactToPost toggles the caller's reaction on a post. The returned result
// carries the authoritative post-mutation state; callers never re-read.
func (s *MutationService) ReactToPost(ctx context.Context, userID, postID string, req *model.ReactionRequest) (*model.ReactionResult, error) {
	if !model.IsValidReactionAction(req.Action) {
		return nil, ErrInvalidReaction
	}
	action := model.ReactionAction(req.Action)

	actor, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrUserNotFound
	}
	if actor.Suspension.IsSuspended {
		return nil, ErrUserSuspended
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

	prev := post.ReactionState(userID)
	next, delta := reactionTransition(prev, action)

	result := &model.ReactionResult{
		State:        next,
		LikeCount:    len(post.Likes),
		DislikeCount: len(post.Dislikes),
	}
	if prev == next {
		// remove with no existing reaction, nothing to write
		return result, nil
	}

	batch := database.NewAtomicBatch()
	switch prev {
	case model.ReactionLiked:
		batch.AddStatement(s.posts.RemoveLikeStatement(postID, userID))
		result.LikeCount--
	case model.ReactionDisliked:
		batch.AddStatement(s.posts.RemoveDislikeStatement(postID, userID))
		result.DislikeCount--
	}
	switch next {
	case model.ReactionLiked:
		batch.AddStatement(s.posts.AddLikeStatement(postID, userID))
		result.LikeCount++
	case model.ReactionDisliked:
		batch.AddStatement(s.posts.AddDislikeStatement(postID, userID))
		result.DislikeCount++
	}

	// Self-reactions change the sets but never the actor's own aura.
	if delta != 0 && post.AuthorID != userID {
		batch.AddStatement(s.users.IncrementAuraStatement(post.AuthorID, delta))
		result.AuraDelta = delta
	}

	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Publish(&Event{
			Type:    EventReactionUpdated,
			ForumID: post.ForumID,
			Data: map[string]interface{}{
				"post_id":       postID,
				"like_count":    result.LikeCount,
				"dislike_count": result.DislikeCount,
			},
		})
	}

	return result, nil
}

// ReactToComment toggles the caller's like on a comment. Comments carry
// likes only; a dislike action is rejected.
func (s *MutationService) ReactToComment(ctx context.Context, userID, commentID string, req *model.ReactionRequest) (*model.ReactionResult, error) {
	if !model.IsValidReactionAction(req.Action) {
		return nil, ErrInvalidReaction
	}
	action := model.ReactionAction(req.Action)
	if action == model.ReactionActionDislike {
		return nil, ErrInvalidReaction
	}

	actor, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrUserNotFound
	}
	if actor.Suspension.IsSuspended {
		return nil, ErrUserSuspended
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil || comment.IsDeleted {
		return nil, ErrCommentNotFound
	}
	if comment.Status != model.PostStatusActive {
		return nil, ErrContentNotPublished
	}

	prev := comment.LikeState(userID)
	next, delta := reactionTransition(prev, action)

	result := &model.ReactionResult{
		State:     next,
		LikeCount: len(comment.Likes),
	}
	if prev == next {
		return result, nil
	}

	batch := database.NewAtomicBatch()
	if next == model.ReactionLiked {
		batch.AddStatement(s.comments.AddLikeStatement(commentID, userID))
		result.LikeCount++
	} else {
		batch.AddStatement(s.comments.RemoveLikeStatement(commentID, userID))
		result.LikeCount--
	}

	if delta != 0 && comment.AuthorID != userID {
		batch.AddStatement(s.users.IncrementAuraStatement(comment.AuthorID, delta))
		result.AuraDelta = delta
	}

	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}

	return result, nil
}
