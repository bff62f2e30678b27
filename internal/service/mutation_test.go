package service

import (
	"context"
	"errors"
	"testing"

	"github.com/medcircle/commons/api/internal/model"
)

func newMutationFixture(post *model.Post) (*MutationService, *mockStore) {
	store := &mockStore{}
	posts := &mockPostRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.Post, error) {
			return post, nil
		},
	}
	users := &mockUserRepo{
		getByIDFunc: userLookup(
			activeUser("user:author", model.RoleDoctor),
			activeUser("user:reactor", model.RoleDoctor),
		),
	}
	svc := NewMutationService(store, posts, &mockCommentRepo{}, users, nil)
	return svc, store
}

func activePost(likes, dislikes []string) *model.Post {
	return &model.Post{
		ID:       "post:p1",
		AuthorID: "user:author",
		ForumID:  "forum:f1",
		Status:   model.PostStatusActive,
		Likes:    likes,
		Dislikes: dislikes,
	}
}

func TestReactToPostTransitions(t *testing.T) {
	cases := []struct {
		name      string
		likes     []string
		dislikes  []string
		action    string
		wantState model.ReactionState
		wantDelta int
	}{
		{"like from none", nil, nil, "like", model.ReactionLiked, 1},
		{"like toggles off", []string{"user:reactor"}, nil, "like", model.ReactionNone, -1},
		{"like over dislike", nil, []string{"user:reactor"}, "like", model.ReactionLiked, 2},
		{"dislike from none", nil, nil, "dislike", model.ReactionDisliked, -1},
		{"dislike toggles off", nil, []string{"user:reactor"}, "dislike", model.ReactionNone, 1},
		{"dislike over like", []string{"user:reactor"}, nil, "dislike", model.ReactionDisliked, -2},
		{"remove like", []string{"user:reactor"}, nil, "remove", model.ReactionNone, -1},
		{"remove dislike", nil, []string{"user:reactor"}, "remove", model.ReactionNone, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newMutationFixture(activePost(tc.likes, tc.dislikes))

			result, err := svc.ReactToPost(context.Background(), "user:reactor", "post:p1", &model.ReactionRequest{Action: tc.action})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.State != tc.wantState {
				t.Errorf("state = %s, want %s", result.State, tc.wantState)
			}
			if result.AuraDelta != tc.wantDelta {
				t.Errorf("aura delta = %d, want %d", result.AuraDelta, tc.wantDelta)
			}
			if len(store.queries) != 1 {
				t.Fatalf("expected a single transaction, got %d queries", len(store.queries))
			}
		})
	}
}

func TestReactToPostRemoveWithoutReactionIsNoop(t *testing.T) {
	svc, store := newMutationFixture(activePost(nil, nil))

	result, err := svc.ReactToPost(context.Background(), "user:reactor", "post:p1", &model.ReactionRequest{Action: "remove"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != model.ReactionNone || result.AuraDelta != 0 {
		t.Errorf("got state %s delta %d, want none with zero delta", result.State, result.AuraDelta)
	}
	if len(store.queries) != 0 {
		t.Errorf("expected no writes, got %d", len(store.queries))
	}
}

func TestReactToPostSelfReactionSkipsAura(t *testing.T) {
	post := activePost(nil, nil)
	svc, store := newMutationFixture(post)

	result, err := svc.ReactToPost(context.Background(), "user:author", "post:p1", &model.ReactionRequest{Action: "like"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != model.ReactionLiked {
		t.Errorf("state = %s, want like", result.State)
	}
	if result.AuraDelta != 0 {
		t.Errorf("aura delta = %d, want 0 for self-reaction", result.AuraDelta)
	}
	if store.batchContains("user.aura") {
		t.Error("aura statement written for self-reaction")
	}
	if !store.batchContains("post.add_like:post:p1:user:author") {
		t.Error("like set not updated")
	}
}

func TestReactToPostSwitchReplacesBothSets(t *testing.T) {
	svc, store := newMutationFixture(activePost(nil, []string{"user:reactor"}))

	result, err := svc.ReactToPost(context.Background(), "user:reactor", "post:p1", &model.ReactionRequest{Action: "like"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.batchContains("post.remove_dislike:post:p1:user:reactor") {
		t.Error("dislike not removed on switch")
	}
	if !store.batchContains("post.add_like:post:p1:user:reactor") {
		t.Error("like not added on switch")
	}
	if !store.batchContains("user.aura:user:author:+2") {
		t.Error("aura delta for dislike-to-like should be +2")
	}
	if result.LikeCount != 1 || result.DislikeCount != 0 {
		t.Errorf("counts = %d/%d, want 1/0", result.LikeCount, result.DislikeCount)
	}
}

func TestReactToPostRejectsInvalidAction(t *testing.T) {
	svc, _ := newMutationFixture(activePost(nil, nil))

	_, err := svc.ReactToPost(context.Background(), "user:reactor", "post:p1", &model.ReactionRequest{Action: "upvote"})
	if !errors.Is(err, ErrInvalidReaction) {
		t.Errorf("got %v, want ErrInvalidReaction", err)
	}
}

func TestReactToPostSuspendedUser(t *testing.T) {
	store := &mockStore{}
	suspended := activeUser("user:reactor", model.RoleDoctor)
	suspended.Suspension.IsSuspended = true
	users := &mockUserRepo{getByIDFunc: userLookup(suspended)}
	svc := NewMutationService(store, &mockPostRepo{}, &mockCommentRepo{}, users, nil)

	_, err := svc.ReactToPost(context.Background(), "user:reactor", "post:p1", &model.ReactionRequest{Action: "like"})
	if !errors.Is(err, ErrUserSuspended) {
		t.Errorf("got %v, want ErrUserSuspended", err)
	}
}

func TestReactToPostPendingPost(t *testing.T) {
	post := activePost(nil, nil)
	post.Status = model.PostStatusPending
	svc, _ := newMutationFixture(post)

	_, err := svc.ReactToPost(context.Background(), "user:reactor", "post:p1", &model.ReactionRequest{Action: "like"})
	if !errors.Is(err, ErrContentNotPublished) {
		t.Errorf("got %v, want ErrContentNotPublished", err)
	}
}

func TestReactToCommentRejectsDislike(t *testing.T) {
	users := &mockUserRepo{getByIDFunc: userLookup(activeUser("user:reactor", model.RoleDoctor))}
	svc := NewMutationService(&mockStore{}, &mockPostRepo{}, &mockCommentRepo{}, users, nil)

	_, err := svc.ReactToComment(context.Background(), "user:reactor", "comment:c1", &model.ReactionRequest{Action: "dislike"})
	if !errors.Is(err, ErrInvalidReaction) {
		t.Errorf("got %v, want ErrInvalidReaction", err)
	}
}

func TestReactToCommentLikeToggle(t *testing.T) {
	comment := &model.Comment{
		ID:       "comment:c1",
		PostID:   "post:p1",
		AuthorID: "user:author",
		Status:   model.PostStatusActive,
		Likes:    []string{"user:reactor"},
	}
	store := &mockStore{}
	comments := &mockCommentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.Comment, error) {
			return comment, nil
		},
	}
	users := &mockUserRepo{
		getByIDFunc: userLookup(
			activeUser("user:author", model.RoleDoctor),
			activeUser("user:reactor", model.RoleDoctor),
		),
	}
	svc := NewMutationService(store, &mockPostRepo{}, comments, users, nil)

	result, err := svc.ReactToComment(context.Background(), "user:reactor", "comment:c1", &model.ReactionRequest{Action: "like"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != model.ReactionNone {
		t.Errorf("state = %s, want none after toggle-off", result.State)
	}
	if result.LikeCount != 0 {
		t.Errorf("like count = %d, want 0", result.LikeCount)
	}
	if !store.batchContains("user.aura:user:author:-1") {
		t.Error("toggle-off should decrement the author's aura")
	}
}
