package service

import (
	"context"
	"errors"
	"testing"

	"github.com/medcircle/commons/api/internal/model"
)

func newPostFixture(forum *model.Forum, post *model.Post, users ...*model.User) (*PostService, *mockStore) {
	store := &mockStore{}
	posts := &mockPostRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.Post, error) {
			return post, nil
		},
	}
	forums := &mockForumRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.Forum, error) {
			return forum, nil
		},
	}
	userRepo := &mockUserRepo{getByIDFunc: userLookup(users...)}
	svc := NewPostService(store, posts, forums, userRepo, &mockArchiveRepo{}, &mockModLogRepo{}, nil, nil)
	return svc, store
}

func openForum(members ...string) *model.Forum {
	return &model.Forum{
		ID:          "forum:f1",
		OwnerID:     "user:owner",
		Moderators:  map[string]model.ModeratorEntry{},
		Members:     append([]string{"user:owner"}, members...),
		MemberCount: 1 + len(members),
	}
}

func TestCreatePostCountsImmediately(t *testing.T) {
	svc, store := newPostFixture(openForum("user:doc"), nil, activeUser("user:doc", model.RoleDoctor))

	post, err := svc.Create(context.Background(), "user:doc", "forum:f1", &model.CreatePostRequest{Title: "case", Content: "details"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Status != model.PostStatusActive {
		t.Errorf("status = %s, want active", post.Status)
	}
	if !store.batchContains("forum.post_count:forum:f1:+1") {
		t.Error("forum counter not incremented")
	}
	if !store.batchContains("user.stat:user:doc:post_count:+1") {
		t.Error("author post count not incremented")
	}
	if len(store.queries) != 1 {
		t.Errorf("create should be one transaction, got %d", len(store.queries))
	}
}

func TestCreatePostOnGatedForumDefersCounters(t *testing.T) {
	forum := openForum("user:doc")
	forum.RequiresPostApproval = true
	svc, store := newPostFixture(forum, nil, activeUser("user:doc", model.RoleDoctor))

	post, err := svc.Create(context.Background(), "user:doc", "forum:f1", &model.CreatePostRequest{Title: "case", Content: "details"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Status != model.PostStatusPending {
		t.Errorf("status = %s, want pending", post.Status)
	}
	if store.batchContains("forum.post_count") || store.batchContains("user.stat") {
		t.Error("pending posts must not move counters")
	}
}

func TestCreatePostModeratorBypassesGate(t *testing.T) {
	forum := openForum("user:mod")
	forum.RequiresPostApproval = true
	forum.Moderators["user:mod"] = model.ModeratorEntry{}
	svc, _ := newPostFixture(forum, nil, activeUser("user:mod", model.RoleDoctor))

	post, err := svc.Create(context.Background(), "user:mod", "forum:f1", &model.CreatePostRequest{Title: "notice", Content: "pinned"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Status != model.PostStatusActive {
		t.Errorf("status = %s, forum moderators publish directly", post.Status)
	}
}

func TestCreatePostRequiresMembership(t *testing.T) {
	svc, _ := newPostFixture(openForum(), nil, activeUser("user:doc", model.RoleDoctor))

	_, err := svc.Create(context.Background(), "user:doc", "forum:f1", &model.CreatePostRequest{Title: "case", Content: "details"})
	if !errors.Is(err, ErrNotMember) {
		t.Errorf("got %v, want ErrNotMember", err)
	}
}

func TestCreatePostRejectsUnverified(t *testing.T) {
	svc, _ := newPostFixture(openForum("user:new"), nil, activeUser("user:new", model.RoleUnverified))

	_, err := svc.Create(context.Background(), "user:new", "forum:f1", &model.CreatePostRequest{Title: "case", Content: "details"})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("got %v, want ErrNotAuthorized", err)
	}
}

func TestApprovePostMovesDeferredCounters(t *testing.T) {
	pending := &model.Post{ID: "post:p1", AuthorID: "user:doc", ForumID: "forum:f1", Status: model.PostStatusPending}
	svc, store := newPostFixture(openForum("user:doc"), pending, activeUser("user:owner", model.RoleDoctor))

	post, err := svc.Approve(context.Background(), "user:owner", "post:p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Status != model.PostStatusActive {
		t.Errorf("status = %s, want active", post.Status)
	}
	if !store.batchContains("post.set_status:post:p1:active") {
		t.Error("status flip not written")
	}
	if !store.batchContains("forum.post_count:forum:f1:+1") || !store.batchContains("user.stat:user:doc:post_count:+1") {
		t.Error("deferred counters must move with the approval")
	}
	if len(store.queries) != 1 {
		t.Errorf("approval should be one transaction, got %d", len(store.queries))
	}
}

func TestApproveActivePostRejected(t *testing.T) {
	live := &model.Post{ID: "post:p1", AuthorID: "user:doc", ForumID: "forum:f1", Status: model.PostStatusActive}
	svc, _ := newPostFixture(openForum("user:doc"), live, activeUser("user:owner", model.RoleDoctor))

	_, err := svc.Approve(context.Background(), "user:owner", "post:p1")
	if !errors.Is(err, ErrContentNotPending) {
		t.Errorf("got %v, want ErrContentNotPending", err)
	}
}

func TestRejectPostHardDeletesAndForwards(t *testing.T) {
	pending := &model.Post{ID: "post:p1", AuthorID: "user:doc", ForumID: "forum:f1", Status: model.PostStatusPending, Title: "case"}
	svc, store := newPostFixture(openForum("user:doc"), pending, activeUser("user:owner", model.RoleDoctor))

	err := svc.Reject(context.Background(), "user:owner", "post:p1", &model.RejectContentRequest{Reason: "not medical content"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.batchContains("post.delete:post:p1") {
		t.Error("rejection must hard-delete, not tombstone")
	}
	if store.batchContains("post.soft_delete") {
		t.Error("rejection must not soft-delete")
	}
	if !store.batchContains("archive.global:rejection:user:doc") {
		t.Error("rejection not forwarded to the global queue")
	}
	if !store.batchContains("modlog.append:reject_content") {
		t.Error("rejection not logged")
	}
	if store.batchContains("forum.post_count") {
		t.Error("a never-counted post must not decrement counters")
	}
}

func TestRemovePostDecrementsCounters(t *testing.T) {
	live := &model.Post{ID: "post:p1", AuthorID: "user:doc", ForumID: "forum:f1", Status: model.PostStatusActive}
	svc, store := newPostFixture(openForum("user:doc"), live, activeUser("user:owner", model.RoleDoctor))

	err := svc.Remove(context.Background(), "user:owner", "post:p1", "dangerous dosing advice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.batchContains("post.soft_delete:post:p1") {
		t.Error("removal must tombstone the post")
	}
	if !store.batchContains("forum.post_count:forum:f1:-1") || !store.batchContains("user.stat:user:doc:post_count:-1") {
		t.Error("counters must decrement with the tombstone")
	}
	if !store.batchContains("modlog.append:remove_content") {
		t.Error("removal not logged")
	}
}
