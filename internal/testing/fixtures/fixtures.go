package fixtures

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/repository"
)

// Factory creates test entities in the database
type Factory struct {
	store    database.Store
	users    *repository.UserRepository
	forums   *repository.ForumRepository
	posts    *repository.PostRepository
	comments *repository.CommentRepository
}

// New creates a new fixture factory
func New(store database.Store) *Factory {
	return &Factory{
		store:    store,
		users:    repository.NewUserRepository(store),
		forums:   repository.NewForumRepository(store),
		posts:    repository.NewPostRepository(store),
		comments: repository.NewCommentRepository(store),
	}
}

// randomID generates a record id suffix
func randomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ctx returns a context with timeout
func ctx() context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	_ = cancel
	return c
}

// UserOpts customizes user creation
type UserOpts struct {
	Email       string
	DisplayName string
	Password    string
	Role        model.PlatformRole
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	id := randomID()
	o := &UserOpts{
		Email:       fmt.Sprintf("user_%s@test.local", id),
		DisplayName: fmt.Sprintf("Dr. Test %s", id[:8]),
		Password:    "testpass123",
		Role:        model.RoleDoctor,
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	user := &model.User{
		Email:        o.Email,
		PasswordHash: string(hash),
		DisplayName:  o.DisplayName,
		Role:         o.Role,
	}
	if err := f.users.Create(ctx(), user); err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	user.PasswordHash = ""
	return user
}

// CreateModerator creates a moderator user
func (f *Factory) CreateModerator(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Role = model.RoleModerator
	})
}

// CreateAdmin creates an admin user
func (f *Factory) CreateAdmin(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Role = model.RoleAdmin
	})
}

// ForumOpts customizes forum creation
type ForumOpts struct {
	Name                 string
	Description          string
	RequiresApproval     bool
	RequiresPostApproval bool
}

// CreateForum creates a forum owned by the given user. The owner is also
// its first member.
func (f *Factory) CreateForum(t *testing.T, owner *model.User, opts ...func(*ForumOpts)) *model.Forum {
	t.Helper()

	o := &ForumOpts{
		Name:        fmt.Sprintf("Forum %s", randomID()[:8]),
		Description: "Test forum",
	}
	for _, fn := range opts {
		fn(o)
	}

	forum := &model.Forum{
		Name:                 o.Name,
		Description:          o.Description,
		OwnerID:              owner.ID,
		Moderators:           map[string]model.ModeratorEntry{},
		Members:              []string{owner.ID},
		PendingMembers:       map[string]model.PendingMember{},
		BannedUsers:          []model.BanEntry{},
		RequiresApproval:     o.RequiresApproval,
		RequiresPostApproval: o.RequiresPostApproval,
		MemberCount:          1,
	}
	if err := f.forums.Create(ctx(), forum); err != nil {
		t.Fatalf("fixtures: failed to create forum: %v", err)
	}
	return forum
}

// CreatePrivateForum creates a forum that requires join approval
func (f *Factory) CreatePrivateForum(t *testing.T, owner *model.User) *model.Forum {
	return f.CreateForum(t, owner, func(o *ForumOpts) {
		o.RequiresApproval = true
	})
}

// AddMember adds a user to a forum's member set and bumps the counter.
func (f *Factory) AddMember(t *testing.T, user *model.User, forum *model.Forum) {
	t.Helper()

	batch := database.NewAtomicBatch()
	batch.AddStatement(f.forums.AddMemberStatement(forum.ID, user.ID))
	batch.AddStatement(f.users.AddJoinedForumStatement(user.ID, forum.ID))
	if err := batch.Execute(ctx(), f.store); err != nil {
		t.Fatalf("fixtures: failed to add member: %v", err)
	}
	forum.Members = append(forum.Members, user.ID)
	forum.MemberCount++
}

// AddModerator promotes a member to forum moderator with the given addedAt.
// Test cases around owner succession depend on distinct addedAt values.
func (f *Factory) AddModerator(t *testing.T, user *model.User, forum *model.Forum, addedAt time.Time) {
	t.Helper()

	if forum.Moderators == nil {
		forum.Moderators = map[string]model.ModeratorEntry{}
	}
	forum.Moderators[user.ID] = model.ModeratorEntry{AddedAt: addedAt, AddedBy: forum.OwnerID}

	batch := database.NewAtomicBatch()
	batch.AddStatement(f.forums.SetModeratorsStatement(forum.ID, forum.Moderators))
	if err := batch.Execute(ctx(), f.store); err != nil {
		t.Fatalf("fixtures: failed to add moderator: %v", err)
	}
}

// PostOpts customizes post creation
type PostOpts struct {
	Title   string
	Content string
	Status  model.PostStatus
}

// CreatePost creates a published post by author in forum.
func (f *Factory) CreatePost(t *testing.T, forum *model.Forum, author *model.User, opts ...func(*PostOpts)) *model.Post {
	t.Helper()

	o := &PostOpts{
		Title:   fmt.Sprintf("Post %s", randomID()[:8]),
		Content: "Test post content",
		Status:  model.PostStatusActive,
	}
	for _, fn := range opts {
		fn(o)
	}

	pid := randomID()
	post := &model.Post{
		ID:       "post:" + pid,
		AuthorID: author.ID,
		ForumID:  forum.ID,
		Title:    o.Title,
		Content:  o.Content,
		Status:   o.Status,
		Likes:    []string{},
		Dislikes: []string{},
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(f.posts.CreateStatement(pid, post))
	batch.AddStatement(f.forums.IncrementPostCountStatement(forum.ID, 1))
	batch.AddStatement(f.users.IncrementStatStatement(author.ID, "post_count", 1))
	if err := batch.Execute(ctx(), f.store); err != nil {
		t.Fatalf("fixtures: failed to create post: %v", err)
	}
	return post
}

// CreateComment creates a published comment on a post. Pass a parent to
// build a reply chain.
func (f *Factory) CreateComment(t *testing.T, post *model.Post, author *model.User, parent *model.Comment) *model.Comment {
	t.Helper()

	cid := randomID()
	comment := &model.Comment{
		ID:       "comment:" + cid,
		PostID:   post.ID,
		AuthorID: author.ID,
		Content:  "Test comment content",
		Status:   model.PostStatusActive,
		Likes:    []string{},
	}
	if parent != nil {
		comment.ParentCommentID = &parent.ID
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(f.comments.CreateStatement(cid, comment))
	batch.AddStatement(f.posts.IncrementCommentCountStatement(post.ID, 1))
	batch.AddStatement(f.users.IncrementStatStatement(author.ID, "comment_count", 1))
	if err := batch.Execute(ctx(), f.store); err != nil {
		t.Fatalf("fixtures: failed to create comment: %v", err)
	}
	return comment
}
