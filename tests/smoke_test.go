package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/repository"
)

func TestSmoke_DatabaseConnection(t *testing.T) {
	requireDB(t)

	env := newEnv(t)

	require.NoError(t, env.tdb.Store.Ping(env.tdb.Ctx()))

	results := env.tdb.MustQuery("INFO FOR DB", nil)
	require.NotEmpty(t, results)
}

func TestSmoke_FixtureCreation(t *testing.T) {
	env := newEnv(t)

	user := env.f.CreateUser(t)

	require.NotEmpty(t, user.ID)
	require.NotEmpty(t, user.Email)
	assert.Equal(t, model.RoleDoctor, user.Role)

	users := repository.NewUserRepository(env.tdb.Store)
	fetched, err := users.GetByID(env.tdb.Ctx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, fetched.Email)
	assert.Equal(t, 0, fetched.Stats.Aura)
	assert.False(t, fetched.Suspension.IsSuspended)
}

func TestSmoke_ForumCreation(t *testing.T) {
	env := newEnv(t)

	owner := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, owner)

	require.NotEmpty(t, forum.ID)
	assert.Equal(t, owner.ID, forum.OwnerID)
	assert.Equal(t, 1, forum.MemberCount)

	fetched, err := env.forums.Get(env.tdb.Ctx(), forum.ID)
	require.NoError(t, err)
	assert.True(t, fetched.IsMember(owner.ID))
	assert.Len(t, fetched.Members, fetched.MemberCount)
}

func TestSmoke_PostAndComment(t *testing.T) {
	env := newEnv(t)

	author := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, author)
	post := env.f.CreatePost(t, forum, author)
	comment := env.f.CreateComment(t, post, author, nil)

	fetched, err := env.posts.Get(env.tdb.Ctx(), post.ID, false)
	require.NoError(t, err)
	assert.Equal(t, post.Title, fetched.Title)
	assert.Equal(t, model.PostStatusActive, fetched.Status)

	comments, err := env.comments.ListByPost(env.tdb.Ctx(), post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, comment.Content, comments[0].Content)
}
