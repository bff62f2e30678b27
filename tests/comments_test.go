package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/repository"
	"github.com/medcircle/commons/api/internal/service"
	"github.com/medcircle/commons/api/internal/testing/fixtures"
)

func TestComments_SelfDeleteRemovesOneNode(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	author := env.f.CreateUser(t)
	replier := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, author)
	env.f.AddMember(t, replier, forum)
	post := env.f.CreatePost(t, forum, author)
	parent := env.f.CreateComment(t, post, author, nil)
	child := env.f.CreateComment(t, post, replier, parent)

	require.NoError(t, env.comments.SelfDelete(ctx, author.ID, parent.ID))

	comments := repository.NewCommentRepository(env.tdb.Store)
	deleted, err := comments.GetByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	// the reply survives a self-delete
	reply, err := comments.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.False(t, reply.IsDeleted)
}

func TestComments_SelfDeleteByNonAuthorRejected(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	author := env.f.CreateUser(t)
	other := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, author)
	env.f.AddMember(t, other, forum)
	post := env.f.CreatePost(t, forum, author)
	comment := env.f.CreateComment(t, post, author, nil)

	err := env.comments.SelfDelete(ctx, other.ID, comment.ID)
	require.ErrorIs(t, err, service.ErrNotCommentAuthor)
}

func TestComments_CascadeDeletesSubtreeAndArchives(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	owner := env.f.CreateUser(t)
	replier := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, owner)
	env.f.AddMember(t, replier, forum)
	post := env.f.CreatePost(t, forum, owner)

	root := env.f.CreateComment(t, post, replier, nil)
	childA := env.f.CreateComment(t, post, owner, root)
	childB := env.f.CreateComment(t, post, replier, root)
	grandchild := env.f.CreateComment(t, post, owner, childA)
	sibling := env.f.CreateComment(t, post, replier, nil)

	result, err := env.comments.CascadeDelete(ctx, owner.ID, root.ID, &model.CascadeDeleteRequest{
		Reason: "off-topic argument thread",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.DeletedCount)

	comments := repository.NewCommentRepository(env.tdb.Store)
	for _, id := range []string{root.ID, childA.ID, childB.ID, grandchild.ID} {
		c, err := comments.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, c.IsDeleted, "expected %s to be deleted", id)
	}

	// the sibling thread is untouched
	s, err := comments.GetByID(ctx, sibling.ID)
	require.NoError(t, err)
	assert.False(t, s.IsDeleted)

	// every removed node has an archive snapshot under the cascade root
	siteMod := env.f.CreateModerator(t)
	entries, err := env.modlog.CascadeArchive(ctx, siteMod.ID, root.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	// the intent is marked complete
	intents, err := env.comments.PendingIntents(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, intents)
}

func TestComments_CascadeReachesRepliesBelowSelfDeletedNode(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	owner := env.f.CreateUser(t)
	replier := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, owner)
	env.f.AddMember(t, replier, forum)
	post := env.f.CreatePost(t, forum, owner)

	root := env.f.CreateComment(t, post, owner, nil)
	mid := env.f.CreateComment(t, post, replier, root)
	leaf := env.f.CreateComment(t, post, owner, mid)

	// the middle node is self-deleted before the moderator acts
	require.NoError(t, env.comments.SelfDelete(ctx, replier.ID, mid.ID))

	result, err := env.comments.CascadeDelete(ctx, owner.ID, root.ID, &model.CascadeDeleteRequest{
		Reason: "entire thread violates policy",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.DeletedCount)

	comments := repository.NewCommentRepository(env.tdb.Store)
	l, err := comments.GetByID(ctx, leaf.ID)
	require.NoError(t, err)
	assert.True(t, l.IsDeleted, "reply below the self-deleted node must be removed")
}

func TestComments_CascadeByNonModeratorRejected(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	owner := env.f.CreateUser(t)
	member := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, owner)
	env.f.AddMember(t, member, forum)
	post := env.f.CreatePost(t, forum, owner)
	comment := env.f.CreateComment(t, post, owner, nil)

	_, err := env.comments.CascadeDelete(ctx, member.ID, comment.ID, &model.CascadeDeleteRequest{
		Reason: "not my call",
	})
	require.Error(t, err)
}

func TestComments_ApprovalForumGatesCommentsUntilApproved(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	owner := env.f.CreateUser(t)
	member := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, owner, func(o *fixtures.ForumOpts) {
		o.RequiresPostApproval = true
	})
	env.f.AddMember(t, member, forum)
	post := env.f.CreatePost(t, forum, owner)

	comment, err := env.comments.Create(ctx, member.ID, post.ID, &model.CreateCommentRequest{
		Content: "please verify this before it goes live",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusPending, comment.Status)

	// pending comments are invisible to readers
	visible, err := env.comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, visible)

	approved, err := env.comments.Approve(ctx, owner.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusActive, approved.Status)

	visible, err = env.comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)

	// a second approval is rejected
	_, err = env.comments.Approve(ctx, owner.ID, comment.ID)
	require.ErrorIs(t, err, service.ErrContentNotPending)
}

func TestComments_EditKeepsHistory(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	author := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, author)
	post := env.f.CreatePost(t, forum, author)
	comment := env.f.CreateComment(t, post, author, nil)

	updated, err := env.comments.Edit(ctx, author.ID, comment.ID, &model.EditCommentRequest{
		Content: "corrected the dosage in my earlier reply",
	})
	require.NoError(t, err)
	assert.Equal(t, "corrected the dosage in my earlier reply", updated.Content)
	require.NotEmpty(t, updated.EditHistory)
	assert.Equal(t, comment.Content, updated.EditHistory[len(updated.EditHistory)-1].Content)
}
