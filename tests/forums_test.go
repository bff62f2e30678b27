package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/service"
)

func TestForums_JoinAndLeaveKeepCountConsistent(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	owner := env.f.CreateUser(t)
	member := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, owner)

	joined, err := env.forums.Join(ctx, member.ID, forum.ID, &model.JoinForumRequest{})
	require.NoError(t, err)
	assert.True(t, joined.IsMember(member.ID))
	assert.Len(t, joined.Members, joined.MemberCount)

	_, err = env.forums.Join(ctx, member.ID, forum.ID, &model.JoinForumRequest{})
	require.ErrorIs(t, err, service.ErrAlreadyMember)

	left, err := env.forums.Leave(ctx, member.ID, forum.ID)
	require.NoError(t, err)
	assert.False(t, left.IsMember(member.ID))
	assert.Len(t, left.Members, left.MemberCount)

	fetched, err := env.forums.Get(ctx, forum.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.MemberCount)
	assert.Len(t, fetched.Members, fetched.MemberCount)
}

func TestForums_ApprovalForumQueuesJoinRequest(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	owner := env.f.CreateUser(t)
	applicant := env.f.CreateUser(t)
	forum := env.f.CreatePrivateForum(t, owner)

	pending, err := env.forums.Join(ctx, applicant.ID, forum.ID, &model.JoinForumRequest{Message: "resident, would like to join"})
	require.NoError(t, err)
	assert.False(t, pending.IsMember(applicant.ID))
	require.Contains(t, pending.PendingMembers, applicant.ID)

	_, err = env.forums.Join(ctx, applicant.ID, forum.ID, &model.JoinForumRequest{})
	require.ErrorIs(t, err, service.ErrAlreadyPending)

	approved, err := env.forums.DecideJoin(ctx, owner.ID, forum.ID, applicant.ID, &model.DecideJoinRequest{Approve: true})
	require.NoError(t, err)
	assert.True(t, approved.IsMember(applicant.ID))
	assert.NotContains(t, approved.PendingMembers, applicant.ID)
	assert.Len(t, approved.Members, approved.MemberCount)
}

func TestForums_OwnerLeaveTransfersToEarliestModerator(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	owner := env.f.CreateUser(t)
	older := env.f.CreateUser(t)
	newer := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, owner)
	env.f.AddMember(t, older, forum)
	env.f.AddMember(t, newer, forum)

	base := time.Now().UTC().Add(-48 * time.Hour)
	env.f.AddModerator(t, newer, forum, base.Add(time.Hour))
	env.f.AddModerator(t, older, forum, base)

	left, err := env.forums.Leave(ctx, owner.ID, forum.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, left.OwnerID)
	assert.False(t, left.IsMember(owner.ID))
}

func TestForums_OwnerSuccessionTieBreaksLexicographically(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	owner := env.f.CreateUser(t)
	modA := env.f.CreateUser(t)
	modB := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, owner)
	env.f.AddMember(t, modA, forum)
	env.f.AddMember(t, modB, forum)

	addedAt := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	env.f.AddModerator(t, modA, forum, addedAt)
	env.f.AddModerator(t, modB, forum, addedAt)

	expected := modA.ID
	if modB.ID < modA.ID {
		expected = modB.ID
	}

	left, err := env.forums.Leave(ctx, owner.ID, forum.ID)
	require.NoError(t, err)
	assert.Equal(t, expected, left.OwnerID)
}

func TestForums_OwnerCannotLeaveWithoutModerators(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	owner := env.f.CreateUser(t)
	member := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, owner)
	env.f.AddMember(t, member, forum)

	_, err := env.forums.Leave(ctx, owner.ID, forum.ID)
	require.ErrorIs(t, err, service.ErrOwnerCannotLeave)

	// the forum is untouched by the refused leave
	fetched, err := env.forums.Get(ctx, forum.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, fetched.OwnerID)
	assert.True(t, fetched.IsMember(owner.ID))
}

func TestForums_BanRemovesMembershipAndBlocksRejoin(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	owner := env.f.CreateUser(t)
	target := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, owner)
	env.f.AddMember(t, target, forum)

	banned, err := env.forums.Ban(ctx, owner.ID, forum.ID, &model.BanMemberRequest{
		UserID: target.ID,
		Reason: "repeated spam",
	})
	require.NoError(t, err)
	assert.False(t, banned.IsMember(target.ID))
	assert.True(t, banned.IsBanned(target.ID))
	assert.Len(t, banned.Members, banned.MemberCount)

	_, err = env.forums.Join(ctx, target.ID, forum.ID, &model.JoinForumRequest{})
	require.ErrorIs(t, err, service.ErrBannedFromForum)

	unbanned, err := env.forums.Unban(ctx, owner.ID, forum.ID, target.ID)
	require.NoError(t, err)
	assert.False(t, unbanned.IsBanned(target.ID))

	_, err = env.forums.Join(ctx, target.ID, forum.ID, &model.JoinForumRequest{})
	require.NoError(t, err)
}

func TestForums_CannotBanOwner(t *testing.T) {
	env := newEnv(t)
	ctx := env.tdb.Ctx()

	owner := env.f.CreateUser(t)
	mod := env.f.CreateUser(t)
	forum := env.f.CreateForum(t, owner)
	env.f.AddMember(t, mod, forum)
	env.f.AddModerator(t, mod, forum, time.Now().UTC())

	_, err := env.forums.Ban(ctx, mod.ID, forum.ID, &model.BanMemberRequest{
		UserID: owner.ID,
		Reason: "attempted coup",
	})
	require.ErrorIs(t, err, service.ErrCannotBanOwner)
}
