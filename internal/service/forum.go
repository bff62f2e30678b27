package service

import (
	"context"
	"sort"
	"time"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// ForumService handles forum membership and ownership lifecycle. Membership
// moves through non-member -> pending (approval-gated forums) -> member ->
// banned; every transition updates the forum and user documents in one
// batch so member_count never drifts from the member set.
type ForumService struct {
	store    database.Store
	forums   ForumRepository
	users    UserRepository
	archive  ArchiveRepository
	modlog   ModLogRepository
	hub      *EventHub
	notifier Notifier
}

// NewForumService creates a new forum service
func NewForumService(store database.Store, forums ForumRepository, users UserRepository, archive ArchiveRepository, modlog ModLogRepository, hub *EventHub, notifier Notifier) *ForumService {
	return &ForumService{
		store:    store,
		forums:   forums,
		users:    users,
		archive:  archive,
		modlog:   modlog,
		hub:      hub,
		notifier: notifier,
	}
}

// Create creates a forum owned by the caller. The owner joins as the first
// member in the same batch that creates the forum.
func (s *ForumService) Create(ctx context.Context, ownerID string, req *model.CreateForumRequest) (*model.Forum, error) {
	owner, err := s.requireActiveUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !model.CanPublish(owner.Role) {
		return nil, ErrNotAuthorized
	}

	now := time.Now().UTC()
	forum := &model.Forum{
		Name:                 req.Name,
		Description:          req.Description,
		OwnerID:              ownerID,
		Moderators:           map[string]model.ModeratorEntry{},
		Members:              []string{ownerID},
		PendingMembers:       map[string]model.PendingMember{},
		RequiresApproval:     req.RequiresApproval,
		RequiresPostApproval: req.RequiresPostApproval,
		MemberCount:          1,
		CreatedOn:            now,
	}
	fid := newID()
	forum.ID = "forum:" + fid

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.forums.CreateStatement(fid, forum))
	batch.AddStatement(s.users.AddJoinedForumStatement(ownerID, forum.ID))
	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}

	return forum, nil
}

// Get retrieves a forum
func (s *ForumService) Get(ctx context.Context, id string) (*model.Forum, error) {
	forum, err := s.forums.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if forum == nil {
		return nil, ErrForumNotFound
	}
	return forum, nil
}

// List retrieves forums ordered by member count
func (s *ForumService) List(ctx context.Context, limit int) ([]*model.Forum, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.forums.List(ctx, limit)
}

// Join adds the caller to a forum, or files a join request when the forum
// requires approval.
func (s *ForumService) Join(ctx context.Context, userID, forumID string, req *model.JoinForumRequest) (*model.Forum, error) {
	if _, err := s.requireActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	forum, err := s.Get(ctx, forumID)
	if err != nil {
		return nil, err
	}

	if forum.IsBanned(userID) {
		return nil, ErrBannedFromForum
	}
	if forum.IsMember(userID) {
		return nil, ErrAlreadyMember
	}
	if _, pending := forum.PendingMembers[userID]; pending {
		return nil, ErrAlreadyPending
	}

	if forum.RequiresApproval {
		pending := clonePending(forum.PendingMembers)
		pending[userID] = model.PendingMember{
			RequestedAt: time.Now().UTC(),
			Message:     req.Message,
		}
		batch := database.NewAtomicBatch()
		batch.AddStatement(s.forums.SetPendingMembersStatement(forumID, pending))
		if err := batch.Execute(ctx, s.store); err != nil {
			return nil, err
		}
		forum.PendingMembers = pending
		return forum, nil
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.forums.AddMemberStatement(forumID, userID))
	batch.AddStatement(s.users.AddJoinedForumStatement(userID, forumID))
	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}

	forum.Members = append(forum.Members, userID)
	forum.MemberCount++

	if s.hub != nil {
		s.hub.Publish(&Event{
			Type:    EventMemberJoined,
			ForumID: forumID,
			Data:    map[string]interface{}{"user_id": userID},
		})
	}
	return forum, nil
}

// DecideJoin approves or rejects a pending join request. Forum moderators,
// the owner, and site moderators may decide.
func (s *ForumService) DecideJoin(ctx context.Context, actorID, forumID, userID string, req *model.DecideJoinRequest) (*model.Forum, error) {
	actor, err := s.requireActiveUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	forum, err := s.Get(ctx, forumID)
	if err != nil {
		return nil, err
	}
	if !model.CanModerateForum(actorID, actor.Role, forum) {
		return nil, ErrNotAuthorized
	}
	if _, ok := forum.PendingMembers[userID]; !ok {
		return nil, ErrNoPendingRequest
	}

	pending := clonePending(forum.PendingMembers)
	delete(pending, userID)

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.forums.SetPendingMembersStatement(forumID, pending))
	if req.Approve {
		batch.AddStatement(s.forums.AddMemberStatement(forumID, userID))
		batch.AddStatement(s.users.AddJoinedForumStatement(userID, forumID))
	}
	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}

	forum.PendingMembers = pending
	if req.Approve {
		forum.Members = append(forum.Members, userID)
		forum.MemberCount++
		if s.hub != nil {
			s.hub.Publish(&Event{
				Type:    EventMemberJoined,
				ForumID: forumID,
				Data:    map[string]interface{}{"user_id": userID},
			})
		}
	}
	if s.notifier != nil {
		s.notifier.Send(ctx, userID, EventJoinDecided, map[string]interface{}{
			"forum_id": forumID,
			"approved": req.Approve,
		})
	}
	return forum, nil
}

// Leave removes the caller from a forum. An owner's departure transfers
// ownership to the moderator with the earliest appointment; with no
// moderators to succeed, the leave is rejected and the forum is untouched.
func (s *ForumService) Leave(ctx context.Context, userID, forumID string) (*model.Forum, error) {
	forum, err := s.Get(ctx, forumID)
	if err != nil {
		return nil, err
	}
	if !forum.IsMember(userID) {
		return nil, ErrNotMember
	}

	batch := database.NewAtomicBatch()

	if forum.OwnerID == userID {
		successor := pickSuccessor(forum)
		if successor == "" {
			return nil, ErrOwnerCannotLeave
		}
		batch.AddStatement(s.forums.SetOwnerStatement(forumID, successor))
		forum.OwnerID = successor
		if s.hub != nil {
			defer s.hub.Publish(&Event{
				Type:    EventOwnerChanged,
				ForumID: forumID,
				Data:    map[string]interface{}{"owner_id": successor},
			})
		}
	}

	if _, isMod := forum.Moderators[userID]; isMod {
		mods := cloneModerators(forum.Moderators)
		delete(mods, userID)
		batch.AddStatement(s.forums.SetModeratorsStatement(forumID, mods))
		forum.Moderators = mods
	}

	batch.AddStatement(s.forums.RemoveMemberStatement(forumID, userID))
	batch.AddStatement(s.users.RemoveJoinedForumStatement(userID, forumID))
	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}

	forum.Members = removeString(forum.Members, userID)
	forum.MemberCount--

	if s.hub != nil {
		s.hub.Publish(&Event{
			Type:    EventMemberLeft,
			ForumID: forumID,
			Data:    map[string]interface{}{"user_id": userID},
		})
	}
	return forum, nil
}

// Ban removes a user from every membership structure of the forum, appends
// an entry to the ban list, and forwards the ban to the global moderation
// queue, all in one batch.
func (s *ForumService) Ban(ctx context.Context, actorID, forumID string, req *model.BanMemberRequest) (*model.Forum, error) {
	actor, err := s.requireActiveUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	forum, err := s.Get(ctx, forumID)
	if err != nil {
		return nil, err
	}
	if !model.CanModerateForum(actorID, actor.Role, forum) {
		return nil, ErrNotAuthorized
	}
	if req.UserID == forum.OwnerID {
		return nil, ErrCannotBanOwner
	}
	if len(req.Reason) < model.MinBanReasonLength {
		return nil, ErrReasonTooShort
	}

	ban := model.BanEntry{
		UserID:   req.UserID,
		Reason:   req.Reason,
		Duration: req.Duration,
		IsActive: true,
		BannedBy: actorID,
		BannedAt: time.Now().UTC(),
	}

	batch := database.NewAtomicBatch()
	wasMember := forum.IsMember(req.UserID)
	if wasMember {
		batch.AddStatement(s.forums.RemoveMemberStatement(forumID, req.UserID))
		batch.AddStatement(s.users.RemoveJoinedForumStatement(req.UserID, forumID))
	}
	if _, isMod := forum.Moderators[req.UserID]; isMod {
		mods := cloneModerators(forum.Moderators)
		delete(mods, req.UserID)
		batch.AddStatement(s.forums.SetModeratorsStatement(forumID, mods))
		forum.Moderators = mods
	}
	if _, isPending := forum.PendingMembers[req.UserID]; isPending {
		pending := clonePending(forum.PendingMembers)
		delete(pending, req.UserID)
		batch.AddStatement(s.forums.SetPendingMembersStatement(forumID, pending))
		forum.PendingMembers = pending
	}
	batch.AddStatement(s.forums.AppendBanStatement(forumID, ban))
	batch.AddStatement(s.archive.EnqueueGlobalStatement(model.GlobalQueueEntry{
		Kind:    "ban",
		ForumID: forumID,
		UserID:  req.UserID,
		Payload: map[string]interface{}{
			"reason":    req.Reason,
			"banned_by": actorID,
		},
	}))

	logEntry := &model.ModerationLogEntry{
		Action:      model.ActionBan,
		TargetType:  "user",
		TargetID:    req.UserID,
		Reason:      req.Reason,
		PerformedBy: actorID,
	}
	batch.AddStatement(s.modlog.AppendStatement(newID(), logEntry))
	for _, stmt := range s.modlog.CounterStatements(logEntry) {
		batch.AddStatement(stmt)
	}

	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}

	if wasMember {
		forum.Members = removeString(forum.Members, req.UserID)
		forum.MemberCount--
	}
	forum.BannedUsers = append(forum.BannedUsers, ban)

	if s.hub != nil {
		s.hub.Publish(&Event{
			Type:    EventMemberBanned,
			ForumID: forumID,
			Data:    map[string]interface{}{"user_id": req.UserID},
		})
	}
	if s.notifier != nil {
		s.notifier.Send(ctx, req.UserID, EventMemberBanned, map[string]interface{}{
			"forum_id": forumID,
			"reason":   req.Reason,
		})
	}
	return forum, nil
}

// Unban deactivates a user's active ban entries. The entries stay on the
// list for audit.
func (s *ForumService) Unban(ctx context.Context, actorID, forumID, userID string) (*model.Forum, error) {
	actor, err := s.requireActiveUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	forum, err := s.Get(ctx, forumID)
	if err != nil {
		return nil, err
	}
	if !model.CanModerateForum(actorID, actor.Role, forum) {
		return nil, ErrNotAuthorized
	}
	if !forum.IsBanned(userID) {
		return nil, ErrNotBanned
	}

	bans := make([]model.BanEntry, len(forum.BannedUsers))
	copy(bans, forum.BannedUsers)
	for i := range bans {
		if bans[i].UserID == userID {
			bans[i].IsActive = false
		}
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.forums.SetBannedUsersStatement(forumID, bans))
	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}
	forum.BannedUsers = bans
	return forum, nil
}

// AppointModerator appoints a forum member as moderator. Only the owner and
// site admins may appoint.
func (s *ForumService) AppointModerator(ctx context.Context, actorID, forumID string, req *model.AppointModeratorRequest) (*model.Forum, error) {
	actor, err := s.requireActiveUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	forum, err := s.Get(ctx, forumID)
	if err != nil {
		return nil, err
	}
	if forum.OwnerID != actorID && !model.CanAdministrate(actor.Role) {
		return nil, ErrNotAuthorized
	}
	if !forum.IsMember(req.UserID) {
		return nil, ErrModeratorMustBeMember
	}
	if _, ok := forum.Moderators[req.UserID]; ok {
		return nil, ErrAlreadyModerator
	}
	if req.UserID == forum.OwnerID {
		return nil, ErrAlreadyModerator
	}

	mods := cloneModerators(forum.Moderators)
	mods[req.UserID] = model.ModeratorEntry{
		AddedAt: time.Now().UTC(),
		AddedBy: actorID,
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.forums.SetModeratorsStatement(forumID, mods))
	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}
	forum.Moderators = mods
	return forum, nil
}

// pickSuccessor selects the ownership successor: the moderator with the
// earliest appointment, excluding the current owner. Identical timestamps
// break on lexicographic user id so replays are deterministic.
func pickSuccessor(forum *model.Forum) string {
	ids := make([]string, 0, len(forum.Moderators))
	for uid := range forum.Moderators {
		if uid != forum.OwnerID {
			ids = append(ids, uid)
		}
	}
	if len(ids) == 0 {
		return ""
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := forum.Moderators[ids[i]], forum.Moderators[ids[j]]
		if !a.AddedAt.Equal(b.AddedAt) {
			return a.AddedAt.Before(b.AddedAt)
		}
		return ids[i] < ids[j]
	})
	return ids[0]
}

func (s *ForumService) requireActiveUser(ctx context.Context, userID string) (*model.User, error) {
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

func cloneModerators(in map[string]model.ModeratorEntry) map[string]model.ModeratorEntry {
	out := make(map[string]model.ModeratorEntry, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func clonePending(in map[string]model.PendingMember) map[string]model.PendingMember {
	out := make(map[string]model.PendingMember, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func removeString(in []string, s string) []string {
	out := in[:0]
	for _, v := range in {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
