package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Principal Errors =====
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserSuspended      = errors.New("account is suspended")
	ErrNotAuthorized      = errors.New("not authorized to perform this action")
	ErrEmailAlreadyExists = errors.New("email already registered")
)

// ===== Forum Errors =====
var (
	ErrForumNotFound         = errors.New("forum not found")
	ErrForumNameExists       = errors.New("a forum with this name already exists")
	ErrAlreadyMember         = errors.New("already a member of this forum")
	ErrNotMember             = errors.New("not a member of this forum")
	ErrAlreadyPending        = errors.New("join request already pending")
	ErrNoPendingRequest      = errors.New("no pending join request for this user")
	ErrBannedFromForum       = errors.New("banned from this forum")
	ErrNotBanned             = errors.New("user has no active ban on this forum")
	ErrOwnerCannotLeave      = errors.New("owner cannot leave without a successor; appoint a moderator first")
	ErrAlreadyModerator      = errors.New("already a moderator of this forum")
	ErrNotForumModerator     = errors.New("not a moderator of this forum")
	ErrCannotBanOwner        = errors.New("cannot ban the forum owner")
	ErrModeratorMustBeMember = errors.New("moderator must be a forum member")
)

// ===== Content Errors =====
var (
	ErrPostNotFound        = errors.New("post not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrContentNotPending   = errors.New("content is not awaiting approval")
	ErrContentDeleted      = errors.New("content has been deleted")
	ErrParentNotFound      = errors.New("parent comment not found")
	ErrParentDifferentPost = errors.New("parent comment belongs to a different post")
	ErrInvalidReaction     = errors.New("invalid reaction action")
	ErrContentNotPublished = errors.New("content is not published")
	ErrNotCommentAuthor    = errors.New("not the author of this comment")
	ErrInvalidContent      = errors.New("content is empty or too long")
)

// ===== Report Errors =====
var (
	ErrReportNotFound        = errors.New("report not found")
	ErrReportClosed          = errors.New("report already resolved or dismissed")
	ErrCannotReportSelf      = errors.New("cannot report yourself")
	ErrInvalidTargetType     = errors.New("invalid report target type")
	ErrInvalidUrgency        = errors.New("invalid report urgency")
	ErrInvalidReportStatus   = errors.New("invalid report status")
	ErrInvalidTransition     = errors.New("invalid report status transition")
	ErrActionTakenRequired   = errors.New("resolving a report requires the action taken")
	ErrDismissReasonRequired = errors.New("dismissing a report requires a reason")
	ErrReportTargetNotFound  = errors.New("report target not found")
)

// ===== Strike Errors =====
var (
	ErrStrikeNotFound      = errors.New("strike not found")
	ErrStrikeAlreadyLifted = errors.New("strike is not active")
	ErrReasonRequired      = errors.New("reason is required")
	ErrReasonTooShort      = errors.New("reason is too short")
	ErrNotSuspended        = errors.New("user is not suspended")
)

// ===== Cascade Errors =====
var (
	ErrIntentNotFound = errors.New("cascade intent not found")
)
