package handler

import (
	"errors"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotAuthorized),
		errors.Is(err, service.ErrUserSuspended),
		errors.Is(err, service.ErrNotForumModerator),
		errors.Is(err, service.ErrNotCommentAuthor),
		errors.Is(err, service.ErrBannedFromForum):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrForumNotFound):
		return model.NewNotFoundError("forum")
	case errors.Is(err, service.ErrPostNotFound):
		return model.NewNotFoundError("post")
	case errors.Is(err, service.ErrCommentNotFound):
		return model.NewNotFoundError("comment")
	case errors.Is(err, service.ErrParentNotFound):
		return model.NewNotFoundError("parent comment")
	case errors.Is(err, service.ErrReportNotFound):
		return model.NewNotFoundError("report")
	case errors.Is(err, service.ErrReportTargetNotFound):
		return model.NewNotFoundError("report target")
	case errors.Is(err, service.ErrStrikeNotFound):
		return model.NewNotFoundError("strike")
	case errors.Is(err, service.ErrIntentNotFound):
		return model.NewNotFoundError("cascade intent")
	case errors.Is(err, service.ErrNoPendingRequest):
		return model.NewNotFoundError("join request")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrForumNameExists),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrAlreadyPending),
		errors.Is(err, service.ErrAlreadyModerator),
		errors.Is(err, service.ErrNotMember),
		errors.Is(err, service.ErrNotBanned),
		errors.Is(err, service.ErrOwnerCannotLeave),
		errors.Is(err, service.ErrNotSuspended),
		errors.Is(err, service.ErrReportClosed),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrStrikeAlreadyLifted),
		errors.Is(err, service.ErrContentNotPending),
		errors.Is(err, service.ErrContentDeleted),
		errors.Is(err, service.ErrContentNotPublished):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrCannotReportSelf),
		errors.Is(err, service.ErrCannotBanOwner),
		errors.Is(err, service.ErrModeratorMustBeMember):
		return model.NewValidationError([]model.FieldError{{Field: "target", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidReaction):
		return model.NewValidationError([]model.FieldError{{Field: "action", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidTargetType):
		return model.NewValidationError([]model.FieldError{{Field: "target_type", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidUrgency):
		return model.NewValidationError([]model.FieldError{{Field: "urgency", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidReportStatus):
		return model.NewValidationError([]model.FieldError{{Field: "status", Message: err.Error()}})
	case errors.Is(err, service.ErrActionTakenRequired):
		return model.NewValidationError([]model.FieldError{{Field: "action_taken", Message: err.Error()}})
	case errors.Is(err, service.ErrDismissReasonRequired):
		return model.NewValidationError([]model.FieldError{{Field: "dismiss_reason", Message: err.Error()}})
	case errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, service.ErrReasonTooShort):
		return model.NewValidationError([]model.FieldError{{Field: "reason", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidContent):
		return model.NewValidationError([]model.FieldError{{Field: "content", Message: err.Error()}})
	case errors.Is(err, service.ErrParentDifferentPost):
		return model.NewValidationError([]model.FieldError{{Field: "parent_comment_id", Message: err.Error()}})

	// ===== Store Errors → 503 =====
	case errors.Is(err, database.ErrConnection),
		errors.Is(err, database.ErrQuery),
		errors.Is(err, database.ErrBatchTooLarge):
		return model.NewStoreUnavailableError()
	case errors.Is(err, database.ErrNotFound):
		return model.NewNotFoundError("resource")

	default:
		return model.NewInternalError("an unexpected error occurred")
	}
}
