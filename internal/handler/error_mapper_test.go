package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/service"
)

func TestMapServiceError_StatusCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not authorized", service.ErrNotAuthorized, http.StatusForbidden},
		{"suspended", service.ErrUserSuspended, http.StatusForbidden},
		{"not forum moderator", service.ErrNotForumModerator, http.StatusForbidden},
		{"not comment author", service.ErrNotCommentAuthor, http.StatusForbidden},
		{"banned from forum", service.ErrBannedFromForum, http.StatusForbidden},
		{"user not found", service.ErrUserNotFound, http.StatusNotFound},
		{"forum not found", service.ErrForumNotFound, http.StatusNotFound},
		{"post not found", service.ErrPostNotFound, http.StatusNotFound},
		{"comment not found", service.ErrCommentNotFound, http.StatusNotFound},
		{"report not found", service.ErrReportNotFound, http.StatusNotFound},
		{"strike not found", service.ErrStrikeNotFound, http.StatusNotFound},
		{"already member", service.ErrAlreadyMember, http.StatusConflict},
		{"owner cannot leave", service.ErrOwnerCannotLeave, http.StatusConflict},
		{"report closed", service.ErrReportClosed, http.StatusConflict},
		{"invalid transition", service.ErrInvalidTransition, http.StatusConflict},
		{"strike already lifted", service.ErrStrikeAlreadyLifted, http.StatusConflict},
		{"not suspended", service.ErrNotSuspended, http.StatusConflict},
		{"content not pending", service.ErrContentNotPending, http.StatusConflict},
		{"self report", service.ErrCannotReportSelf, http.StatusUnprocessableEntity},
		{"cannot ban owner", service.ErrCannotBanOwner, http.StatusUnprocessableEntity},
		{"invalid reaction", service.ErrInvalidReaction, http.StatusUnprocessableEntity},
		{"reason too short", service.ErrReasonTooShort, http.StatusUnprocessableEntity},
		{"action taken required", service.ErrActionTakenRequired, http.StatusUnprocessableEntity},
		{"dismiss reason required", service.ErrDismissReasonRequired, http.StatusUnprocessableEntity},
		{"cross-post parent", service.ErrParentDifferentPost, http.StatusUnprocessableEntity},
		{"store connection", database.ErrConnection, http.StatusServiceUnavailable},
		{"store query", database.ErrQuery, http.StatusServiceUnavailable},
		{"batch too large", database.ErrBatchTooLarge, http.StatusServiceUnavailable},
		{"unknown", errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			problem := MapServiceError(tc.err)
			if problem == nil {
				t.Fatal("expected problem details, got nil")
			}
			if problem.Status != tc.want {
				t.Errorf("expected %d, got %d", tc.want, problem.Status)
			}
		})
	}
}

func TestMapServiceError_WrappedErrors(t *testing.T) {
	t.Parallel()

	wrapped := errors.Join(errors.New("context"), service.ErrForumNotFound)
	problem := MapServiceError(wrapped)
	if problem.Status != http.StatusNotFound {
		t.Errorf("expected wrapped sentinel to map to 404, got %d", problem.Status)
	}
}

func TestMapServiceError_Nil(t *testing.T) {
	t.Parallel()
	if problem := MapServiceError(nil); problem != nil {
		t.Errorf("expected nil for nil error, got %+v", problem)
	}
}
