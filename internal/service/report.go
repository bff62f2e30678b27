package service

import (
	"context"
	"time"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// ReportService handles the report lifecycle. A report snapshots its target
// at creation and the snapshot never changes afterwards; duplicate open
// reports against the same target raise the existing report's count and
// escalate its urgency instead of creating a second row.
type ReportService struct {
	store    database.Store
	reports  ReportRepository
	users    UserRepository
	posts    PostRepository
	comments CommentRepository
	hub      *EventHub
}

// NewReportService creates a new report service
func NewReportService(store database.Store, reports ReportRepository, users UserRepository, posts PostRepository, comments CommentRepository, hub *EventHub) *ReportService {
	return &ReportService{
		store:    store,
		reports:  reports,
		users:    users,
		posts:    posts,
		comments: comments,
		hub:      hub,
	}
}

var urgencyRank = map[model.ReportUrgency]int{
	model.ReportUrgencyLow:    0,
	model.ReportUrgencyMedium: 1,
	model.ReportUrgencyHigh:   2,
}

// Create files a report. The target must exist; a user cannot report their
// own content or themselves. If an open report already covers the same
// target, its count is bumped and its urgency is raised to the higher of
// the two, and the existing report is returned.
func (s *ReportService) Create(ctx context.Context, reporterID string, req *model.CreateReportRequest) (*model.Report, error) {
	reporter, err := s.users.GetByID(ctx, reporterID)
	if err != nil {
		return nil, err
	}
	if reporter == nil {
		return nil, ErrUserNotFound
	}
	if reporter.Suspension.IsSuspended {
		return nil, ErrUserSuspended
	}
	if !model.IsValidReportTargetType(req.TargetType) {
		return nil, ErrInvalidTargetType
	}
	if !model.IsValidReportUrgency(req.Urgency) {
		return nil, ErrInvalidUrgency
	}
	if len(req.Reason) < model.MinReportReasonLength || len(req.Reason) > model.MaxReportReasonLength {
		return nil, ErrReasonTooShort
	}

	targetType := model.ReportTargetType(req.TargetType)
	snapshot, ownerID, err := s.snapshotTarget(ctx, targetType, req.TargetID)
	if err != nil {
		return nil, err
	}
	if ownerID == reporterID {
		return nil, ErrCannotReportSelf
	}

	existing, err := s.reports.FindOpenByTarget(ctx, targetType, req.TargetID)
	if err != nil {
		return nil, err
	}
	urgency := model.ReportUrgency(req.Urgency)
	if existing != nil {
		if urgencyRank[existing.Urgency] > urgencyRank[urgency] {
			urgency = existing.Urgency
		}
		return s.reports.IncrementCount(ctx, existing.ID, urgency)
	}

	report := &model.Report{
		ID:          "report:" + newID(),
		TargetType:  targetType,
		TargetID:    req.TargetID,
		TargetData:  snapshot,
		Reason:      req.Reason,
		Urgency:     urgency,
		Status:      model.ReportStatusPending,
		ReportCount: 1,
		ReportedBy:  reporterID,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Publish(&Event{
			Type: EventReportCreated,
			Data: map[string]interface{}{
				"report_id":   report.ID,
				"target_type": string(targetType),
				"urgency":     string(urgency),
			},
		})
	}
	return report, nil
}

// Get retrieves a report for a moderator.
func (s *ReportService) Get(ctx context.Context, actorID, reportID string) (*model.Report, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

// List retrieves reports matching a filter, for moderators.
func (s *ReportService) List(ctx context.Context, actorID string, filter model.ReportFilter) ([]*model.Report, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	return s.reports.List(ctx, filter)
}

// Dashboard retrieves aggregate report counts, for moderators.
func (s *ReportService) Dashboard(ctx context.Context, actorID string) (*model.ReportDashboard, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	return s.reports.Dashboard(ctx)
}

// Review advances a report through its lifecycle. A pending report can only
// move to reviewed; a reviewed report can move to resolved or dismissed.
// Resolving requires action_taken, dismissing requires dismiss_reason, and
// terminal states never transition again.
func (s *ReportService) Review(ctx context.Context, actorID, reportID string, req *model.ReviewReportRequest) (*model.Report, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	if !model.IsValidReportStatus(req.Status) {
		return nil, ErrInvalidReportStatus
	}
	next := model.ReportStatus(req.Status)

	if !report.IsOpen() {
		return nil, ErrReportClosed
	}

	updates := map[string]interface{}{"status": next}
	now := time.Now().UTC()

	switch next {
	case model.ReportStatusReviewed:
		if report.Status != model.ReportStatusPending {
			return nil, ErrInvalidTransition
		}
		updates["reviewed_by"] = actorID
		updates["reviewed_on"] = now.Format(time.RFC3339)
	case model.ReportStatusResolved:
		if report.Status != model.ReportStatusReviewed {
			return nil, ErrInvalidTransition
		}
		if req.ActionTaken == nil || *req.ActionTaken == "" {
			return nil, ErrActionTakenRequired
		}
		updates["action_taken"] = *req.ActionTaken
		updates["resolved_on"] = now.Format(time.RFC3339)
	case model.ReportStatusDismissed:
		if report.Status != model.ReportStatusReviewed {
			return nil, ErrInvalidTransition
		}
		if req.DismissReason == nil || *req.DismissReason == "" {
			return nil, ErrDismissReasonRequired
		}
		updates["dismiss_reason"] = *req.DismissReason
		updates["resolved_on"] = now.Format(time.RFC3339)
	default:
		return nil, ErrInvalidTransition
	}

	updated, err := s.reports.Update(ctx, reportID, updates)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Publish(&Event{
			Type: EventReportReviewed,
			Data: map[string]interface{}{
				"report_id": reportID,
				"status":    string(next),
			},
		})
	}
	return updated, nil
}

// snapshotTarget loads the report target and freezes the fields an audit
// needs. Returns the target's owning user so self-reports can be refused.
func (s *ReportService) snapshotTarget(ctx context.Context, targetType model.ReportTargetType, targetID string) (map[string]interface{}, string, error) {
	switch targetType {
	case model.ReportTargetPost:
		post, err := s.posts.GetByID(ctx, targetID)
		if err != nil {
			return nil, "", err
		}
		if post == nil || post.IsDeleted {
			return nil, "", ErrReportTargetNotFound
		}
		return map[string]interface{}{
			"title":     post.Title,
			"content":   post.Content,
			"author_id": post.AuthorID,
			"forum_id":  post.ForumID,
		}, post.AuthorID, nil
	case model.ReportTargetComment:
		comment, err := s.comments.GetByID(ctx, targetID)
		if err != nil {
			return nil, "", err
		}
		if comment == nil || comment.IsDeleted {
			return nil, "", ErrReportTargetNotFound
		}
		return map[string]interface{}{
			"content":   comment.Content,
			"author_id": comment.AuthorID,
			"post_id":   comment.PostID,
		}, comment.AuthorID, nil
	case model.ReportTargetUser:
		user, err := s.users.GetByID(ctx, targetID)
		if err != nil {
			return nil, "", err
		}
		if user == nil {
			return nil, "", ErrReportTargetNotFound
		}
		return map[string]interface{}{
			"display_name": user.DisplayName,
			"role":         string(user.Role),
			"aura":         user.Stats.Aura,
		}, user.ID, nil
	}
	return nil, "", ErrInvalidTargetType
}

func (s *ReportService) requireModerator(ctx context.Context, actorID string) error {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if actor == nil {
		return ErrUserNotFound
	}
	if actor.Suspension.IsSuspended {
		return ErrUserSuspended
	}
	if !model.CanModerate(actor.Role) {
		return ErrNotAuthorized
	}
	return nil
}
