package service

import (
	"context"
	"time"

	"github.com/medcircle/commons/api/internal/model"
)

// ModLogService reads the append-only moderation log and its dashboard
// aggregates. Writes happen inside the services that perform the actions,
// in the same batch as the action itself.
type ModLogService struct {
	modlog  ModLogRepository
	archive ArchiveRepository
	users   UserRepository
}

// NewModLogService creates a new moderation log service
func NewModLogService(modlog ModLogRepository, archive ArchiveRepository, users UserRepository) *ModLogService {
	return &ModLogService{modlog: modlog, archive: archive, users: users}
}

// Windows accepted by Summary.
var summaryWindows = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

// List retrieves log entries matching a filter, for moderators.
func (s *ModLogService) List(ctx context.Context, actorID string, filter model.ModLogFilter) ([]*model.ModerationLogEntry, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.modlog.List(ctx, filter)
}

// Summary aggregates log entries over a trailing window. Unknown windows
// fall back to 24h.
func (s *ModLogService) Summary(ctx context.Context, actorID, window string) (*model.ModLogSummary, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	dur, ok := summaryWindows[window]
	if !ok {
		window = "24h"
		dur = summaryWindows[window]
	}
	since := time.Now().UTC().Add(-dur)
	return s.modlog.Summarize(ctx, since, window)
}

// GlobalQueue retrieves the platform-wide review queue of forwarded bans
// and rejections, for moderators.
func (s *ModLogService) GlobalQueue(ctx context.Context, actorID string, limit int) ([]model.GlobalQueueEntry, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	return s.archive.ListGlobalQueue(ctx, limit)
}

// CascadeArchive retrieves the archived snapshots of one cascade, for
// moderators auditing a deletion.
func (s *ModLogService) CascadeArchive(ctx context.Context, actorID, rootID string) ([]model.CommentArchiveEntry, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	return s.archive.ListByCascade(ctx, rootID)
}

func (s *ModLogService) requireModerator(ctx context.Context, actorID string) error {
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
