package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/medcircle/commons/api/internal/database"
	"github.com/medcircle/commons/api/internal/model"
)

// StrikeService handles strikes and the automated suspension ladder. The
// active point sum is recomputed from strikes on every change; when the sum
// crosses a suspension threshold for the first time the engine suspends
// automatically, and the user's recorded high-water threshold keeps that
// crossing from firing twice while points fluctuate above it.
type StrikeService struct {
	store    database.Store
	strikes  StrikeRepository
	users    UserRepository
	modlog   ModLogRepository
	hub      *EventHub
	notifier Notifier
	logger   *slog.Logger
}

// NewStrikeService creates a new strike service
func NewStrikeService(store database.Store, strikes StrikeRepository, users UserRepository, modlog ModLogRepository, hub *EventHub, notifier Notifier, logger *slog.Logger) *StrikeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StrikeService{
		store:    store,
		strikes:  strikes,
		users:    users,
		modlog:   modlog,
		hub:      hub,
		notifier: notifier,
		logger:   logger,
	}
}

// Issue attaches a strike to a user and evaluates the suspension ladder on
// the new active point sum. The strike, its log entry, and any automated
// suspension commit in one batch.
func (s *StrikeService) Issue(ctx context.Context, actorID, userID string, req *model.IssueStrikeRequest) (*model.Strike, error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return nil, err
	}
	if req.Reason == "" {
		return nil, ErrReasonRequired
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	active, err := s.strikes.GetActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	activePoints := sumActivePoints(active, time.Now().UTC())
	newTotal := activePoints + req.Points

	expiryDays := model.DefaultStrikeExpiryDays
	if req.ExpiresInDays != nil {
		expiryDays = *req.ExpiresInDays
	}
	var expiresAt *time.Time
	if expiryDays > 0 {
		t := time.Now().UTC().AddDate(0, 0, expiryDays)
		expiresAt = &t
	}

	sid := newID()
	strike := &model.Strike{
		ID:             "strike:" + sid,
		UserID:         userID,
		Points:         req.Points,
		Severity:       model.StrikeSeverity(req.Severity),
		Reason:         req.Reason,
		IssuedBy:       actorID,
		ExpiresAt:      expiresAt,
		IsActive:       true,
		RelatedContent: req.RelatedContent,
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.strikes.CreateStatement(sid, strike))
	strikeLog := &model.ModerationLogEntry{
		Action:      model.ActionStrike,
		TargetType:  "user",
		TargetID:    userID,
		Reason:      req.Reason,
		PerformedBy: actorID,
		Severity:    req.Severity,
	}
	batch.AddStatement(s.modlog.AppendStatement(newID(), strikeLog))
	for _, stmt := range s.modlog.CounterStatements(strikeLog) {
		batch.AddStatement(stmt)
	}

	threshold, days := model.SuspensionForPoints(newTotal)
	suspended := threshold > 0 && threshold > target.HighestStrikeThreshold
	var suspension model.Suspension
	if suspended {
		suspension = model.Suspension{
			IsSuspended: true,
			Reason:      "accumulated strike points",
			Automated:   true,
		}
		if days > 0 {
			end := time.Now().UTC().AddDate(0, 0, days)
			suspension.EndDate = &end
		}
		batch.AddStatement(s.users.SetSuspensionStatement(userID, suspension))
		batch.AddStatement(s.users.SetHighestThresholdStatement(userID, threshold))

		suspLog := &model.ModerationLogEntry{
			Action:      model.ActionAutomatedSuspension,
			TargetType:  "user",
			TargetID:    userID,
			Reason:      suspension.Reason,
			PerformedBy: "system",
			Automated:   true,
			Details:     map[string]interface{}{"points": newTotal, "threshold": threshold},
		}
		batch.AddStatement(s.modlog.AppendStatement(newID(), suspLog))
		for _, stmt := range s.modlog.CounterStatements(suspLog) {
			batch.AddStatement(stmt)
		}
	}

	if err := batch.Execute(ctx, s.store); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Send(ctx, userID, EventStrikeIssued, map[string]interface{}{
			"strike_id": strike.ID,
			"points":    req.Points,
			"reason":    req.Reason,
		})
		if suspended {
			payload := map[string]interface{}{"automated": true}
			if suspension.EndDate != nil {
				payload["end_date"] = suspension.EndDate.Format(time.RFC3339)
			}
			s.notifier.Send(ctx, userID, EventSuspended, payload)
		}
	}
	return strike, nil
}

// Lift voids a strike and recomputes the user's standing. When the remaining
// points no longer qualify for the recorded threshold, an automated
// suspension is released and the high-water mark is lowered so a later
// genuine re-crossing fires again.
func (s *StrikeService) Lift(ctx context.Context, actorID, strikeID string, req *model.LiftStrikeRequest) error {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return err
	}
	if req.Reason == "" {
		return ErrReasonRequired
	}
	strike, err := s.strikes.GetByID(ctx, strikeID)
	if err != nil {
		return err
	}
	if strike == nil {
		return ErrStrikeNotFound
	}
	if !strike.IsActive {
		return ErrStrikeAlreadyLifted
	}
	target, err := s.users.GetByID(ctx, strike.UserID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}

	active, err := s.strikes.GetActiveForUser(ctx, strike.UserID)
	if err != nil {
		return err
	}
	remaining := sumActivePoints(active, time.Now().UTC()) - strike.Points
	if remaining < 0 {
		remaining = 0
	}
	newThreshold, _ := model.SuspensionForPoints(remaining)

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.strikes.LiftStatement(strikeID, actorID, req.Reason))
	liftLog := &model.ModerationLogEntry{
		Action:      model.ActionStrikeLifted,
		TargetType:  "user",
		TargetID:    strike.UserID,
		Reason:      req.Reason,
		PerformedBy: actorID,
	}
	batch.AddStatement(s.modlog.AppendStatement(newID(), liftLog))
	for _, stmt := range s.modlog.CounterStatements(liftLog) {
		batch.AddStatement(stmt)
	}

	released := false
	if newThreshold < target.HighestStrikeThreshold {
		batch.AddStatement(s.users.SetHighestThresholdStatement(strike.UserID, newThreshold))
		if target.Suspension.IsSuspended && target.Suspension.Automated {
			batch.AddStatement(s.users.SetSuspensionStatement(strike.UserID, model.Suspension{}))
			released = true
		}
	}
	if err := batch.Execute(ctx, s.store); err != nil {
		return err
	}

	if released && s.notifier != nil {
		s.notifier.Send(ctx, strike.UserID, EventUnsuspended, map[string]interface{}{
			"reason": "strike lifted",
		})
	}
	return nil
}

// Summary returns a user's strikes and current standing, for moderators or
// the user themselves.
func (s *StrikeService) Summary(ctx context.Context, actorID, userID string) (*model.StrikeSummary, error) {
	if actorID != userID {
		if err := s.requireModerator(ctx, actorID); err != nil {
			return nil, err
		}
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}
	all, err := s.strikes.GetAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := &model.StrikeSummary{
		UserID:     userID,
		Suspension: target.Suspension,
		Strikes:    make([]model.Strike, 0, len(all)),
	}
	now := time.Now().UTC()
	for _, st := range all {
		summary.Strikes = append(summary.Strikes, *st)
		if st.IsActive && !st.Expired(now) {
			summary.ActivePoints += st.Points
		}
	}
	return summary, nil
}

// Suspend places a manual suspension on a user. Manual suspensions do not
// touch the strike ladder's high-water mark.
func (s *StrikeService) Suspend(ctx context.Context, actorID, userID, reason string, days int) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if len(reason) < model.MinModReasonLength {
		return ErrReasonTooShort
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}

	suspension := model.Suspension{IsSuspended: true, Reason: reason}
	if days > 0 {
		end := time.Now().UTC().AddDate(0, 0, days)
		suspension.EndDate = &end
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.users.SetSuspensionStatement(userID, suspension))
	logEntry := &model.ModerationLogEntry{
		Action:      model.ActionSuspension,
		TargetType:  "user",
		TargetID:    userID,
		Reason:      reason,
		PerformedBy: actorID,
	}
	batch.AddStatement(s.modlog.AppendStatement(newID(), logEntry))
	for _, stmt := range s.modlog.CounterStatements(logEntry) {
		batch.AddStatement(stmt)
	}
	if err := batch.Execute(ctx, s.store); err != nil {
		return err
	}

	if s.notifier != nil {
		payload := map[string]interface{}{"reason": reason}
		if suspension.EndDate != nil {
			payload["end_date"] = suspension.EndDate.Format(time.RFC3339)
		}
		s.notifier.Send(ctx, userID, EventSuspended, payload)
	}
	return nil
}

// Unsuspend lifts a suspension early.
func (s *StrikeService) Unsuspend(ctx context.Context, actorID, userID, reason string) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if !target.Suspension.IsSuspended {
		return ErrNotSuspended
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.users.SetSuspensionStatement(userID, model.Suspension{}))
	logEntry := &model.ModerationLogEntry{
		Action:      model.ActionUnsuspension,
		TargetType:  "user",
		TargetID:    userID,
		Reason:      reason,
		PerformedBy: actorID,
	}
	batch.AddStatement(s.modlog.AppendStatement(newID(), logEntry))
	for _, stmt := range s.modlog.CounterStatements(logEntry) {
		batch.AddStatement(stmt)
	}
	if err := batch.Execute(ctx, s.store); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.Send(ctx, userID, EventUnsuspended, map[string]interface{}{
			"reason": reason,
		})
	}
	return nil
}

// ExpireStrikes deactivates strikes past their expiry and lowers the
// high-water mark of any user whose remaining points fall below their
// recorded threshold, releasing automated suspensions that no longer
// qualify. Called by the periodic sweep.
func (s *StrikeService) ExpireStrikes(ctx context.Context) (int, error) {
	expired, err := s.strikes.ExpireDue(ctx)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	affected := make(map[string]bool)
	for _, st := range expired {
		affected[st.UserID] = true
	}
	for userID := range affected {
		if err := s.recompute(ctx, userID); err != nil {
			s.logger.Error("strike recompute failed", "user_id", userID, "error", err)
		}
	}
	return len(expired), nil
}

// ExpireSuspensions releases timed suspensions whose end date has passed.
// Called by the periodic sweep.
func (s *StrikeService) ExpireSuspensions(ctx context.Context) (int, error) {
	users, err := s.users.ListSuspendedPastEnd(ctx)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, u := range users {
		batch := database.NewAtomicBatch()
		batch.AddStatement(s.users.SetSuspensionStatement(u.ID, model.Suspension{}))
		logEntry := &model.ModerationLogEntry{
			Action:      model.ActionUnsuspension,
			TargetType:  "user",
			TargetID:    u.ID,
			Reason:      "suspension period ended",
			PerformedBy: "system",
			Automated:   true,
		}
		batch.AddStatement(s.modlog.AppendStatement(newID(), logEntry))
		for _, stmt := range s.modlog.CounterStatements(logEntry) {
			batch.AddStatement(stmt)
		}
		if err := batch.Execute(ctx, s.store); err != nil {
			s.logger.Error("suspension release failed", "user_id", u.ID, "error", err)
			continue
		}
		released++
		if s.notifier != nil {
			s.notifier.Send(ctx, u.ID, EventUnsuspended, map[string]interface{}{
				"reason": "suspension period ended",
			})
		}
	}
	return released, nil
}

func (s *StrikeService) recompute(ctx context.Context, userID string) error {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	active, err := s.strikes.GetActiveForUser(ctx, userID)
	if err != nil {
		return err
	}
	points := sumActivePoints(active, time.Now().UTC())
	threshold, _ := model.SuspensionForPoints(points)
	if threshold >= target.HighestStrikeThreshold {
		return nil
	}

	batch := database.NewAtomicBatch()
	batch.AddStatement(s.users.SetHighestThresholdStatement(userID, threshold))
	if target.Suspension.IsSuspended && target.Suspension.Automated {
		batch.AddStatement(s.users.SetSuspensionStatement(userID, model.Suspension{}))
	}
	return batch.Execute(ctx, s.store)
}

func (s *StrikeService) requireModerator(ctx context.Context, actorID string) error {
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

func (s *StrikeService) requireAdmin(ctx context.Context, actorID string) error {
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
	if !model.CanAdministrate(actor.Role) {
		return ErrNotAuthorized
	}
	return nil
}

func sumActivePoints(strikes []*model.Strike, now time.Time) int {
	total := 0
	for _, st := range strikes {
		if st.IsActive && !st.Expired(now) {
			total += st.Points
		}
	}
	return total
}
