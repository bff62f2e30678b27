package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/medcircle/commons/api/internal/model"
)

func newStrikeFixture(strikes *mockStrikeRepo, users ...*model.User) (*StrikeService, *mockStore) {
	store := &mockStore{}
	userRepo := &mockUserRepo{getByIDFunc: userLookup(users...)}
	svc := NewStrikeService(store, strikes, userRepo, &mockModLogRepo{}, nil, nil, nil)
	return svc, store
}

func activeStrikes(points ...int) []*model.Strike {
	out := make([]*model.Strike, len(points))
	for i, p := range points {
		out[i] = &model.Strike{ID: "strike:s" + string(rune('a'+i)), UserID: "user:target", Points: p, IsActive: true}
	}
	return out
}

func issueReq(points int) *model.IssueStrikeRequest {
	return &model.IssueStrikeRequest{Points: points, Severity: "moderate", Reason: "unprofessional conduct"}
}

func TestIssueStrikeBelowThresholdDoesNotSuspend(t *testing.T) {
	strikes := &mockStrikeRepo{
		getActiveForUserFunc: func(ctx context.Context, userID string) ([]*model.Strike, error) {
			return nil, nil
		},
	}
	svc, store := newStrikeFixture(strikes,
		activeUser("user:mod", model.RoleModerator),
		activeUser("user:target", model.RoleDoctor),
	)

	strike, err := svc.Issue(context.Background(), "user:mod", "user:target", issueReq(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strike.Points != 2 {
		t.Errorf("points = %d, want 2", strike.Points)
	}
	if store.batchContains("user.suspend") {
		t.Error("2 points must not suspend")
	}
	if !store.batchContains("modlog.append:strike") {
		t.Error("strike not logged")
	}
	if len(store.queries) != 1 {
		t.Errorf("issue should be one transaction, got %d", len(store.queries))
	}
}

func TestIssueStrikeCrossingThresholdSuspends(t *testing.T) {
	ladder := []struct {
		name     string
		existing []int
		points   int
		want     int
	}{
		{"one day at 3", nil, 3, model.OneDayThreshold},
		{"seven days at 5", []int{3}, 2, model.SevenDayThreshold},
		{"thirty days at 8", []int{4}, 4, model.ThirtyDayThreshold},
		{"permanent at 10", []int{6}, 4, model.PermanentThreshold},
	}

	for _, tc := range ladder {
		t.Run(tc.name, func(t *testing.T) {
			strikes := &mockStrikeRepo{
				getActiveForUserFunc: func(ctx context.Context, userID string) ([]*model.Strike, error) {
					return activeStrikes(tc.existing...), nil
				},
			}
			svc, store := newStrikeFixture(strikes,
				activeUser("user:mod", model.RoleModerator),
				activeUser("user:target", model.RoleDoctor),
			)

			if _, err := svc.Issue(context.Background(), "user:mod", "user:target", issueReq(tc.points)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !store.batchContains("user.suspend:user:target") {
				t.Fatal("threshold crossing must suspend")
			}
			if !store.batchContains("user.threshold:user:target:"+strconv.Itoa(tc.want)) {
				t.Errorf("high-water threshold not recorded as %d", tc.want)
			}
			if !store.batchContains("modlog.append:automated_suspension") {
				t.Error("automated suspension not logged")
			}
			if len(store.queries) != 1 {
				t.Errorf("strike and suspension must share one transaction, got %d", len(store.queries))
			}
		})
	}
}

func TestIssueStrikeFiresOncePerThreshold(t *testing.T) {
	strikes := &mockStrikeRepo{
		getActiveForUserFunc: func(ctx context.Context, userID string) ([]*model.Strike, error) {
			return activeStrikes(3, 1), nil
		},
	}
	target := activeUser("user:target", model.RoleDoctor)
	target.HighestStrikeThreshold = model.OneDayThreshold
	target.Suspension = model.Suspension{IsSuspended: true, Automated: true}
	svc, store := newStrikeFixture(strikes, activeUser("user:mod", model.RoleModerator), target)

	// 4 active + 1 = 5 crosses the next rung, so this fires.
	if _, err := svc.Issue(context.Background(), "user:mod", "user:target", issueReq(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.batchContains("user.suspend:user:target") {
		t.Error("crossing a higher rung must fire a new suspension")
	}

	// Same standing again: 4 active + 1 stays at the recorded rung.
	target.HighestStrikeThreshold = model.SevenDayThreshold
	store2 := &mockStore{}
	svc2 := NewStrikeService(store2, strikes, &mockUserRepo{getByIDFunc: userLookup(activeUser("user:mod", model.RoleModerator), target)}, &mockModLogRepo{}, nil, nil, nil)
	if _, err := svc2.Issue(context.Background(), "user:mod", "user:target", issueReq(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store2.batchContains("user.suspend") {
		t.Error("an already-fired threshold must not suspend again")
	}
}

func TestIssueStrikeHighestThresholdWins(t *testing.T) {
	strikes := &mockStrikeRepo{
		getActiveForUserFunc: func(ctx context.Context, userID string) ([]*model.Strike, error) {
			return nil, nil
		},
	}
	svc, store := newStrikeFixture(strikes,
		activeUser("user:mod", model.RoleModerator),
		activeUser("user:target", model.RoleDoctor),
	)

	// A single 10-point strike jumps every rung; only permanent applies.
	if _, err := svc.Issue(context.Background(), "user:mod", "user:target", issueReq(10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.batchContains("user.threshold:user:target:" + strconv.Itoa(model.PermanentThreshold)) {
		t.Error("highest qualifying threshold must win")
	}
}

func TestIssueStrikeRequiresModerator(t *testing.T) {
	svc, _ := newStrikeFixture(&mockStrikeRepo{},
		activeUser("user:doc", model.RoleDoctor),
		activeUser("user:target", model.RoleDoctor),
	)

	_, err := svc.Issue(context.Background(), "user:doc", "user:target", issueReq(1))
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("got %v, want ErrNotAuthorized", err)
	}
}

func TestLiftStrikeReleasesAutomatedSuspension(t *testing.T) {
	strike := &model.Strike{ID: "strike:s1", UserID: "user:target", Points: 5, IsActive: true}
	strikes := &mockStrikeRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.Strike, error) {
			return strike, nil
		},
		getActiveForUserFunc: func(ctx context.Context, userID string) ([]*model.Strike, error) {
			return []*model.Strike{strike}, nil
		},
	}
	target := activeUser("user:target", model.RoleDoctor)
	target.HighestStrikeThreshold = model.SevenDayThreshold
	target.Suspension = model.Suspension{IsSuspended: true, Automated: true}
	svc, store := newStrikeFixture(strikes, activeUser("user:mod", model.RoleModerator), target)

	if err := svc.Lift(context.Background(), "user:mod", "strike:s1", &model.LiftStrikeRequest{Reason: "appeal upheld"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.batchContains("strike.lift:strike:s1") {
		t.Error("strike not lifted")
	}
	if !store.batchContains("user.unsuspend:user:target") {
		t.Error("automated suspension must release when points drop below the rung")
	}
	if !store.batchContains("user.threshold:user:target:0") {
		t.Error("high-water mark must drop so a genuine re-crossing fires again")
	}
}

func TestLiftStrikeKeepsManualSuspension(t *testing.T) {
	strike := &model.Strike{ID: "strike:s1", UserID: "user:target", Points: 5, IsActive: true}
	strikes := &mockStrikeRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.Strike, error) {
			return strike, nil
		},
		getActiveForUserFunc: func(ctx context.Context, userID string) ([]*model.Strike, error) {
			return []*model.Strike{strike}, nil
		},
	}
	target := activeUser("user:target", model.RoleDoctor)
	target.HighestStrikeThreshold = model.SevenDayThreshold
	target.Suspension = model.Suspension{IsSuspended: true, Automated: false, Reason: "manual review"}
	svc, store := newStrikeFixture(strikes, activeUser("user:mod", model.RoleModerator), target)

	if err := svc.Lift(context.Background(), "user:mod", "strike:s1", &model.LiftStrikeRequest{Reason: "appeal upheld"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.batchContains("user.unsuspend") {
		t.Error("lifting strikes must never release a manual suspension")
	}
}

func TestLiftAlreadyLiftedStrike(t *testing.T) {
	strikes := &mockStrikeRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.Strike, error) {
			return &model.Strike{ID: id, UserID: "user:target", IsActive: false}, nil
		},
	}
	svc, _ := newStrikeFixture(strikes, activeUser("user:mod", model.RoleModerator), activeUser("user:target", model.RoleDoctor))

	err := svc.Lift(context.Background(), "user:mod", "strike:s1", &model.LiftStrikeRequest{Reason: "duplicate"})
	if !errors.Is(err, ErrStrikeAlreadyLifted) {
		t.Errorf("got %v, want ErrStrikeAlreadyLifted", err)
	}
}

func TestSummaryIgnoresExpiredStrikes(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	strikes := &mockStrikeRepo{
		getAllForUserFunc: func(ctx context.Context, userID string) ([]*model.Strike, error) {
			return []*model.Strike{
				{ID: "strike:s1", UserID: userID, Points: 3, IsActive: true},
				{ID: "strike:s2", UserID: userID, Points: 4, IsActive: true, ExpiresAt: &past},
				{ID: "strike:s3", UserID: userID, Points: 2, IsActive: false},
			}, nil
		},
	}
	svc, _ := newStrikeFixture(strikes, activeUser("user:target", model.RoleDoctor))

	summary, err := svc.Summary(context.Background(), "user:target", "user:target")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.ActivePoints != 3 {
		t.Errorf("active points = %d, want 3", summary.ActivePoints)
	}
	if len(summary.Strikes) != 3 {
		t.Errorf("summary must list all strikes, got %d", len(summary.Strikes))
	}
}

func TestExpireSuspensionsReleasesDueUsers(t *testing.T) {
	due := activeUser("user:target", model.RoleDoctor)
	past := time.Now().UTC().Add(-time.Hour)
	due.Suspension = model.Suspension{IsSuspended: true, Automated: true, EndDate: &past}
	store := &mockStore{}
	userRepo := &mockUserRepo{
		getByIDFunc: userLookup(due),
		listSuspendedPastEndFunc: func(ctx context.Context) ([]*model.User, error) {
			return []*model.User{due}, nil
		},
	}
	svc := NewStrikeService(store, &mockStrikeRepo{}, userRepo, &mockModLogRepo{}, nil, nil, nil)

	released, err := svc.ExpireSuspensions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if released != 1 {
		t.Errorf("released = %d, want 1", released)
	}
	if !store.batchContains("user.unsuspend:user:target") {
		t.Error("due suspension not released")
	}
	if !store.batchContains("modlog.append:unsuspension") {
		t.Error("release not logged")
	}
}

