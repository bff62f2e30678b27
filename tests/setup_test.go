// Package tests contains end-to-end acceptance tests for the Commons API.
//
// These tests run against a real SurrealDB instance to validate actual
// database behavior including atomic batch commits and counter updates.
// They skip automatically when no database is reachable.
//
// To run tests:
//  1. Start SurrealDB: surreal start memory -A --user root --pass root
//  2. Run tests: go test ./tests/...
//
// Environment variables:
//
//	TEST_DB_HOST     - SurrealDB host (default: localhost)
//	TEST_DB_PORT     - SurrealDB port (default: 8000)
//	TEST_DB_USER     - SurrealDB username (default: root)
//	TEST_DB_PASSWORD - SurrealDB password (default: root)
package tests

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/medcircle/commons/api/internal/repository"
	"github.com/medcircle/commons/api/internal/service"
	"github.com/medcircle/commons/api/internal/testing/fixtures"
	"github.com/medcircle/commons/api/internal/testing/testdb"
)

var (
	availableOnce sync.Once
	available     bool
)

// requireDB skips the test when no SurrealDB instance is reachable.
func requireDB(t *testing.T) {
	t.Helper()
	availableOnce.Do(func() {
		available = testdb.Available()
	})
	if !available {
		t.Skip("SurrealDB not available")
	}
}

// testEnv wires the full service stack against an isolated test database.
type testEnv struct {
	tdb *testdb.TestDB
	f   *fixtures.Factory

	mutations *service.MutationService
	forums    *service.ForumService
	posts     *service.PostService
	comments  *service.CommentService
	reports   *service.ReportService
	strikes   *service.StrikeService
	modlog    *service.ModLogService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	requireDB(t)

	tdb := testdb.New(t)
	t.Cleanup(tdb.Close)

	store := tdb.Store
	users := repository.NewUserRepository(store)
	forums := repository.NewForumRepository(store)
	posts := repository.NewPostRepository(store)
	comments := repository.NewCommentRepository(store)
	reports := repository.NewReportRepository(store)
	strikes := repository.NewStrikeRepository(store)
	archive := repository.NewArchiveRepository(store)
	intents := repository.NewIntentRepository(store)
	modlog := repository.NewModLogRepository(store)

	logger := slog.New(slog.DiscardHandler)
	hub := service.NewEventHub()
	t.Cleanup(hub.Close)
	notifier := service.NewHubNotifier(hub, logger)

	return &testEnv{
		tdb:       tdb,
		f:         fixtures.New(store),
		mutations: service.NewMutationService(store, posts, comments, users, hub),
		forums:    service.NewForumService(store, forums, users, archive, modlog, hub, notifier),
		posts:     service.NewPostService(store, posts, forums, users, archive, modlog, hub, notifier),
		comments:  service.NewCommentService(store, comments, posts, forums, users, archive, intents, modlog, hub, notifier, logger),
		reports:   service.NewReportService(store, reports, users, posts, comments, hub),
		strikes:   service.NewStrikeService(store, strikes, users, modlog, hub, notifier, logger),
		modlog:    service.NewModLogService(modlog, archive, users),
	}
}
