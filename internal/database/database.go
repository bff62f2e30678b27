// Package database provides the document-store abstraction for the
// moderation core.
//
// The Store interface wraps SurrealDB behind three query shapes:
//   - Query: multiple results (SELECT returning lists)
//   - QueryOne: a single result (SELECT by record id)
//   - Execute: no results (CREATE/UPDATE/DELETE mutations)
//
// # Atomic batches
//
// Every multi-document mutation in the engine goes through AtomicBatch (see
// batch.go). Statements accumulate in memory and are wrapped in
// BEGIN TRANSACTION / COMMIT TRANSACTION at execute time, so the whole set
// commits or fails together and no caller ever observes a partially applied
// write. There is no isolation between Add() calls before Execute().
//
// # Error handling
//
// Standard errors cover the common failure cases; check them with
// errors.Is():
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // record missing
//	}
package database

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with the store.
	ErrConnection = errors.New("store connection error")

	// ErrQuery indicates a query execution failure.
	ErrQuery = errors.New("query error")

	// ErrBatchTooLarge indicates an atomic batch exceeded the statement limit
	// and must be chunked by the caller.
	ErrBatchTooLarge = errors.New("atomic batch too large")
)

// MaxBatchStatements bounds a single atomic batch. Cascading deletions that
// touch more documents than this are split into sub-batches under a resumable
// intent record (see the comment tree service).
const MaxBatchStatements = 64

// Store defines the document-store operations the engines depend on.
type Store interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns results
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds store connection configuration
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}
