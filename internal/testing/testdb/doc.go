// Package testdb provides test database utilities for the Commons API.
//
// The testdb package manages test database connections with automatic
// setup, migration, and cleanup.
//
// # Test Database Setup
//
// Create a test database for each test:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//
//	    // Use tdb.Store for database operations
//	}
//
// # Skipping Without a Database
//
// End-to-end tests call Available first and skip when no SurrealDB
// instance is reachable:
//
//	if !testdb.Available() {
//	    t.Skip("SurrealDB not available")
//	}
//
// # Migrations
//
// The .surql files under migrations/ are applied on setup, in name order.
//
// # Isolation
//
// Each test gets a unique namespace, so tests can run in parallel against
// the same SurrealDB instance without sharing data. Close removes the
// namespace.
package testdb
