// Package database provides database connectivity for the Commons API.
//
// The database package abstracts SurrealDB operations and provides
// a consistent interface for data access across the application.
//
// # Store Interface
//
// The Store interface defines core operations:
//
//	type Store interface {
//	    Connect(ctx context.Context) error
//	    Close() error
//	    Ping(ctx context.Context) error
//	    Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
//	    QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
//	    Execute(ctx context.Context, query string, vars map[string]interface{}) error
//	}
//
// # Connection Management
//
// Connect to SurrealDB:
//
//	db := database.NewSurrealDB(database.Config{
//	    Host:      "localhost",
//	    Port:      8000,
//	    User:      "root",
//	    Password:  "secret",
//	    Namespace: "medcircle",
//	    Database:  "commons",
//	})
//	err := db.Connect(ctx)
//
// # Atomic Batches
//
// AtomicBatch collects parameterized statements and executes them inside
// a single BEGIN/COMMIT transaction. Statement variables are namespaced
// so statements cannot clobber each other's bindings:
//
//	batch := database.NewAtomicBatch()
//	batch.AddStatement(query, vars)
//	err := batch.Execute(ctx, db)
//
// A batch holds at most MaxBatchStatements statements; AddStatement
// returns ErrBatchTooLarge past that point.
//
// # Error Types
//
// Standard error types for data operations:
//
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique constraint violation
//   - ErrConnection: Database connection failed
//   - ErrQuery: Statement failed to execute
//   - ErrBatchTooLarge: Batch exceeds the statement cap
package database
