// Package repository implements data access against the document store.
//
// Repositories come in two shapes of method:
//
//   - context methods (Create, GetByID, List...) that talk to the store
//     directly, and
//   - statement builders (...Statement) that return a database.Statement
//     for services to assemble into one AtomicBatch, so mutations that span
//     several documents commit or fail together.
//
// Queries are raw SurrealQL with $variables; record ids are cast with
// type::record() and results come back as map[string]interface{} parsed by
// the helpers in helpers.go.
package repository
