package database

// Atomic batch support.
//
// AtomicBatch is the mutation engine's write primitive: statements are
// collected and committed as one store transaction. Variables are namespaced
// per statement ($user -> $s3_user) so statements built independently never
// collide.

import (
	"context"
	"fmt"
	"strings"
)

// Statement is a single query with its variables, ready to join a batch.
// Repositories build statements; services assemble them into one batch so a
// cross-document mutation commits or fails as a unit.
type Statement struct {
	Query string
	Vars  map[string]interface{}
}

// AtomicBatch collects statements that must commit or fail together.
type AtomicBatch struct {
	statements []string
	vars       map[string]interface{}
	seq        int
}

// NewAtomicBatch creates an empty batch.
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{
		statements: make([]string, 0, 4),
		vars:       make(map[string]interface{}),
	}
}

// Add appends a statement, namespacing its variables to avoid collisions
// with statements added earlier.
func (b *AtomicBatch) Add(query string, vars map[string]interface{}) *AtomicBatch {
	b.seq++
	rewritten := query
	for name, value := range vars {
		scoped := fmt.Sprintf("s%d_%s", b.seq, name)
		rewritten = strings.ReplaceAll(rewritten, "$"+name, "$"+scoped)
		b.vars[scoped] = value
	}
	b.statements = append(b.statements, rewritten)
	return b
}

// AddStatement appends a prebuilt statement.
func (b *AtomicBatch) AddStatement(stmt Statement) *AtomicBatch {
	return b.Add(stmt.Query, stmt.Vars)
}

// AddRaw appends a statement with no variables.
func (b *AtomicBatch) AddRaw(query string) *AtomicBatch {
	b.statements = append(b.statements, query)
	return b
}

// Len returns the number of statements in the batch.
func (b *AtomicBatch) Len() int {
	return len(b.statements)
}

// Build returns the full transaction query and merged variables.
func (b *AtomicBatch) Build() (string, map[string]interface{}) {
	if len(b.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range b.statements {
		sb.WriteString(stmt)
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), b.vars
}

// Execute commits the batch as a single transaction. An empty batch is a
// no-op. Batches over MaxBatchStatements are rejected; callers owning large
// mutations (cascading deletes) must chunk under an intent record instead.
func (b *AtomicBatch) Execute(ctx context.Context, store Store) error {
	if len(b.statements) == 0 {
		return nil
	}
	if len(b.statements) > MaxBatchStatements {
		return fmt.Errorf("%w: %d statements (max %d)", ErrBatchTooLarge, len(b.statements), MaxBatchStatements)
	}

	query, vars := b.Build()
	_, err := store.Query(ctx, query, vars)
	return err
}
