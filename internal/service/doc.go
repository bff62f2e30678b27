// Package service implements the engine semantics of the moderation core:
// the reaction/counter mutation engine, the report lifecycle, the strike and
// suspension engine, the comment moderation tree, forum membership and
// ownership, and the append-only moderation log.
//
// Services depend on repository interfaces declared in repositories.go and
// on database.Store for batch execution. Every mutation that touches more
// than one document is assembled from repository statements into a single
// database.AtomicBatch, so no caller ever observes a partial write. Mutation
// results carry the authoritative post-mutation state; services never
// re-read after a write to converge.
//
// Authorization is checked here, against the acting user's stored role and
// the forum's owner/moderator structures, via the capability predicates in
// the model package. Handlers only establish the principal's identity.
package service
