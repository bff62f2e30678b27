// Package model defines the domain entities of the moderation core: users,
// forums, posts, comments, reports, strikes and moderation log entries,
// together with the request DTOs and the RFC 9457 problem-details error
// types shared by every handler.
//
// Entities are mutated only through the engine services; nothing outside the
// repository layer writes fields directly.
package model
