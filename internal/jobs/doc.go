// Package jobs implements background processing for the Commons API.
//
// The jobs package contains periodic sweeps that run independently of HTTP
// request handling.
//
// # Job Types
//
// Available background jobs:
//
//   - StrikeSweeper: expires due strikes and releases timed suspensions
//   - CascadeRecovery: resumes cascading deletions interrupted mid-saga
//
// Each job runs on its own ticker with Start/Stop lifecycle management and
// a RunOnce method for tests and manual triggering.
//
// # Error Handling
//
// Jobs log errors and keep running; a failed pass is retried on the next
// tick.
package jobs
