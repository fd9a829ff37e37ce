// Package store keeps a SQLite journal of submission workflows.
//
// The journal is append-only and write-behind: workflows report events to
// it, and nothing is ever read back into a running workflow. It exists for
// the history and trace commands and for golden traces in the harness.
//
// Tables:
//   - events: every journal event, ordered by (seq, id) within a workflow
//   - attempts: one row per submission attempt with its outcome and tokens
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - one open connection (SQLite has a single writer)
//
// Ordering uses the workflow's logical seq, never timestamps.
package store
