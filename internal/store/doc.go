// Package store is the SQLite archive of imported combat-log events.
//
// A fight is stored as an ordered, append-only list of events keyed by
// (fight_key, seq). Reports are never stored: analysis always re-runs the
// engine over the archived events.
//
// # Invariants
//
// Ordering:
//   - seq is the 1-based position of the event in the fight's log
//   - All reads use ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Identity:
//   - events.id is combatlog.EventID(fight_key, seq, event), a SHA-256 over
//     canonical JSON with domain separation
//   - Re-importing the same log is a no-op (ON CONFLICT(id) DO NOTHING)
//   - Importing a different log under an existing key fails with
//     ErrFightConflict unless it is appended
//
// Import batches get time-sortable UUIDv7 IDs from an IDGenerator.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during an import
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
