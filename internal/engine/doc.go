// Package engine implements the mastery attribution engine.
//
// The engine follows one tracked healer through a single fight. It receives
// combat-log events one at a time, in log order, and keeps running totals
// that Summarize turns into a Report.
//
// ARCHITECTURE:
//
// Single-Writer Dispatch:
// All state mutation happens inside Dispatch, called from one goroutine.
// There are no locks. This keeps:
// - Per-target health trajectories in log order
// - Reports reproducible for the same input
// - Reasoning about partial streams simple
//
// Event Processing Flow:
// 1. Dispatch stamps the event with the next logical seq
// 2. Events from other actors are dropped (combatantinfo excepted)
// 3. The event kind selects a handler (buff, heal, absorbed)
// 4. Heals run through package mastery and update accumulators
// 5. Summarize reads the accumulators into an immutable Report
//
// Producers that fetch log pages concurrently use Feed, which serializes
// events into Dispatch in enqueue order.
//
// LIFECYCLE:
//
//	Initialized --Dispatch--> Running --Summarize--> Finalized
//	     Finalized --Dispatch--> Running (diagnostic recorded)
//
// Summarize may be called at any point, including mid-stream, and is
// idempotent while no Dispatch intervenes.
//
// ERROR POLICY:
//
// Construction errors (*ConfigError) are fatal. Per-event problems never
// abort the stream: they are recorded as Diagnostics, logged at Warn, and the
// event's raw healing is still counted when the amount is known.
package engine
