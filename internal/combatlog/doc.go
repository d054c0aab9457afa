// Package combatlog defines the combat-log event model consumed by the
// attribution engine.
//
// Events arrive from an external analytics service as JSON objects. Only the
// fields the engine reads are modeled; unknown fields are ignored so newer log
// versions keep decoding.
//
// Optional numeric fields are pointers. A nil pointer means the field was
// absent from the log line, which the engine reports as a malformed event
// rather than treating as zero.
//
// # Canonical Form
//
// Events have a canonical JSON encoding (sorted keys, NFC strings, integers
// only) used to derive content-addressed event IDs. Re-importing the same
// log into the archive therefore never duplicates rows.
package combatlog
