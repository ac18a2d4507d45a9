// Package decisionlog keeps an append-only audit trail of booking events.
//
// Three backends are available: a plain JSONL file, a JSONL file rotated with
// lumberjack, and a SQLite table. A Recorder feeds any of them from the event bus.
package decisionlog
