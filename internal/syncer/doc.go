// Package syncer orchestrates reads and writes between in-memory records and
// vault Markdown files.
//
// # Overview
//
// Callers hold records in memory and hand them to the orchestrator; the
// orchestrator resolves which vault file the records live in, regenerates the
// managed checklist block inside that file, and writes it back without
// touching content the user authored by hand:
//
//	Caller (in-memory records)
//	     │ Sync / Read
//	     ▼
//	Orchestrator ── resolve path ──> vaultpath + config
//	     │ serialize / parse
//	     ▼
//	Record codec ── managed block splice ──> vault file (via vaultfs.FS)
//
// # Concurrency
//
// Each (data type, resolved path) pair is a single logical actor with an
// Idle/Reading/Writing state. At most one filesystem operation per path is in
// flight; operations against different paths proceed independently.
//
// While an operation is in flight:
//
//   - Read returns the last known in-memory snapshot instead of blocking.
//   - Sync is coalesced into a depth-1 pending slot; the latest records win
//     and exactly one additional write happens when the in-flight operation
//     completes. Intermediate states are never persisted.
//
// There is no cross-process locking. Two processes editing the same vault
// file is an unhandled hazard: last writer wins.
//
// # Failure semantics
//
// Write failures surface to the caller and leave in-memory state untouched;
// nothing is retried. Records that coalesced behind a failing write still get
// their own write once the failing one completes. Parse failures on read
// degrade to zero records. The package never panics across its public
// boundary.
package syncer
