package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/example/vaultsync/internal/record"
)

var (
	// ErrNotConfigured means sync is disabled or the vault root / file
	// mapping is unset for the requested data type. Callers treat it as a
	// no-op, not a user-facing failure.
	ErrNotConfigured = errors.New("sync is not configured")

	// ErrVaultUnavailable means the configured vault root is missing or
	// unreadable. Surfaced as a one-line status, never a crash.
	ErrVaultUnavailable = errors.New("vault is unavailable")
)

// Syncer is the engine's public surface toward callers.
//
// All methods are safe for concurrent use. Blocking methods take a context
// for cooperative cancellation; an operation already past its filesystem
// call runs to completion.
type Syncer interface {
	// Read loads the records of a data type from its resolved vault file.
	// A missing file yields zero records, as does a malformed managed
	// block. If the file is busy, the last known snapshot is returned
	// without blocking.
	Read(ctx context.Context, dt record.DataType) ([]*record.Record, error)

	// Sync regenerates the managed block of the data type's resolved file
	// from records, preserving all non-managed content verbatim. Returns
	// ok=true when the write happened or was accepted for coalescing.
	Sync(ctx context.Context, dt record.DataType, records []*record.Record) (bool, error)

	// ResolvePath returns the vault-relative path the data type maps to
	// for the given date, per the configured template or manual file.
	ResolvePath(dt record.DataType, asOf time.Time) (string, error)

	// SetSnapshot hands the orchestrator the records the auto-sync timer
	// should persist on its next tick. Auto-sync is a no-op until the
	// first snapshot arrives.
	SetSnapshot(dt record.DataType, records []*record.Record)

	// RunAutoSync drives timer-based sync for one data type. It blocks
	// until ctx is cancelled; the caller owns the goroutine and must
	// cancel ctx when its own lifetime ends.
	RunAutoSync(ctx context.Context, dt record.DataType)
}
