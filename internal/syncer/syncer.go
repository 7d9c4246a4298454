package syncer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/example/vaultsync/internal/config"
	"github.com/example/vaultsync/internal/record"
	"github.com/example/vaultsync/internal/vaultfs"
	"github.com/example/vaultsync/internal/vaultpath"
)

// fileOpState tracks which operation currently owns a vault file.
type fileOpState int

const (
	stateIdle fileOpState = iota
	stateReading
	stateWriting
)

// fileState is the per (data type, resolved path) actor state.
type fileState struct {
	mu       sync.Mutex
	state    fileOpState
	snapshot []*record.Record // last known records, served while busy
	pending  []*record.Record // depth-1 coalesced write, latest wins
	hasPend  bool
}

type fileKey struct {
	dataType record.DataType
	path     string
}

// orchestrator implements the Syncer interface.
type orchestrator struct {
	fs     vaultfs.FS
	cfg    *config.Store
	logger *log.Logger

	filesMu sync.Mutex
	files   map[fileKey]*fileState

	snapMu sync.Mutex
	snaps  map[record.DataType][]*record.Record
}

// New creates a Syncer over the given filesystem and configuration store.
//
// If logger is nil, a default logger writing to stderr is used.
func New(fs vaultfs.FS, cfg *config.Store, logger *log.Logger) Syncer {
	if logger == nil {
		logger = log.New(os.Stderr, "[syncer] ", log.LstdFlags)
	}
	return &orchestrator{
		fs:     fs,
		cfg:    cfg,
		logger: logger,
		files:  make(map[fileKey]*fileState),
		snaps:  make(map[record.DataType][]*record.Record),
	}
}

// ResolvePath implements Syncer.ResolvePath.
func (o *orchestrator) ResolvePath(dt record.DataType, asOf time.Time) (string, error) {
	if !dt.Valid() {
		return "", fmt.Errorf("unknown data type %q", dt)
	}
	if !o.cfg.GetBool(config.KeySyncEnabled) || !o.cfg.GetBool(config.TypeKey(dt.String(), "enabled")) {
		return "", ErrNotConfigured
	}
	if o.cfg.GetString(config.KeyVaultRoot) == "" {
		return "", ErrNotConfigured
	}

	if o.cfg.GetString(config.TypeKey(dt.String(), "mode")) == "manual" {
		file := o.cfg.GetString(config.TypeKey(dt.String(), "file"))
		if file == "" {
			return "", ErrNotConfigured
		}
		return file, nil
	}

	template := o.cfg.GetString(config.TypeKey(dt.String(), "template"))
	if template == "" {
		return "", ErrNotConfigured
	}
	return vaultpath.Resolve(template, asOf), nil
}

// fullPath joins the configured vault root with a vault-relative path.
func (o *orchestrator) fullPath(rel string) string {
	return filepath.Join(o.cfg.GetString(config.KeyVaultRoot), rel)
}

// fileFor returns the actor state for a (data type, path) pair.
func (o *orchestrator) fileFor(dt record.DataType, path string) *fileState {
	o.filesMu.Lock()
	defer o.filesMu.Unlock()

	key := fileKey{dataType: dt, path: path}
	st, ok := o.files[key]
	if !ok {
		st = &fileState{}
		o.files[key] = st
	}
	return st
}

// Read implements Syncer.Read.
func (o *orchestrator) Read(ctx context.Context, dt record.DataType) ([]*record.Record, error) {
	rel, err := o.ResolvePath(dt, time.Now())
	if err != nil {
		return nil, err
	}
	path := o.fullPath(rel)
	st := o.fileFor(dt, path)

	st.mu.Lock()
	if st.state != stateIdle {
		// Don't block behind the in-flight operation; serve the last
		// known snapshot instead.
		snap := st.snapshot
		st.mu.Unlock()
		return snap, nil
	}
	st.state = stateReading
	st.mu.Unlock()

	records, err := o.readFile(dt, path)

	st.mu.Lock()
	st.state = stateIdle
	if err == nil {
		st.snapshot = records
	}
	st.mu.Unlock()

	// A Sync coalesced while we were reading still needs its write, whether
	// or not the read itself succeeded.
	o.drainPending(ctx, dt, path, st)

	if err != nil {
		return nil, err
	}
	return records, nil
}

// readFile reads and parses one vault file. A missing file is an empty
// document, not an error; a malformed managed block degrades to zero records.
func (o *orchestrator) readFile(dt record.DataType, path string) ([]*record.Record, error) {
	raw, err := o.fs.ReadTextFile(path)
	if err != nil {
		if vaultfs.IsNotFound(err) {
			return []*record.Record{}, nil
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrVaultUnavailable, path, err)
	}
	return record.ParseBlock(dt, extractManagedBlock(raw)), nil
}

// Sync implements Syncer.Sync.
func (o *orchestrator) Sync(ctx context.Context, dt record.DataType, records []*record.Record) (bool, error) {
	rel, err := o.ResolvePath(dt, time.Now())
	if err != nil {
		return false, err
	}
	path := o.fullPath(rel)
	st := o.fileFor(dt, path)

	// Auto-sync persists whatever the caller last handed over.
	o.snapMu.Lock()
	o.snaps[dt] = records
	o.snapMu.Unlock()

	st.mu.Lock()
	if st.state != stateIdle {
		// Coalesce: the latest records overwrite any pending ones, and
		// only the most recent write proceeds once the in-flight
		// operation completes. Intermediate states are never persisted.
		st.pending = records
		st.hasPend = true
		st.mu.Unlock()
		return true, nil
	}
	st.state = stateWriting
	st.mu.Unlock()

	err = o.writeFile(dt, path, records)

	st.mu.Lock()
	st.state = stateIdle
	if err == nil {
		st.snapshot = records
	}
	st.mu.Unlock()

	// The pending slot holds newer records that were accepted while this
	// write was in flight; they get their write even when this one failed.
	// That is not a retry: the failed records are gone, the pending ones
	// are a fresh write.
	o.drainPending(ctx, dt, path, st)

	if err != nil {
		o.logger.Printf("Error syncing %s to %s: %v", dt, path, err)
		return false, err
	}
	return true, nil
}

// writeFile regenerates the managed block of one vault file from records,
// preserving all non-managed content verbatim.
func (o *orchestrator) writeFile(dt record.DataType, path string, records []*record.Record) error {
	if err := o.fs.EnsureDir(o.cfg.GetString(config.KeyVaultRoot)); err != nil {
		return fmt.Errorf("%w: %v", ErrVaultUnavailable, err)
	}

	raw, err := o.fs.ReadTextFile(path)
	if err != nil {
		if !vaultfs.IsNotFound(err) {
			return fmt.Errorf("%w: failed to read %s before write: %v", ErrVaultUnavailable, path, err)
		}
		raw = ""
	}

	updated := spliceManagedBlock(raw, record.Serialize(records))
	if err := o.fs.WriteTextFile(path, updated); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	o.logger.Printf("Synced %d %s records to %s", len(records), dt, path)
	return nil
}

// drainPending performs the coalesced write left behind by calls that
// arrived while the file was busy. Each drained write may itself have been
// overtaken by a newer pending one, so loop until the slot is empty. A
// failed drained write is logged and never retried, but any records that
// coalesced behind it still get their own write.
func (o *orchestrator) drainPending(ctx context.Context, dt record.DataType, path string, st *fileState) {
	for {
		if ctx.Err() != nil {
			return
		}

		st.mu.Lock()
		if st.state != stateIdle || !st.hasPend {
			st.mu.Unlock()
			return
		}
		records := st.pending
		st.pending = nil
		st.hasPend = false
		st.state = stateWriting
		st.mu.Unlock()

		err := o.writeFile(dt, path, records)

		st.mu.Lock()
		st.state = stateIdle
		if err == nil {
			st.snapshot = records
		}
		st.mu.Unlock()

		if err != nil {
			o.logger.Printf("Error syncing coalesced %s write to %s: %v", dt, path, err)
		}
	}
}

// SetSnapshot implements Syncer.SetSnapshot.
func (o *orchestrator) SetSnapshot(dt record.DataType, records []*record.Record) {
	o.snapMu.Lock()
	o.snaps[dt] = records
	o.snapMu.Unlock()
}

// lastSnapshot returns the records most recently handed over for dt.
func (o *orchestrator) lastSnapshot(dt record.DataType) ([]*record.Record, bool) {
	o.snapMu.Lock()
	defer o.snapMu.Unlock()
	records, ok := o.snaps[dt]
	return records, ok
}
