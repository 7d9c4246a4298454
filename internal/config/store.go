// Package config implements the layered configuration store.
//
// Two documents are merged key-by-key: a read-only base document embedded in
// the binary, and a user-writable override document on disk. Reads consult
// the override first, then the base, then hard-coded defaults. Updates write
// only into the override document. The store watches the override file so a
// hand-edited value takes effect without a restart.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/example/vaultsync/internal/vaultfs"
)

// Store is the layered configuration store. It is safe for concurrent use.
type Store struct {
	base         map[string]any // flattened base document, read-only
	overridePath string
	logger       *log.Logger

	mu       sync.RWMutex
	override *viper.Viper
	lastRaw  string // override file content at last load, for self-write suppression

	subMu   sync.Mutex
	subs    map[int]subscription
	nextSub int

	watcher *vaultfs.FileWatcher
	done    chan struct{}
	wg      sync.WaitGroup
}

type subscription struct {
	keyPath string
	fn      func(value any)
}

// NewStore opens the layered store. The override document is created empty
// on first run; its parent directory is created if needed.
//
// If logger is nil, a default logger writing to stderr is used.
func NewStore(overridePath string, logger *log.Logger) (*Store, error) {
	if overridePath == "" {
		return nil, fmt.Errorf("override path cannot be empty")
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[config] ", log.LstdFlags)
	}

	base, err := loadBase()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(overridePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(overridePath); os.IsNotExist(err) {
		if err := os.WriteFile(overridePath, nil, 0644); err != nil {
			return nil, fmt.Errorf("failed to create override document: %w", err)
		}
	}

	s := &Store{
		base:         base,
		overridePath: overridePath,
		logger:       logger,
		subs:         make(map[int]subscription),
		done:         make(chan struct{}),
	}

	if err := s.loadOverride(); err != nil {
		return nil, err
	}

	watcher, err := vaultfs.NewFileWatcher(overridePath)
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(); err != nil {
		return nil, err
	}
	s.watcher = watcher

	s.wg.Add(1)
	go s.watchOverride()

	return s, nil
}

// Close stops the override watcher. The store remains readable afterwards
// but no longer reacts to external edits.
func (s *Store) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	close(s.done)
	err := s.watcher.Stop()
	s.wg.Wait()
	return err
}

// loadBase parses the embedded base document into a flat key-path map.
func loadBase() (map[string]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(baseTOML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse base configuration: %w", err)
	}
	flat := make(map[string]any)
	flatten("", doc, flat)
	return flat, nil
}

// flatten converts a nested document into dot-separated key-paths.
func flatten(prefix string, node map[string]any, out map[string]any) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			flatten(key, child, out)
			continue
		}
		out[key] = v
	}
}

// loadOverride (re)loads the override document into a fresh viper instance,
// so keys deleted externally actually disappear from the merged view.
func (s *Store) loadOverride() error {
	v := viper.New()
	v.SetConfigFile(s.overridePath)
	if err := v.ReadInConfig(); err != nil {
		// A malformed override degrades to "no overrides" rather than
		// taking the whole store down.
		s.logger.Printf("Warning: override document unreadable, using base only: %v", err)
		v = viper.New()
		v.SetConfigFile(s.overridePath)
	}

	raw := ""
	if data, err := os.ReadFile(s.overridePath); err == nil {
		raw = string(data)
	}

	s.mu.Lock()
	s.override = v
	s.lastRaw = raw
	s.mu.Unlock()
	return nil
}

// Get returns the merged value at the key-path: override, then base, then
// hard-coded default, then nil.
func (s *Store) Get(keyPath string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.override.IsSet(keyPath) {
		return s.override.Get(keyPath)
	}
	if v, ok := s.base[keyPath]; ok {
		return v
	}
	if v, ok := hardDefaults[keyPath]; ok {
		return v
	}
	return nil
}

// GetString returns the merged value coerced to a string.
func (s *Store) GetString(keyPath string) string {
	return cast.ToString(s.Get(keyPath))
}

// GetBool returns the merged value coerced to a bool.
func (s *Store) GetBool(keyPath string) bool {
	return cast.ToBool(s.Get(keyPath))
}

// GetInt returns the merged value coerced to an int.
func (s *Store) GetInt(keyPath string) int {
	return cast.ToInt(s.Get(keyPath))
}

// GetDuration returns the merged value coerced to a duration.
func (s *Store) GetDuration(keyPath string) time.Duration {
	return cast.ToDuration(s.Get(keyPath))
}

// Update writes a value into the override document, persists it, and
// re-emits the merged view to all subscribers. The base document is never
// written.
func (s *Store) Update(keyPath string, value any) error {
	s.mu.Lock()
	s.override.Set(keyPath, value)
	if err := s.override.WriteConfig(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to persist override document: %w", err)
	}
	if data, err := os.ReadFile(s.overridePath); err == nil {
		s.lastRaw = string(data)
	}
	s.mu.Unlock()

	s.logger.Printf("Updated %s", keyPath)
	s.emit()
	return nil
}

// Subscribe registers a callback invoked with the merged value at keyPath
// whenever the configuration changes, from Update or from an external edit
// of the override document. The returned function unsubscribes.
func (s *Store) Subscribe(keyPath string, fn func(value any)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = subscription{keyPath: keyPath, fn: fn}
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// emit re-delivers the merged view to every subscriber.
// Callbacks run without any store lock held, so they may call Get freely.
func (s *Store) emit() {
	s.subMu.Lock()
	subs := make([]subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(s.Get(sub.keyPath))
	}
}

// watchOverride reacts to external edits of the override document.
func (s *Store) watchOverride() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return

		case event, ok := <-s.watcher.Events():
			if !ok {
				return
			}
			s.handleOverrideEvent(event)

		case err, ok := <-s.watcher.Errors():
			if !ok {
				return
			}
			s.logger.Printf("Watcher error: %v", err)
		}
	}
}

// handleOverrideEvent re-reads and re-merges after an external change.
// Our own Update writes are recognized by content and skipped, so
// subscribers see each change exactly once.
func (s *Store) handleOverrideEvent(event vaultfs.Event) {
	raw := ""
	if data, err := os.ReadFile(s.overridePath); err == nil {
		raw = string(data)
	}

	s.mu.RLock()
	unchanged := raw == s.lastRaw
	s.mu.RUnlock()
	if unchanged {
		return
	}

	s.logger.Printf("Override document changed externally (%s), reloading", event.Op)
	if err := s.loadOverride(); err != nil {
		s.logger.Printf("Error reloading override: %v", err)
		return
	}
	s.emit()
}

// Merged returns the full merged view as a sorted flat key-path map.
// Used by the CLI's config listing; not part of the engine's hot path.
func (s *Store) Merged() map[string]any {
	out := make(map[string]any)
	for k, v := range hardDefaults {
		out[k] = v
	}
	for k, v := range s.base {
		out[k] = v
	}

	s.mu.RLock()
	overrideFlat := make(map[string]any)
	flatten("", s.override.AllSettings(), overrideFlat)
	s.mu.RUnlock()
	for k, v := range overrideFlat {
		out[k] = v
	}
	return out
}

// MergedKeys returns the merged view's key-paths in sorted order.
func (s *Store) MergedKeys() []string {
	merged := s.Merged()
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
