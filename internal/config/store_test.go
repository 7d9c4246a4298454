package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	store, err := NewStore(path, quietLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestNewStore_CreatesOverrideOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	store, err := NewStore(path, quietLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("override document not created: %v", err)
	}
}

func TestGet_Layering(t *testing.T) {
	store, _ := newStore(t)

	// Base document value, no override.
	if got := store.GetString(TypeKey("task", "template")); got != "tasks/{year}-W{week}.md" {
		t.Errorf("base template = %q", got)
	}

	// Override wins over base.
	if err := store.Update(TypeKey("task", "template"), "todo/{date}.md"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := store.GetString(TypeKey("task", "template")); got != "todo/{date}.md" {
		t.Errorf("after update, template = %q", got)
	}

	// Unknown key falls through to nil.
	if got := store.Get("no.such.key"); got != nil {
		t.Errorf("unknown key = %v, want nil", got)
	}
}

func TestGet_TypedHelpers(t *testing.T) {
	store, _ := newStore(t)

	if store.GetBool(KeySyncEnabled) {
		t.Error("sync.enabled should default to false")
	}
	if got := store.GetDuration(KeySyncInterval); got != 30*time.Second {
		t.Errorf("sync.interval = %v, want 30s", got)
	}

	if err := store.Update(KeySyncEnabled, true); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !store.GetBool(KeySyncEnabled) {
		t.Error("sync.enabled should be true after update")
	}
}

func TestUpdate_WritesOnlyOverrideDocument(t *testing.T) {
	store, path := newStore(t)

	if err := store.Update(KeyVaultRoot, "/vault"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read override: %v", err)
	}

	// The override must contain the updated key and nothing from the base
	// document (base keys merge at read time, they are never persisted).
	content := string(data)
	if !strings.Contains(content, "vault") {
		t.Errorf("override lacks updated key: %q", content)
	}
	if strings.Contains(content, "template") {
		t.Errorf("base document leaked into the override: %q", content)
	}
}

func TestSubscribe_EmitsOnUpdate(t *testing.T) {
	store, _ := newStore(t)

	got := make(chan any, 4)
	unsubscribe := store.Subscribe(KeyVaultRoot, func(value any) {
		got <- value
	})
	defer unsubscribe()

	if err := store.Update(KeyVaultRoot, "/vault"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	select {
	case v := <-got:
		if v != "/vault" {
			t.Errorf("subscriber got %v, want /vault", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never notified")
	}
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	store, _ := newStore(t)

	calls := make(chan any, 4)
	unsubscribe := store.Subscribe(KeyVaultRoot, func(value any) { calls <- value })
	unsubscribe()

	if err := store.Update(KeyVaultRoot, "/vault"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	select {
	case <-calls:
		t.Error("unsubscribed callback was invoked")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestExternalEdit_HotReload(t *testing.T) {
	store, path := newStore(t)

	notified := make(chan any, 4)
	unsubscribe := store.Subscribe(KeyVaultRoot, func(value any) { notified <- value })
	defer unsubscribe()

	// Simulate a user hand-editing the override document.
	if err := os.WriteFile(path, []byte("vault:\n  root: /hand-edited\n"), 0644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		if store.GetString(KeyVaultRoot) == "/hand-edited" {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("hand edit never took effect, vault.root = %q", store.GetString(KeyVaultRoot))
		case <-time.After(20 * time.Millisecond):
		}
	}

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber not notified of external edit")
	}
}

func TestMalformedOverride_DegradesToBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":: not yaml ::\n\t"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store, err := NewStore(path, quietLogger())
	if err != nil {
		t.Fatalf("NewStore must not fail on a malformed override: %v", err)
	}
	defer store.Close()

	if got := store.GetString(TypeKey("task", "mode")); got != "template" {
		t.Errorf("base value unavailable, mode = %q", got)
	}
}

func TestMerged_ContainsAllLayers(t *testing.T) {
	store, _ := newStore(t)
	if err := store.Update("custom.key", "v"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	merged := store.Merged()
	if merged[TypeKey("task", "template")] != "tasks/{year}-W{week}.md" {
		t.Error("merged view lacks base keys")
	}
	if merged["custom.key"] != "v" {
		t.Error("merged view lacks override keys")
	}
}

