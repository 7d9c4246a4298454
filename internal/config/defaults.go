package config

import (
	_ "embed"
	"fmt"
)

// baseTOML is the read-only base configuration document that ships with the
// application. See base.toml for the authoritative key list.
//
//go:embed base.toml
var baseTOML []byte

// hardDefaults back every key that is absent from both the override and the
// base document. Last line of defense; the base document normally covers all
// of these.
var hardDefaults = map[string]any{
	"vault.root":    "",
	"sync.enabled":  false,
	"sync.interval": "30s",
}

// Config key-paths used across the engine. Per-type keys are built with
// TypeKey so callers never concatenate path segments by hand.
const (
	KeyVaultRoot    = "vault.root"
	KeySyncEnabled  = "sync.enabled"
	KeySyncInterval = "sync.interval"
)

// TypeKey returns the key-path for a per-data-type setting,
// e.g. TypeKey("task", "template") -> "sync.types.task.template".
func TypeKey(dataType, field string) string {
	return fmt.Sprintf("sync.types.%s.%s", dataType, field)
}

// MachineKey returns the per-machine scoped form of a key-path. Scoping is
// resolved by the caller: look up MachineKey(host, key) first, then key.
func MachineKey(host, key string) string {
	return fmt.Sprintf("machines.%s.%s", host, key)
}
