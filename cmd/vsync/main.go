// Command vsync synchronizes structured records with Markdown files in a
// user-owned document vault.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/vaultsync/internal/config"
	"github.com/example/vaultsync/internal/syncer"
	"github.com/example/vaultsync/internal/vaultfs"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vsync",
	Short: "Markdown vault sync engine",
	Long: `vsync keeps typed records (tasks, events, sessions, keys, projects)
in sync with human-editable Markdown checklists inside a document vault.

Records live in checklist lines the engine owns (the managed block); all
other file content is yours and is preserved byte-for-byte on every sync.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"override document path (default: user config dir)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "vault", Title: "Vault commands:"},
		&cobra.Group{ID: "config", Title: "Configuration commands:"},
	)

	rootCmd.AddCommand(readCmd, syncCmd, resolveCmd, addCmd, statusCmd, watchCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// overridePath returns the user-writable override document location.
func overridePath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, "vaultsync", "config.yaml"), nil
}

// openStore opens the layered config store for CLI use.
func openStore() (*config.Store, error) {
	path, err := overridePath()
	if err != nil {
		return nil, err
	}
	return config.NewStore(path, nil)
}

// newSyncer builds the engine over the real filesystem.
func newSyncer(store *config.Store, logger *log.Logger) syncer.Syncer {
	return syncer.New(vaultfs.NewOSFS(), store, logger)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
