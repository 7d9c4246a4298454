package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/vaultsync/internal/config"
	"github.com/example/vaultsync/internal/record"
	"github.com/example/vaultsync/internal/syncer"
	"github.com/example/vaultsync/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "vault",
	Short:   "Show sync status for every data type",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		root := store.GetString(config.KeyVaultRoot)
		if root == "" {
			fmt.Printf("\n%s Vault root not configured\n", ui.RenderWarn("⚠"))
			fmt.Printf("   Run 'vsync config set vault.root <path>' to set it\n\n")
			return
		}

		fmt.Printf("\nVault:    %s\n", ui.RenderAccent(root))
		fmt.Printf("Sync:     %v (interval %s)\n\n", store.GetBool(config.KeySyncEnabled),
			store.GetDuration(config.KeySyncInterval))

		s := newSyncer(store, nil)
		ctx := context.Background()

		for _, dt := range record.AllDataTypes {
			rel, err := s.ResolvePath(dt, time.Now())
			if err != nil {
				if errors.Is(err, syncer.ErrNotConfigured) {
					fmt.Printf("  %s %-8s not configured\n", ui.RenderDim("·"), dt)
					continue
				}
				fmt.Printf("  %s %-8s %v\n", ui.RenderError("✗"), dt, err)
				continue
			}

			records, err := s.Read(ctx, dt)
			if err != nil {
				fmt.Printf("  %s %-8s %s (%v)\n", ui.RenderError("✗"), dt, rel, err)
				continue
			}
			fmt.Printf("  %s %-8s %s (%d records)\n", ui.RenderPass("✓"), dt, rel, len(records))
		}
		fmt.Println()
	},
}
