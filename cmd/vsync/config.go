package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/vaultsync/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "config",
	Short:   "Inspect and change the layered configuration",
	Long: `Read and write configuration key-paths.

Values come from the user override document where set, else from the base
document shipped with the application. Writes always go to the override
document only. Keys may be scoped per machine under machines.<hostname>;
scoped values win over the plain key on that machine.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key-path>",
	Short: "Print the merged value at a key-path",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		fmt.Println(store.GetString(resolveScoped(store, args[0])))
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key-path> <value>",
	Short: "Write a value into the override document",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		if err := store.Update(args[0], coerceValue(args[1])); err != nil {
			fatalf("%v", err)
		}
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the full merged configuration as YAML",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		merged := store.Merged()
		out := make(map[string]any, len(merged))
		for _, k := range store.MergedKeys() {
			out[k] = merged[k]
		}
		if err := yaml.NewEncoder(os.Stdout).Encode(out); err != nil {
			fatalf("failed to encode config: %v", err)
		}
	},
}

// resolveScoped applies per-machine scoping: machines.<host>.<key> wins over
// <key> when set. Scoping is the CLI's job, not the store's.
func resolveScoped(store *config.Store, key string) string {
	host, err := os.Hostname()
	if err != nil {
		return key
	}
	scoped := config.MachineKey(host, key)
	if store.Get(scoped) != nil {
		return scoped
	}
	return key
}

// coerceValue turns CLI strings into typed config values where unambiguous.
func coerceValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return s
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configListCmd)
}
