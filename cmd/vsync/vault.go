package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/vaultsync/internal/record"
	"github.com/example/vaultsync/internal/syncer"
	"github.com/example/vaultsync/internal/ui"
)

var readCmd = &cobra.Command{
	Use:     "read <type>",
	GroupID: "vault",
	Short:   "Read a data type's records from its vault file",
	Long: `Read the managed checklist block for a data type and print the
normalized records.

The file is resolved from the configured filename template and today's date
(or the fixed file in manual mode). A missing file yields zero records.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dt, err := record.ParseDataType(args[0])
		if err != nil {
			fatalf("%v", err)
		}

		store, err := openStore()
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		s := newSyncer(store, nil)
		records, err := s.Read(context.Background(), dt)
		if err != nil {
			if errors.Is(err, syncer.ErrNotConfigured) {
				fmt.Printf("%s Sync is not configured for %s\n", ui.RenderWarn("⚠"), dt)
				return
			}
			fatalf("%v", err)
		}

		if len(records) == 0 {
			fmt.Printf("%s No %s records\n", ui.RenderDim("·"), dt)
			return
		}
		fmt.Print(record.Serialize(records))
	},
}

var syncCmd = &cobra.Command{
	Use:     "sync <type>",
	GroupID: "vault",
	Short:   "Replace a data type's managed block from stdin",
	Long: `Parse a checklist block from stdin and sync it to the data type's
resolved vault file.

Only the managed block is replaced; front-matter and prose around it are
preserved byte-for-byte.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dt, err := record.ParseDataType(args[0])
		if err != nil {
			fatalf("%v", err)
		}

		input, err := io.ReadAll(os.Stdin)
		if err != nil {
			fatalf("failed to read stdin: %v", err)
		}
		records := record.ParseBlock(dt, string(input))

		store, err := openStore()
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		s := newSyncer(store, nil)
		ok, err := s.Sync(context.Background(), dt, records)
		if err != nil {
			if errors.Is(err, syncer.ErrNotConfigured) {
				fmt.Printf("%s Sync is not configured for %s\n", ui.RenderWarn("⚠"), dt)
				return
			}
			fatalf("%v", err)
		}
		if ok {
			rel, _ := s.ResolvePath(dt, time.Now())
			fmt.Printf("%s Synced %d %s records to %s\n", ui.RenderPass("✓"), len(records), dt, rel)
		}
	},
}

var resolveDate string

var resolveCmd = &cobra.Command{
	Use:     "resolve <type>",
	GroupID: "vault",
	Short:   "Show the vault-relative path a data type resolves to",
	Long: `Resolve the configured filename template for a data type.

Templates may contain {year}, {month}, {day}, {week} (ISO-8601), and {date}
placeholders. Use --date to resolve for a day other than today.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dt, err := record.ParseDataType(args[0])
		if err != nil {
			fatalf("%v", err)
		}

		asOf := time.Now()
		if resolveDate != "" {
			asOf, err = time.Parse("2006-01-02", resolveDate)
			if err != nil {
				fatalf("invalid --date %q: want YYYY-MM-DD", resolveDate)
			}
		}

		store, err := openStore()
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		s := newSyncer(store, nil)
		rel, err := s.ResolvePath(dt, asOf)
		if err != nil {
			if errors.Is(err, syncer.ErrNotConfigured) {
				fmt.Printf("%s Sync is not configured for %s\n", ui.RenderWarn("⚠"), dt)
				return
			}
			fatalf("%v", err)
		}
		fmt.Println(rel)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveDate, "date", "", "resolve for this date (YYYY-MM-DD)")
}
