package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/example/vaultsync/internal/record"
	"github.com/example/vaultsync/internal/syncer"
	"github.com/example/vaultsync/internal/ui"
)

var watchLogPath string

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "vault",
	Short:   "Run the auto-sync daemon for all enabled data types",
	Long: `Run timer-driven auto-sync until interrupted.

For each enabled data type, the daemon seeds its snapshot from the current
vault file and then rewrites the managed block at the configured interval.
Interval and vault changes in the configuration (including hand edits of the
override document) take effect without a restart.

Logs rotate at the path given by --log.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		logger, closeLog, err := daemonLogger()
		if err != nil {
			fatalf("%v", err)
		}
		defer closeLog()

		s := newSyncer(store, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var wg sync.WaitGroup
		started := 0
		for _, dt := range record.AllDataTypes {
			records, err := s.Read(ctx, dt)
			if err != nil {
				if errors.Is(err, syncer.ErrNotConfigured) {
					continue
				}
				logger.Printf("Skipping %s: %v", dt, err)
				continue
			}
			s.SetSnapshot(dt, records)

			wg.Add(1)
			go func(dt record.DataType) {
				defer wg.Done()
				s.RunAutoSync(ctx, dt)
			}(dt)
			started++
		}

		if started == 0 {
			fmt.Printf("%s No data types are configured for sync\n", ui.RenderWarn("⚠"))
			return
		}

		fmt.Printf("%s Auto-sync running for %d data types\n", ui.RenderPass("✓"), started)
		fmt.Println("Press Ctrl+C to stop...")

		<-ctx.Done()
		wg.Wait()
		fmt.Println("Stopped")
	},
}

// daemonLogger logs to stderr and a size-rotated file.
func daemonLogger() (*log.Logger, func(), error) {
	path := watchLogPath
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to locate user cache dir: %w", err)
		}
		path = filepath.Join(dir, "vaultsync", "vsync.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
	}
	logger := log.New(io.MultiWriter(os.Stderr, rotator), "[daemon] ", log.LstdFlags)
	return logger, func() { rotator.Close() }, nil
}

func init() {
	watchCmd.Flags().StringVar(&watchLogPath, "log", "", "daemon log file (rotated)")
}
