package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/example/vaultsync/internal/record"
	"github.com/example/vaultsync/internal/ui"
)

var (
	addPriority string
	addCategory string
	addTags     []string
	addDue      string
	addNote     string
)

var addCmd = &cobra.Command{
	Use:     "add <type> <text>...",
	GroupID: "vault",
	Short:   "Append a record to a data type's vault file",
	Long: `Create a record and sync it into the data type's resolved vault file.

The due date accepts natural language, e.g.:

  vsync add task "Renew certificates" --due "next friday" --tag ops
  vsync add task "Fix crash" --priority high --category Dev --due 2025-01-08`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		dt, err := record.ParseDataType(args[0])
		if err != nil {
			fatalf("%v", err)
		}

		rec := record.New(dt, strings.Join(args[1:], " "))
		switch addPriority {
		case "":
		case "high":
			rec.Priority = record.PriorityHigh
		case "low":
			rec.Priority = record.PriorityLow
		case "normal":
			rec.Priority = record.PriorityNormal
		default:
			fatalf("invalid --priority %q (want high, normal, or low)", addPriority)
		}
		rec.Category = addCategory
		rec.Tags = append(rec.Tags, addTags...)
		rec.Note = addNote

		if addDue != "" {
			due, err := parseDue(addDue)
			if err != nil {
				fatalf("%v", err)
			}
			rec.DueDate = &due
		}

		store, err := openStore()
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		s := newSyncer(store, nil)
		ctx := context.Background()

		existing, err := s.Read(ctx, dt)
		if err != nil {
			fatalf("%v", err)
		}

		records := append(existing, rec)
		if _, err := s.Sync(ctx, dt, records); err != nil {
			fatalf("%v", err)
		}

		rel, _ := s.ResolvePath(dt, time.Now())
		fmt.Printf("%s Added %s to %s\n", ui.RenderPass("✓"), dt, rel)
	},
}

// parseDue accepts either YYYY-MM-DD or natural language ("next friday").
func parseDue(s string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return record.Date(d.Year(), d.Month(), d.Day()), nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(s, time.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse due date %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not understand due date %q", s)
	}
	return record.Date(r.Time.Year(), r.Time.Month(), r.Time.Day()), nil
}

func init() {
	addCmd.Flags().StringVar(&addPriority, "priority", "", "priority: high, normal, or low")
	addCmd.Flags().StringVar(&addCategory, "category", "", "category label")
	addCmd.Flags().StringArrayVar(&addTags, "tag", nil, "tag (repeatable)")
	addCmd.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD or natural language)")
	addCmd.Flags().StringVar(&addNote, "note", "", "free-text note")
}
