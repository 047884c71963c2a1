package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/quaylabs/exchangekit/internal/publisher"
	"github.com/spf13/cobra"
)

func newPublisherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publisher",
		Short: "Inspect and load the publisher record database",
	}
	cmd.AddCommand(newPublisherImportCmd())
	cmd.AddCommand(newPublisherGetCmd())
	return cmd
}

func newPublisherImportCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Replace all publisher records from a JSON snapshot",
		Long: `Load a JSON array of publisher records and replace the full contents of
the publisher database with it. Existing rows are dropped first: the snapshot
is the new source of truth, not a delta.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			var list []*publisher.Info
			if err := json.Unmarshal(raw, &list); err != nil {
				return fmt.Errorf("parse snapshot: %w", err)
			}

			store, err := publisher.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("open publisher database: %w", err)
			}
			defer store.Close()

			done := make(chan error, 1)
			store.ReplaceAll(list, func(err error) { done <- err })
			if err := <-done; err != nil {
				return fmt.Errorf("replace publisher records: %w", err)
			}
			fmt.Printf("imported %d records\n", len(list))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "publishers.db", "Path to the publisher database")
	return cmd
}

func newPublisherGetCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "get <publisher_key>",
		Short: "Print one publisher record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := publisher.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("open publisher database: %w", err)
			}
			defer store.Close()

			done := make(chan *publisher.Info, 1)
			store.GetByKey(args[0], func(info *publisher.Info) { done <- info })
			info := <-done
			if info == nil {
				return fmt.Errorf("no record for publisher %q", args[0])
			}

			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "publishers.db", "Path to the publisher database")
	return cmd
}
