// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mdconvert/internal/history"
	"github.com/pdiddy/mdconvert/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the run-history database",
	Long: `History queries the SQLite database of past conversion attempts:
one row per file per run, with status, backend, duration, and error.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversion attempts",
	RunE:  runHistoryList,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full run history to YAML or JSON",
	RunE:  runHistoryExport,
}

func historyStore(cmd *cobra.Command) (*history.Store, error) {
	path := setting(cmd, "history-db", "history_db_path",
		filepath.Join(envDefaults.OutputDir, ".mdconvert", "history.db"))
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no history database at %s: run a conversion first or pass --history-db", path)
	}
	return history.Open(path)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := historyStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	status, _ := cmd.Flags().GetString("status")

	entries, err := store.List(limit, types.JobStatus(status))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No history entries.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-9s  %-10s  %-8s  %s\n",
		"When", "Status", "Backend", "Duration", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%-20s  %-9s  %-10s  %-8s  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Status, e.Backend,
			e.Duration.Round(10*time.Millisecond), e.SourcePath)
		if e.Error != "" {
			fmt.Fprintf(os.Stdout, "%56s%s\n", "", e.Error)
		}
	}
	fmt.Fprintf(os.Stdout, "\n%d entries\n", len(entries))
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := historyStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "":
		return store.ExportYAML(os.Stdout)
	case "json":
		return store.ExportJSON(os.Stdout)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

func init() {
	historyCmd.PersistentFlags().String("history-db", "", "run-history SQLite path (default: <output>/.mdconvert/history.db)")

	historyListCmd.Flags().Int("limit", 50, "maximum entries to list (0 = all)")
	historyListCmd.Flags().String("status", "", "filter by status: converted, skipped, or failed")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
