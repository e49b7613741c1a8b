package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pable/cs-logstats/internal/report"
	"github.com/pable/cs-logstats/internal/storage"
)

var trendCmd = &cobra.Command{
	Use:   "trend <name>",
	Short: "Chronological per-log performance trend for a player",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrend,
}

func runTrend(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	return printTrend(db, args[0])
}

func printTrend(db *storage.DB, name string) error {
	hist, err := db.GetPlayerHistory(name)
	if err != nil {
		return fmt.Errorf("query history: %w", err)
	}
	if len(hist) == 0 {
		fmt.Printf("No stored log mentions player %q.\n", name)
		return nil
	}

	// History is newest first; the trend reads oldest to newest.
	slices.Reverse(hist)
	report.PrintTrendTable(os.Stdout, name, hist)
	return nil
}
