package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored logs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logs, err := db.ListLogs()
	if err != nil {
		return fmt.Errorf("list logs: %w", err)
	}
	if len(logs) == 0 {
		fmt.Fprintln(os.Stdout, "No logs stored yet. Run 'cslogstats parse <server.log>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-12s  %-20s  %6s  %6s  %5s  %s\n",
		"HASH", "MAP", "PARSED", "SCORE", "ROUNDS", "KILLS", "SOURCE")
	fmt.Fprintf(os.Stdout, "%-14s  %-12s  %-20s  %6s  %6s  %5s  %s\n",
		"──────────────", "────────────", "────────────────────", "──────", "──────", "─────", "──────")
	for _, l := range logs {
		fmt.Fprintf(os.Stdout, "%-14s  %-12s  %-20s  %6s  %6d  %5d  %s\n",
			l.Hash[:12], orDash(l.MapName), l.ParsedAt, l.FinalScore(), l.TotalRounds, l.TotalKills, l.Source)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
