package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/cs-logstats/internal/report"
	"github.com/pable/cs-logstats/internal/storage"
)

var showPlayer string

var showCmd = &cobra.Command{
	Use:   "show <hash-prefix>",
	Short: "Show stored reports by hash prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showPlayer, "player", "", "highlight this player")
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	found, err := showByPrefix(db, args[0], showPlayer)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(os.Stderr, "No log found with hash prefix %q\n", args[0])
	}
	return nil
}

// showByPrefix prints the header and every report table of a stored log.
// It reports whether the prefix matched.
func showByPrefix(db *storage.DB, prefix, focus string) (bool, error) {
	log, err := db.GetLogByPrefix(prefix)
	if err != nil {
		return false, fmt.Errorf("query log: %w", err)
	}
	if log == nil {
		return false, nil
	}
	bundle, err := db.GetBundle(log.Hash)
	if err != nil {
		return true, fmt.Errorf("load reports: %w", err)
	}
	report.PrintLogHeader(os.Stdout, *log)
	if bundle != nil {
		report.PrintBundle(os.Stdout, bundle, focus)
	}
	return true, nil
}
