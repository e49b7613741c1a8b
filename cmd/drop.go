package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dropForce bool
	dropLog   string
)

// dropCmd deletes one stored log or the whole database file.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete a stored log or the whole database",
	Long: `With --log, delete one stored log and its reports.
Without it, permanently delete the SQLite database. All stored reports will be
lost. Re-parse your logs afterwards to rebuild.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().StringVar(&dropLog, "log", "", "hash prefix of a single log to delete")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if dropLog != "" {
		return dropOne(dropLog)
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", cfg.DB)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(cfg.DB); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	// WAL side files are left behind when the last connection did not checkpoint.
	os.Remove(cfg.DB + "-wal")
	os.Remove(cfg.DB + "-shm")
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", cfg.DB)
	return nil
}

func dropOne(prefix string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	log, err := db.GetLogByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query log: %w", err)
	}
	if log == nil {
		return fmt.Errorf("no log found with hash prefix %q", prefix)
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will delete log %s (%s, %s).\n", log.Hash[:12], orDash(log.MapName), log.Source)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if _, err := db.DeleteLog(log.Hash); err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted log %s\n", log.Hash[:12])
	return nil
}
