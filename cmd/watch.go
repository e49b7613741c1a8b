package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/cs-logstats/internal/aggregator"
	"github.com/pable/cs-logstats/internal/parser"
	"github.com/pable/cs-logstats/internal/report"
	"github.com/pable/cs-logstats/internal/storage"
	"github.com/pable/cs-logstats/internal/watcher"
)

var watchQuiet bool

var watchCmd = &cobra.Command{
	Use:   "watch <log>",
	Short: "Re-parse and store a log every time it changes",
	Long: `Parse the log once, then watch it for writes. After each burst of writes
(see --watch-debounce) the whole file is parsed again and stored under its new
content hash. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "do not print the match summary after each parse")
	watchCmd.Flags().Duration("watch-debounce", 0, "quiet period after the last write before re-parsing (default 500ms)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	opts, err := cfg.aggregatorOptions()
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := reparse(db, path, opts); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("watch_start", "source", path, "debounce", cfg.WatchDebounce)
	return watcher.Watch(ctx, path, cfg.WatchDebounce, func() {
		if err := reparse(db, path, opts); err != nil {
			slog.Error("watch_reparse_failed", "source", path, "error", err)
		}
	})
}

// reparse parses the whole file again and stores it if its content is new.
func reparse(db *storage.DB, path string, opts aggregator.Options) error {
	start := time.Now()
	p, err := parser.ParseFile(path, opts)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	stored, err := storeParsed(db, p, false)
	if err != nil {
		return err
	}
	slog.Info("watch_reparse",
		"source", path,
		"hash", p.Hash[:12],
		"lines", p.Stats.Lines,
		"stored", stored,
		"elapsed", time.Since(start),
	)
	if stored && !watchQuiet {
		report.PrintMatchSummary(os.Stdout, p.Bundle.Summary)
	}
	return nil
}
