package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pable/cs-logstats/internal/parser"
	"github.com/pable/cs-logstats/internal/report"
	"github.com/pable/cs-logstats/internal/storage"
)

var (
	parseForce  bool
	parseOut    string
	parseQuiet  bool
	parseFormat string
	parseFocus  string
)

var parseCmd = &cobra.Command{
	Use:   "parse <log>...",
	Short: "Parse server logs and store their reports",
	Long: `Parse one or more server logs (plain, .gz, .zst or .bz2). Files are parsed
concurrently, one engine per file, then stored. A log whose content hash is
already stored is skipped unless --force is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseForce, "force", false, "re-store logs that are already in the database")
	parseCmd.Flags().StringVar(&parseOut, "out", "", "also write the five reports to this directory")
	parseCmd.Flags().StringVar(&parseFormat, "format", "json", "report file format for --out: json or yaml")
	parseCmd.Flags().BoolVarP(&parseQuiet, "quiet", "q", false, "do not print report tables")
	parseCmd.Flags().StringVar(&parseFocus, "player", "", "highlight this player in the tables")
	parseCmd.Flags().Int("workers", 0, "logs parsed concurrently (default number of CPUs)")
}

func runParse(cmd *cobra.Command, args []string) error {
	opts, err := cfg.aggregatorOptions()
	if err != nil {
		return err
	}
	if parseOut != "" && !validFormat(parseFormat) {
		return fmt.Errorf("unknown format %q (want json or yaml)", parseFormat)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	results := make([]*parser.Parsed, len(args))
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, path := range args {
		g.Go(func() error {
			start := time.Now()
			p, err := parser.ParseFile(path, opts)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			slog.Info("parse_complete",
				"source", path,
				"hash", p.Hash[:12],
				"lines", p.Stats.Lines,
				"skipped", p.Stats.Skipped,
				"elapsed", time.Since(start),
			)
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range results {
		if _, err := storeParsed(db, p, parseForce); err != nil {
			return err
		}
		if parseOut != "" {
			dir := parseOut
			if len(results) > 1 {
				dir = filepath.Join(parseOut, p.Hash[:12])
			}
			if err := writeReports(dir, p.Bundle, parseFormat); err != nil {
				return err
			}
		}
		if !parseQuiet {
			fmt.Fprintf(os.Stdout, "\n%s\n", p.Source)
			report.PrintBundle(os.Stdout, p.Bundle, parseFocus)
		}
	}
	return nil
}

// storeParsed inserts a parsed log unless its hash is already stored and
// force is false. It reports whether anything was written.
func storeParsed(db *storage.DB, p *parser.Parsed, force bool) (bool, error) {
	exists, err := db.LogExists(p.Hash)
	if err != nil {
		return false, fmt.Errorf("check log: %w", err)
	}
	if exists && !force {
		slog.Info("parse_duplicate", "source", p.Source, "hash", p.Hash[:12])
		return false, nil
	}
	if err := db.InsertBundle(p.Hash, p.Source, p.Bundle, time.Now()); err != nil {
		return false, fmt.Errorf("insert log: %w", err)
	}
	slog.Debug("parse_stored", "source", p.Source, "hash", p.Hash[:12], "replaced", exists)
	return true, nil
}
