package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/cs-logstats/internal/parser"
	"github.com/pable/cs-logstats/internal/remote"
	"github.com/pable/cs-logstats/internal/report"
)

// fetch command flags.
var (
	// fetchToken is sent as a bearer token; see loadFetchToken for fallbacks.
	fetchToken   string
	fetchTimeout time.Duration
	fetchForce   bool
	fetchQuiet   bool
	fetchFocus   string
)

// fetchCmd is the cobra command for downloading and ingesting remote logs.
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>...",
	Short: "Download server logs over HTTP and store their reports",
	Long: `Downloads one or more server logs (plain, .gz, .zst or .bz2), parses them
and stores them exactly like 'parse'. Hosts that protect their log archive
with a token can be reached with --token.

Examples:
  cslogstats fetch https://logs.example.com/match/l0001.log.gz
  CSLOGSTATS_FETCH_TOKEN=... cslogstats fetch --player Alice https://host/l0002.log`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchToken, "token", "", "bearer token (falls back to $CSLOGSTATS_FETCH_TOKEN or ~/.cslogstats/fetch_token)")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", remote.DefaultTimeout, "per-download timeout")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "re-store logs that are already in the database")
	fetchCmd.Flags().BoolVarP(&fetchQuiet, "quiet", "q", false, "do not print report tables")
	fetchCmd.Flags().StringVar(&fetchFocus, "player", "", "highlight this player in the tables")
}

func runFetch(cmd *cobra.Command, args []string) error {
	opts, err := cfg.aggregatorOptions()
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	client := remote.NewClient(loadFetchToken(fetchToken), fetchTimeout)

	stored := 0
	for i, u := range args {
		fmt.Printf("[%d/%d] %s\n", i+1, len(args), u)

		start := time.Now()
		log, err := client.Fetch(cmd.Context(), u)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  [error] download: %v\n", err)
			continue
		}
		p := parser.ParseContent(u, log.Content, opts)
		slog.Info("fetch_complete",
			"source", u,
			"hash", p.Hash[:12],
			"lines", p.Stats.Lines,
			"skipped", p.Stats.Skipped,
			"elapsed", time.Since(start),
		)

		ok, err := storeParsed(db, p, fetchForce)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("  already stored\n")
			continue
		}
		stored++
		if !fetchQuiet {
			report.PrintBundle(os.Stdout, p.Bundle, fetchFocus)
		}
	}

	fmt.Printf("\nDone: %d/%d logs stored\n", stored, len(args))
	return nil
}

// loadFetchToken returns flag if set, else the CSLOGSTATS_FETCH_TOKEN
// environment variable, else ~/.cslogstats/fetch_token. Missing is not an error.
func loadFetchToken(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CSLOGSTATS_FETCH_TOKEN"); v != "" {
		return v
	}
	data, err := os.ReadFile(filepath.Join(mustUserHome(), ".cslogstats", "fetch_token"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
