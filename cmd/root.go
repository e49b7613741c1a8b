package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/cs-logstats/internal/logging"
	"github.com/pable/cs-logstats/internal/storage"
)

var (
	configPath string
	cfg        appConfig
)

var rootCmd = &cobra.Command{
	Use:   "cslogstats",
	Short: "CS server log statistics tool",
	Long: `Parse Counter-Strike server logs into kill, round timing, match summary,
weapon damage and accuracy reports, and keep them in a local SQLite database.`,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $HOME/.config/cslogstats/config.yml)")
	pf.String("db", defaultDBPath(), "path to SQLite database")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.BoolP("verbose", "v", false, "debug logging")
	pf.String("live-marker", "", "substring that marks the match as live (default \"[FACEIT^] LIVE!\")")
	pf.String("tie-break", "", "winner on a level score: t, ct or none (default t)")
	pf.String("kill-gate", "", "gate for the kill report: always, live, match_start")
	pf.String("timing-gate", "", "gate for the round timing report")
	pf.String("summary-gate", "", "gate for the match summary report")
	pf.String("weapon-gate", "", "gate for the weapon damage report")
	pf.String("accuracy-gate", "", "gate for the accuracy report")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(roundsCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// initConfig loads the layered config and installs the default logger.
func initConfig(cmd *cobra.Command, _ []string) error {
	c, err := loadConfig(configPath, cmd)
	if err != nil {
		return err
	}
	cfg = c
	slog.SetDefault(logging.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel, cfg.Verbose))
	return nil
}

// openStore opens the configured database, creating its directory if needed.
func openStore() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DB), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
