package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pable/cs-logstats/internal/httpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and Prometheus metrics",
	Long: `Start an HTTP server exposing:
  GET  /api/health
  POST /api/parse                 raw log body, or multipart field "log"
  GET  /api/logs
  GET  /api/logs/:hash            hash prefix; log record and all reports
  GET  /api/logs/:hash/:report    one report as stored
  GET  /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen-addr", "", "address to listen on (default 127.0.0.1:8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	opts, err := cfg.aggregatorOptions()
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	srv := httpserver.NewServer(cfg.ListenAddr, db, opts, slog.Default())
	if err := srv.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("http_shutdown")
	return srv.Stop()
}
