package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/cs-logstats/internal/aggregator"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yml"), nil)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LogFormat != "text" || cfg.LogLevel != "info" || cfg.Workers < 1 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ListenAddr != "127.0.0.1:8080" || cfg.WatchDebounce != 500*time.Millisecond {
		t.Errorf("listen=%s debounce=%s", cfg.ListenAddr, cfg.WatchDebounce)
	}

	opts, err := cfg.aggregatorOptions()
	if err != nil {
		t.Fatalf("aggregatorOptions: %v", err)
	}
	if opts != aggregator.DefaultOptions() {
		t.Errorf("opts = %+v, want defaults %+v", opts, aggregator.DefaultOptions())
	}
}

func TestLoadConfigFileEnvAndFlags(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"tie-break: ct",
		"kill-gate: always",
		"timing-gate: live",
		"workers: 3",
		"watch-debounce: 2s",
		"live-marker: MATCH IS LIVE",
	}, "\n"))

	cfg, err := loadConfig(path, nil)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	opts, _ := cfg.aggregatorOptions()
	if opts.TieBreak != aggregator.TieBreakCT || opts.KillGate != aggregator.GateAlways || opts.TimingGate != aggregator.GateLive {
		t.Errorf("file opts = %+v", opts)
	}
	if opts.SummaryGate != aggregator.GateLive || opts.LiveMarker != "MATCH IS LIVE" {
		t.Errorf("unset keys lost their defaults: %+v", opts)
	}
	if cfg.Workers != 3 || cfg.WatchDebounce != 2*time.Second {
		t.Errorf("workers=%d debounce=%s", cfg.Workers, cfg.WatchDebounce)
	}

	// Env beats the file.
	t.Setenv("CSLOGSTATS_TIE_BREAK", "none")
	t.Setenv("CSLOGSTATS_KILL_GATE", "match_start")
	cfg, err = loadConfig(path, nil)
	if err != nil {
		t.Fatalf("loadConfig with env: %v", err)
	}
	opts, _ = cfg.aggregatorOptions()
	if opts.TieBreak != aggregator.TieBreakNone || opts.KillGate != aggregator.GateMatchStart {
		t.Errorf("env opts = %+v", opts)
	}

	// A flag set on the command line beats env; an unset flag does not.
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("tie-break", "", "")
	cmd.Flags().String("kill-gate", "", "")
	if err := cmd.Flags().Set("tie-break", "t"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	cfg, err = loadConfig(path, cmd)
	if err != nil {
		t.Fatalf("loadConfig with flags: %v", err)
	}
	opts, _ = cfg.aggregatorOptions()
	if opts.TieBreak != aggregator.TieBreakT {
		t.Errorf("flag tie-break = %v, want t", opts.TieBreak)
	}
	if opts.KillGate != aggregator.GateMatchStart {
		t.Errorf("unset flag overrode env: kill gate = %v", opts.KillGate)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"gate":       "weapon-gate: sometimes",
		"tie-break":  "tie-break: coin",
		"log-format": "log-format: xml",
		"workers":    "workers: 0",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := loadConfig(writeConfig(t, body), nil); err == nil {
				t.Errorf("expected error for %q", body)
			}
		})
	}
}
