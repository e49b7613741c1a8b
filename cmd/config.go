package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pable/cs-logstats/internal/aggregator"
	"github.com/pable/cs-logstats/internal/logging"
	"github.com/pable/cs-logstats/internal/watcher"
)

// appConfig holds the layered configuration shared by every subcommand.
type appConfig struct {
	DB            string        `mapstructure:"db"`
	LogFormat     string        `mapstructure:"log-format"`
	LogLevel      string        `mapstructure:"log-level"`
	Verbose       bool          `mapstructure:"verbose"`
	LiveMarker    string        `mapstructure:"live-marker"`
	TieBreak      string        `mapstructure:"tie-break"`
	KillGate      string        `mapstructure:"kill-gate"`
	TimingGate    string        `mapstructure:"timing-gate"`
	SummaryGate   string        `mapstructure:"summary-gate"`
	WeaponGate    string        `mapstructure:"weapon-gate"`
	AccuracyGate  string        `mapstructure:"accuracy-gate"`
	Workers       int           `mapstructure:"workers"`
	ListenAddr    string        `mapstructure:"listen-addr"`
	WatchDebounce time.Duration `mapstructure:"watch-debounce"`
}

// configKeys are the keys a cobra flag of the same name may override.
var configKeys = []string{
	"db", "log-format", "log-level", "verbose", "live-marker", "tie-break",
	"kill-gate", "timing-gate", "summary-gate", "weapon-gate", "accuracy-gate",
	"workers", "listen-addr", "watch-debounce",
}

func defaultDBPath() string {
	return filepath.Join(mustUserHome(), ".cslogstats", "logs.db")
}

// loadConfig merges defaults, the config file, CSLOGSTATS_* env vars and the
// flags of cmd that were set on the command line, in that order of precedence.
// cmd may be nil.
func loadConfig(configPath string, cmd *cobra.Command) (appConfig, error) {
	var cfg appConfig

	v := viper.New()
	v.SetEnvPrefix("CSLOGSTATS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	defaults := aggregator.DefaultOptions()
	v.SetDefault("db", defaultDBPath())
	v.SetDefault("log-format", "text")
	v.SetDefault("log-level", "info")
	v.SetDefault("verbose", false)
	v.SetDefault("live-marker", defaults.LiveMarker)
	v.SetDefault("tie-break", defaults.TieBreak.String())
	v.SetDefault("kill-gate", defaults.KillGate.String())
	v.SetDefault("timing-gate", defaults.TimingGate.String())
	v.SetDefault("summary-gate", defaults.SummaryGate.String())
	v.SetDefault("weapon-gate", defaults.WeaponGate.String())
	v.SetDefault("accuracy-gate", defaults.AccuracyGate.String())
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("listen-addr", "127.0.0.1:8080")
	v.SetDefault("watch-debounce", watcher.DefaultDebounce)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(mustUserHome(), ".config", "cslogstats", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if cmd != nil {
		for _, key := range configKeys {
			if f := cmd.Flags().Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return cfg, fmt.Errorf("bind flag %s: %w", key, err)
				}
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c appConfig) validate() error {
	if c.DB == "" {
		return errors.New("config: db path is empty")
	}
	if !logging.ValidFormat(c.LogFormat) {
		return fmt.Errorf("config: unknown log-format %q (want text or json)", c.LogFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if _, err := c.aggregatorOptions(); err != nil {
		return err
	}
	return nil
}

// aggregatorOptions converts the gate, tie-break and marker settings.
func (c appConfig) aggregatorOptions() (aggregator.Options, error) {
	var opts aggregator.Options
	gates := []struct {
		key string
		val string
		dst *aggregator.Gate
	}{
		{"kill-gate", c.KillGate, &opts.KillGate},
		{"timing-gate", c.TimingGate, &opts.TimingGate},
		{"summary-gate", c.SummaryGate, &opts.SummaryGate},
		{"weapon-gate", c.WeaponGate, &opts.WeaponGate},
		{"accuracy-gate", c.AccuracyGate, &opts.AccuracyGate},
	}
	for _, g := range gates {
		gate, err := aggregator.ParseGate(g.val)
		if err != nil {
			return opts, fmt.Errorf("config: %s: %w", g.key, err)
		}
		*g.dst = gate
	}

	tb, err := aggregator.ParseTieBreak(c.TieBreak)
	if err != nil {
		return opts, fmt.Errorf("config: tie-break: %w", err)
	}
	opts.TieBreak = tb
	opts.LiveMarker = c.LiveMarker
	return opts.WithDefaults(), nil
}
