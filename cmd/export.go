package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pable/cs-logstats/internal/model"
)

var (
	exportOut    string
	exportFormat string
	exportReport string
)

var exportCmd = &cobra.Command{
	Use:   "export <hash-prefix>",
	Short: "Write the stored reports of a log as JSON or YAML",
	Long: `Writes the five reports of a stored log. With --out, one file per report is
written to the directory (kill_stats, round_timings, match_summary,
weapon_damage_stats, player_accuracy_stats). Without --out, the reports
are printed to stdout; --report selects a single one.

Example:
  cslogstats export 3fa1c2 --out ./reports
  cslogstats export 3fa1c2 --report match_summary --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output directory (default: stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or yaml")
	exportCmd.Flags().StringVar(&exportReport, "report", "", "only this report kind")
}

func runExport(_ *cobra.Command, args []string) error {
	if !validFormat(exportFormat) {
		return fmt.Errorf("unknown format %q (want json or yaml)", exportFormat)
	}
	if exportReport != "" && !slices.Contains(model.ReportKinds(), exportReport) {
		return fmt.Errorf("unknown report %q (want one of %v)", exportReport, model.ReportKinds())
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	log, err := db.GetLogByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("query log: %w", err)
	}
	if log == nil {
		return fmt.Errorf("no log found with hash prefix %q", args[0])
	}
	bundle, err := db.GetBundle(log.Hash)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}
	if bundle == nil {
		return fmt.Errorf("log %s has no stored reports", log.Hash[:12])
	}

	if exportOut != "" {
		if exportReport != "" {
			return writeReport(exportOut, exportReport, bundle.Report(exportReport), exportFormat)
		}
		return writeReports(exportOut, bundle, exportFormat)
	}

	var v any = bundle
	if exportReport != "" {
		v = bundle.Report(exportReport)
	}
	data, err := encodeReport(v, exportFormat)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func validFormat(format string) bool {
	return format == "json" || format == "yaml"
}

// encodeReport renders v as two-space indented JSON or as YAML, with a
// trailing newline.
func encodeReport(v any, format string) ([]byte, error) {
	if format == "yaml" {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode YAML: %w", err)
		}
		return buf.Bytes(), nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// writeReports writes every report of b into dir, one file per kind.
func writeReports(dir string, b *model.Bundle, format string) error {
	for _, kind := range model.ReportKinds() {
		if err := writeReport(dir, kind, b.Report(kind), format); err != nil {
			return err
		}
	}
	return nil
}

func writeReport(dir, kind string, v any, format string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	data, err := encodeReport(v, format)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, kind+"."+format)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
