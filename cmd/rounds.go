package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/cs-logstats/internal/model"
	"github.com/pable/cs-logstats/internal/report"
)

var roundsPlayer string

// roundsCmd is the cobra command for the per-round drill-down of one stored log.
var roundsCmd = &cobra.Command{
	Use:   "rounds <hash-prefix>",
	Short: "Per-round drill-down for one stored log",
	Long: `Print one row per round of the kill report: round clock, kills, headshots,
team kills and the round's top fragger. With --player, add that player's
kills and deaths per round.`,
	Args: cobra.ExactArgs(1),
	RunE: runRounds,
}

func init() {
	roundsCmd.Flags().StringVar(&roundsPlayer, "player", "", "add kill/death columns for this player")
}

func runRounds(cmd *cobra.Command, args []string) error {
	prefix := args[0]

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
		fmt.Fprintf(os.Stderr, "No log found with hash prefix %q\n", prefix)
		return nil
	}

	body, err := db.GetReport(log.Hash, model.ReportKills)
	if err != nil {
		return fmt.Errorf("get kill report: %w", err)
	}
	if body == nil {
		fmt.Fprintf(os.Stderr, "Log %s has no kill report\n", log.Hash[:12])
		return nil
	}
	var kills model.KillReport
	if err := json.Unmarshal(body, &kills); err != nil {
		return fmt.Errorf("decode kill report: %w", err)
	}

	if roundsPlayer != "" {
		if _, ok := kills.PlayerStats.Get(roundsPlayer); !ok {
			fmt.Fprintf(os.Stderr, "Player %q does not appear in log %s\n", roundsPlayer, log.Hash[:12])
			return nil
		}
	}

	report.PrintLogHeader(os.Stdout, *log)
	report.PrintRoundDetailTable(os.Stdout, report.RoundDetails(kills, roundsPlayer), roundsPlayer)
	return nil
}
