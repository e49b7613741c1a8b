package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pable/cs-logstats/internal/model"
	"github.com/pable/cs-logstats/internal/report"
	"github.com/pable/cs-logstats/internal/storage"
)

// playerCmd is the cobra command for cross-log aggregate analysis of one or more players.
var playerCmd = &cobra.Command{
	Use:   "player <name> [<name>...]",
	Short: "Cross-log analysis for one or more players",
	Long: `Sum every stored log a player appears in and print an overview row per
player plus a per-map breakdown. Names are matched exactly.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlayer,
}

func runPlayer(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	return printPlayers(db, args)
}

// printPlayers loads the history of each name and prints overview and
// per-map tables. Names without data are reported and skipped.
func printPlayers(db *storage.DB, names []string) error {
	var allAggs, allMaps []model.PlayerAggregate
	for _, name := range names {
		hist, err := db.GetPlayerHistory(name)
		if err != nil {
			return fmt.Errorf("query history for %q: %w", name, err)
		}
		if len(hist) == 0 {
			fmt.Fprintf(os.Stderr, "No data found for player %q\n", name)
			continue
		}
		allAggs = append(allAggs, buildAggregate(name, hist))
		allMaps = append(allMaps, buildMapAggregates(name, hist)...)
	}

	if len(allAggs) == 0 {
		return nil
	}

	fmt.Fprintln(os.Stdout)
	report.PrintPlayerAggregateOverview(os.Stdout, allAggs)
	report.PrintPlayerMapTable(os.Stdout, allMaps)
	return nil
}

// buildAggregate sums a player's per-log rows.
func buildAggregate(name string, hist []model.PlayerLogStats) model.PlayerAggregate {
	agg := model.PlayerAggregate{Name: name}
	for _, h := range hist {
		agg.Add(h)
	}
	return agg
}

// buildMapAggregates groups a player's rows by map (without the "de_"
// prefix) and sums them. Rows without a map are skipped.
func buildMapAggregates(name string, hist []model.PlayerLogStats) []model.PlayerAggregate {
	m := make(map[string]*model.PlayerAggregate)
	for _, h := range hist {
		if h.MapName == "" {
			continue
		}
		mapName := model.ShortMap(h.MapName)
		if m[mapName] == nil {
			m[mapName] = &model.PlayerAggregate{Name: name, MapName: mapName}
		}
		m[mapName].Add(h)
	}

	out := make([]model.PlayerAggregate, 0, len(m))
	for _, v := range m {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MapName < out[j].MapName })
	return out
}
