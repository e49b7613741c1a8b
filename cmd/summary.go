package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var summaryTop int

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all logs stored in the database:
log count, parse date range, map breakdown and most active players.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().IntVar(&summaryTop, "top", 10, "number of players to list")
}

func newSummaryTable() *tablewriter.Table {
	return tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.GetOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.TotalLogs == 0 {
		fmt.Fprintln(os.Stdout, "No logs stored yet. Run 'cslogstats parse <server.log>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Logs stored   : %d\n", ov.TotalLogs)
	fmt.Fprintf(os.Stdout, "  Parsed        : %s → %s\n", ov.FirstParsed, ov.LastParsed)
	fmt.Fprintf(os.Stdout, "  Unique maps   : %d\n", ov.UniqueMaps)
	fmt.Fprintf(os.Stdout, "  Players seen  : %d\n", ov.UniquePlayers)
	fmt.Fprintf(os.Stdout, "  Total rounds  : %d\n", ov.TotalRounds)
	fmt.Fprintf(os.Stdout, "  Total kills   : %d\n", ov.TotalKills)

	maps, err := db.GetMapStats()
	if err != nil {
		return fmt.Errorf("get map stats: %w", err)
	}
	if len(maps) > 0 {
		fmt.Fprintf(os.Stdout, "\n--- Maps ---\n\n")
		mt := newSummaryTable()
		mt.Header("MAP", "LOGS", "CT WINS", "T WINS", "CT WIN%")
		for _, m := range maps {
			total := m.CTWins + m.TWins
			ctPct := 0.0
			if total > 0 {
				ctPct = 100.0 * float64(m.CTWins) / float64(total)
			}
			mt.Append(
				m.MapName,
				fmt.Sprintf("%d", m.Logs),
				fmt.Sprintf("%d", m.CTWins),
				fmt.Sprintf("%d", m.TWins),
				fmt.Sprintf("%.0f%%", ctPct),
			)
		}
		mt.Render()
	}

	players, err := db.GetTopPlayers(summaryTop)
	if err != nil {
		return fmt.Errorf("get top players: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Most Active Players ---\n\n")
	pt := newSummaryTable()
	pt.Header("NAME", "LOGS", "KILLS", "DEATHS", "K/D", "HS%", "DAMAGE")
	for _, p := range players {
		pt.Append(
			p.Name,
			fmt.Sprintf("%d", p.Logs),
			fmt.Sprintf("%d", p.Kills),
			fmt.Sprintf("%d", p.Deaths),
			fmt.Sprintf("%.2f", p.KDRatio()),
			fmt.Sprintf("%.0f%%", p.HSPercent()),
			fmt.Sprintf("%d", p.Damage),
		)
	}
	pt.Render()
	return nil
}
