package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the log database",
	Long: `Run an arbitrary SQL query against the log database and print results as a table.

Schema overview:
  logs(hash, source, map_name, ct_score, t_score, winner, ct_team, t_team,
    total_rounds, total_kills, parsed_at)
  reports(log_hash, kind, body)   -- body is the JSON of one report
  player_stats(log_hash, name, kills, deaths, headshots, team_kills,
    headshot_pct, damage, hits)
  weapon_stats(log_hash, weapon, total_damage, total_hits, max_damage,
    min_damage, average_damage)

Report bodies can be queried with SQLite's JSON functions, e.g.
  SELECT json_extract(body, '$.final_score') FROM reports WHERE kind = 'match_summary'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
