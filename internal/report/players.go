package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pable/cs-logstats/internal/model"
)

// PrintPlayerAggregateOverview prints one row per player summed over stored logs.
func PrintPlayerAggregateOverview(w io.Writer, aggs []model.PlayerAggregate) {
	fmt.Fprintf(w, "=== Players across stored logs ===\n\n")
	table := newTable(w)
	table.Header("NAME", "LOGS", "K", "D", "K/D", "HS%", "TK", "HITS", "DAMAGE", "DMG/HIT")
	for _, a := range aggs {
		table.Append(
			a.Name,
			strconv.Itoa(a.Logs),
			strconv.Itoa(a.Kills),
			strconv.Itoa(a.Deaths),
			fmt.Sprintf("%.2f", a.KDRatio()),
			fmt.Sprintf("%.0f%%", a.HSPercent()),
			strconv.Itoa(a.TeamKills),
			strconv.Itoa(a.Hits),
			strconv.Itoa(a.Damage),
			fmt.Sprintf("%.1f", a.DamagePerHit()),
		)
	}
	table.Render()
}

// PrintPlayerMapTable prints per-map aggregates, one row per player and map.
func PrintPlayerMapTable(w io.Writer, aggs []model.PlayerAggregate) {
	if len(aggs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n=== By map ===\n\n")
	table := newTable(w)
	table.Header("NAME", "MAP", "LOGS", "K", "D", "K/D", "HS%", "DMG/HIT")
	for _, a := range aggs {
		table.Append(
			a.Name,
			orDash(a.MapName),
			strconv.Itoa(a.Logs),
			strconv.Itoa(a.Kills),
			strconv.Itoa(a.Deaths),
			fmt.Sprintf("%.2f", a.KDRatio()),
			fmt.Sprintf("%.0f%%", a.HSPercent()),
			fmt.Sprintf("%.1f", a.DamagePerHit()),
		)
	}
	table.Render()
}

// PrintTrendTable prints a player's logs in the given order with a running
// K/D over all rows printed so far.
func PrintTrendTable(w io.Writer, name string, rows []model.PlayerLogStats) {
	fmt.Fprintf(w, "\n=== %s (%d logs) ===\n\n", name, len(rows))
	table := newTable(w)
	table.Header("#", "HASH", "MAP", "PARSED", "K", "D", "HS%", "TK", "DAMAGE", "K/D", "RUNNING K/D")

	running := model.PlayerAggregate{Name: name}
	for i, r := range rows {
		running.Add(r)
		one := model.PlayerAggregate{}
		one.Add(r)
		hash := r.LogHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		table.Append(
			strconv.Itoa(i+1),
			hash,
			orDash(r.MapName),
			r.ParsedAt,
			strconv.Itoa(r.Kills),
			strconv.Itoa(r.Deaths),
			fmt.Sprintf("%.0f%%", r.HeadshotPct),
			strconv.Itoa(r.TeamKills),
			strconv.Itoa(r.Damage),
			fmt.Sprintf("%.2f", one.KDRatio()),
			fmt.Sprintf("%.2f", running.KDRatio()),
		)
	}
	table.Render()
}
