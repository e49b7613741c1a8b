package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/influxdata/tdigest"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pable/cs-logstats/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// PrintLogHeader prints a one-line header for a stored log.
func PrintLogHeader(w io.Writer, s model.LogSummary) {
	hash := s.Hash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	fmt.Fprintf(w, "\nMap: %s  |  Score: CT %d – T %d  |  Rounds: %d  |  Kills: %d  |  Hash: %s\n",
		orDash(s.MapName), s.CTScore, s.TScore, s.TotalRounds, s.TotalKills, hash)
}

// PrintBundle prints every report of a bundle. focus marks one player's rows.
func PrintBundle(w io.Writer, b *model.Bundle, focus string) {
	PrintMatchSummary(w, b.Summary)
	PrintPlayerTable(w, b.Kills, focus)
	PrintRoundTable(w, b.Timing)
	PrintWeaponTable(w, b.Weapons)
	PrintAccuracyTable(w, b.Accuracy, focus)
}

// PrintMatchSummary prints the result line followed by the round history.
func PrintMatchSummary(w io.Writer, s model.MatchSummaryReport) {
	fmt.Fprintf(w, "\n=== Match Summary ===\n\n")
	fmt.Fprintf(w, "  Map     : %s\n", orDash(s.Map))
	fmt.Fprintf(w, "  Teams   : %s (CT) vs %s (T)\n", orDash(s.Teams.CT), orDash(s.Teams.T))
	fmt.Fprintf(w, "  Score   : %s after %d rounds\n", s.FinalScore, s.TotalRounds)
	fmt.Fprintf(w, "  Winner  : %s\n\n", orDash(s.Winner))

	if len(s.RoundHistory) == 0 {
		return
	}
	table := newTable(w)
	table.Header("ROUND", "SIDE", "WINNER", "SCORE")
	for _, h := range s.RoundHistory {
		table.Append(strconv.Itoa(h.RoundNumber), h.WinnerSide, orDash(h.WinnerTeam), h.ScoreAfterRound)
	}
	table.Render()
}

// PrintPlayerTable prints the kill report per player, in first-seen order.
// If focus is non-empty, that player's row is marked with ">".
func PrintPlayerTable(w io.Writer, r model.KillReport, focus string) {
	fmt.Fprintf(w, "\n=== Players (%d kills, %d rounds) ===\n\n", r.TotalKills, r.TotalRounds)
	table := newTable(w)
	table.Header(" ", "NAME", "K", "D", "K/D", "HS", "HS%", "TK", "TOP WEAPON")

	for _, name := range r.PlayerStats.Keys() {
		p, _ := r.PlayerStats.Get(name)
		marker := " "
		if focus != "" && name == focus {
			marker = ">"
		}
		kd := float64(p.TotalKills)
		if p.Deaths > 0 {
			kd = float64(p.TotalKills) / float64(p.Deaths)
		}
		table.Append(
			marker,
			name,
			strconv.Itoa(p.TotalKills),
			strconv.Itoa(p.Deaths),
			fmt.Sprintf("%.2f", kd),
			strconv.Itoa(p.Headshots),
			fmt.Sprintf("%.0f%%", p.HeadshotPercentage),
			strconv.Itoa(p.TeamKills),
			topWeapon(p.Weapons),
		)
	}
	table.Render()
}

// topWeapon returns the weapon with the most kills; ties go to the first seen.
func topWeapon(weapons model.OrderedMap[int]) string {
	best, bestN := "—", 0
	for _, name := range weapons.Keys() {
		if n, _ := weapons.Get(name); n > bestN {
			best, bestN = fmt.Sprintf("%s (%d)", name, n), n
		}
	}
	return best
}

// RoundDurationQuantiles estimates the p50 and p90 round duration in seconds.
func RoundDurationQuantiles(rounds []model.RoundTiming) (p50, p90 float64) {
	if len(rounds) == 0 {
		return 0, 0
	}
	td := tdigest.NewWithCompression(100)
	for _, r := range rounds {
		td.Add(float64(r.DurationSeconds), 1)
	}
	return td.Quantile(0.5), td.Quantile(0.9)
}

// PrintRoundTable prints per-round durations and the timing totals.
func PrintRoundTable(w io.Writer, r model.TimingReport) {
	fmt.Fprintf(w, "\n=== Rounds ===\n\n")
	if r.TotalRounds == 0 {
		fmt.Fprintln(w, "  no completed rounds")
		return
	}
	table := newTable(w)
	table.Header("ROUND", "START", "END", "DURATION")
	for _, rt := range r.Rounds {
		table.Append(strconv.Itoa(rt.RoundNumber), rt.StartTime, rt.EndTime, formatSeconds(rt.DurationSeconds))
	}
	table.Render()

	p50, p90 := RoundDurationQuantiles(r.Rounds)
	fmt.Fprintf(w, "\n  avg %.2fs  |  p50 %.0fs  |  p90 %.0fs  |  shortest %ds  |  longest %ds  |  match %s\n",
		r.AverageRoundDuration, p50, p90, r.ShortestRound, r.LongestRound, formatSeconds(r.TotalMatchDuration))
}

func formatSeconds(s int) string {
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// PrintWeaponTable prints the weapon damage report.
func PrintWeaponTable(w io.Writer, r model.WeaponDamageReport) {
	fmt.Fprintf(w, "\n=== Weapons ===\n\n")
	table := newTable(w)
	table.Header("WEAPON", "HITS", "DAMAGE", "AVG", "MIN", "MAX", "HEAD%")
	for _, name := range r.WeaponStats.Keys() {
		s, _ := r.WeaponStats.Get(name)
		table.Append(
			name,
			strconv.Itoa(s.TotalHits),
			strconv.Itoa(s.TotalDamage),
			fmt.Sprintf("%.1f", s.AverageDamage),
			strconv.Itoa(s.MinDamage),
			strconv.Itoa(s.MaxDamage),
			headShare(s.HitgroupDistribution, s.TotalHits),
		)
	}
	table.Render()
}

func headShare(dist model.OrderedMap[int], hits int) string {
	if hits == 0 {
		return "—"
	}
	n, _ := dist.Get("head")
	return fmt.Sprintf("%.0f%%", 100*float64(n)/float64(hits))
}

// PrintAccuracyTable prints one row per player and weapon.
func PrintAccuracyTable(w io.Writer, r model.AccuracyReport, focus string) {
	fmt.Fprintf(w, "\n=== Accuracy ===\n\n")
	table := newTable(w)
	table.Header(" ", "PLAYER", "WEAPON", "HITS", "DAMAGE", "AVG", "K", "HS K", "HS%")
	for _, player := range r.PlayerStats.Keys() {
		weapons, _ := r.PlayerStats.Get(player)
		marker := " "
		if focus != "" && player == focus {
			marker = ">"
		}
		for _, weapon := range weapons.Keys() {
			s, _ := weapons.Get(weapon)
			table.Append(
				marker,
				player,
				weapon,
				strconv.Itoa(s.TotalHits),
				strconv.Itoa(s.TotalDamage),
				fmt.Sprintf("%.1f", s.AverageDamage),
				strconv.Itoa(s.TotalKills),
				strconv.Itoa(s.HeadshotKills),
				fmt.Sprintf("%.0f%%", s.HeadshotPercentage),
			)
		}
	}
	table.Render()
}
