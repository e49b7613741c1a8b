package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/pable/cs-logstats/internal/model"
)

// RoundDetail summarizes one round of the kill report.
type RoundDetail struct {
	Round      int
	Start      string
	End        string
	Duration   int // seconds, -1 when start or end is unknown
	Kills      int
	Headshots  int
	TeamKills  int
	TopFragger string
	TopKills   int
	// Focus player's tally; zero when no player is selected.
	FocusKills  int
	FocusDeaths int
}

// RoundDetails groups the kill report by round number. Rounds come from the
// round snapshots plus any round that has kills but was never closed.
func RoundDetails(r model.KillReport, focus string) []RoundDetail {
	byRound := make(map[int]*RoundDetail)
	get := func(n int) *RoundDetail {
		d, ok := byRound[n]
		if !ok {
			d = &RoundDetail{Round: n, Duration: -1}
			byRound[n] = d
		}
		return d
	}

	for _, s := range r.RoundStats {
		d := get(s.RoundNumber)
		if s.StartTime != nil {
			d.Start = *s.StartTime
		}
		d.End = s.EndTime
		d.Duration = clockDiff(d.Start, d.End)
	}

	counts := make(map[int]map[string]int)
	for _, k := range r.Kills {
		d := get(k.Round)
		d.Kills++
		if k.Headshot {
			d.Headshots++
		}
		if focus != "" {
			if k.Killer.Name == focus {
				d.FocusKills++
			}
			if k.Victim.Name == focus {
				d.FocusDeaths++
			}
		}
		if k.Killer.Team == k.Victim.Team {
			d.TeamKills++
			continue
		}
		if counts[k.Round] == nil {
			counts[k.Round] = make(map[string]int)
		}
		counts[k.Round][k.Killer.Name]++
		if n := counts[k.Round][k.Killer.Name]; n > d.TopKills {
			d.TopFragger, d.TopKills = k.Killer.Name, n
		}
	}

	out := make([]RoundDetail, 0, len(byRound))
	for _, d := range byRound {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out
}

// clockDiff returns end-start in seconds for two HH:MM:SS clocks, wrapping
// past midnight. It returns -1 when either clock is missing or malformed.
func clockDiff(start, end string) int {
	s, err1 := time.Parse(model.ClockLayout, start)
	e, err2 := time.Parse(model.ClockLayout, end)
	if err1 != nil || err2 != nil {
		return -1
	}
	d := e.Sub(s)
	if d < 0 {
		d += 24 * time.Hour
	}
	return int(d.Seconds())
}

// PrintRoundDetailTable prints one row per round. The focus columns are
// shown only when focus is non-empty.
func PrintRoundDetailTable(w io.Writer, rounds []RoundDetail, focus string) {
	fmt.Fprintf(w, "\n=== Round detail ===\n\n")
	if len(rounds) == 0 {
		fmt.Fprintln(w, "  no rounds")
		return
	}
	table := newTable(w)
	header := []any{"ROUND", "START", "END", "TIME", "KILLS", "HS", "TK", "TOP FRAGGER"}
	if focus != "" {
		header = append(header, focus+" K", focus+" D")
	}
	table.Header(header...)

	for _, d := range rounds {
		dur := "—"
		if d.Duration >= 0 {
			dur = formatSeconds(d.Duration)
		}
		top := "—"
		if d.TopFragger != "" {
			top = fmt.Sprintf("%s (%d)", d.TopFragger, d.TopKills)
		}
		row := []any{
			strconv.Itoa(d.Round),
			orDash(d.Start),
			orDash(d.End),
			dur,
			strconv.Itoa(d.Kills),
			strconv.Itoa(d.Headshots),
			strconv.Itoa(d.TeamKills),
			top,
		}
		if focus != "" {
			row = append(row, strconv.Itoa(d.FocusKills), strconv.Itoa(d.FocusDeaths))
		}
		table.Append(row...)
	}
	table.Render()
}
