package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pable/cs-logstats/internal/model"
)

func strp(s string) *string { return &s }

func kill(round int, killer, killerTeam, victim, victimTeam string, hs bool) model.KillRecord {
	return model.KillRecord{
		Round:    round,
		Killer:   model.KillParty{Name: killer, Team: killerTeam},
		Victim:   model.KillParty{Name: victim, Team: victimTeam},
		Weapon:   "ak47",
		Headshot: hs,
	}
}

func TestClockDiff(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"20:00:00", "20:01:55", 115},
		{"23:59:30", "00:00:10", 40},
		{"", "20:00:00", -1},
		{"20:00:00", "bad", -1},
		{"12:00:00", "12:00:00", 0},
	}
	for _, c := range cases {
		if got := clockDiff(c.start, c.end); got != c.want {
			t.Errorf("clockDiff(%q, %q) = %d, want %d", c.start, c.end, got, c.want)
		}
	}
}

func TestRoundDetails(t *testing.T) {
	r := model.KillReport{
		RoundStats: []model.RoundSnapshot{
			{RoundNumber: 2, StartTime: strp("20:03:00"), EndTime: "20:04:30"},
			{RoundNumber: 1, StartTime: nil, EndTime: "20:02:00"},
		},
		Kills: []model.KillRecord{
			kill(1, "A", "CT", "X", "TERRORIST", true),
			kill(1, "A", "CT", "Y", "TERRORIST", false),
			kill(1, "X", "TERRORIST", "A", "CT", false),
			kill(2, "B", "CT", "C", "CT", false),
			kill(2, "Y", "TERRORIST", "B", "CT", true),
			kill(3, "A", "CT", "Z", "TERRORIST", false),
		},
	}

	got := RoundDetails(r, "A")
	if len(got) != 3 {
		t.Fatalf("got %d rounds, want 3", len(got))
	}

	r1 := got[0]
	if r1.Round != 1 || r1.Duration != -1 || r1.End != "20:02:00" {
		t.Errorf("round 1 clock = %+v", r1)
	}
	if r1.Kills != 3 || r1.Headshots != 1 || r1.TopFragger != "A" || r1.TopKills != 2 {
		t.Errorf("round 1 tally = %+v", r1)
	}
	if r1.FocusKills != 2 || r1.FocusDeaths != 1 {
		t.Errorf("round 1 focus = %d/%d, want 2/1", r1.FocusKills, r1.FocusDeaths)
	}

	r2 := got[1]
	if r2.Duration != 90 || r2.TeamKills != 1 || r2.TopFragger != "Y" || r2.TopKills != 1 {
		t.Errorf("round 2 = %+v", r2)
	}

	// Round 3 has kills but no snapshot.
	r3 := got[2]
	if r3.Round != 3 || r3.Duration != -1 || r3.Start != "" || r3.FocusKills != 1 {
		t.Errorf("round 3 = %+v", r3)
	}
}

func TestRoundDetailsNoFocus(t *testing.T) {
	r := model.KillReport{Kills: []model.KillRecord{kill(1, "A", "CT", "X", "TERRORIST", false)}}
	got := RoundDetails(r, "")
	if len(got) != 1 || got[0].FocusKills != 0 || got[0].FocusDeaths != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestPrintRoundDetailTable(t *testing.T) {
	var buf bytes.Buffer
	PrintRoundDetailTable(&buf, nil, "")
	if !strings.Contains(buf.String(), "no rounds") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	rounds := []RoundDetail{{Round: 1, Start: "20:00:00", End: "20:01:00", Duration: 60, Kills: 2, TopFragger: "A", TopKills: 2, FocusKills: 2}}
	PrintRoundDetailTable(&buf, rounds, "A")
	out := buf.String()
	for _, want := range []string{"A (2)", "A K", "A D", "20:01:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintTrendTableRunningKD(t *testing.T) {
	rows := []model.PlayerLogStats{
		{LogHash: "aaaaaaaaaaaaaaaa", MapName: "de_nuke", Kills: 10, Deaths: 5},
		{LogHash: "bbbbbbbbbbbbbbbb", MapName: "de_inferno", Kills: 2, Deaths: 10},
	}
	var buf bytes.Buffer
	PrintTrendTable(&buf, "A", rows)
	out := buf.String()
	if !strings.Contains(out, "A (2 logs)") {
		t.Errorf("missing title:\n%s", out)
	}
	if strings.Contains(out, "aaaaaaaaaaaaa") {
		t.Errorf("hash not shortened:\n%s", out)
	}
	// 12/15 after the second row.
	if !strings.Contains(out, "0.80") {
		t.Errorf("missing running K/D 0.80:\n%s", out)
	}
}
