package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pable/cs-logstats/internal/model"
)

func sampleBundle() *model.Bundle {
	var weapons model.OrderedMap[int]
	weapons.Set("awp", 2)
	weapons.Set("ak47", 1)

	var players model.OrderedMap[model.PlayerStats]
	players.Set("zeta", model.PlayerStats{TotalKills: 3, Deaths: 1, Headshots: 1, Weapons: weapons, HeadshotPercentage: 33.33})
	players.Set("alpha", model.PlayerStats{Deaths: 3})

	var acc model.OrderedMap[model.AccuracyStats]
	acc.Set("awp", model.AccuracyStats{TotalHits: 2, TotalDamage: 200})
	var accPlayers model.OrderedMap[model.OrderedMap[model.AccuracyStats]]
	accPlayers.Set("zeta", acc)

	return &model.Bundle{
		Kills: model.KillReport{TotalKills: 3, PlayerStats: players, Kills: []model.KillRecord{}, RoundStats: []model.RoundSnapshot{}},
		Timing: model.TimingReport{
			TotalRounds: 2, AverageRoundDuration: 60, ShortestRound: 50, LongestRound: 70,
			Rounds: []model.RoundTiming{{RoundNumber: 1, DurationSeconds: 50}, {RoundNumber: 2, DurationSeconds: 70}},
		},
		Summary: model.MatchSummaryReport{
			Map: "de_inferno", FinalScore: "2:0", Winner: "Alpha",
			Teams: model.Teams{CT: "Alpha", T: "Bravo"}, TotalRounds: 2,
			RoundHistory: []model.RoundHistoryEntry{},
		},
		Weapons:  model.WeaponDamageReport{DamageEvents: []model.DamageRecord{}},
		Accuracy: model.AccuracyReport{PlayerStats: accPlayers, Events: []model.AccuracyRecord{}},
	}
}

func TestEncodeReportJSONIndent(t *testing.T) {
	data, err := encodeReport(sampleBundle().Summary, "json")
	if err != nil {
		t.Fatalf("encodeReport: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "{\n  \"map\": \"de_inferno\",") {
		t.Errorf("unexpected JSON layout:\n%s", out)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Error("missing trailing newline")
	}
}

func TestEncodeReportYAMLKeepsOrder(t *testing.T) {
	data, err := encodeReport(sampleBundle().Kills, "yaml")
	if err != nil {
		t.Fatalf("encodeReport: %v", err)
	}
	out := string(data)
	z, a := strings.Index(out, "zeta:"), strings.Index(out, "alpha:")
	if z < 0 || a < 0 || z > a {
		t.Errorf("players not in first-seen order:\n%s", out)
	}
	if strings.Index(out, "awp:") > strings.Index(out, "ak47:") {
		t.Errorf("weapons not in first-seen order:\n%s", out)
	}
}

func TestWriteReports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := writeReports(dir, sampleBundle(), "json"); err != nil {
		t.Fatalf("writeReports: %v", err)
	}
	for _, kind := range model.ReportKinds() {
		data, err := os.ReadFile(filepath.Join(dir, kind+".json"))
		if err != nil {
			t.Fatalf("read %s: %v", kind, err)
		}
		if !json.Valid(data) {
			t.Errorf("%s is not valid JSON", kind)
		}
	}

	var timing model.TimingReport
	data, _ := os.ReadFile(filepath.Join(dir, model.ReportTiming+".json"))
	if err := json.Unmarshal(data, &timing); err != nil {
		t.Fatalf("decode timing: %v", err)
	}
	if timing.TotalRounds != 2 || timing.LongestRound != 70 {
		t.Errorf("timing = %+v", timing)
	}
}

func TestValidFormat(t *testing.T) {
	for format, want := range map[string]bool{"json": true, "yaml": true, "xml": false, "": false} {
		if got := validFormat(format); got != want {
			t.Errorf("validFormat(%q) = %v, want %v", format, got, want)
		}
	}
}
