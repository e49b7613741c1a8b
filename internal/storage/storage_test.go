package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pable/cs-logstats/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// makeBundle builds a small bundle: A kills B twice with an ak47 on mapName.
func makeBundle(mapName string, ct, tScore int) *model.Bundle {
	var weapons model.OrderedMap[int]
	weapons.Set("ak47", 2)

	var players model.OrderedMap[model.PlayerStats]
	players.Set("A", model.PlayerStats{TotalKills: 2, Headshots: 1, Weapons: weapons, HeadshotPercentage: 50})
	players.Set("B", model.PlayerStats{Deaths: 2})

	var dist model.OrderedMap[int]
	dist.Set("head", 1)
	var ws model.OrderedMap[model.WeaponStats]
	ws.Set("ak47", model.WeaponStats{TotalDamage: 95, TotalHits: 1, MaxDamage: 95, MinDamage: 95, AverageDamage: 95, HitgroupDistribution: dist})

	var acc model.OrderedMap[model.AccuracyStats]
	acc.Set("ak47", model.AccuracyStats{TotalHits: 1, TotalDamage: 95, TotalKills: 2})
	var accPlayers model.OrderedMap[model.OrderedMap[model.AccuracyStats]]
	accPlayers.Set("A", acc)

	return &model.Bundle{
		Kills: model.KillReport{
			TotalKills:  2,
			PlayerStats: players,
			Kills:       []model.KillRecord{{Round: 1}, {Round: 1}},
			RoundStats:  []model.RoundSnapshot{},
		},
		Timing: model.TimingReport{Rounds: []model.RoundTiming{}},
		Summary: model.MatchSummaryReport{
			Map:          mapName,
			FinalScore:   scoreString(ct, tScore),
			Winner:       "Alpha",
			Teams:        model.Teams{CT: "Alpha", T: "Bravo"},
			TotalRounds:  ct + tScore,
			RoundHistory: []model.RoundHistoryEntry{},
		},
		Weapons:  model.WeaponDamageReport{WeaponStats: ws, DamageEvents: []model.DamageRecord{}},
		Accuracy: model.AccuracyReport{PlayerStats: accPlayers, Events: []model.AccuracyRecord{}},
	}
}

func scoreString(ct, t int) string {
	return model.LogSummary{CTScore: ct, TScore: t}.FinalScore()
}

var parsedAt = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestInsertAndExists(t *testing.T) {
	db := openMemDB(t)

	if err := db.InsertBundle("abc123", "match.log", makeBundle("de_dust2", 13, 7), parsedAt); err != nil {
		t.Fatalf("InsertBundle: %v", err)
	}

	exists, err := db.LogExists("abc123")
	if err != nil {
		t.Fatalf("LogExists: %v", err)
	}
	if !exists {
		t.Error("expected log to exist after insert")
	}

	exists2, _ := db.LogExists("nonexistent")
	if exists2 {
		t.Error("expected non-existent log to not exist")
	}
}

func TestListLogs(t *testing.T) {
	db := openMemDB(t)

	db.InsertBundle("h1", "a.log", makeBundle("de_dust2", 13, 7), parsedAt)
	db.InsertBundle("h2", "b.log", makeBundle("de_mirage", 5, 13), parsedAt.Add(time.Hour))

	list, err := db.ListLogs()
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(list))
	}
	// Newest parse first.
	if list[0].Hash != "h2" {
		t.Errorf("expected h2 first, got %s", list[0].Hash)
	}
	if list[0].CTScore != 5 || list[0].TScore != 13 || list[0].FinalScore() != "5:13" {
		t.Errorf("h2 score = %d:%d", list[0].CTScore, list[0].TScore)
	}
	if list[1].TotalKills != 2 || list[1].CTTeam != "Alpha" || list[1].Source != "a.log" {
		t.Errorf("h1 = %+v", list[1])
	}
}

func TestGetLogByPrefix(t *testing.T) {
	db := openMemDB(t)
	db.InsertBundle("deadbeef1234", "x.log", makeBundle("de_inferno", 1, 0), parsedAt)

	s, err := db.GetLogByPrefix("deadbeef")
	if err != nil {
		t.Fatalf("GetLogByPrefix: %v", err)
	}
	if s == nil || s.MapName != "de_inferno" {
		t.Fatalf("got %+v, want de_inferno", s)
	}

	none, err := db.GetLogByPrefix("ffff")
	if err != nil || none != nil {
		t.Errorf("unknown prefix: got %+v, %v; want nil, nil", none, err)
	}
}

func TestBundleRoundTripPreservesOrder(t *testing.T) {
	db := openMemDB(t)
	in := makeBundle("de_nuke", 16, 14)
	if err := db.InsertBundle("h", "n.log", in, parsedAt); err != nil {
		t.Fatalf("InsertBundle: %v", err)
	}

	out, err := db.GetBundle("h")
	if err != nil {
		t.Fatalf("GetBundle: %v", err)
	}
	if out == nil {
		t.Fatal("GetBundle returned nil")
	}
	want, _ := json.Marshal(in)
	got, _ := json.Marshal(out)
	if string(got) != string(want) {
		t.Errorf("round trip mismatch:\ngot  %s\nwant %s", got, want)
	}
	if keys := out.Kills.PlayerStats.Keys(); len(keys) != 2 || keys[0] != "A" {
		t.Errorf("player order = %v", keys)
	}

	missing, err := db.GetBundle("nope")
	if err != nil || missing != nil {
		t.Errorf("missing bundle: got %v, %v", missing, err)
	}
}

func TestGetReport(t *testing.T) {
	db := openMemDB(t)
	db.InsertBundle("h", "n.log", makeBundle("de_nuke", 16, 14), parsedAt)

	body, err := db.GetReport("h", model.ReportSummary)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	var s model.MatchSummaryReport
	if err := json.Unmarshal(body, &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Map != "de_nuke" || s.FinalScore != "16:14" {
		t.Errorf("summary = %+v", s)
	}

	none, err := db.GetReport("h", "bogus")
	if err != nil || none != nil {
		t.Errorf("unknown kind: got %s, %v", none, err)
	}
}

func TestReinsertReplacesRows(t *testing.T) {
	db := openMemDB(t)
	db.InsertBundle("h", "n.log", makeBundle("de_nuke", 16, 14), parsedAt)

	b := makeBundle("de_nuke", 16, 14)
	var players model.OrderedMap[model.PlayerStats]
	players.Set("C", model.PlayerStats{TotalKills: 1})
	b.Kills.PlayerStats = players
	if err := db.InsertBundle("h", "n.log", b, parsedAt); err != nil {
		t.Fatalf("re-insert: %v", err)
	}

	_, rows, err := db.QueryRaw("SELECT name FROM player_stats WHERE log_hash = 'h' ORDER BY name")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "C" {
		t.Errorf("player rows = %v, want only C", rows)
	}
}

func TestDeleteLog(t *testing.T) {
	db := openMemDB(t)
	db.InsertBundle("h", "n.log", makeBundle("de_nuke", 16, 14), parsedAt)

	ok, err := db.DeleteLog("h")
	if err != nil || !ok {
		t.Fatalf("DeleteLog = %v, %v", ok, err)
	}
	for _, table := range []string{"logs", "reports", "player_stats", "weapon_stats"} {
		_, rows, err := db.QueryRaw("SELECT COUNT(*) FROM " + table)
		if err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if rows[0][0] != "0" {
			t.Errorf("%s has %s rows after delete", table, rows[0][0])
		}
	}

	again, _ := db.DeleteLog("h")
	if again {
		t.Error("second delete reported the log as existing")
	}
}

func TestOverviewAndPlayers(t *testing.T) {
	db := openMemDB(t)
	db.InsertBundle("h1", "a.log", makeBundle("de_nuke", 13, 7), parsedAt)
	db.InsertBundle("h2", "b.log", makeBundle("de_nuke", 4, 13), parsedAt.Add(time.Hour))
	db.InsertBundle("h3", "c.log", makeBundle("de_mirage", 13, 11), parsedAt.Add(2*time.Hour))

	ov, err := db.GetOverview()
	if err != nil {
		t.Fatalf("GetOverview: %v", err)
	}
	if ov.TotalLogs != 3 || ov.UniqueMaps != 2 || ov.UniquePlayers != 2 || ov.TotalKills != 6 {
		t.Errorf("overview = %+v", ov)
	}

	maps, err := db.GetMapStats()
	if err != nil {
		t.Fatalf("GetMapStats: %v", err)
	}
	if len(maps) != 2 || maps[0].MapName != "de_nuke" || maps[0].CTWins != 1 || maps[0].TWins != 1 {
		t.Errorf("maps = %+v", maps)
	}

	top, err := db.GetTopPlayers(10)
	if err != nil {
		t.Fatalf("GetTopPlayers: %v", err)
	}
	if len(top) != 2 || top[0].Name != "A" || top[0].Kills != 6 || top[0].Damage != 285 {
		t.Errorf("top = %+v", top)
	}
	if hs := top[0].HSPercent(); hs != 50 {
		t.Errorf("A hs%% = %v, want 50", hs)
	}

	hist, err := db.GetPlayerHistory("A")
	if err != nil {
		t.Fatalf("GetPlayerHistory: %v", err)
	}
	if len(hist) != 3 || hist[0].LogHash != "h3" {
		t.Errorf("history = %+v", hist)
	}
}

func TestEmptyOverview(t *testing.T) {
	db := openMemDB(t)
	ov, err := db.GetOverview()
	if err != nil {
		t.Fatalf("GetOverview: %v", err)
	}
	if ov.TotalLogs != 0 || ov.FirstParsed != "" {
		t.Errorf("overview = %+v", ov)
	}
}

func TestInsertRejectsMalformedScore(t *testing.T) {
	db := openMemDB(t)
	b := makeBundle("de_nuke", 16, 14)
	b.Summary.FinalScore = "16-14"

	if err := db.InsertBundle("h", "n.log", b, parsedAt); err == nil {
		t.Fatal("expected error for malformed final score")
	}
	if exists, _ := db.LogExists("h"); exists {
		t.Error("log stored despite malformed score")
	}

	b.Summary.FinalScore = "16:14"
	if err := db.InsertBundle("h", "n.log", b, parsedAt); err != nil {
		t.Fatalf("InsertBundle: %v", err)
	}
	s, _ := db.GetLogByPrefix("h")
	if s == nil || s.CTScore != 16 || s.TScore != 14 {
		t.Errorf("stored scores = %+v", s)
	}
}
