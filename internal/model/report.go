package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockLayout renders report timestamps; the source log has second precision.
const ClockLayout = "15:04:05"

// ---- Kill report ----

// PlayerStats is one player's kill/death tally.
type PlayerStats struct {
	TotalKills         int             `json:"total_kills" yaml:"total_kills"`
	Deaths             int             `json:"deaths" yaml:"deaths"`
	Headshots          int             `json:"headshots" yaml:"headshots"`
	Weapons            OrderedMap[int] `json:"weapons" yaml:"weapons"`
	HeadshotPercentage float64         `json:"headshot_percentage" yaml:"headshot_percentage"`
	TeamKills          int             `json:"team_kills" yaml:"team_kills"`
}

// Clone returns a deep copy; the weapons map is not shared.
func (s PlayerStats) Clone() PlayerStats {
	s.Weapons = s.Weapons.Clone()
	return s
}

// KillParty is the killer or victim side of a KillRecord.
type KillParty struct {
	Name     string   `json:"name" yaml:"name"`
	Team     string   `json:"team" yaml:"team"`
	Position Position `json:"position" yaml:"position"`
}

// KillRecord is one kill as listed in the kill report.
type KillRecord struct {
	Round     int       `json:"round" yaml:"round"`
	Timestamp string    `json:"timestamp" yaml:"timestamp"`
	Killer    KillParty `json:"killer" yaml:"killer"`
	Victim    KillParty `json:"victim" yaml:"victim"`
	Weapon    string    `json:"weapon" yaml:"weapon"`
	Headshot  bool      `json:"headshot" yaml:"headshot"`
}

// RoundSnapshot freezes every player's stats at a round end.
type RoundSnapshot struct {
	RoundNumber int                     `json:"round_number" yaml:"round_number"`
	StartTime   *string                 `json:"start_time" yaml:"start_time"`
	EndTime     string                  `json:"end_time" yaml:"end_time"`
	PlayerStats OrderedMap[PlayerStats] `json:"player_stats" yaml:"player_stats"`
}

type KillReport struct {
	LiveStartTime  *string                 `json:"live_start_time" yaml:"live_start_time"`
	MatchStartTime *string                 `json:"match_start_time" yaml:"match_start_time"`
	TotalKills     int                     `json:"total_kills" yaml:"total_kills"`
	TotalRounds    int                     `json:"total_rounds" yaml:"total_rounds"`
	PlayerStats    OrderedMap[PlayerStats] `json:"player_stats" yaml:"player_stats"`
	Kills          []KillRecord            `json:"kills" yaml:"kills"`
	RoundStats     []RoundSnapshot         `json:"round_stats" yaml:"round_stats"`
}

// ---- Timing report ----

type RoundTiming struct {
	RoundNumber     int    `json:"round_number" yaml:"round_number"`
	StartTime       string `json:"start_time" yaml:"start_time"`
	EndTime         string `json:"end_time" yaml:"end_time"`
	DurationSeconds int    `json:"duration_seconds" yaml:"duration_seconds"`
}

type TimingReport struct {
	TotalRounds          int           `json:"total_rounds" yaml:"total_rounds"`
	AverageRoundDuration float64       `json:"average_round_duration" yaml:"average_round_duration"`
	ShortestRound        int           `json:"shortest_round" yaml:"shortest_round"`
	LongestRound         int           `json:"longest_round" yaml:"longest_round"`
	MatchStartTime       *string       `json:"match_start_time" yaml:"match_start_time"`
	TotalMatchDuration   int           `json:"total_match_duration" yaml:"total_match_duration"`
	Rounds               []RoundTiming `json:"rounds" yaml:"rounds"`
}

// ---- Match summary report ----

type Teams struct {
	CT string `json:"CT" yaml:"CT"`
	T  string `json:"T" yaml:"T"`
}

type RoundHistoryEntry struct {
	RoundNumber     int    `json:"round_number" yaml:"round_number"`
	WinnerSide      string `json:"winner_side" yaml:"winner_side"`
	WinnerTeam      string `json:"winner_team" yaml:"winner_team"`
	ScoreAfterRound string `json:"score_after_round" yaml:"score_after_round"`
}

type MatchSummaryReport struct {
	Map          string              `json:"map" yaml:"map"`
	FinalScore   string              `json:"final_score" yaml:"final_score"`
	Winner       string              `json:"winner" yaml:"winner"`
	Teams        Teams               `json:"teams" yaml:"teams"`
	TotalRounds  int                 `json:"total_rounds" yaml:"total_rounds"`
	RoundHistory []RoundHistoryEntry `json:"round_history" yaml:"round_history"`
}

// Score splits FinalScore ("ct:t") into its two counts.
func (r MatchSummaryReport) Score() (ct, t int, err error) {
	a, b, ok := strings.Cut(r.FinalScore, ":")
	if !ok {
		return 0, 0, fmt.Errorf("final score %q: want ct:t", r.FinalScore)
	}
	if ct, err = strconv.Atoi(a); err != nil {
		return 0, 0, fmt.Errorf("final score %q: %w", r.FinalScore, err)
	}
	if t, err = strconv.Atoi(b); err != nil {
		return 0, 0, fmt.Errorf("final score %q: %w", r.FinalScore, err)
	}
	return ct, t, nil
}

// ---- Weapon damage report ----

type WeaponStats struct {
	TotalDamage             int                 `json:"total_damage" yaml:"total_damage"`
	TotalHits               int                 `json:"total_hits" yaml:"total_hits"`
	MaxDamage               int                 `json:"max_damage" yaml:"max_damage"`
	MinDamage               int                 `json:"min_damage" yaml:"min_damage"`
	AverageDamage           float64             `json:"average_damage" yaml:"average_damage"`
	HitgroupDistribution    OrderedMap[int]     `json:"hitgroup_distribution" yaml:"hitgroup_distribution"`
	AverageDamageByHitgroup OrderedMap[float64] `json:"average_damage_by_hitgroup" yaml:"average_damage_by_hitgroup"`
}

type DamageRecord struct {
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Attacker  string `json:"attacker" yaml:"attacker"`
	Victim    string `json:"victim" yaml:"victim"`
	Weapon    string `json:"weapon" yaml:"weapon"`
	Damage    int    `json:"damage" yaml:"damage"`
	Hitgroup  string `json:"hitgroup" yaml:"hitgroup"`
}

type WeaponDamageReport struct {
	WeaponStats  OrderedMap[WeaponStats] `json:"weapon_stats" yaml:"weapon_stats"`
	DamageEvents []DamageRecord          `json:"damage_events" yaml:"damage_events"`
}

// ---- Accuracy report ----

type AccuracyStats struct {
	TotalHits               int                 `json:"total_hits" yaml:"total_hits"`
	TotalKills              int                 `json:"total_kills" yaml:"total_kills"`
	HeadshotKills           int                 `json:"headshot_kills" yaml:"headshot_kills"`
	HeadshotPercentage      float64             `json:"headshot_percentage" yaml:"headshot_percentage"`
	TotalDamage             int                 `json:"total_damage" yaml:"total_damage"`
	AverageDamage           float64             `json:"average_damage" yaml:"average_damage"`
	HitgroupDistribution    OrderedMap[int]     `json:"hitgroup_distribution" yaml:"hitgroup_distribution"`
	HitgroupPercentages     OrderedMap[float64] `json:"hitgroup_percentages" yaml:"hitgroup_percentages"`
	AverageDamageByHitgroup OrderedMap[float64] `json:"average_damage_by_hitgroup" yaml:"average_damage_by_hitgroup"`
}

// AccuracyRecord is a damage or kill entry; Type is "damage" or "kill".
type AccuracyRecord struct {
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Type      string `json:"type" yaml:"type"`
	Player    string `json:"player" yaml:"player"`
	Weapon    string `json:"weapon" yaml:"weapon"`
	Damage    *int   `json:"damage,omitempty" yaml:"damage,omitempty"`
	Hitgroup  string `json:"hitgroup,omitempty" yaml:"hitgroup,omitempty"`
	Headshot  *bool  `json:"headshot,omitempty" yaml:"headshot,omitempty"`
}

type AccuracyReport struct {
	PlayerStats OrderedMap[OrderedMap[AccuracyStats]] `json:"player_stats" yaml:"player_stats"`
	Events      []AccuracyRecord                      `json:"events" yaml:"events"`
}

// ---- Bundle ----

// Report kinds, named after the files the reports are exported to.
const (
	ReportKills    = "kill_stats"
	ReportTiming   = "round_timings"
	ReportSummary  = "match_summary"
	ReportWeapons  = "weapon_damage_stats"
	ReportAccuracy = "player_accuracy_stats"
)

// ReportKinds lists the report kinds in export order.
func ReportKinds() []string {
	return []string{ReportKills, ReportTiming, ReportSummary, ReportWeapons, ReportAccuracy}
}

// Bundle holds the five finalized reports of one log.
type Bundle struct {
	Kills    KillReport         `json:"kill_stats" yaml:"kill_stats"`
	Timing   TimingReport       `json:"round_timings" yaml:"round_timings"`
	Summary  MatchSummaryReport `json:"match_summary" yaml:"match_summary"`
	Weapons  WeaponDamageReport `json:"weapon_damage_stats" yaml:"weapon_damage_stats"`
	Accuracy AccuracyReport     `json:"player_accuracy_stats" yaml:"player_accuracy_stats"`
}

// Report returns the report of the given kind, or nil for an unknown kind.
func (b *Bundle) Report(kind string) any {
	switch kind {
	case ReportKills:
		return b.Kills
	case ReportTiming:
		return b.Timing
	case ReportSummary:
		return b.Summary
	case ReportWeapons:
		return b.Weapons
	case ReportAccuracy:
		return b.Accuracy
	default:
		return nil
	}
}

// LogSummary is a lightweight record for list/show commands.
type LogSummary struct {
	Hash        string `json:"hash"`
	Source      string `json:"source"`
	MapName     string `json:"map"`
	CTScore     int    `json:"ct_score"`
	TScore      int    `json:"t_score"`
	Winner      string `json:"winner"`
	CTTeam      string `json:"ct_team"`
	TTeam       string `json:"t_team"`
	TotalRounds int    `json:"total_rounds"`
	TotalKills  int    `json:"total_kills"`
	ParsedAt    string `json:"parsed_at"`
}

// FinalScore renders the score as "ct:t".
func (s LogSummary) FinalScore() string {
	return fmt.Sprintf("%d:%d", s.CTScore, s.TScore)
}
