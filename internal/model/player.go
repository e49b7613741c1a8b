package model

import "strings"

// PlayerLogStats is one player's row in one stored log.
type PlayerLogStats struct {
	LogHash     string
	MapName     string
	ParsedAt    string
	Kills       int
	Deaths      int
	Headshots   int
	TeamKills   int
	HeadshotPct float64
	Damage      int
	Hits        int
}

// PlayerAggregate sums a player's rows across several stored logs.
// MapName is set only for per-map aggregates.
type PlayerAggregate struct {
	Name      string
	MapName   string
	Logs      int
	Kills     int
	Deaths    int
	Headshots int
	TeamKills int
	Damage    int
	Hits      int
}

// Add folds one log row into the aggregate.
func (a *PlayerAggregate) Add(s PlayerLogStats) {
	a.Logs++
	a.Kills += s.Kills
	a.Deaths += s.Deaths
	a.Headshots += s.Headshots
	a.TeamKills += s.TeamKills
	a.Damage += s.Damage
	a.Hits += s.Hits
}

// KDRatio returns kills per death, or kills when the player never died.
func (a PlayerAggregate) KDRatio() float64 {
	if a.Deaths == 0 {
		return float64(a.Kills)
	}
	return float64(a.Kills) / float64(a.Deaths)
}

// HSPercent returns the share of kills that were headshots, 0-100.
func (a PlayerAggregate) HSPercent() float64 {
	if a.Kills == 0 {
		return 0
	}
	return 100 * float64(a.Headshots) / float64(a.Kills)
}

// DamagePerHit returns average health damage per registered hit.
func (a PlayerAggregate) DamagePerHit() float64 {
	if a.Hits == 0 {
		return 0
	}
	return float64(a.Damage) / float64(a.Hits)
}

// ShortMap drops the "de_" prefix used by defusal maps.
func ShortMap(name string) string {
	return strings.TrimPrefix(strings.ToLower(name), "de_")
}
