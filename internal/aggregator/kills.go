package aggregator

import (
	"time"

	"github.com/pable/cs-logstats/internal/model"
)

// killFold tallies kills per player and snapshots every player at each
// round end.
type killFold struct {
	g Gate

	rounds     int       // RoundStarts seen
	roundStart time.Time // most recent RoundStart, never cleared

	players   model.OrderedMap[*model.PlayerStats]
	kills     []model.KillRecord
	snapshots []model.RoundSnapshot
}

func (f *killFold) gate() Gate { return f.g }

func (f *killFold) apply(ev model.Event, _ *State) {
	switch ev.Kind {
	case model.EventRoundStart:
		f.rounds++
		f.roundStart = ev.Time
	case model.EventRoundEnd:
		f.snapshots = append(f.snapshots, model.RoundSnapshot{
			RoundNumber: f.rounds,
			StartTime:   clockPtr(f.roundStart),
			EndTime:     clock(ev.Time),
			PlayerStats: f.snapshot(),
		})
	case model.EventKill:
		f.kill(ev.Time, ev.Kill)
	}
}

func (f *killFold) player(name string) *model.PlayerStats {
	if p, ok := f.players.Get(name); ok {
		return p
	}
	p := &model.PlayerStats{}
	f.players.Set(name, p)
	return p
}

func (f *killFold) kill(t time.Time, k *model.Kill) {
	killer := f.player(k.Killer.Name)
	victim := f.player(k.Victim.Name)

	killer.TotalKills++
	n, _ := killer.Weapons.Get(k.Weapon)
	killer.Weapons.Set(k.Weapon, n+1)
	if k.Headshot {
		killer.Headshots++
	}
	// Empty team tokens compare equal, so a kill between two unassigned
	// players counts as a team kill.
	if k.Killer.Team == k.Victim.Team {
		killer.TeamKills++
	}
	victim.Deaths++

	f.kills = append(f.kills, model.KillRecord{
		Round:     f.rounds,
		Timestamp: clock(t),
		Killer:    model.KillParty{Name: k.Killer.Name, Team: k.Killer.Team, Position: k.Killer.Position},
		Victim:    model.KillParty{Name: k.Victim.Name, Team: k.Victim.Team, Position: k.Victim.Position},
		Weapon:    k.Weapon,
		Headshot:  k.Headshot,
	})
}

// snapshot deep-copies every player's stats with the headshot percentage as
// of now. Later kills never reach an earlier snapshot.
func (f *killFold) snapshot() model.OrderedMap[model.PlayerStats] {
	var out model.OrderedMap[model.PlayerStats]
	for _, name := range f.players.Keys() {
		p, _ := f.players.Get(name)
		s := p.Clone()
		s.HeadshotPercentage = percent(s.Headshots, s.TotalKills)
		out.Set(name, s)
	}
	return out
}

func (f *killFold) report(s *State) model.KillReport {
	kills := make([]model.KillRecord, len(f.kills))
	copy(kills, f.kills)
	rounds := make([]model.RoundSnapshot, len(f.snapshots))
	copy(rounds, f.snapshots)

	return model.KillReport{
		LiveStartTime:  clockPtr(s.LiveStart),
		MatchStartTime: clockPtr(s.MatchStart),
		TotalKills:     len(f.kills),
		TotalRounds:    f.rounds,
		PlayerStats:    f.snapshot(),
		Kills:          kills,
		RoundStats:     rounds,
	}
}
