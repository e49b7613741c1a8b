package aggregator

import (
	"github.com/pable/cs-logstats/internal/model"
)

type accuracyTally struct {
	hitTally
	kills         int
	headshotKills int
}

// accuracyFold aggregates hits and kills per player and weapon. A kill and a
// damage hit by the same player with the same weapon land in one bucket.
type accuracyFold struct {
	g Gate

	players model.OrderedMap[*model.OrderedMap[*accuracyTally]]
	events  []model.AccuracyRecord
}

func (f *accuracyFold) gate() Gate { return f.g }

func (f *accuracyFold) bucket(player, weapon string) *accuracyTally {
	weapons, ok := f.players.Get(player)
	if !ok {
		weapons = &model.OrderedMap[*accuracyTally]{}
		f.players.Set(player, weapons)
	}
	t, ok := weapons.Get(weapon)
	if !ok {
		t = &accuracyTally{}
		weapons.Set(weapon, t)
	}
	return t
}

func (f *accuracyFold) apply(ev model.Event, _ *State) {
	switch ev.Kind {
	case model.EventDamage:
		d := ev.Damage
		f.bucket(d.Attacker, d.Weapon).add(d.Damage, d.Hitgroup)
		dmg := d.Damage
		f.events = append(f.events, model.AccuracyRecord{
			Timestamp: clock(ev.Time),
			Type:      "damage",
			Player:    d.Attacker,
			Weapon:    d.Weapon,
			Damage:    &dmg,
			Hitgroup:  d.Hitgroup,
		})
	case model.EventKill:
		k := ev.Kill
		t := f.bucket(k.Killer.Name, k.Weapon)
		t.kills++
		if k.Headshot {
			t.headshotKills++
		}
		hs := k.Headshot
		f.events = append(f.events, model.AccuracyRecord{
			Timestamp: clock(ev.Time),
			Type:      "kill",
			Player:    k.Killer.Name,
			Weapon:    k.Weapon,
			Headshot:  &hs,
		})
	}
}

func (f *accuracyFold) report() model.AccuracyReport {
	var players model.OrderedMap[model.OrderedMap[model.AccuracyStats]]
	for _, name := range f.players.Keys() {
		weapons, _ := f.players.Get(name)
		var out model.OrderedMap[model.AccuracyStats]
		for _, weapon := range weapons.Keys() {
			t, _ := weapons.Get(weapon)
			out.Set(weapon, t.stats())
		}
		players.Set(name, out)
	}

	events := make([]model.AccuracyRecord, len(f.events))
	copy(events, f.events)
	return model.AccuracyReport{PlayerStats: players, Events: events}
}

func (t *accuracyTally) stats() model.AccuracyStats {
	dist := t.distribution()
	var pct model.OrderedMap[float64]
	for _, g := range dist.Keys() {
		n, _ := dist.Get(g)
		pct.Set(g, percent(n, t.hits))
	}
	return model.AccuracyStats{
		TotalHits:               t.hits,
		TotalKills:              t.kills,
		HeadshotKills:           t.headshotKills,
		HeadshotPercentage:      percent(t.headshotKills, t.kills),
		TotalDamage:             t.damage,
		AverageDamage:           mean(t.damage, t.hits),
		HitgroupDistribution:    dist,
		HitgroupPercentages:     pct,
		AverageDamageByHitgroup: t.averageByGroup(),
	}
}
