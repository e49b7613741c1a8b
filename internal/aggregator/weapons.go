package aggregator

import (
	"time"

	"github.com/pable/cs-logstats/internal/model"
)

// hitTally accumulates damage hits by hitgroup. The per-hitgroup damage
// lists are kept so averages are computed once at finalization.
type hitTally struct {
	hits      int
	damage    int
	maxDamage int
	minDamage int
	byGroup   model.OrderedMap[[]int]
}

func (h *hitTally) add(damage int, hitgroup string) {
	if h.hits == 0 || damage < h.minDamage {
		h.minDamage = damage
	}
	h.maxDamage = max(h.maxDamage, damage)
	h.hits++
	h.damage += damage
	xs, _ := h.byGroup.Get(hitgroup)
	h.byGroup.Set(hitgroup, append(xs, damage))
}

// distribution returns hit counts per hitgroup in first-seen order.
func (h *hitTally) distribution() model.OrderedMap[int] {
	var out model.OrderedMap[int]
	for _, g := range h.byGroup.Keys() {
		xs, _ := h.byGroup.Get(g)
		out.Set(g, len(xs))
	}
	return out
}

func (h *hitTally) averageByGroup() model.OrderedMap[float64] {
	var out model.OrderedMap[float64]
	for _, g := range h.byGroup.Keys() {
		xs, _ := h.byGroup.Get(g)
		out.Set(g, mean(sumInts(xs), len(xs)))
	}
	return out
}

// weaponFold aggregates damage per weapon across all attackers.
type weaponFold struct {
	g Gate

	weapons model.OrderedMap[*hitTally]
	events  []model.DamageRecord
}

func (f *weaponFold) gate() Gate { return f.g }

func (f *weaponFold) apply(ev model.Event, _ *State) {
	if ev.Kind != model.EventDamage {
		return
	}
	f.damage(ev.Time, ev.Damage)
}

func (f *weaponFold) damage(t time.Time, d *model.Damage) {
	w, ok := f.weapons.Get(d.Weapon)
	if !ok {
		w = &hitTally{}
		f.weapons.Set(d.Weapon, w)
	}
	w.add(d.Damage, d.Hitgroup)

	f.events = append(f.events, model.DamageRecord{
		Timestamp: clock(t),
		Attacker:  d.Attacker,
		Victim:    d.Victim,
		Weapon:    d.Weapon,
		Damage:    d.Damage,
		Hitgroup:  d.Hitgroup,
	})
}

func (f *weaponFold) report() model.WeaponDamageReport {
	var stats model.OrderedMap[model.WeaponStats]
	for _, name := range f.weapons.Keys() {
		w, _ := f.weapons.Get(name)
		stats.Set(name, model.WeaponStats{
			TotalDamage:             w.damage,
			TotalHits:               w.hits,
			MaxDamage:               w.maxDamage,
			MinDamage:               w.minDamage,
			AverageDamage:           mean(w.damage, w.hits),
			HitgroupDistribution:    w.distribution(),
			AverageDamageByHitgroup: w.averageByGroup(),
		})
	}

	events := make([]model.DamageRecord, len(f.events))
	copy(events, f.events)
	return model.WeaponDamageReport{WeaponStats: stats, DamageEvents: events}
}
