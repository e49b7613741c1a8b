package aggregator

import (
	"math"
	"time"

	"github.com/pable/cs-logstats/internal/model"
)

// State is the ungated match lifecycle observed so far. Every fold reads it;
// only the engine writes it.
type State struct {
	Live         bool
	MatchStarted bool

	LiveStart  time.Time // first live marker
	MatchStart time.Time // most recent Match_Start
	LastSeen   time.Time // last timestamped line of any kind

	Map          string
	CTScore      int
	TScore       int
	CTName       string
	TName        string
	RoundsPlayed int // max(1, RoundsPlayed) of the latest MatchStatus, 0 before one
}

// TeamName returns the name of the team playing side.
func (s *State) TeamName(side model.Team) string {
	switch side {
	case model.TeamCT:
		return s.CTName
	case model.TeamT:
		return s.TName
	default:
		return ""
	}
}

// apply advances the lifecycle. It reports true for trigger events, which
// open gates and are never folded.
func (s *State) apply(ev model.Event) bool {
	switch ev.Kind {
	case model.EventLiveTriggered:
		if !s.Live {
			s.Live = true
			s.LiveStart = ev.Time
		}
		return true
	case model.EventMatchStart:
		s.MatchStarted = true
		s.MatchStart = ev.Time
		if ev.Map != "" {
			s.Map = ev.Map
		}
		return true
	case model.EventTeamScore:
		switch ev.Side {
		case model.TeamCT:
			s.CTScore = ev.Score
		case model.TeamT:
			s.TScore = ev.Score
		}
	case model.EventTeamName:
		switch ev.Side {
		case model.TeamCT:
			s.CTName = ev.Name
		case model.TeamT:
			s.TName = ev.Name
		}
	case model.EventMatchStatus:
		s.CTScore = ev.CTScore
		s.TScore = ev.TScore
		s.Map = ev.Map
		s.RoundsPlayed = max(1, ev.RoundsPlayed)
	}
	return false
}

// fold is one independent aggregation over the gated event stream.
type fold interface {
	gate() Gate
	apply(ev model.Event, s *State)
}

// Engine drives the lifecycle and the five folds over one log. An Engine is
// not safe for concurrent use; run one per log.
type Engine struct {
	opts  Options
	state State

	kills    *killFold
	timing   *timingFold
	summary  *summaryFold
	weapons  *weaponFold
	accuracy *accuracyFold
	folds    []fold
}

// New returns an Engine with opts resolved against the defaults.
func New(opts Options) *Engine {
	opts = opts.WithDefaults()
	e := &Engine{
		opts:     opts,
		kills:    &killFold{g: opts.KillGate},
		timing:   &timingFold{g: opts.TimingGate},
		summary:  &summaryFold{g: opts.SummaryGate},
		weapons:  &weaponFold{g: opts.WeaponGate},
		accuracy: &accuracyFold{g: opts.AccuracyGate},
	}
	e.folds = []fold{e.kills, e.timing, e.summary, e.weapons, e.accuracy}
	return e
}

// Options returns the resolved options.
func (e *Engine) Options() Options { return e.opts }

// State returns a copy of the lifecycle state.
func (e *Engine) State() State { return e.state }

// Tick records the timestamp of a line that may not classify to any event.
func (e *Engine) Tick(t time.Time) {
	e.state.LastSeen = t
}

// Feed folds one classified event.
func (e *Engine) Feed(ev model.Event) {
	e.Tick(ev.Time)
	if e.state.apply(ev) {
		return
	}
	for _, f := range e.folds {
		if f.gate().Open(&e.state) {
			f.apply(ev, &e.state)
		}
	}
}

// Finalize assembles the five reports. It does not reset the engine; calling
// it twice yields equal bundles.
func (e *Engine) Finalize() *model.Bundle {
	return &model.Bundle{
		Kills:    e.kills.report(&e.state),
		Timing:   e.timing.report(&e.state),
		Summary:  e.summary.report(&e.state, e.opts.TieBreak),
		Weapons:  e.weapons.report(),
		Accuracy: e.accuracy.report(),
	}
}

// ---- helpers ----

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// percent returns part/whole*100 rounded to two decimals, 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func mean(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return round2(float64(sum) / float64(n))
}

func clock(t time.Time) string {
	return t.Format(model.ClockLayout)
}

// clockPtr renders t, or nil when t is unset.
func clockPtr(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := clock(t)
	return &s
}

func sumInts(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
