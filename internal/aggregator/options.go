package aggregator

import (
	"fmt"
	"strings"
)

// DefaultLiveMarker is the substring that marks the match as live.
const DefaultLiveMarker = "[FACEIT^] LIVE!"

// Gate decides whether a fold sees events given the lifecycle state so far.
type Gate int

const (
	// GateDefault selects the fold's own default gate.
	GateDefault Gate = iota
	// GateAlways passes every event.
	GateAlways
	// GateLive passes events once the live marker has been seen.
	GateLive
	// GateMatchStart passes events once the first Match_Start has been seen.
	GateMatchStart
)

func (g Gate) String() string {
	switch g {
	case GateAlways:
		return "always"
	case GateLive:
		return "live"
	case GateMatchStart:
		return "match_start"
	default:
		return "default"
	}
}

// Open reports whether the gate passes events in state s.
func (g Gate) Open(s *State) bool {
	switch g {
	case GateLive:
		return s.Live
	case GateMatchStart:
		return s.MatchStarted
	default:
		return true
	}
}

// ParseGate parses "always", "live" or "match_start". The empty string
// yields GateDefault.
func ParseGate(s string) (Gate, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return GateDefault, nil
	case "always":
		return GateAlways, nil
	case "live":
		return GateLive, nil
	case "match_start", "match-start":
		return GateMatchStart, nil
	default:
		return GateDefault, fmt.Errorf("unknown gate %q (want always|live|match_start)", s)
	}
}

// TieBreak picks the match summary winner when the final score is level.
type TieBreak int

const (
	// TieBreakT names the T side team on a draw. This matches the legacy
	// report output.
	TieBreakT TieBreak = iota
	// TieBreakCT names the CT side team on a draw.
	TieBreakCT
	// TieBreakNone reports an empty winner on a draw.
	TieBreakNone
)

func (t TieBreak) String() string {
	switch t {
	case TieBreakCT:
		return "ct"
	case TieBreakNone:
		return "none"
	default:
		return "t"
	}
}

// ParseTieBreak parses "t", "ct" or "none"; empty yields TieBreakT.
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "t":
		return TieBreakT, nil
	case "ct":
		return TieBreakCT, nil
	case "none":
		return TieBreakNone, nil
	default:
		return TieBreakT, fmt.Errorf("unknown tie-break %q (want t|ct|none)", s)
	}
}

// Options configures one aggregation run. The zero value gives the default
// gates, the legacy tie-break and the FACEIT live marker.
type Options struct {
	KillGate     Gate
	TimingGate   Gate
	SummaryGate  Gate
	WeaponGate   Gate
	AccuracyGate Gate
	TieBreak     TieBreak
	LiveMarker   string
}

// DefaultOptions returns Options with every default spelled out.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults resolves GateDefault and an empty live marker.
func (o Options) WithDefaults() Options {
	def := func(g, d Gate) Gate {
		if g == GateDefault {
			return d
		}
		return g
	}
	o.KillGate = def(o.KillGate, GateLive)
	o.TimingGate = def(o.TimingGate, GateMatchStart)
	o.SummaryGate = def(o.SummaryGate, GateLive)
	o.WeaponGate = def(o.WeaponGate, GateMatchStart)
	o.AccuracyGate = def(o.AccuracyGate, GateMatchStart)
	if o.LiveMarker == "" {
		o.LiveMarker = DefaultLiveMarker
	}
	return o
}
