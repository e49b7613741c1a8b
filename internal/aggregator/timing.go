package aggregator

import (
	"time"

	"github.com/pable/cs-logstats/internal/model"
)

type closedRound struct {
	start, end time.Time
}

// timingFold pairs each RoundStart with the next RoundEnd or GameOver.
type timingFold struct {
	g Gate

	open   bool
	start  time.Time
	rounds []closedRound
}

func (f *timingFold) gate() Gate { return f.g }

func (f *timingFold) apply(ev model.Event, _ *State) {
	switch ev.Kind {
	case model.EventRoundStart:
		// A second RoundStart without an end replaces the open one.
		f.open = true
		f.start = ev.Time
	case model.EventRoundEnd, model.EventGameOver:
		if !f.open {
			return
		}
		f.rounds = append(f.rounds, closedRound{start: f.start, end: ev.Time})
		f.open = false
	}
}

func duration(from, to time.Time) int {
	d := int(to.Sub(from) / time.Second)
	if d < 0 {
		// Clock went backwards across a midnight or server restart.
		return 0
	}
	return d
}

func (f *timingFold) report(s *State) model.TimingReport {
	rep := model.TimingReport{Rounds: []model.RoundTiming{}}
	if len(f.rounds) == 0 {
		return rep
	}

	total := 0
	shortest, longest := -1, 0
	for i, r := range f.rounds {
		d := duration(r.start, r.end)
		rep.Rounds = append(rep.Rounds, model.RoundTiming{
			RoundNumber:     i + 1,
			StartTime:       clock(r.start),
			EndTime:         clock(r.end),
			DurationSeconds: d,
		})
		total += d
		if shortest < 0 || d < shortest {
			shortest = d
		}
		longest = max(longest, d)
	}

	rep.TotalRounds = len(f.rounds)
	rep.AverageRoundDuration = mean(total, len(f.rounds))
	rep.ShortestRound = shortest
	rep.LongestRound = longest
	rep.MatchStartTime = clockPtr(s.MatchStart)
	if !s.MatchStart.IsZero() {
		rep.TotalMatchDuration = duration(s.MatchStart, s.LastSeen)
	}
	return rep
}
