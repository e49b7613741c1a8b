package aggregator

import (
	"fmt"

	"github.com/pable/cs-logstats/internal/model"
)

// summaryFold records the round-by-round winner history. Scores, team names
// and the map come from the lifecycle.
type summaryFold struct {
	g Gate

	open    bool
	pending model.Team
	history []model.RoundHistoryEntry
}

func (f *summaryFold) gate() Gate { return f.g }

func (f *summaryFold) apply(ev model.Event, s *State) {
	switch ev.Kind {
	case model.EventRoundStart:
		f.open = true
		f.pending = model.TeamUnknown
	case model.EventRoundWinNotice:
		f.pending = ev.Side
	case model.EventRoundEnd, model.EventGameOver:
		// A round end with no open round is dropped.
		if !f.open {
			return
		}
		if f.pending != model.TeamUnknown {
			f.history = append(f.history, model.RoundHistoryEntry{
				RoundNumber:     s.RoundsPlayed,
				WinnerSide:      f.pending.String(),
				WinnerTeam:      s.TeamName(f.pending),
				ScoreAfterRound: fmt.Sprintf("%d:%d", s.CTScore, s.TScore),
			})
		}
		f.open = false
		f.pending = model.TeamUnknown
	}
}

func (f *summaryFold) report(s *State, tb TieBreak) model.MatchSummaryReport {
	history := make([]model.RoundHistoryEntry, len(f.history))
	copy(history, f.history)

	return model.MatchSummaryReport{
		Map:          s.Map,
		FinalScore:   fmt.Sprintf("%d:%d", s.CTScore, s.TScore),
		Winner:       winner(s, tb),
		Teams:        model.Teams{CT: s.CTName, T: s.TName},
		TotalRounds:  s.RoundsPlayed,
		RoundHistory: history,
	}
}

func winner(s *State, tb TieBreak) string {
	switch {
	case s.CTScore > s.TScore:
		return s.CTName
	case s.TScore > s.CTScore:
		return s.TName
	}
	switch tb {
	case TieBreakCT:
		return s.CTName
	case TieBreakNone:
		return ""
	default:
		return s.TName
	}
}
