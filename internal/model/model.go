package model

import "time"

// Team represents which side a player or team line refers to.
type Team int

const (
	TeamUnknown Team = 0
	TeamT       Team = 2
	TeamCT      Team = 3
)

func (t Team) String() string {
	switch t {
	case TeamT:
		return "T"
	case TeamCT:
		return "CT"
	default:
		return "?"
	}
}

// TeamFromLog maps the side token used in server log lines ("CT", "TERRORIST", "T").
func TeamFromLog(s string) Team {
	switch s {
	case "CT":
		return TeamCT
	case "TERRORIST", "T":
		return TeamT
	default:
		return TeamUnknown
	}
}

// LogLine is one timestamped line of the server log with the prefix removed.
type LogLine struct {
	Time    time.Time
	Content string
}

// ---- Events emitted by the classifier ----

// EventKind identifies the variant carried by an Event.
type EventKind int

const (
	EventUnknown        EventKind = iota
	EventMatchStart               // World triggered "Match_Start" [on "<map>"]
	EventLiveTriggered            // live-broadcast marker, e.g. [FACEIT^] LIVE!
	EventRoundStart               // World triggered "Round_Start"
	EventRoundEnd                 // World triggered "Round_End"
	EventGameOver                 // World triggered "Game_Over"
	EventRoundWinNotice           // Team "CT" triggered "SFUI_Notice_CTs_Win" ...
	EventTeamScore                // Team "CT" scored "7" with "5" players
	EventTeamName                 // MatchStatus: Team playing "CT": <name>
	EventMatchStatus              // MatchStatus: Score: 7:5 on map "de_nuke" RoundsPlayed: 12
	EventKill                     // "<a>" [x y z] killed "<b>" [x y z] with "<weapon>"
	EventDamage                   // "<a>" [..] attacked "<b>" [..] with "<weapon>" (damage "n") ... (hitgroup "g")
)

var eventKindNames = [...]string{
	EventUnknown:        "unknown",
	EventMatchStart:     "match_start",
	EventLiveTriggered:  "live",
	EventRoundStart:     "round_start",
	EventRoundEnd:       "round_end",
	EventGameOver:       "game_over",
	EventRoundWinNotice: "round_win_notice",
	EventTeamScore:      "team_score",
	EventTeamName:       "team_name",
	EventMatchStatus:    "match_status",
	EventKill:           "kill",
	EventDamage:         "damage",
}

func (k EventKind) String() string {
	if int(k) < 0 || int(k) >= len(eventKindNames) {
		return "unknown"
	}
	return eventKindNames[k]
}

// EventKinds lists every classifiable kind in priority order.
func EventKinds() []EventKind {
	return []EventKind{
		EventLiveTriggered, EventMatchStart, EventRoundStart, EventRoundEnd, EventGameOver,
		EventRoundWinNotice, EventTeamScore, EventTeamName, EventMatchStatus,
		EventKill, EventDamage,
	}
}

// Position is a world-space position in Hammer units, as logged.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Participant identifies one side of a kill line.
type Participant struct {
	Name     string
	UserID   int
	SteamID  string // raw token, e.g. STEAM_1:0:12345 or BOT
	Team     string // raw team token, may be empty
	Position Position
}

// Kill is the payload of an EventKill.
type Kill struct {
	Killer   Participant
	Victim   Participant
	Weapon   string
	Headshot bool
}

// Damage is the payload of an EventDamage.
type Damage struct {
	Attacker string
	Victim   string
	Weapon   string
	Damage   int
	Hitgroup string
}

// Event is a tagged union over the classified log line variants. Only the
// fields relevant to Kind are populated.
type Event struct {
	Kind EventKind
	Time time.Time

	Map  string // MatchStart (optional), MatchStatus
	Side Team   // RoundWinNotice, TeamScore, TeamName

	Score   int    // TeamScore
	Players int    // TeamScore
	Name    string // TeamName

	CTScore      int // MatchStatus
	TScore       int // MatchStatus
	RoundsPlayed int // MatchStatus, raw (may be negative)

	Kill   *Kill
	Damage *Damage
}
