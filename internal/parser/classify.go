package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pable/cs-logstats/internal/aggregator"
	"github.com/pable/cs-logstats/internal/model"
)

// Pre-compiled grammar for the classified line kinds.
var (
	// World triggered "Match_Start" on "de_nuke"
	// World triggered "Round_End"
	reWorld = regexp.MustCompile(`World triggered "(Match_Start|Round_Start|Round_End|Game_Over)"(?: on "([^"]+)")?`)

	// Team "CT" scored "7" with "5" players
	reTeamScore = regexp.MustCompile(`^Team "(CT|TERRORIST)" scored "(\d+)" with "(\d+)" players`)

	// MatchStatus: Team playing "CT": Natus Vincere
	reTeamName = regexp.MustCompile(`^MatchStatus: Team playing "(CT|TERRORIST)": (.+)`)

	// MatchStatus: Score: 7:5 on map "de_nuke" RoundsPlayed: 12
	reMatchStatus = regexp.MustCompile(`^MatchStatus: Score: (\d+):(\d+) on map "([^"]+)" RoundsPlayed: (-?\d+)`)

	// "s1mple<12><STEAM_1:0:1234><CT>" [-120 455 -8] killed "ZywOo<9><STEAM_1:1:99><TERRORIST>" [10 2 3] with "awp" (headshot)
	reKill = regexp.MustCompile(`"(.+?)<(\d+)><([^>]*)><([^>]*)>" \[([^\]]*)\] killed "(.+?)<(\d+)><([^>]*)><([^>]*)>" \[([^\]]*)\] with "([^"]+)"(\s*\(headshot\))?`)

	// "s1mple<12><STEAM_1:0:1234><CT>" [..] attacked "ZywOo<9><..><TERRORIST>" [..] with "ak47" (damage "27") (damage_armor "3") (health "73") (armor "97") (hitgroup "chest")
	reDamage = regexp.MustCompile(`"(.+?)<(\d+)>.+?" \[.+?\] attacked "(.+?)<(\d+)>.+?" \[.+?\] with "([^"]+)" \(damage "([^"]*)"\).+?\(hitgroup "([^"]+)"\)`)
)

// SFUI round-end notices and the side each one awards the round to.
var winNotices = []struct {
	token string
	side  model.Team
}{
	{`"SFUI_Notice_CTs_Win"`, model.TeamCT},
	{`"SFUI_Notice_Bomb_Defused"`, model.TeamCT},
	{`"SFUI_Notice_Terrorists_Win"`, model.TeamT},
	{`"SFUI_Notice_Target_Bombed"`, model.TeamT},
}

// Classify matches a line's content against the event grammar in priority
// order: lifecycle triggers first, then team/score lines, then gameplay.
// It reports false for content that matches nothing or carries a malformed
// numeric field.
func Classify(line model.LogLine, liveMarker string) (model.Event, bool) {
	if liveMarker == "" {
		liveMarker = aggregator.DefaultLiveMarker
	}
	c := line.Content
	ev := model.Event{Time: line.Time}

	if strings.Contains(c, liveMarker) {
		ev.Kind = model.EventLiveTriggered
		return ev, true
	}

	if m := reWorld.FindStringSubmatch(c); m != nil {
		switch m[1] {
		case "Match_Start":
			ev.Kind = model.EventMatchStart
			ev.Map = m[2]
		case "Round_Start":
			ev.Kind = model.EventRoundStart
		case "Round_End":
			ev.Kind = model.EventRoundEnd
		case "Game_Over":
			ev.Kind = model.EventGameOver
		}
		return ev, true
	}

	for _, n := range winNotices {
		if strings.Contains(c, n.token) {
			ev.Kind = model.EventRoundWinNotice
			ev.Side = n.side
			return ev, true
		}
	}

	if m := reTeamScore.FindStringSubmatch(c); m != nil {
		score, err1 := strconv.Atoi(m[2])
		players, err2 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil {
			return model.Event{}, false
		}
		ev.Kind = model.EventTeamScore
		ev.Side = model.TeamFromLog(m[1])
		ev.Score = score
		ev.Players = players
		return ev, true
	}

	if m := reTeamName.FindStringSubmatch(c); m != nil {
		ev.Kind = model.EventTeamName
		ev.Side = model.TeamFromLog(m[1])
		ev.Name = m[2]
		return ev, true
	}

	if m := reMatchStatus.FindStringSubmatch(c); m != nil {
		ct, err1 := strconv.Atoi(m[1])
		t, err2 := strconv.Atoi(m[2])
		played, err3 := strconv.Atoi(m[4])
		if err1 != nil || err2 != nil || err3 != nil {
			return model.Event{}, false
		}
		ev.Kind = model.EventMatchStatus
		ev.CTScore = ct
		ev.TScore = t
		ev.Map = m[3]
		ev.RoundsPlayed = played
		return ev, true
	}

	if m := reKill.FindStringSubmatch(c); m != nil {
		k, ok := parseKill(m)
		if !ok {
			return model.Event{}, false
		}
		ev.Kind = model.EventKill
		ev.Kill = k
		return ev, true
	}

	if m := reDamage.FindStringSubmatch(c); m != nil {
		dmg, err := strconv.Atoi(m[6])
		if err != nil {
			return model.Event{}, false
		}
		ev.Kind = model.EventDamage
		ev.Damage = &model.Damage{
			Attacker: m[1],
			Victim:   m[3],
			Weapon:   m[5],
			Damage:   dmg,
			Hitgroup: m[7],
		}
		return ev, true
	}

	return model.Event{}, false
}

func parseKill(m []string) (*model.Kill, bool) {
	killer, ok := parseParticipant(m[1], m[2], m[3], m[4], m[5])
	if !ok {
		return nil, false
	}
	victim, ok := parseParticipant(m[6], m[7], m[8], m[9], m[10])
	if !ok {
		return nil, false
	}
	return &model.Kill{
		Killer:   killer,
		Victim:   victim,
		Weapon:   m[11],
		Headshot: m[12] != "",
	}, true
}

func parseParticipant(name, userID, steamID, team, pos string) (model.Participant, bool) {
	uid, err := strconv.Atoi(userID)
	if err != nil {
		return model.Participant{}, false
	}
	p, ok := parsePosition(pos)
	if !ok {
		return model.Participant{}, false
	}
	return model.Participant{
		Name:     name,
		UserID:   uid,
		SteamID:  steamID,
		Team:     team,
		Position: p,
	}, true
}

// parsePosition parses "x y z"; anything but exactly three integers fails.
func parsePosition(s string) (model.Position, bool) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return model.Position{}, false
	}
	var xyz [3]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return model.Position{}, false
		}
		xyz[i] = v
	}
	return model.Position{X: xyz[0], Y: xyz[1], Z: xyz[2]}, true
}
