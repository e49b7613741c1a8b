package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/pable/cs-logstats/internal/model"
)

// Server log lines start with a wall-clock stamp, optionally behind the srcds
// "L " marker:
//
//	L 10/12/2021 - 20:11:15: World triggered "Round_Start"
//	10/12/21 - 20:11:15: World triggered "Round_Start"
var reTimestamp = regexp.MustCompile(`^(?:L )?(\d{2}/\d{2}/(?:\d{4}|\d{2}) - \d{2}:\d{2}:\d{2})`)

const (
	layoutLongYear  = "01/02/2006 - 15:04:05"
	layoutShortYear = "01/02/06 - 15:04:05"
)

// Tokenize splits a raw log line into its timestamp and content. It reports
// false for lines without a valid leading timestamp.
func Tokenize(raw string) (model.LogLine, bool) {
	raw = strings.TrimRight(raw, "\r")
	m := reTimestamp.FindStringSubmatchIndex(raw)
	if m == nil {
		return model.LogLine{}, false
	}
	stamp := raw[m[2]:m[3]]

	layout := layoutLongYear
	if len(stamp) == len(layoutShortYear) {
		layout = layoutShortYear
	}
	ts, err := time.Parse(layout, stamp)
	if err != nil {
		// e.g. 13/45/2021 - 25:00:00
		return model.LogLine{}, false
	}

	return model.LogLine{
		Time:    ts,
		Content: strings.Trim(raw[m[1]:], ": "),
	}, true
}
