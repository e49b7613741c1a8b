package parser

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/pable/cs-logstats/internal/aggregator"
	"github.com/pable/cs-logstats/internal/logfile"
	"github.com/pable/cs-logstats/internal/model"
)

// Stats counts what a single pass over a log saw. It feeds logging and
// metrics and never reaches the reports.
type Stats struct {
	Lines       int
	Timestamped int
	Skipped     int // lines without a timestamp or with unrecognized content
	Events      map[model.EventKind]int
}

// Parsed is one parsed log file.
type Parsed struct {
	Hash   string
	Source string
	Bundle *model.Bundle
	Stats  Stats
}

// HashLog returns the hex sha256 of the log content, used as the idempotency key.
func HashLog(content string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
}

// ParseLog runs one pass over content: every line is tokenized, classified
// and fed to a fresh engine, then the five reports are assembled. It never
// fails; malformed lines are skipped and counted.
func ParseLog(content string, opts aggregator.Options) (*model.Bundle, Stats) {
	eng := aggregator.New(opts)
	marker := eng.Options().LiveMarker
	st := Stats{Events: make(map[model.EventKind]int)}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return eng.Finalize(), st
	}
	for _, raw := range strings.Split(trimmed, "\n") {
		st.Lines++
		line, ok := Tokenize(raw)
		if !ok {
			st.Skipped++
			continue
		}
		st.Timestamped++
		eng.Tick(line.Time)

		ev, ok := Classify(line, marker)
		if !ok {
			st.Skipped++
			continue
		}
		st.Events[ev.Kind]++
		eng.Feed(ev)
	}
	return eng.Finalize(), st
}

// ParseFile reads and parses the log at path. Compressed logs are
// decompressed first; the hash covers the decompressed text.
func ParseFile(path string, opts aggregator.Options) (*Parsed, error) {
	content, err := logfile.Read(path)
	if err != nil {
		return nil, err
	}
	return ParseContent(path, content, opts), nil
}

// ParseContent parses already decoded log text read from source.
func ParseContent(source, content string, opts aggregator.Options) *Parsed {
	bundle, st := ParseLog(content, opts)
	return &Parsed{
		Hash:   HashLog(content),
		Source: source,
		Bundle: bundle,
		Stats:  st,
	}
}
