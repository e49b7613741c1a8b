package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/cs-logstats/internal/model"
	"github.com/pable/cs-logstats/internal/report"
)

const analyzeSystemPrompt = `You are a Counter-Strike performance analyst. You are given structured data
derived from game-server logs and a question from the player.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable — focus on what the player can actually improve.
- Avoid generic advice unless it directly explains a pattern in the data.

Metrics glossary:
- K/D: Kills ÷ deaths. 1.0 is break-even.
- HS%: Share of kills that were headshots.
- Team kills: kills of a teammate; counted separately, never as kills.
- Hits / damage: per-weapon hit count and health damage dealt, from damage lines.
- Hitgroup distribution: where hits landed (head, chest, stomach, arms, legs).
- Round durations are in seconds, from Round_Start to Round_End.
- The score is "CT:T" at the end of the log.`

var (
	analyzeModel  string
	analyzeAPIKey string

	analyzePlayerMap  string
	analyzePlayerLast int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "AI-powered grounded analysis (requires ANTHROPIC_API_KEY)",
}

var analyzePlayerCmd = &cobra.Command{
	Use:   "player <name> <question>",
	Short: "Analyze a player's stats across stored logs with AI",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyzePlayer,
}

var analyzeMatchCmd = &cobra.Command{
	Use:   "match <hash-prefix> <question>",
	Short: "Analyze a single stored log with AI",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyzeMatch,
}

func init() {
	analyzeCmd.PersistentFlags().StringVar(&analyzeModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	analyzeCmd.PersistentFlags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")

	analyzePlayerCmd.Flags().StringVar(&analyzePlayerMap, "map", "", "filter to a specific map (e.g. nuke, de_nuke)")
	analyzePlayerCmd.Flags().IntVar(&analyzePlayerLast, "last", 0, "only use the N most recent logs")

	analyzeCmd.AddCommand(analyzePlayerCmd)
	analyzeCmd.AddCommand(analyzeMatchCmd)
}

func runAnalyzePlayer(cmd *cobra.Command, args []string) error {
	name, question := args[0], args[1]

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	hist, err := db.GetPlayerHistory(name)
	if err != nil {
		return fmt.Errorf("query history: %w", err)
	}
	hist = filterHistory(hist, analyzePlayerMap, analyzePlayerLast)
	if len(hist) == 0 {
		return fmt.Errorf("no data found for player %q (after filters)", name)
	}

	filters := map[string]any{
		"map":  analyzePlayerMap,
		"last": analyzePlayerLast,
	}
	contextJSON, err := buildPlayerContext(name, hist, filters)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}

	return callAnthropic(cmd.Context(), analyzeAPIKey, analyzeModel, contextJSON, question)
}

func runAnalyzeMatch(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	log, err := db.GetLogByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("find log: %w", err)
	}
	if log == nil {
		return fmt.Errorf("no log found with hash prefix %q", args[0])
	}
	question := args[1]

	bundle, err := db.GetBundle(log.Hash)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}
	if bundle == nil {
		return fmt.Errorf("log %s has no stored reports", log.Hash[:12])
	}

	contextJSON, err := buildMatchContext(*log, bundle)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}

	return callAnthropic(cmd.Context(), analyzeAPIKey, analyzeModel, contextJSON, question)
}

// filterHistory keeps rows on mapName (with or without the "de_" prefix)
// and then the last most recent ones. Rows arrive most recent first.
func filterHistory(hist []model.PlayerLogStats, mapName string, last int) []model.PlayerLogStats {
	var out []model.PlayerLogStats
	want := model.ShortMap(mapName)
	for _, h := range hist {
		if want != "" && model.ShortMap(h.MapName) != want {
			continue
		}
		out = append(out, h)
	}
	if last > 0 && len(out) > last {
		out = out[:last]
	}
	return out
}

// buildPlayerContext serialises a player's per-log rows and their totals into compact JSON.
func buildPlayerContext(name string, hist []model.PlayerLogStats, filters map[string]any) (string, error) {
	type logEntry struct {
		Log     string  `json:"log"`
		Map     string  `json:"map"`
		Kills   int     `json:"kills"`
		Deaths  int     `json:"deaths"`
		HSPct   float64 `json:"hs_pct"`
		TK      int     `json:"team_kills"`
		Damage  int     `json:"damage"`
		Hits    int     `json:"hits"`
		DmgPerH float64 `json:"damage_per_hit"`
	}

	totals := buildAggregate(name, hist)
	logs := make([]logEntry, 0, len(hist))
	for _, h := range hist {
		logs = append(logs, logEntry{
			Log:     h.LogHash[:12],
			Map:     h.MapName,
			Kills:   h.Kills,
			Deaths:  h.Deaths,
			HSPct:   round2(h.HeadshotPct),
			TK:      h.TeamKills,
			Damage:  h.Damage,
			Hits:    h.Hits,
			DmgPerH: round2(ratio(h.Damage, h.Hits)),
		})
	}

	doc := map[string]any{
		"subject":       "player",
		"player":        name,
		"logs_analyzed": totals.Logs,
		"filters":       filters,
		"overview": map[string]any{
			"kd":             round2(totals.KDRatio()),
			"hs_pct":         round2(totals.HSPercent()),
			"kills":          totals.Kills,
			"deaths":         totals.Deaths,
			"team_kills":     totals.TeamKills,
			"damage":         totals.Damage,
			"hits":           totals.Hits,
			"damage_per_hit": round2(totals.DamagePerHit()),
		},
		"logs": logs,
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// buildMatchContext serialises a single stored log into compact JSON.
func buildMatchContext(log model.LogSummary, b *model.Bundle) (string, error) {
	type playerEntry struct {
		Name      string         `json:"name"`
		Kills     int            `json:"kills"`
		Deaths    int            `json:"deaths"`
		KD        float64        `json:"kd"`
		HSPct     float64        `json:"hs_pct"`
		TeamKills int            `json:"team_kills"`
		Weapons   map[string]int `json:"kills_by_weapon"`
		Damage    int            `json:"damage"`
		Hits      int            `json:"hits"`
	}

	players := make([]playerEntry, 0, b.Kills.PlayerStats.Len())
	for _, name := range b.Kills.PlayerStats.Keys() {
		s, _ := b.Kills.PlayerStats.Get(name)
		p := playerEntry{
			Name:      name,
			Kills:     s.TotalKills,
			Deaths:    s.Deaths,
			KD:        round2(ratio(s.TotalKills, s.Deaths)),
			HSPct:     s.HeadshotPercentage,
			TeamKills: s.TeamKills,
			Weapons:   make(map[string]int, s.Weapons.Len()),
		}
		if s.Deaths == 0 {
			p.KD = float64(s.TotalKills)
		}
		for _, w := range s.Weapons.Keys() {
			p.Weapons[w], _ = s.Weapons.Get(w)
		}
		if weapons, ok := b.Accuracy.PlayerStats.Get(name); ok {
			for _, w := range weapons.Keys() {
				a, _ := weapons.Get(w)
				p.Damage += a.TotalDamage
				p.Hits += a.TotalHits
			}
		}
		players = append(players, p)
	}

	p50, p90 := report.RoundDurationQuantiles(b.Timing.Rounds)
	doc := map[string]any{
		"subject": "match",
		"map":     log.MapName,
		"score":   log.FinalScore(),
		"winner":  log.Winner,
		"teams":   b.Summary.Teams,
		"rounds": map[string]any{
			"played":       b.Summary.TotalRounds,
			"timed":        b.Timing.TotalRounds,
			"avg_seconds":  b.Timing.AverageRoundDuration,
			"p50_seconds":  round2(p50),
			"p90_seconds":  round2(p90),
			"match_length": b.Timing.TotalMatchDuration,
		},
		"round_history": b.Summary.RoundHistory,
		"players":       players,
		"weapons":       b.Weapons.WeaponStats,
	}

	out, err := json.Marshal(doc)
	return string(out), err
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// round2 rounds a float64 to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed — check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
