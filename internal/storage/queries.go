package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pable/cs-logstats/internal/model"
)

// LogExists returns true if a log with the given hash is already stored.
func (db *DB) LogExists(hash string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM logs WHERE hash = ?", hash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LogCount returns the number of stored logs.
func (db *DB) LogCount() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM logs").Scan(&n)
	return n, err
}

// InsertBundle stores a parsed log and its five reports in one transaction.
// Re-inserting a hash replaces everything previously stored for it.
func (db *DB) InsertBundle(hash, source string, b *model.Bundle, parsedAt time.Time) error {
	ct, t, err := b.Summary.Score()
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO logs(hash, source, map_name, ct_score, t_score, winner, ct_team, t_team, total_rounds, total_kills, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			source = excluded.source, map_name = excluded.map_name,
			ct_score = excluded.ct_score, t_score = excluded.t_score, winner = excluded.winner,
			ct_team = excluded.ct_team, t_team = excluded.t_team,
			total_rounds = excluded.total_rounds, total_kills = excluded.total_kills,
			parsed_at = excluded.parsed_at`,
		hash, source, b.Summary.Map, ct, t, b.Summary.Winner,
		b.Summary.Teams.CT, b.Summary.Teams.T, b.Summary.TotalRounds, b.Kills.TotalKills,
		parsedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}

	for _, table := range []string{"reports", "player_stats", "weapon_stats"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE log_hash = ?", hash); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertReports(tx, hash, b); err != nil {
		return err
	}
	if err := insertPlayerStats(tx, hash, b); err != nil {
		return err
	}
	if err := insertWeaponStats(tx, hash, b); err != nil {
		return err
	}
	return tx.Commit()
}

func insertReports(tx *sql.Tx, hash string, b *model.Bundle) error {
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO reports(log_hash, kind, body) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, kind := range model.ReportKinds() {
		body, err := json.Marshal(b.Report(kind))
		if err != nil {
			return fmt.Errorf("encode %s: %w", kind, err)
		}
		if _, err := stmt.Exec(hash, kind, string(body)); err != nil {
			return fmt.Errorf("insert report %s: %w", kind, err)
		}
	}
	return nil
}

func insertPlayerStats(tx *sql.Tx, hash string, b *model.Bundle) error {
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_stats(log_hash, name, kills, deaths, headshots, team_kills, headshot_pct, damage, hits)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, name := range b.Kills.PlayerStats.Keys() {
		p, _ := b.Kills.PlayerStats.Get(name)
		damage, hits := 0, 0
		if weapons, ok := b.Accuracy.PlayerStats.Get(name); ok {
			for _, w := range weapons.Keys() {
				a, _ := weapons.Get(w)
				damage += a.TotalDamage
				hits += a.TotalHits
			}
		}
		_, err := stmt.Exec(hash, name, p.TotalKills, p.Deaths, p.Headshots, p.TeamKills, p.HeadshotPercentage, damage, hits)
		if err != nil {
			return fmt.Errorf("insert player_stats for %q: %w", name, err)
		}
	}
	return nil
}

func insertWeaponStats(tx *sql.Tx, hash string, b *model.Bundle) error {
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO weapon_stats(log_hash, weapon, total_damage, total_hits, max_damage, min_damage, average_damage)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, weapon := range b.Weapons.WeaponStats.Keys() {
		w, _ := b.Weapons.WeaponStats.Get(weapon)
		_, err := stmt.Exec(hash, weapon, w.TotalDamage, w.TotalHits, w.MaxDamage, w.MinDamage, w.AverageDamage)
		if err != nil {
			return fmt.Errorf("insert weapon_stats for %q: %w", weapon, err)
		}
	}
	return nil
}

const logColumns = `hash, source, map_name, ct_score, t_score, winner, ct_team, t_team, total_rounds, total_kills, parsed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanLog(row scanner) (model.LogSummary, error) {
	var s model.LogSummary
	err := row.Scan(&s.Hash, &s.Source, &s.MapName, &s.CTScore, &s.TScore, &s.Winner,
		&s.CTTeam, &s.TTeam, &s.TotalRounds, &s.TotalKills, &s.ParsedAt)
	return s, err
}

// ListLogs returns all stored logs, most recently parsed first.
func (db *DB) ListLogs() ([]model.LogSummary, error) {
	rows, err := db.conn.Query(`SELECT ` + logColumns + ` FROM logs ORDER BY parsed_at DESC, hash`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LogSummary
	for rows.Next() {
		s, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetLogByPrefix finds the first log whose hash starts with the given prefix.
// It returns (nil, nil) when nothing matches.
func (db *DB) GetLogByPrefix(prefix string) (*model.LogSummary, error) {
	row := db.conn.QueryRow(`SELECT `+logColumns+` FROM logs WHERE hash LIKE ? ORDER BY hash LIMIT 1`, prefix+"%")
	s, err := scanLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetReport returns the stored JSON body of one report, or (nil, nil) when
// the log or kind is unknown.
func (db *DB) GetReport(hash, kind string) (json.RawMessage, error) {
	var body string
	err := db.conn.QueryRow(`SELECT body FROM reports WHERE log_hash = ? AND kind = ?`, hash, kind).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// GetBundle decodes all stored reports of a log, or returns (nil, nil) when
// the log has none.
func (db *DB) GetBundle(hash string) (*model.Bundle, error) {
	rows, err := db.conn.Query(`SELECT kind, body FROM reports WHERE log_hash = ?`, hash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var b model.Bundle
	found := false
	for rows.Next() {
		var kind, body string
		if err := rows.Scan(&kind, &body); err != nil {
			return nil, err
		}
		var dst any
		switch kind {
		case model.ReportKills:
			dst = &b.Kills
		case model.ReportTiming:
			dst = &b.Timing
		case model.ReportSummary:
			dst = &b.Summary
		case model.ReportWeapons:
			dst = &b.Weapons
		case model.ReportAccuracy:
			dst = &b.Accuracy
		default:
			continue
		}
		if err := json.Unmarshal([]byte(body), dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &b, nil
}

// DeleteLog removes a log and everything stored for it. It reports whether
// the log existed.
func (db *DB) DeleteLog(hash string) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	for _, table := range []string{"reports", "player_stats", "weapon_stats"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE log_hash = ?", hash); err != nil {
			return false, fmt.Errorf("delete %s: %w", table, err)
		}
	}
	res, err := tx.Exec(`DELETE FROM logs WHERE hash = ?`, hash)
	if err != nil {
		return false, fmt.Errorf("delete log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			case float64:
				row[i] = fmt.Sprintf("%.2f", x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
