package storage

import "github.com/pable/cs-logstats/internal/model"

// Overview holds database-wide totals for the summary command.
type Overview struct {
	TotalLogs     int
	UniqueMaps    int
	UniquePlayers int
	TotalRounds   int
	TotalKills    int
	FirstParsed   string
	LastParsed    string
}

// MapStats counts logs and side wins per map.
type MapStats struct {
	MapName string
	Logs    int
	CTWins  int
	TWins   int
}

// GetOverview returns totals over every stored log.
func (db *DB) GetOverview() (Overview, error) {
	var ov Overview
	err := db.conn.QueryRow(`
		SELECT COUNT(*),
		       COUNT(DISTINCT NULLIF(map_name, '')),
		       COALESCE(SUM(total_rounds), 0),
		       COALESCE(SUM(total_kills), 0),
		       COALESCE(MIN(parsed_at), ''),
		       COALESCE(MAX(parsed_at), '')
		FROM logs`).Scan(&ov.TotalLogs, &ov.UniqueMaps, &ov.TotalRounds, &ov.TotalKills, &ov.FirstParsed, &ov.LastParsed)
	if err != nil {
		return ov, err
	}
	err = db.conn.QueryRow(`SELECT COUNT(DISTINCT name) FROM player_stats`).Scan(&ov.UniquePlayers)
	return ov, err
}

// GetMapStats returns per-map log counts and winning sides, busiest map first.
func (db *DB) GetMapStats() ([]MapStats, error) {
	rows, err := db.conn.Query(`
		SELECT map_name, COUNT(*),
		       SUM(CASE WHEN ct_score > t_score THEN 1 ELSE 0 END),
		       SUM(CASE WHEN t_score > ct_score THEN 1 ELSE 0 END)
		FROM logs
		WHERE map_name != ''
		GROUP BY map_name
		ORDER BY COUNT(*) DESC, map_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MapStats
	for rows.Next() {
		var m MapStats
		if err := rows.Scan(&m.MapName, &m.Logs, &m.CTWins, &m.TWins); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetTopPlayers returns the players appearing in the most logs.
func (db *DB) GetTopPlayers(limit int) ([]model.PlayerAggregate, error) {
	rows, err := db.conn.Query(`
		SELECT name, COUNT(*), SUM(kills), SUM(deaths), SUM(headshots), SUM(team_kills), SUM(damage), SUM(hits)
		FROM player_stats
		GROUP BY name
		ORDER BY COUNT(*) DESC, SUM(kills) DESC, name
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerAggregate
	for rows.Next() {
		var p model.PlayerAggregate
		if err := rows.Scan(&p.Name, &p.Logs, &p.Kills, &p.Deaths, &p.Headshots, &p.TeamKills, &p.Damage, &p.Hits); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPlayerHistory returns one row per stored log the named player appears
// in, most recent first.
func (db *DB) GetPlayerHistory(name string) ([]model.PlayerLogStats, error) {
	rows, err := db.conn.Query(`
		SELECT p.log_hash, l.map_name, l.parsed_at,
		       p.kills, p.deaths, p.headshots, p.team_kills, p.headshot_pct, p.damage, p.hits
		FROM player_stats p
		JOIN logs l ON l.hash = p.log_hash
		WHERE p.name = ?
		ORDER BY l.parsed_at DESC, p.log_hash`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerLogStats
	for rows.Next() {
		var s model.PlayerLogStats
		if err := rows.Scan(&s.LogHash, &s.MapName, &s.ParsedAt,
			&s.Kills, &s.Deaths, &s.Headshots, &s.TeamKills, &s.HeadshotPct, &s.Damage, &s.Hits); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
