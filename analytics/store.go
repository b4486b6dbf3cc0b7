package analytics

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const tsLayout = "2006-01-02 15:04:05"

// Store persists page views in SQLite. It shares the site's *sql.DB.
type Store struct {
	db *sql.DB
}

// NewStore creates the analytics tables on db.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("analytics schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_id TEXT NOT NULL,
			browser TEXT NOT NULL,
			os TEXT NOT NULL,
			device TEXT NOT NULL,
			path TEXT NOT NULL,
			referrer TEXT NOT NULL DEFAULT '',
			timestamp TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS bot_visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bot_name TEXT NOT NULL,
			path TEXT NOT NULL,
			timestamp TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_bot_visits_timestamp ON bot_visits(timestamp);
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// GetSetting returns the value for key, or "" if unset.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

// SetSetting upserts key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Salt returns the per-installation hashing salt, creating it on first use.
func (s *Store) Salt(ctx context.Context) (string, error) {
	v, err := s.GetSetting(ctx, "hash_salt")
	if err != nil || v != "" {
		return v, err
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	v = hex.EncodeToString(b)
	if err := s.SetSetting(ctx, "hash_salt", v); err != nil {
		return "", fmt.Errorf("store salt: %w", err)
	}
	return v, nil
}

// SaveVisit records a human page view.
func (s *Store) SaveVisit(ctx context.Context, v Visit) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO visits (visitor_id, browser, os, device, path, referrer, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.VisitorID, v.Browser, v.OS, v.Device, v.Path, v.Referrer, v.Timestamp.UTC().Format(tsLayout))
	return err
}

// SaveBotVisit records a crawler page view.
func (s *Store) SaveBotVisit(ctx context.Context, v BotVisit) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO bot_visits (bot_name, path, timestamp) VALUES (?, ?, ?)`,
		v.BotName, v.Path, v.Timestamp.UTC().Format(tsLayout))
	return err
}

const topN = 10

// GetStats aggregates views between from (inclusive) and to (exclusive).
// The queries run concurrently.
func (s *Store) GetStats(ctx context.Context, from, to time.Time) (*Stats, error) {
	f, t := from.UTC().Format(tsLayout), to.UTC().Format(tsLayout)
	stats := &Stats{
		From:       from.Format("2006-01-02"),
		To:         to.Format("2006-01-02"),
		TopPages:   []PageStat{},
		DailyViews: []DailyView{},
	}

	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int, query string) {
		g.Go(func() error {
			return s.db.QueryRowContext(ctx, query, f, t).Scan(dst)
		})
	}
	dimension := func(dst *[]DimensionStat, column, table string) {
		g.Go(func() error {
			rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) AS n FROM `+table+`
WHERE timestamp >= ? AND timestamp < ? GROUP BY `+column+` ORDER BY n DESC, `+column+` LIMIT ?`, f, t, topN)
			if err != nil {
				return fmt.Errorf("%s stats: %w", column, err)
			}
			defer rows.Close()
			out := []DimensionStat{}
			for rows.Next() {
				var d DimensionStat
				if err := rows.Scan(&d.Name, &d.Count); err != nil {
					return err
				}
				out = append(out, d)
			}
			*dst = out
			return rows.Err()
		})
	}

	count(&stats.TotalViews, `SELECT COUNT(*) FROM visits WHERE timestamp >= ? AND timestamp < ?`)
	count(&stats.UniqueVisitors, `SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp >= ? AND timestamp < ?`)
	count(&stats.BotVisits, `SELECT COUNT(*) FROM bot_visits WHERE timestamp >= ? AND timestamp < ?`)
	dimension(&stats.Browsers, "browser", "visits")
	dimension(&stats.OS, "os", "visits")
	dimension(&stats.Devices, "device", "visits")
	dimension(&stats.Referrers, "referrer", "visits")
	dimension(&stats.TopBots, "bot_name", "bot_visits")

	g.Go(func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT path, COUNT(*) AS n FROM visits
WHERE timestamp >= ? AND timestamp < ? GROUP BY path ORDER BY n DESC, path LIMIT ?`, f, t, topN)
		if err != nil {
			return fmt.Errorf("top pages: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var p PageStat
			if err := rows.Scan(&p.Path, &p.Views); err != nil {
				return err
			}
			stats.TopPages = append(stats.TopPages, p)
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT substr(timestamp, 1, 10) AS day, COUNT(*) FROM visits
WHERE timestamp >= ? AND timestamp < ? GROUP BY day ORDER BY day`, f, t)
		if err != nil {
			return fmt.Errorf("daily views: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var d DailyView
			if err := rows.Scan(&d.Date, &d.Views); err != nil {
				return err
			}
			stats.DailyViews = append(stats.DailyViews, d)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// CleanupOldVisits removes views older than retention.
func (s *Store) CleanupOldVisits(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention).Format(tsLayout)
	var total int64
	for _, table := range []string{"visits", "bot_visits"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE timestamp < ?`, cutoff)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}
