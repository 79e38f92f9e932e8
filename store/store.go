// Package store persists site extraction results to SQLite so the API can
// serve history without re-scraping.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/menuhound/menuhound/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	site             TEXT NOT NULL,
	url              TEXT NOT NULL,
	success          INTEGER NOT NULL,
	error            TEXT NOT NULL DEFAULT '',
	probe_verdict    TEXT NOT NULL DEFAULT '',
	screenshots      TEXT NOT NULL DEFAULT '[]',
	section_markdown TEXT NOT NULL DEFAULT '',
	scraped_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_site_time ON runs(site, scraped_at DESC);

CREATE TABLE IF NOT EXISTS items (
	run_id      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	price       TEXT NOT NULL,
	category    TEXT NOT NULL,
	description TEXT NOT NULL,
	source_step INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_run ON items(run_id);
`

// Store is a SQLite-backed result history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open result store: %w", err)
	}
	// The pipeline is single-writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init result store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save records one site result and its items.
func (s *Store) Save(ctx context.Context, res models.SiteResult) error {
	shots, err := json.Marshal(res.ScreenshotPaths)
	if err != nil {
		return fmt.Errorf("encode screenshots: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	row, err := tx.ExecContext(ctx, `
		INSERT INTO runs (site, url, success, error, probe_verdict, screenshots, section_markdown, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Site, res.URL, boolToInt(res.Success), res.Error, res.ProbeVerdict,
		string(shots), res.SectionMarkdown, res.ScrapedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := row.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, item := range res.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO items (run_id, name, price, category, description, source_step)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, item.Name, item.Price, item.Category, item.Description, item.SourceStep,
		); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}

	return tx.Commit()
}

// Recent returns up to limit results for a site, newest first, items
// included.
func (s *Store) Recent(ctx context.Context, site string, limit int) ([]models.SiteResult, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site, url, success, error, probe_verdict, screenshots, section_markdown, scraped_at
		FROM runs WHERE site = ? ORDER BY scraped_at DESC, id DESC LIMIT ?`,
		site, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var results []models.SiteResult
	var runIDs []int64
	for rows.Next() {
		var (
			id        int64
			res       models.SiteResult
			success   int
			shots     string
			scrapedAt string
		)
		if err := rows.Scan(&id, &res.Site, &res.URL, &success, &res.Error,
			&res.ProbeVerdict, &shots, &res.SectionMarkdown, &scrapedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		res.Success = success != 0
		res.Items = []models.MenuItem{}
		if err := json.Unmarshal([]byte(shots), &res.ScreenshotPaths); err != nil {
			res.ScreenshotPaths = nil
		}
		if t, err := time.Parse(time.RFC3339, scrapedAt); err == nil {
			res.ScrapedAt = t
		}
		results = append(results, res)
		runIDs = append(runIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i, runID := range runIDs {
		items, err := s.itemsForRun(ctx, runID)
		if err != nil {
			return nil, err
		}
		results[i].Items = items
	}
	return results, nil
}

func (s *Store) itemsForRun(ctx context.Context, runID int64) ([]models.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, price, category, description, source_step
		FROM items WHERE run_id = ? ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.Name, &item.Price, &item.Category,
			&item.Description, &item.SourceStep); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
