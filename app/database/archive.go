package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/kent-tracker/app/feed"
	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339

var _ RunRepository = (*Archive)(nil)

// Archive is the optional SQLite history of runs and admitted items. The
// JSON files stay authoritative.
type Archive struct {
	db *sql.DB
}

func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("Archive ready", "path", path, "version", version, "dirty", dirty)

	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) RecordRun(ctx context.Context, run Run) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, rules_version, fetched, duplicates,
		                  rejected, admitted, feed_size, seen_size, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
		run.RulesVersion, run.Fetched, run.Duplicates, run.Rejected, run.Admitted,
		run.FeedSize, run.SeenSize, run.Errors)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// UpsertItems records every item of the current feed. first_seen_at is kept
// from the earliest run that stored the URL.
func (a *Archive) UpsertItems(ctx context.Context, items []feed.FeedItem, seenAt time.Time) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (url, title, label, published, source, found_at, first_seen_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			label = excluded.label,
			published = excluded.published,
			source = excluded.source,
			last_seen_at = excluded.last_seen_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare item upsert: %w", err)
	}
	defer stmt.Close()

	seen := seenAt.UTC().Format(timeLayout)
	for _, item := range items {
		var published sql.NullString
		if item.Published != nil {
			published = sql.NullString{String: item.Published.String(), Valid: true}
		}

		_, err := stmt.ExecContext(ctx, item.URL, item.Title, string(item.Label), published,
			item.Source, item.FoundAt.UTC().Format(timeLayout), seen, seen)
		if err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", item.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit items: %w", err)
	}
	return nil
}

func (a *Archive) GetRecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, rules_version, fetched, duplicates,
		       rejected, admitted, feed_size, seen_size, errors
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finishedAt string
		err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.RulesVersion,
			&run.Fetched, &run.Duplicates, &run.Rejected, &run.Admitted,
			&run.FeedSize, &run.SeenSize, &run.Errors)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("invalid started_at for run %s: %w", run.ID, err)
		}
		if run.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
			return nil, fmt.Errorf("invalid finished_at for run %s: %w", run.ID, err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetItemStats returns totals for archived items, grouped by label
func (a *Archive) GetItemStats(ctx context.Context) (*ItemStats, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM items GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to get item stats: %w", err)
	}
	defer rows.Close()

	stats := &ItemStats{ByLabel: make(map[string]int)}
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("failed to scan item stats: %w", err)
		}
		stats.ByLabel[label] = count
		stats.Total += count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item stats: %w", err)
	}

	return stats, nil
}
