// Package store handles SQLite persistence of probability runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/risk/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			attackers INTEGER NOT NULL,
			defenders INTEGER NOT NULL,
			trials INTEGER NOT NULL,
			workers INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			attacker_wins INTEGER NOT NULL,
			defender_wins INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_bins (
			run_id INTEGER NOT NULL,
			side TEXT NOT NULL,
			losses INTEGER NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (run_id, side, losses)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a run and its histogram bins.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord, bins []model.BinRecord) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, attackers, defenders, trials, workers, seed, attacker_wins, defender_wins, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.Format(time.RFC3339Nano),
		run.Attackers,
		run.Defenders,
		run.Trials,
		run.Workers,
		run.Seed,
		run.AttackerWins,
		run.DefenderWins,
		run.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(bins) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_bins (run_id, side, losses, count) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, b := range bins {
			if _, err := stmt.ExecContext(ctx, id, b.Side, b.Losses, b.Count); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns stored runs filtered by cfg, oldest first.
func (s *Store) ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, created_at, attackers, defenders, trials, workers, seed, attacker_wins, defender_wins, duration_ms
		FROM runs
		WHERE %s
		ORDER BY created_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunRecord
	for rows.Next() {
		var run model.RunRecord
		var createdAt string
		if err := rows.Scan(&run.ID, &createdAt, &run.Attackers, &run.Defenders, &run.Trials, &run.Workers,
			&run.Seed, &run.AttackerWins, &run.DefenderWins, &run.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		run.CreatedAt = parsed
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	return runs, nil
}

// ListBins returns the histogram bins of a run ordered by side and losses.
func (s *Store) ListBins(ctx context.Context, runID int64) ([]model.BinRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT side, losses, count FROM run_bins WHERE run_id = ? ORDER BY side ASC, losses ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var bins []model.BinRecord
	for rows.Next() {
		var b model.BinRecord
		if err := rows.Scan(&b.Side, &b.Losses, &b.Count); err != nil {
			return nil, err
		}
		bins = append(bins, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bins, nil
}
