// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fortio.org/safecast"

	"github.com/verte-zerg/quill/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for analysis runs and session state.
type Store struct {
	db *sql.DB
}

// Snapshot is an encoded editing session stored per document.
type Snapshot struct {
	Path      string
	SessionID string
	UpdatedAt time.Time
	Payload   []byte
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
			session_id TEXT NOT NULL,
			path TEXT NOT NULL,
			analyzed_at TEXT NOT NULL,
			words INTEGER NOT NULL,
			issues INTEGER NOT NULL,
			overall INTEGER NOT NULL,
			correctness INTEGER NOT NULL,
			clarity INTEGER NOT NULL,
			engagement INTEGER NOT NULL,
			delivery INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_rule_counts (
			run_id INTEGER NOT NULL,
			rule TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (run_id, rule)
		);`,
		`CREATE TABLE IF NOT EXISTS dismissed_patterns (
			path TEXT NOT NULL,
			rule TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (path, rule, text)
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			path TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			payload BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_analyzed_at ON runs(analyzed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_path ON runs(path);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores an analysis run and its per-rule issue counts.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord, counts []model.RuleCount) (id int64, err error) {
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
		`INSERT INTO runs (session_id, path, analyzed_at, words, issues, overall, correctness, clarity, engagement, delivery)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.SessionID,
		run.Path,
		run.AnalyzedAt.Format(time.RFC3339Nano),
		run.Words,
		run.Issues,
		run.Score.Overall,
		run.Score.Correctness,
		run.Score.Clarity,
		run.Score.Engagement,
		run.Score.Delivery,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(counts) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO run_rule_counts (run_id, rule, count) VALUES (?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, rc := range counts {
			if _, err = stmt.ExecContext(ctx, id, string(rc.Rule), rc.Count); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns recorded runs filtered by stats config, oldest first.
func (s *Store) ListRuns(ctx context.Context, cfg model.StatsConfig) ([]model.RunRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Path != "" {
		clauses = append(clauses, "path = ?")
		args = append(args, cfg.Path)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "analyzed_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, session_id, path, analyzed_at, words, issues, overall, correctness, clarity, engagement, delivery
		FROM runs
		WHERE %s
		ORDER BY analyzed_at ASC, id ASC`, strings.Join(clauses, " AND "))
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
		var r model.RunRecord
		var analyzedAt string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Path, &analyzedAt, &r.Words, &r.Issues,
			&r.Score.Overall, &r.Score.Correctness, &r.Score.Clarity, &r.Score.Engagement, &r.Score.Delivery); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, analyzedAt)
		if err != nil {
			return nil, err
		}
		r.AnalyzedAt = parsed
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListRuleCounts aggregates per-rule issue counts across runs.
func (s *Store) ListRuleCounts(ctx context.Context, runIDs []int64) ([]model.RuleCount, error) {
	if len(runIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(runIDs))
	args := make([]any, len(runIDs))
	for i, id := range runIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT rule, SUM(count) AS total
		FROM run_rule_counts
		WHERE run_id IN (%s)
		GROUP BY rule
		ORDER BY rule`, strings.Join(placeholders, ","))
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

	var result []model.RuleCount
	for rows.Next() {
		var rule string
		var total int64
		if err := rows.Scan(&rule, &total); err != nil {
			return nil, err
		}
		count, err := safecast.Conv[int](total)
		if err != nil {
			return nil, fmt.Errorf("rule count for %s: %w", rule, err)
		}
		result = append(result, model.RuleCount{Rule: model.Rule(rule), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AddDismissed records dismissed patterns for a document. Existing keys are kept.
func (s *Store) AddDismissed(ctx context.Context, path string, keys []model.DismissedPatternKey) error {
	if len(keys) == 0 {
		return nil
	}
	now := time.Now().Format(time.RFC3339Nano)
	for _, k := range keys {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO dismissed_patterns (path, rule, text, created_at) VALUES (?, ?, ?, ?)`,
			path, string(k.Rule), k.Text, now); err != nil {
			return err
		}
	}
	return nil
}

// ListDismissed returns the dismissed patterns recorded for a document.
func (s *Store) ListDismissed(ctx context.Context, path string) ([]model.DismissedPatternKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rule, text FROM dismissed_patterns WHERE path = ? ORDER BY rule, text`, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var keys []model.DismissedPatternKey
	for rows.Next() {
		var rule, text string
		if err := rows.Scan(&rule, &text); err != nil {
			return nil, err
		}
		keys = append(keys, model.DismissedPatternKey{Rule: model.Rule(rule), Text: text})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// ClearDismissed removes every dismissed pattern for a document and reports how many were removed.
func (s *Store) ClearDismissed(ctx context.Context, path string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM dismissed_patterns WHERE path = ?`, path)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return safecast.Conv[int](n)
}

// SaveSnapshot stores or replaces the session snapshot for a document.
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (path, session_id, updated_at, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET session_id = excluded.session_id, updated_at = excluded.updated_at, payload = excluded.payload`,
		snap.Path, snap.SessionID, snap.UpdatedAt.Format(time.RFC3339Nano), snap.Payload)
	return err
}

// LoadSnapshot returns the stored snapshot for a document. The boolean is false when none exists.
func (s *Store) LoadSnapshot(ctx context.Context, path string) (Snapshot, bool, error) {
	var snap Snapshot
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT path, session_id, updated_at, payload FROM snapshots WHERE path = ?`, path).
		Scan(&snap.Path, &snap.SessionID, &updatedAt, &snap.Payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return Snapshot{}, false, err
	}
	snap.UpdatedAt = parsed
	return snap, true, nil
}
