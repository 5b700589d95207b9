package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JNZader/declint/internal/runner"
)

// Store provides SQLite-based run history storage.
type Store struct {
	db *sql.DB
}

// StoreConfig configures the history store.
type StoreConfig struct {
	// Path is the SQLite database file path
	Path string
}

// NewStore opens or creates the history database.
func NewStore(cfg StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			ruleset TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			files INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			violations INTEGER NOT NULL,
			suppressed INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS violations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
			file_path TEXT NOT NULL,
			interface TEXT NOT NULL,
			name TEXT NOT NULL,
			line INTEGER,
			rule TEXT NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL
		)`,

		// Full-text search over messages
		`CREATE VIRTUAL TABLE IF NOT EXISTS violations_fts USING fts5(
			message,
			content='violations',
			content_rowid='id'
		)`,

		`CREATE TRIGGER IF NOT EXISTS violations_ai AFTER INSERT ON violations BEGIN
			INSERT INTO violations_fts(rowid, message) VALUES (new.id, new.message);
		END`,

		`CREATE TRIGGER IF NOT EXISTS violations_ad AFTER DELETE ON violations BEGIN
			INSERT INTO violations_fts(violations_fts, rowid, message) VALUES ('delete', old.id, old.message);
		END`,

		`CREATE INDEX IF NOT EXISTS idx_violations_run ON violations(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_violations_rule ON violations(rule)`,
		`CREATE INDEX IF NOT EXISTS idx_violations_file ON violations(file_path)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Record saves a run and its reported violations in one transaction.
func (s *Store) Record(ctx context.Context, runID string, result *runner.Result, at time.Time) (*RunRecord, error) {
	run := &RunRecord{
		RunID:       runID,
		RuleSet:     result.RuleSet,
		Fingerprint: result.Fingerprint,
		Files:       len(result.Files),
		Failed:      len(result.FailedFiles()),
		Violations:  result.TotalViolations(),
		Suppressed:  result.TotalSuppressed(),
		DurationMS:  result.Duration.Milliseconds(),
		CreatedAt:   at.UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO runs (
		run_id, ruleset, fingerprint, files, failed, violations, suppressed, duration_ms, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.RuleSet, run.Fingerprint, run.Files, run.Failed,
		run.Violations, run.Suppressed, run.DurationMS, run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	run.ID, _ = res.LastInsertId()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO violations (
		run_id, file_path, interface, name, line, rule, severity, message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range result.Files {
		for _, v := range f.Violations {
			if _, err := stmt.ExecContext(ctx,
				runID, f.Path, v.Decl.Interface, v.Decl.Name, v.Decl.Line,
				v.RuleID, string(v.Severity), v.Message,
			); err != nil {
				return nil, fmt.Errorf("inserting violation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, ruleset, fingerprint, files, failed, violations, suppressed, duration_ms, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.RuleSet, &r.Fingerprint, &r.Files, &r.Failed,
			&r.Violations, &r.Suppressed, &r.DurationMS, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Search returns stored violations matching q, newest runs first.
func (s *Store) Search(ctx context.Context, q SearchQuery) ([]ViolationRecord, error) {
	var args []interface{}
	var conditions []string

	if q.Text != "" {
		conditions = append(conditions, "v.id IN (SELECT rowid FROM violations_fts WHERE violations_fts MATCH ?)")
		args = append(args, q.Text)
	}
	if q.File != "" {
		conditions = append(conditions, "v.file_path LIKE ?")
		args = append(args, strings.ReplaceAll(q.File, "*", "%"))
	}
	if q.Rule != "" {
		conditions = append(conditions, "v.rule = ?")
		args = append(args, strings.ToUpper(q.Rule))
	}
	if q.Severity != "" {
		conditions = append(conditions, "v.severity = ?")
		args = append(args, q.Severity)
	}
	if q.RunID != "" {
		conditions = append(conditions, "v.run_id = ?")
		args = append(args, q.RunID)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	//nolint:gosec // whereClause only contains placeholders
	query := `
		SELECT v.id, v.run_id, v.file_path, v.interface, v.name, v.line, v.rule, v.severity, v.message
		FROM violations v JOIN runs r ON r.run_id = v.run_id
		` + whereClause + `
		ORDER BY r.created_at DESC, v.id
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying violations: %w", err)
	}
	defer rows.Close()

	records := make([]ViolationRecord, 0)
	for rows.Next() {
		var v ViolationRecord
		var line sql.NullInt64
		if err := rows.Scan(&v.ID, &v.RunID, &v.FilePath, &v.Interface, &v.Name, &line, &v.Rule, &v.Severity, &v.Message); err != nil {
			return nil, fmt.Errorf("scanning violation: %w", err)
		}
		if line.Valid {
			v.Line = int(line.Int64)
		}
		records = append(records, v)
	}
	return records, rows.Err()
}

// RuleCounts tallies the violations of a run per rule, most frequent first.
func (s *Store) RuleCounts(ctx context.Context, runID string) ([]RuleCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule, COUNT(*) AS n
		FROM violations
		WHERE run_id = ?
		GROUP BY rule
		ORDER BY n DESC, rule`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying rule counts: %w", err)
	}
	defer rows.Close()

	counts := make([]RuleCount, 0)
	for rows.Next() {
		var c RuleCount
		if err := rows.Scan(&c.Rule, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning rule count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Prune deletes runs older than maxAge and returns how many were removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM violations WHERE run_id IN (SELECT run_id FROM runs WHERE created_at < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("pruning violations: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing prune: %w", err)
	}
	return int(n), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
