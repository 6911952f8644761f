package accesslog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"stagehand-hq/stagehand/pkg/config"
)

// Store persists access log records in a SQLite database.
//
// The database uses a write-ahead log for concurrent read performance and
// a single writer connection, which is all SQLite supports anyway.
type Store struct {
	db   *sql.DB
	path string

	insertStmt *sql.Stmt
}

// OpenStore opens (creating if necessary) the access log database at the
// configured path.
func OpenStore(cfg *config.AccessLogConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("access log path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create access log directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open access log database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:   db,
		path: cfg.Path,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return s, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS access_log (
		id TEXT PRIMARY KEY,
		time INTEGER NOT NULL,
		request_id TEXT NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		source TEXT NOT NULL,
		status INTEGER NOT NULL,
		content_type TEXT,
		bytes INTEGER NOT NULL,
		duration_us INTEGER NOT NULL,
		target TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_access_log_time ON access_log(time);
	CREATE INDEX IF NOT EXISTS idx_access_log_source ON access_log(source);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *Store) prepareStatements() error {
	var err error

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO access_log (id, time, request_id, method, path, source, status, content_type, bytes, duration_us, target)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	return nil
}

// Insert writes a single record to the journal.
func (s *Store) Insert(ctx context.Context, r *Record) error {
	_, err := s.insertStmt.ExecContext(ctx,
		r.ID,
		r.Time.UnixMicro(),
		r.RequestID,
		r.Method,
		r.Path,
		r.Source,
		r.Status,
		r.ContentType,
		r.Bytes,
		r.Duration.Microseconds(),
		r.Target,
	)
	if err != nil {
		return fmt.Errorf("failed to insert access log record: %w", err)
	}
	return nil
}

// Count returns the number of journaled records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count access log records: %w", err)
	}
	return n, nil
}

// Recent returns up to limit records ordered newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, time, request_id, method, path, source, status, content_type, bytes, duration_us, target
		FROM access_log
		ORDER BY time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query access log: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			r          Record
			timeMicro  int64
			durationUs int64
		)
		if err := rows.Scan(&r.ID, &timeMicro, &r.RequestID, &r.Method, &r.Path,
			&r.Source, &r.Status, &r.ContentType, &r.Bytes, &durationUs, &r.Target); err != nil {
			return nil, fmt.Errorf("failed to scan access log record: %w", err)
		}
		r.Time = time.UnixMicro(timeMicro)
		r.Duration = time.Duration(durationUs) * time.Microsecond
		records = append(records, &r)
	}

	return records, rows.Err()
}

// DeleteBefore removes records older than the cutoff and returns how many
// were deleted.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM access_log WHERE time < ?`, cutoff.UnixMicro())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired records: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	if s.insertStmt != nil {
		_ = s.insertStmt.Close()
	}
	return s.db.Close()
}
