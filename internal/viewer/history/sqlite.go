package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
)

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./.codasai/data/history.db",
	}
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and creates) the history database
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, dbError(err, "failed to create data directory", "history.NewSQLiteStore")
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, dbError(err, "failed to open database", "history.NewSQLiteStore")
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema", "history.NewSQLiteStore")
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS visits (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		link TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_visits_session ON visits(session_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends link to the history of sessionID
func (s *SQLiteStore) Record(ctx context.Context, sessionID, link string) (*Entry, error) {
	entry, err := newEntry(sessionID, link)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO visits (id, session_id, link, created_at)
		VALUES (?, ?, ?, ?)
	`, entry.ID, entry.SessionID, entry.Link, entry.CreatedAt)
	if err != nil {
		return nil, dbError(err, "failed to record visit", "history.Record")
	}

	return entry, nil
}

// List returns the latest limit entries of sessionID, oldest first. A limit
// of zero or less returns everything.
func (s *SQLiteStore) List(ctx context.Context, sessionID string, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, link, created_at FROM (
			SELECT seq, id, session_id, link, created_at
			FROM visits
			WHERE session_id = ?
			ORDER BY seq DESC
			LIMIT ?
		) ORDER BY seq ASC
	`, sessionID, limit)
	if err != nil {
		return nil, dbError(err, "failed to list visits", "history.List")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Link, &e.CreatedAt); err != nil {
			return nil, dbError(err, "failed to scan visit", "history.List")
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to iterate visits", "history.List")
	}

	return entries, nil
}

// Clear deletes the history of sessionID
func (s *SQLiteStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM visits WHERE session_id = ?`, sessionID); err != nil {
		return dbError(err, "failed to clear history", "history.Clear")
	}
	return nil
}

// Sessions lists all sessions, most recent first
func (s *SQLiteStore) Sessions(ctx context.Context) ([]SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, COUNT(*), MAX(seq)
		FROM visits
		GROUP BY session_id
		ORDER BY MAX(seq) DESC
	`)
	if err != nil {
		return nil, dbError(err, "failed to list sessions", "history.Sessions")
	}
	defer rows.Close()

	var (
		summaries []SessionSummary
		lastSeq   []int64
	)
	for rows.Next() {
		var sum SessionSummary
		var seq int64
		if err := rows.Scan(&sum.ID, &sum.Entries, &seq); err != nil {
			return nil, dbError(err, "failed to scan session", "history.Sessions")
		}
		summaries = append(summaries, sum)
		lastSeq = append(lastSeq, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to iterate sessions", "history.Sessions")
	}
	rows.Close()

	for i, seq := range lastSeq {
		row := s.db.QueryRowContext(ctx, `SELECT created_at FROM visits WHERE seq = ?`, seq)
		if err := row.Scan(&summaries[i].LastVisited); err != nil {
			return nil, dbError(err, "failed to read last visit", "history.Sessions")
		}
	}

	return summaries, nil
}

// Ping checks the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func dbError(err error, msg, op string) error {
	return mdwerror.Wrap(err, msg).
		WithCode(mdwerror.CodeDatabaseError).
		WithOperation(op)
}
