package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/domain"
	_ "modernc.org/sqlite"
)

// schemaVersion tags persisted session records. Rehydration skips rows with
// an unknown version instead of aborting startup.
const schemaVersion = 1

// SQLiteStore implements Repository using SQLite with a full in-memory cache.
// All durable records are rehydrated at construction; reads are served from
// the cache and writes go through synchronously.
type SQLiteStore struct {
	db    *sql.DB
	mu    sync.RWMutex
	cache map[string]*domain.Session
}

// NewSQLite creates a new SQLite-backed session repository and rehydrates
// all durable records into memory.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db, cache: make(map[string]*domain.Session)}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	if err := s.rehydrate(); err != nil {
		return nil, fmt.Errorf("rehydrate sessions: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		schema_version INTEGER NOT NULL,
		last_active INTEGER NOT NULL,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_active ON sessions(last_active);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// rehydrate loads all durable session records into the cache. Corrupt or
// unknown-version rows are skipped with a warning rather than failing
// startup.
func (s *SQLiteStore) rehydrate() error {
	rows, err := s.db.Query(`SELECT session_id, schema_version, payload FROM sessions`)
	if err != nil {
		return fmt.Errorf("query sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close session rows", "error", closeErr)
		}
	}()

	loaded, skipped := 0, 0
	for rows.Next() {
		var id string
		var version int
		var payload string
		if err := rows.Scan(&id, &version, &payload); err != nil {
			return fmt.Errorf("scan session row: %w", err)
		}

		if version != schemaVersion {
			slog.Warn("Skipping session with unknown schema version", "session_id", id, "version", version)
			skipped++
			continue
		}

		var session domain.Session
		if err := json.Unmarshal([]byte(payload), &session); err != nil {
			slog.Warn("Skipping corrupt session record", "session_id", id, "error", err)
			skipped++
			continue
		}

		s.cache[id] = &session
		loaded++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate sessions: %w", err)
	}

	slog.Info("Session store rehydrated", "loaded", loaded, "skipped", skipped)
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create allocates a fresh session and persists it immediately.
func (s *SQLiteStore) Create(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession()
	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[session.ID] = session.Clone()
	s.mu.Unlock()

	return session, nil
}

// Get returns a copy of the cached session, or (nil, nil) when absent.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.cache[sessionID]
	if !ok {
		return nil, nil
	}
	return session.Clone(), nil
}

// Update replaces the full record and persists it synchronously.
func (s *SQLiteStore) Update(ctx context.Context, session *domain.Session) error {
	if err := s.persist(ctx, session); err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[session.ID] = session.Clone()
	s.mu.Unlock()

	return nil
}

// persist writes the serialized session through to SQLite, retrying
// SQLITE_BUSY conflicts with exponential backoff.
func (s *SQLiteStore) persist(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: marshal session %s: %v", domain.ErrStorage, session.ID, err)
	}

	query := `
		INSERT INTO sessions (session_id, schema_version, last_active, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			schema_version = excluded.schema_version,
			last_active = excluded.last_active,
			payload = excluded.payload`

	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		_, err = s.db.ExecContext(ctx, query,
			session.ID, schemaVersion, session.LastActive.Unix(), string(payload))
		if err == nil {
			return nil
		}

		if isSQLiteConflict(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // 100ms, 200ms, 400ms
			slog.Debug("Session write hit SQLITE_BUSY, retrying",
				"session_id", session.ID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}
		break
	}

	return fmt.Errorf("%w: persist session %s: %v", domain.ErrStorage, session.ID, err)
}

// Delete removes the session from memory and durable storage.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, cached := s.cache[sessionID]
	delete(s.cache, sessionID)
	s.mu.Unlock()

	if !cached {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("%w: delete session %s: %v", domain.ErrStorage, sessionID, err)
	}
	return nil
}

// ListActive returns copies of all cached sessions.
func (s *SQLiteStore) ListActive(ctx context.Context) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*domain.Session, 0, len(s.cache))
	for _, session := range s.cache {
		sessions = append(sessions, session.Clone())
	}
	return sessions, nil
}

// ExpireOlderThan removes every session whose LastActive precedes now-maxAge.
// Removal from memory is unconditional; a failed durable delete is logged and
// skipped rather than retried (best-effort cleanup, not atomic).
func (s *SQLiteStore) ExpireOlderThan(ctx context.Context, maxAge time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	var expired []string
	for id, session := range s.cache {
		if session.LastActive.Before(cutoff) {
			expired = append(expired, id)
			delete(s.cache, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, id); err != nil {
			slog.Warn("Failed to delete expired session record", "session_id", id, "error", err)
		}
	}

	return expired, nil
}

// isSQLiteConflict reports whether err is a SQLITE_BUSY or database-locked
// condition. modernc surfaces both as opaque strings, so the check is
// textual. Either one warrants a backoff retry.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
