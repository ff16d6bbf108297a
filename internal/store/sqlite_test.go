package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/domain"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, dbPath
}

func TestCreateThenGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected session, got nil")
	}
	if got.ID != created.ID {
		t.Errorf("Expected id %s, got %s", created.ID, got.ID)
	}
	if len(got.ConversationHistory) != 0 {
		t.Errorf("Expected empty history, got %d messages", len(got.ConversationHistory))
	}
	if got.UserProfile != nil {
		t.Error("Expected no profile on a fresh session")
	}
}

func TestCreateTwiceYieldsDistinctIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s1, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	s2, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if s1.ID == s2.ID {
		t.Errorf("Expected distinct ids, both were %s", s1.ID)
	}
}

func TestGetUnknownIDReturnsNil(t *testing.T) {
	s, _ := newTestStore(t)

	got, err := s.Get(context.Background(), "no-such-session")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for unknown id, got %+v", got)
	}
}

func TestGetReturnsWorkingCopy(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first, _ := s.Get(ctx, created.ID)
	if _, err := first.AddMessage(domain.RoleUser, "uncommitted", nil); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}

	// Mutations on the working copy are invisible until Update.
	second, _ := s.Get(ctx, created.ID)
	if len(second.ConversationHistory) != 0 {
		t.Error("Uncommitted mutation leaked into the cache")
	}
}

func TestRoundTripAcrossRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}

	session, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := session.AddMessage(domain.RoleUser, "I want to retire in 20 years", nil); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	if _, err := session.AddMessage(domain.RoleAssistant, `{"goal":"retirement"}`, map[string]any{"plan": "x"}); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	session.UpdateProfile(&domain.Profile{FinancialGoals: "retire", RiskTolerance: "moderate"})
	session.UpdatePreferences(map[string]any{"currency": "USD"})
	if err := s.Update(ctx, session); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Simulated restart: a new store must rehydrate an equal record.
	reopened, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite after restart failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get after restart failed: %v", err)
	}
	if got == nil {
		t.Fatal("Session lost across restart")
	}
	if got.ID != session.ID {
		t.Errorf("Expected id %s, got %s", session.ID, got.ID)
	}
	if len(got.ConversationHistory) != 2 {
		t.Fatalf("Expected 2 messages after restart, got %d", len(got.ConversationHistory))
	}
	if got.ConversationHistory[0].Content != "I want to retire in 20 years" {
		t.Errorf("Unexpected first message: %q", got.ConversationHistory[0].Content)
	}
	if got.ConversationHistory[1].Role != domain.RoleAssistant {
		t.Errorf("Expected assistant role, got %q", got.ConversationHistory[1].Role)
	}
	if got.UserProfile == nil || got.UserProfile.FinancialGoals != "retire" {
		t.Errorf("Profile not restored: %+v", got.UserProfile)
	}
	if got.Preferences["currency"] != "USD" {
		t.Errorf("Preferences not restored: %+v", got.Preferences)
	}
}

func TestExpireOlderThanRemovesExactlyStale(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	stale1, _ := s.Create(ctx)
	stale2, _ := s.Create(ctx)
	fresh, _ := s.Create(ctx)

	for _, session := range []*domain.Session{stale1, stale2} {
		session.LastActive = time.Now().UTC().Add(-48 * time.Hour)
		if err := s.Update(ctx, session); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	expired, err := s.ExpireOlderThan(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("ExpireOlderThan failed: %v", err)
	}
	if len(expired) != 2 {
		t.Fatalf("Expected 2 expired sessions, got %d: %v", len(expired), expired)
	}

	for _, id := range []string{stale1.ID, stale2.ID} {
		if got, _ := s.Get(ctx, id); got != nil {
			t.Errorf("Expected session %s to be expired", id)
		}
	}
	if got, _ := s.Get(ctx, fresh.ID); got == nil {
		t.Error("Fresh session must survive expiry")
	}

	// Durable records are gone too: a restart must not resurrect them.
	sessions, err := s.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("Expected 1 active session, got %d", len(sessions))
	}
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	session, _ := s.Create(ctx)
	if err := s.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got, _ := s.Get(ctx, session.ID); got != nil {
		t.Error("Expected session to be deleted")
	}

	err := s.Delete(ctx, session.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double delete, got %v", err)
	}
}

func TestRehydrateSkipsCorruptRecord(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	good, _ := s.Create(ctx)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Corrupt one payload and plant a future-version row directly.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open raw database: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO sessions (session_id, schema_version, last_active, payload) VALUES (?, ?, ?, ?)`,
		"corrupt-1", schemaVersion, time.Now().Unix(), "{not json"); err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO sessions (session_id, schema_version, last_active, payload) VALUES (?, ?, ?, ?)`,
		"future-1", schemaVersion+1, time.Now().Unix(), "{}"); err != nil {
		t.Fatalf("insert future-version row: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close raw database: %v", err)
	}

	reopened, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("Rehydration must not fail on corrupt records: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	if got, _ := reopened.Get(ctx, good.ID); got == nil {
		t.Error("Healthy session must survive rehydration")
	}
	if got, _ := reopened.Get(ctx, "corrupt-1"); got != nil {
		t.Error("Corrupt record must be skipped")
	}
	if got, _ := reopened.Get(ctx, "future-1"); got != nil {
		t.Error("Unknown-version record must be skipped")
	}
}

func TestSweepExpiredInvokesCallback(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	stale, _ := s.Create(ctx)
	stale.LastActive = time.Now().UTC().Add(-2 * time.Hour)
	if err := s.Update(ctx, stale); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	var closed []string
	sweepExpired(ctx, s, time.Hour, func(id string) { closed = append(closed, id) })

	if len(closed) != 1 || closed[0] != stale.ID {
		t.Errorf("Expected callback for %s, got %v", stale.ID, closed)
	}
}
