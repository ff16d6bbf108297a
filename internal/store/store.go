// Package store provides session persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/domain"
)

// Repository is the durable session store. It exclusively owns Session
// records; every other component works on the copy it hands out and commits
// through Update.
type Repository interface {
	// Create allocates a fresh session with empty history and persists it
	// immediately.
	Create(ctx context.Context) (*domain.Session, error)

	// Get returns a copy of the session, or (nil, nil) if the id does not
	// resolve.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// Update replaces the full record for session.ID and persists it
	// synchronously before returning. Last writer wins; there is no
	// optimistic concurrency check.
	Update(ctx context.Context, session *domain.Session) error

	// Delete removes the session from memory and durable storage.
	// Returns domain.ErrNotFound if the id does not resolve.
	Delete(ctx context.Context, sessionID string) error

	// ListActive returns copies of all cached sessions. Order carries no
	// meaning.
	ListActive(ctx context.Context) ([]*domain.Session, error)

	// ExpireOlderThan removes every session whose LastActive precedes
	// now-maxAge, from memory and durable storage, and returns the removed
	// session ids. Durable deletion is best effort per record.
	ExpireOlderThan(ctx context.Context, maxAge time.Duration) ([]string, error)

	// Ping verifies the durable layer is reachable.
	Ping(ctx context.Context) error

	// Close closes the underlying database connection.
	Close() error
}
