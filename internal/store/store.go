// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/intervu-ai/intervu/internal/domain"
)

// Repository defines the interface for persisting interview session data.
// Writes are best-effort from the caller's point of view: the in-memory
// session registry is authoritative while a session is live.
type Repository interface {
	// SaveSession creates or updates a session record.
	SaveSession(ctx context.Context, session *domain.Session) error

	// SaveTurn creates or updates a single turn of a session.
	SaveTurn(ctx context.Context, sessionID string, turn *domain.Turn) error

	// SaveSummary records the final report for an ended session.
	SaveSummary(ctx context.Context, summary *domain.SessionSummary) error

	// GetSession retrieves a session with its turns. Returns nil, nil
	// when no session with the given ID exists.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// GetSummary retrieves the final report for a session. Returns
	// nil, nil when no summary exists.
	GetSummary(ctx context.Context, sessionID string) (*domain.SessionSummary, error)

	// ListSummaries returns the most recent session reports, newest first.
	ListSummaries(ctx context.Context, limit int) ([]*domain.SessionSummary, error)

	// DeleteExpired removes abandoned sessions last updated before cutoff,
	// along with their turns. Ended sessions and summaries are kept.
	// Returns the number of sessions removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
