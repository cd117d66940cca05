package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
)

var (
	ErrNotFound = errors.New("checkout session not found")
	// ErrNoChange aborts an Update without persisting anything. Update
	// returns nil in that case.
	ErrNoChange = errors.New("checkout session unchanged")
)

// SessionStore persists checkout sessions.
type SessionStore interface {
	// Load returns the live session or ErrNotFound. Expired sessions are not found.
	Load(ctx context.Context, id domain.SessionID) (*domain.CheckoutSession, error)
	// Update runs fn against the session under an exclusive per-session lock,
	// creating the session when missing or expired, and persists the result.
	Update(ctx context.Context, id domain.SessionID, fn func(*domain.CheckoutSession) error) error
	Delete(ctx context.Context, id domain.SessionID) error
	// PurgeExpired removes sessions whose expiry is at or before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
