package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/ports"
)

// DefaultSessionTTL provides the fallback TTL when none is configured.
const DefaultSessionTTL = 48 * time.Hour

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory SessionStore with one lock per session.
type SessionStore struct {
	mu      sync.Mutex
	entries map[domain.SessionID]*entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	mu      sync.Mutex
	session *domain.CheckoutSession
	removed bool
}

type Option func(*SessionStore)

func WithTTL(ttl time.Duration) Option {
	return func(s *SessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSessionStore(opts ...Option) *SessionStore {
	s := &SessionStore{
		entries: map[domain.SessionID]*entry{},
		ttl:     DefaultSessionTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *SessionStore) Load(_ context.Context, id domain.SessionID) (*domain.CheckoutSession, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed || e.session == nil || e.session.Expired(s.now()) {
		return nil, ports.ErrNotFound
	}
	return e.session.Clone(), nil
}

func (s *SessionStore) Update(ctx context.Context, id domain.SessionID, fn func(*domain.CheckoutSession) error) error {
	if id == "" {
		return domain.ErrEmptySessionID
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		e := s.entryFor(id)
		e.mu.Lock()
		if e.removed {
			e.mu.Unlock()
			continue
		}
		err := s.apply(e, id, fn)
		e.mu.Unlock()
		return err
	}
}

func (s *SessionStore) apply(e *entry, id domain.SessionID, fn func(*domain.CheckoutSession) error) error {
	now := s.now()
	var working *domain.CheckoutSession
	if e.session != nil && !e.session.Expired(now) {
		working = e.session.Clone()
	} else {
		fresh, err := domain.NewSession(id, now, s.ttl)
		if err != nil {
			return err
		}
		working = fresh
	}
	if err := fn(working); err != nil {
		if errors.Is(err, ports.ErrNoChange) {
			return nil
		}
		return err
	}
	working.Touch(now, s.ttl)
	e.session = working
	return nil
}

func (s *SessionStore) entryFor(id domain.SessionID) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		e = &entry{}
		s.entries[id] = e
	}
	return e
}

func (s *SessionStore) Delete(_ context.Context, id domain.SessionID) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	if ok {
		e.mu.Lock()
		e.removed = true
		e.mu.Unlock()
	}
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for id, e := range s.entries {
		e.mu.Lock()
		if e.session == nil || e.session.Expired(now) {
			e.removed = true
			delete(s.entries, id)
			if e.session != nil {
				purged++
			}
		}
		e.mu.Unlock()
	}
	return purged, nil
}
