package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/ports"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// DefaultSessionTTL provides the fallback TTL when none is configured.
const DefaultSessionTTL = 48 * time.Hour

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore persists checkout sessions in PostgreSQL. Updates lock the
// session row with SELECT ... FOR UPDATE.
type SessionStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB, sessionTTL time.Duration) *SessionStore {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	store := &SessionStore{db: db, ttl: sessionTTL, now: time.Now}
	if db != nil {
		_ = db.AutoMigrate(&sessionRecord{})
	}
	return store
}

type sessionRecord struct {
	ID            string                                           `gorm:"primaryKey;column:id;size:128"`
	Selections    map[shipdomain.InstanceID]shipdomain.Selection   `gorm:"column:selections;serializer:json"`
	LastSaves     map[shipdomain.InstanceID]domain.SaveFingerprint `gorm:"column:last_saves;serializer:json"`
	ChosenMethods pq.StringArray                                   `gorm:"column:chosen_methods;type:text[]"`
	ExpiresAt     time.Time                                        `gorm:"column:expires_at;index"`
	CreatedAt     time.Time                                        `gorm:"column:created_at"`
	UpdatedAt     time.Time                                        `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "checkout_sessions" }

func (s *SessionStore) Load(ctx context.Context, id domain.SessionID) (*domain.CheckoutSession, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rec sessionRecord
	err := s.db.WithContext(ctx).
		First(&rec, "id = ? AND expires_at > ?", string(id), s.now()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return rec.toDomain(), nil
}

func (s *SessionStore) Update(ctx context.Context, id domain.SessionID, fn func(*domain.CheckoutSession) error) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if id == "" {
		return domain.ErrEmptySessionID
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()
		// Insert a placeholder so the row lock below always has a row to hold.
		placeholder := sessionRecord{ID: string(id), ExpiresAt: now, CreatedAt: now, UpdatedAt: now}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&placeholder).Error; err != nil {
			return err
		}
		var rec sessionRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&rec, "id = ?", string(id)).Error; err != nil {
			return err
		}

		var working *domain.CheckoutSession
		if rec.ExpiresAt.After(now) {
			working = rec.toDomain()
		} else {
			fresh, err := domain.NewSession(id, now, s.ttl)
			if err != nil {
				return err
			}
			working = fresh
		}
		if err := fn(working); err != nil {
			return err
		}
		working.Touch(now, s.ttl)
		next := toRecord(working)
		return tx.Save(&next).Error
	})
	if errors.Is(err, ports.ErrNoChange) {
		return nil
	}
	return err
}

func (s *SessionStore) Delete(ctx context.Context, id domain.SessionID) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "id = ?", string(id)).Error
}

// PurgeExpired removes all expired sessions. Use for housekeeping or cron.
func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&sessionRecord{})
	return result.RowsAffected, result.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}

func toRecord(sess *domain.CheckoutSession) sessionRecord {
	return sessionRecord{
		ID:            string(sess.ID),
		Selections:    sess.Selections,
		LastSaves:     sess.LastSaves,
		ChosenMethods: pq.StringArray(append([]string(nil), sess.ChosenMethods...)),
		ExpiresAt:     sess.ExpiresAt,
		CreatedAt:     sess.CreatedAt,
		UpdatedAt:     sess.UpdatedAt,
	}
}

func (r sessionRecord) toDomain() *domain.CheckoutSession {
	sess := &domain.CheckoutSession{
		ID:            domain.SessionID(r.ID),
		Selections:    map[shipdomain.InstanceID]shipdomain.Selection{},
		LastSaves:     map[shipdomain.InstanceID]domain.SaveFingerprint{},
		ChosenMethods: append([]string(nil), r.ChosenMethods...),
		ExpiresAt:     r.ExpiresAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	for k, v := range r.Selections {
		sess.Selections[k] = v
	}
	for k, v := range r.LastSaves {
		sess.LastSaves[k] = v
	}
	return sess
}
