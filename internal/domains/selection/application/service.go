package application

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/ports"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// ActionSaveCarrier names the action the save token is bound to.
const ActionSaveCarrier = "mobapp_save_carrier"

// Service implements the selection store on top of a SessionStore.
type Service struct {
	store    ports.SessionStore
	verifier ports.Verifier
	window   time.Duration
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDedupeWindow sets how long an identical save counts as a repeat.
func WithDedupeWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.window = window
		}
	}
}

func NewService(store ports.SessionStore, verifier ports.Verifier, opts ...Option) *Service {
	s := &Service{
		store:    store,
		verifier: verifier,
		window:   domain.DefaultDedupeWindow,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Session returns the live session, or an empty one when none is stored.
func (s *Service) Session(ctx context.Context, id domain.SessionID) (*domain.CheckoutSession, error) {
	if id == "" {
		return nil, mapError(domain.ErrEmptySessionID)
	}
	sess, err := s.store.Load(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return domain.NewSession(id, s.now(), 0)
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id domain.SessionID, instance shipdomain.InstanceID) (shipdomain.Selection, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return shipdomain.Selection{}, err
	}
	return sess.Selection(instance), nil
}

// Save records one selector change. Checks run in a fixed order: token,
// instance id, empty payload, then the dedupe window.
func (s *Service) Save(ctx context.Context, in ports.SaveInput) (ports.SaveResult, error) {
	if s.verifier == nil || !s.verifier.Verify(in.Session, ActionSaveCarrier, in.Token) {
		return ports.SaveResult{}, ErrUnauthorized
	}
	if in.Instance <= 0 {
		return ports.SaveResult{}, ErrInvalidInstance
	}
	if in.Session == "" {
		return ports.SaveResult{}, mapError(domain.ErrEmptySessionID)
	}
	carrier := domain.SanitizeText(in.Carrier)
	custom := domain.SanitizeText(in.CustomText)
	if carrier == "" && custom == "" {
		return ports.SaveResult{Saved: false, Reason: ports.ReasonEmpty}, nil
	}

	var result ports.SaveResult
	err := s.store.Update(ctx, in.Session, func(sess *domain.CheckoutSession) error {
		fp := domain.Fingerprint(in.Instance, carrier, custom, s.now())
		if sess.IsDuplicate(in.Instance, fp, s.window) {
			result = ports.SaveResult{Saved: true, Duplicate: true}
			return ports.ErrNoChange
		}
		sess.Apply(in.Instance, carrier, custom)
		sess.RecordSave(in.Instance, fp)
		result = ports.SaveResult{Saved: true}
		return nil
	})
	if err != nil {
		return ports.SaveResult{}, err
	}
	return result, nil
}

// ApplyFormFallback writes every submitted carrier field into the session.
// Fields not present in the submission are left untouched.
func (s *Service) ApplyFormFallback(ctx context.Context, id domain.SessionID, submission domain.FormSubmission) error {
	if id == "" {
		return mapError(domain.ErrEmptySessionID)
	}
	if submission.IsEmpty() {
		return nil
	}
	clean := submission.Sanitized()
	return s.store.Update(ctx, id, func(sess *domain.CheckoutSession) error {
		for _, instance := range clean.Instances() {
			if instance <= 0 {
				continue
			}
			if carrier, ok := clean.Carrier(instance); ok {
				sess.ApplyCarrier(instance, carrier)
			}
			if custom, ok := clean.Custom(instance); ok {
				sess.ApplyCustomText(instance, custom)
			}
		}
		return nil
	})
}

func (s *Service) SetChosenMethods(ctx context.Context, id domain.SessionID, rateIDs []string) error {
	if id == "" {
		return mapError(domain.ErrEmptySessionID)
	}
	return s.store.Update(ctx, id, func(sess *domain.CheckoutSession) error {
		sess.SetChosenMethods(rateIDs)
		return nil
	})
}

func (s *Service) IssueToken(_ context.Context, id domain.SessionID) (string, error) {
	if id == "" {
		return "", mapError(domain.ErrEmptySessionID)
	}
	if s.verifier == nil {
		return "", errors.New("token verifier not configured")
	}
	return s.verifier.Issue(id, ActionSaveCarrier), nil
}

var _ ports.Service = (*Service)(nil)
