package domain

import (
	"errors"
	"time"

	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// SessionID identifies one customer's checkout session.
type SessionID string

var ErrEmptySessionID = errors.New("session id is required")

// CheckoutSession holds the per-customer checkout state the carrier selector needs.
type CheckoutSession struct {
	ID            SessionID
	Selections    map[shipdomain.InstanceID]shipdomain.Selection
	LastSaves     map[shipdomain.InstanceID]SaveFingerprint
	ChosenMethods []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ExpiresAt     time.Time
}

// NewSession starts an empty session expiring ttl after now.
func NewSession(id SessionID, now time.Time, ttl time.Duration) (*CheckoutSession, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}
	return &CheckoutSession{
		ID:         id,
		Selections: map[shipdomain.InstanceID]shipdomain.Selection{},
		LastSaves:  map[shipdomain.InstanceID]SaveFingerprint{},
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}, nil
}

// Selection returns the stored selection, zero when none.
func (s *CheckoutSession) Selection(id shipdomain.InstanceID) shipdomain.Selection {
	if s == nil {
		return shipdomain.Selection{}
	}
	return s.Selections[id]
}

// Apply overwrites both fields for the instance. Empty values clear the
// stored field; an instance left with no values is removed.
func (s *CheckoutSession) Apply(id shipdomain.InstanceID, carrier, customText string) {
	if s.Selections == nil {
		s.Selections = map[shipdomain.InstanceID]shipdomain.Selection{}
	}
	sel := shipdomain.Selection{Carrier: carrier, CustomText: customText}
	if sel.IsEmpty() {
		delete(s.Selections, id)
		return
	}
	s.Selections[id] = sel
}

// ApplyCarrier sets only the carrier field, clearing it when empty.
func (s *CheckoutSession) ApplyCarrier(id shipdomain.InstanceID, carrier string) {
	s.Apply(id, carrier, s.Selection(id).CustomText)
}

// ApplyCustomText sets only the free-text field, clearing it when empty.
func (s *CheckoutSession) ApplyCustomText(id shipdomain.InstanceID, customText string) {
	s.Apply(id, s.Selection(id).Carrier, customText)
}

// IsDuplicate reports whether fp repeats the last accepted save inside window.
func (s *CheckoutSession) IsDuplicate(id shipdomain.InstanceID, fp SaveFingerprint, window time.Duration) bool {
	last, ok := s.LastSaves[id]
	if !ok || last.Hash != fp.Hash {
		return false
	}
	return fp.At.Sub(last.At) < window
}

// RecordSave remembers fp as the last accepted save for the instance.
func (s *CheckoutSession) RecordSave(id shipdomain.InstanceID, fp SaveFingerprint) {
	if s.LastSaves == nil {
		s.LastSaves = map[shipdomain.InstanceID]SaveFingerprint{}
	}
	s.LastSaves[id] = fp
}

// SetChosenMethods replaces the chosen rate ids, dropping blanks.
func (s *CheckoutSession) SetChosenMethods(rateIDs []string) {
	chosen := make([]string, 0, len(rateIDs))
	for _, id := range rateIDs {
		if id != "" {
			chosen = append(chosen, id)
		}
	}
	s.ChosenMethods = chosen
}

// Touch marks the session as active and slides its expiry.
func (s *CheckoutSession) Touch(now time.Time, ttl time.Duration) {
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// Expired reports whether the session outlived its expiry.
func (s *CheckoutSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Clone returns a deep copy.
func (s *CheckoutSession) Clone() *CheckoutSession {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Selections = make(map[shipdomain.InstanceID]shipdomain.Selection, len(s.Selections))
	for k, v := range s.Selections {
		clone.Selections[k] = v
	}
	clone.LastSaves = make(map[shipdomain.InstanceID]SaveFingerprint, len(s.LastSaves))
	for k, v := range s.LastSaves {
		clone.LastSaves[k] = v
	}
	clone.ChosenMethods = append([]string(nil), s.ChosenMethods...)
	return &clone
}
