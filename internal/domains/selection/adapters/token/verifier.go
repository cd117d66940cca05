// Package token signs per-session action tokens with HMAC-SHA256.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/ports"
)

// DefaultLifetime bounds how long an issued token keeps verifying.
const DefaultLifetime = 24 * time.Hour

var _ ports.Verifier = (*Verifier)(nil)

// Verifier issues tokens bound to a session, an action and a time tick.
// A token verifies during the tick it was issued in and the following one.
type Verifier struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

type Option func(*Verifier)

func WithLifetime(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.lifetime = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

func NewVerifier(secret []byte, opts ...Option) *Verifier {
	v := &Verifier{
		secret:   append([]byte(nil), secret...),
		lifetime: DefaultLifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

func (v *Verifier) Issue(session domain.SessionID, action string) string {
	return v.sign(v.tick(), session, action)
}

func (v *Verifier) Verify(session domain.SessionID, action, token string) bool {
	if token == "" || session == "" {
		return false
	}
	tick := v.tick()
	for _, t := range []int64{tick, tick - 1} {
		if hmac.Equal([]byte(token), []byte(v.sign(t, session, action))) {
			return true
		}
	}
	return false
}

func (v *Verifier) tick() int64 {
	half := int64(v.lifetime / 2)
	if half <= 0 {
		half = int64(DefaultLifetime / 2)
	}
	return v.now().UnixNano()/half + 1
}

func (v *Verifier) sign(tick int64, session domain.SessionID, action string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strconv.FormatInt(tick, 10)))
	mac.Write([]byte{'|'})
	mac.Write([]byte(session))
	mac.Write([]byte{'|'})
	mac.Write([]byte(action))
	return hex.EncodeToString(mac.Sum(nil))[:20]
}
