package carrierserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	seldomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
)

// SessionCookieName is the cookie carrying the checkout session id.
const SessionCookieName = "checkout_session"

const sessionContextKey = "checkoutSession"

// SessionCookieOptions tunes the cookie written for new sessions.
type SessionCookieOptions struct {
	MaxAge int
	Secure bool
}

// SessionMiddleware resolves the checkout session of every request and
// issues a new one when the cookie is missing or not a UUID.
func SessionMiddleware(opts SessionCookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if raw, err := c.Cookie(SessionCookieName); err == nil {
			if parsed, err := uuid.Parse(raw); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, id, opts.MaxAge, "/", "", opts.Secure, true)
		}
		c.Set(sessionContextKey, seldomain.SessionID(id))
		c.Next()
	}
}

func sessionFrom(c *gin.Context) seldomain.SessionID {
	if v, ok := c.Get(sessionContextKey); ok {
		if id, ok := v.(seldomain.SessionID); ok {
			return id
		}
	}
	return ""
}
