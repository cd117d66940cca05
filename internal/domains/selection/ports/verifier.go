package ports

import "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"

// Verifier issues and checks per-session action tokens.
type Verifier interface {
	Issue(session domain.SessionID, action string) string
	Verify(session domain.SessionID, action, token string) bool
}
