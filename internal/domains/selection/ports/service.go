package ports

import (
	"context"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// Reason values reported by a save that changed nothing.
const ReasonEmpty = "empty"

// SaveInput is one save-carrier request.
type SaveInput struct {
	Session    domain.SessionID
	Instance   shipdomain.InstanceID
	Carrier    string
	CustomText string
	Token      string
}

// SaveResult reports what a save did.
type SaveResult struct {
	Saved     bool   `json:"saved"`
	Duplicate bool   `json:"duplicate"`
	Reason    string `json:"reason,omitempty"`
}

// Service exposes the selection store use cases to adapters.
type Service interface {
	Session(ctx context.Context, id domain.SessionID) (*domain.CheckoutSession, error)
	Get(ctx context.Context, id domain.SessionID, instance shipdomain.InstanceID) (shipdomain.Selection, error)
	Save(ctx context.Context, in SaveInput) (SaveResult, error)
	ApplyFormFallback(ctx context.Context, id domain.SessionID, submission domain.FormSubmission) error
	SetChosenMethods(ctx context.Context, id domain.SessionID, rateIDs []string) error
	IssueToken(ctx context.Context, id domain.SessionID) (string, error)
}
