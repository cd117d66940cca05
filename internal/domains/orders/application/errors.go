package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated an order invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrValidationFailed signals the checkout cannot proceed until the
	// customer fixes the reported notices.
	ErrValidationFailed = errors.New("checkout validation failed")
	// ErrNoShipping signals the session has no chosen shipping method.
	ErrNoShipping = errors.New("no shipping method chosen")
	// ErrSessionMismatch signals a commit request from a session other than
	// the one that placed the order.
	ErrSessionMismatch = errors.New("checkout session does not own the order")
)

// ValidationError carries the notices that blocked a checkout.
type ValidationError struct {
	Notices []domain.Notice
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Notices))
	for _, n := range e.Notices {
		msgs = append(msgs, n.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidOrderID) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidTrigger) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
