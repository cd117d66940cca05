package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
)

var (
	// ErrUnauthorized signals the request token did not verify.
	ErrUnauthorized = errors.New("request token rejected")
	// ErrInvalidInstance signals a missing or non-positive instance id.
	ErrInvalidInstance = errors.New("invalid shipping instance")
	// ErrInvalidInput signals the request violated a session invariant.
	ErrInvalidInput = errors.New("invalid checkout session input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptySessionID) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
