package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

var (
	// ErrInvalidInput signals the request violated an instance invariant.
	ErrInvalidInput = errors.New("invalid shipping instance input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidInstanceID) ||
		errors.Is(err, domain.ErrUnknownMethod) ||
		errors.Is(err, domain.ErrNegativeCost) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
