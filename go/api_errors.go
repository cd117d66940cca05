package carrierserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	ordersapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	selapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/application"
	shipapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/application"
	shipports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/ports"
	apierrors "github.com/Apurer/go-gin-carrier-checkout/internal/shared/errors"
)

var (
	checkoutResponder = apierrors.NewChainedResponder("",
		mapCheckoutBlocked,
		apierrors.SentinelMapper(apierrors.ErrNotFound, ordersports.ErrNotFound),
		apierrors.SentinelMapper(apierrors.ErrUnprocessable, ordersapp.ErrNoShipping),
		apierrors.SentinelMapper(apierrors.ErrBadRequest,
			ordersapp.ErrInvalidInput, selapp.ErrInvalidInput, selapp.ErrInvalidInstance),
		apierrors.SentinelMapper(apierrors.ErrForbidden, selapp.ErrUnauthorized, ordersapp.ErrSessionMismatch),
	)

	shippingResponder = apierrors.NewChainedResponder("",
		apierrors.SentinelMapper(apierrors.ErrNotFound, shipports.ErrNotFound),
		apierrors.SentinelMapper(apierrors.ErrBadRequest, shipapp.ErrInvalidInput),
	)
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// mapCheckoutBlocked exposes the validation notices so the storefront can
// show them next to each selector.
func mapCheckoutBlocked(err error) (apierrors.ProblemDetail, bool) {
	var verr *ordersapp.ValidationError
	if !errors.As(err, &verr) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.NewCheckoutBlockedProblem(verr.Notices), true
}

func respondCheckoutError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	checkoutResponder.RespondError(c, err)
}

func respondShippingError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	shippingResponder.RespondError(c, err)
}
