package carrierserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	ordersapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	selapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/application"
	shipapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/application"
	shipports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/ports"
)

func recordError(respond func(*gin.Context, error), err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/checkout/orders/1/thank-you", nil)
	respond(c, err)
	return rec
}

func TestRespondCheckoutError_Statuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("get: %w", ordersports.ErrNotFound), http.StatusNotFound},
		{"no shipping", ordersapp.ErrNoShipping, http.StatusUnprocessableEntity},
		{"bad order input", fmt.Errorf("%w: bad trigger", ordersapp.ErrInvalidInput), http.StatusBadRequest},
		{"bad instance", selapp.ErrInvalidInstance, http.StatusBadRequest},
		{"bad token", selapp.ErrUnauthorized, http.StatusForbidden},
		{"foreign session", ordersapp.ErrSessionMismatch, http.StatusForbidden},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := recordError(respondCheckoutError, tc.err)
			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRespondCheckoutError_ListsNotices(t *testing.T) {
	err := &ordersapp.ValidationError{Notices: []ordersdomain.Notice{
		ordersdomain.NewNotice(ordersdomain.NoticeMissingCarrier, 5),
	}}
	rec := recordError(respondCheckoutError, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"/problems/checkout-blocked"`)
	assert.Contains(t, rec.Body.String(), "missing_carrier")
}

func TestRespondShippingError_Statuses(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, recordError(respondShippingError, shipports.ErrNotFound).Code)
	assert.Equal(t, http.StatusBadRequest, recordError(respondShippingError, shipapp.ErrInvalidInput).Code)
	assert.Equal(t, http.StatusInternalServerError, recordError(respondShippingError, errors.New("boom")).Code)
}
