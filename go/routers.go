package carrierserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the session middleware and every route to an
// existing gin engine. Middleware already on the engine runs first.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.Use(SessionMiddleware(handleFunctions.SessionCookie))
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes that have no handler wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions groups the handlers of every API part.
type ApiHandleFunctions struct {
	// Routes for the checkout part of the API
	CheckoutAPI CheckoutAPI
	// Routes for the order display part of the API
	OrdersAPI OrdersAPI
	// Routes for the shipping instance admin part of the API
	ShippingAdminAPI ShippingAdminAPI
	// Routes for the operator counters
	MetricsAPI MetricsAPI
	// SessionCookie configures the checkout session cookie.
	SessionCookie SessionCookieOptions
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"IssueToken", http.MethodGet, "/v1/checkout/token", handleFunctions.CheckoutAPI.IssueToken},
		{"SaveCarrier", http.MethodPost, "/v1/ajax", handleFunctions.CheckoutAPI.Ajax},
		{"ListRates", http.MethodGet, "/v1/checkout/rates", handleFunctions.CheckoutAPI.ListRates},
		{"ChooseShippingMethod", http.MethodPost, "/v1/checkout/shipping-method", handleFunctions.CheckoutAPI.ChooseShippingMethod},
		{"UpdateOrderReview", http.MethodPost, "/v1/checkout/review", handleFunctions.CheckoutAPI.UpdateOrderReview},
		{"ValidateCheckout", http.MethodPost, "/v1/checkout/validate", handleFunctions.CheckoutAPI.ValidateCheckout},
		{"PlaceOrder", http.MethodPost, "/v1/checkout/orders", handleFunctions.CheckoutAPI.PlaceOrder},
		{"ThankYou", http.MethodGet, "/v1/checkout/orders/:orderId/thank-you", handleFunctions.CheckoutAPI.ThankYou},
		{"OrderDetails", http.MethodGet, "/v1/orders/:orderId/details", handleFunctions.OrdersAPI.OrderDetails},
		{"OrderEmail", http.MethodGet, "/v1/orders/:orderId/email", handleFunctions.OrdersAPI.OrderEmail},
		{"OrderEmailFields", http.MethodGet, "/v1/orders/:orderId/email-fields", handleFunctions.OrdersAPI.OrderEmailFields},
		{"ListOrders", http.MethodGet, "/v1/admin/orders", handleFunctions.OrdersAPI.ListOrders},
		{"GetOrder", http.MethodGet, "/v1/admin/orders/:orderId", handleFunctions.OrdersAPI.GetOrder},
		{"ListInstances", http.MethodGet, "/v1/admin/shipping/instances", handleFunctions.ShippingAdminAPI.ListInstances},
		{"ConfigureInstance", http.MethodPut, "/v1/admin/shipping/instances/:instanceId", handleFunctions.ShippingAdminAPI.ConfigureInstance},
		{"Counters", http.MethodGet, "/v1/admin/metrics", handleFunctions.MetricsAPI.Counters},
	}
}
