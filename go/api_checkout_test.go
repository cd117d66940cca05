package carrierserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordershttpmapper "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/adapters/http/mapper"
	ordersmemory "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/adapters/memory"
	ordersworkflows "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/application"
	selmemory "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/adapters/memory"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/adapters/token"
	selapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/application"
	shipmemory "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/adapters/memory"
	shipapp "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/application"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	registry := shipmemory.NewRegistry()
	shipping := shipapp.NewService(registry)
	selection := selapp.NewService(
		selmemory.NewSessionStore(selmemory.WithClock(clock)),
		token.NewVerifier([]byte("test-secret"), token.WithClock(clock)),
		selapp.WithClock(clock),
	)
	orders := ordersapp.NewService(ordersmemory.NewRepository(), selection, registry, ordersapp.WithClock(clock))

	handlers := ApiHandleFunctions{
		CheckoutAPI:      NewCheckoutAPI(selection, shipping, orders, ordersworkflows.NewInlineCommitWorkflows(orders), nil),
		OrdersAPI:        NewOrdersAPI(orders),
		ShippingAdminAPI: NewShippingAdminAPI(shipping),
	}
	router := gin.New()
	router.Use(gin.Recovery())
	return &testServer{t: t, router: NewRouterWithGinEngine(router, handlers)}
}

func (s *testServer) do(method, path string, form url.Values, jsonBody string) *httptest.ResponseRecorder {
	s.t.Helper()
	var body io.Reader
	switch {
	case form != nil:
		body = strings.NewReader(form.Encode())
	case jsonBody != "":
		body = strings.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else if jsonBody != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			s.cookie = c
		}
	}
	return rec
}

func (s *testServer) token() string {
	s.t.Helper()
	rec := s.do(http.MethodGet, "/v1/checkout/token", nil, "")
	require.Equal(s.t, http.StatusOK, rec.Code)
	var body TokenResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(s.t, body.Token)
	return body.Token
}

func (s *testServer) configureInstance5() {
	s.t.Helper()
	rec := s.do(http.MethodPut, "/v1/admin/shipping/instances/5", nil,
		`{"methodId":"mobapp_envio_personalizado","title":"Envío a domicilio","cost":1500,"carriers":"OCA\nAndreani","allowCustom":true}`)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
}

type ajaxBody struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

func (s *testServer) save(tok, instance, carrier, custom string) (int, ajaxBody) {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/v1/ajax", url.Values{
		"action":      {"mobapp_save_carrier"},
		"nonce":       {tok},
		"instance_id": {instance},
		"carrier":     {carrier},
		"custom":      {custom},
	}, "")
	var body ajaxBody
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestAjax_SaveOutcomes(t *testing.T) {
	s := newTestServer(t)
	tok := s.token()

	code, body := s.save(tok, "5", "OCA", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)
	assert.Equal(t, true, body.Data["saved"])
	assert.Equal(t, false, body.Data["duplicate"])

	code, body = s.save(tok, "5", "OCA", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body.Data["duplicate"])

	code, body = s.save(tok, "5", "", "  ")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body.Data["saved"])
	assert.Equal(t, "empty", body.Data["reason"])

	code, body = s.save(tok, "0", "OCA", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, body.Success)
	assert.Equal(t, "Instance ID inválido", body.Data["message"])

	code, body = s.save("forged", "abc", "OCA", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Nonce inválido", body.Data["message"])
}

func TestCheckout_ConcreteScenario(t *testing.T) {
	s := newTestServer(t)
	s.configureInstance5()
	tok := s.token()

	rec := s.do(http.MethodPost, "/v1/checkout/shipping-method", url.Values{"shipping_method[]": {"mobapp_envio_personalizado:5"}}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	code, _ := s.save(tok, "5", "Andreani", "")
	require.Equal(t, http.StatusOK, code)

	rec = s.do(http.MethodGet, "/v1/checkout/rates", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rates []Rate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rates))
	require.Len(t, rates, 1)
	assert.Equal(t, "Envío a domicilio - Andreani", rates[0].Label)
	assert.True(t, rates[0].Chosen)
	require.NotNil(t, rates[0].Selector)
	assert.Equal(t, []string{"OCA", "Andreani"}, rates[0].Selector.Options)

	rec = s.do(http.MethodPost, "/v1/checkout/orders", url.Values{"mobapp_carrier[5]": {"Andreani"}}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order ordershttpmapper.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.True(t, order.CarriersResolved)
	assert.Equal(t, "order_created", order.CarrierTrigger)
	require.Len(t, order.Carriers, 1)
	assert.Equal(t, "Andreani", order.Carriers[0].Carrier)
	require.Len(t, order.ShippingLines, 1)
	assert.Equal(t, "Envío a domicilio - Andreani", order.ShippingLines[0].MethodTitle)

	rec = s.do(http.MethodGet, "/v1/checkout/orders/1/thank-you", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "order_created", order.CarrierTrigger)
	assert.Equal(t, "Envío a domicilio - Andreani", order.ShippingLines[0].MethodTitle)
	assert.Equal(t, "Andreani", order.CarrierSummary)

	rec = s.do(http.MethodGet, "/v1/orders/1/email?format=plain", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), " - Envío a domicilio (instancia 5): Andreani")

	rec = s.do(http.MethodGet, "/v1/orders/1/email-fields", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"label":"Transportista (Envío a domicilio)"`)
}

func TestCheckout_ValidationBlocksOrder(t *testing.T) {
	s := newTestServer(t)
	s.configureInstance5()
	s.do(http.MethodPost, "/v1/checkout/shipping-method", url.Values{"shipping_method[]": {"mobapp_envio_personalizado:5"}}, "")

	rec := s.do(http.MethodPost, "/v1/checkout/validate", url.Values{"mobapp_carrier[5]": {"custom"}}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"valid":false`)
	assert.Contains(t, rec.Body.String(), "missing_custom")

	rec = s.do(http.MethodPost, "/v1/checkout/orders", url.Values{"mobapp_carrier[5]": {"custom"}}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "missing_custom")

	rec = s.do(http.MethodGet, "/v1/admin/orders", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCheckout_ThankYouUsesOrderSession(t *testing.T) {
	s := newTestServer(t)
	s.configureInstance5()
	s.do(http.MethodPost, "/v1/checkout/shipping-method", url.Values{"shipping_method[]": {"mobapp_envio_personalizado:5"}}, "")

	// An out-of-range index passes validation but resolves to nothing.
	rec := s.do(http.MethodPost, "/v1/checkout/orders", url.Values{"mobapp_carrier[5]": {"7"}}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order ordershttpmapper.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.False(t, order.CarriersResolved)
	owner := s.cookie

	s.cookie = nil
	s.do(http.MethodPost, "/v1/checkout/shipping-method", url.Values{"shipping_method[]": {"mobapp_envio_personalizado:5"}}, "")
	code, _ := s.save(s.token(), "5", "Flete Pirata", "")
	require.Equal(t, http.StatusOK, code)

	rec = s.do(http.MethodGet, "/v1/checkout/orders/1/thank-you", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.False(t, order.CarriersResolved)
	assert.Empty(t, order.Carriers)

	s.cookie = owner
	code, _ = s.save(s.token(), "5", "Andreani", "")
	require.Equal(t, http.StatusOK, code)

	s.cookie = nil
	rec = s.do(http.MethodGet, "/v1/checkout/orders/1/thank-you", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.True(t, order.CarriersResolved)
	assert.Equal(t, "thank_you", order.CarrierTrigger)
	require.Len(t, order.Carriers, 1)
	assert.Equal(t, "Andreani", order.Carriers[0].Carrier)
	assert.Equal(t, "Envío a domicilio - Andreani", order.ShippingLines[0].MethodTitle)
}

func TestCheckout_ReviewFormFallback(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/v1/checkout/review", url.Values{
		"mobapp_carrier[7]":        {"custom"},
		"mobapp_custom_carrier[7]": {"Flete Juan"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"selections":{"7":{"carrier":"custom","customText":"Flete Juan"}}}`, rec.Body.String())
}

func TestOrders_BadAndMissingIDs(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/v1/orders/abc/details", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/v1/orders/42/details", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/v1/orders/42/email?format=pdf", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShippingAdmin_RejectsUnknownMethod(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPut, "/v1/admin/shipping/instances/3", nil, `{"methodId":"flat_rate"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.configureInstance5()
	rec = s.do(http.MethodGet, "/v1/admin/shipping/instances", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []ShippingInstance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, []string{"OCA", "Andreani"}, list[0].Options)
}
