// Package checkout is an HTTP client for the carrier checkout API. It keeps
// the session cookie between calls and implements carriersync.Sender.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Apurer/go-gin-carrier-checkout/internal/clients/carriersync"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

const saveAction = "mobapp_save_carrier"

var (
	// ErrTokenRejected is returned when the save action answers 403.
	ErrTokenRejected = errors.New("checkout API rejected the request token")
	// ErrValidation is returned when order placement is blocked by notices.
	ErrValidation = errors.New("checkout API reported validation notices")
)

// SaveResult mirrors the data of the save action envelope.
type SaveResult struct {
	Saved     bool   `json:"saved"`
	Duplicate bool   `json:"duplicate"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Selector is the carrier selector rendered under a rate.
type Selector struct {
	Options       []string `json:"options"`
	AllowCustom   bool     `json:"allowCustom"`
	Carrier       string   `json:"carrier,omitempty"`
	CustomText    string   `json:"customText,omitempty"`
	CustomVisible bool     `json:"customVisible"`
}

// Rate is one quoted shipping option.
type Rate struct {
	ID         string    `json:"id"`
	MethodID   string    `json:"methodId"`
	InstanceID int64     `json:"instanceId"`
	Label      string    `json:"label"`
	Cost       float64   `json:"cost"`
	Chosen     bool      `json:"chosen"`
	Selector   *Selector `json:"selector,omitempty"`
}

// Carrier is one committed carrier of an order.
type Carrier struct {
	InstanceID  int64  `json:"instanceId"`
	Carrier     string `json:"carrier"`
	MethodTitle string `json:"methodTitle,omitempty"`
}

// ShippingLine is one shipping item of an order.
type ShippingLine struct {
	ID          int64   `json:"id"`
	MethodID    string  `json:"methodId"`
	InstanceID  int64   `json:"instanceId,omitempty"`
	MethodTitle string  `json:"methodTitle"`
	Total       float64 `json:"total"`
}

// Order is the order payload returned by placement and thank-you calls.
type Order struct {
	ID               int64          `json:"id"`
	Status           string         `json:"status"`
	ShippingLines    []ShippingLine `json:"shippingLines"`
	Carriers         []Carrier      `json:"carriers"`
	CarrierTrigger   string         `json:"carrierTrigger,omitempty"`
	CarrierSummary   string         `json:"carrierSummary,omitempty"`
	CarriersResolved bool           `json:"carriersResolved"`
}

// Notice is a blocking checkout message.
type Notice struct {
	Code     string `json:"code"`
	Instance int64  `json:"instance"`
	Message  string `json:"message"`
}

type envelope struct {
	Success bool       `json:"success"`
	Data    SaveResult `json:"data"`
}

type problem struct {
	Title      string         `json:"title"`
	Detail     string         `json:"detail"`
	Extensions map[string]any `json:"extensions"`
}

// Client talks to one checkout API as one customer session.
type Client struct {
	baseURL *url.URL
	http    *http.Client

	mu    sync.Mutex
	token string
}

// NewClient instantiates the client. A nil httpClient gets a cookie jar,
// OpenTelemetry transport and a 5s timeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("checkout base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse checkout base URL: %w", err)
	}
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("build cookie jar: %w", err)
		}
		httpClient = &http.Client{
			Timeout:   5 * time.Second,
			Jar:       jar,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{baseURL: parsed, http: httpClient}, nil
}

// Token fetches a fresh save-action token and caches it.
func (c *Client) Token(ctx context.Context) (string, error) {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/token", nil, &body); err != nil {
		return "", err
	}
	if body.Token == "" {
		return "", errors.New("checkout API returned an empty token")
	}
	c.mu.Lock()
	c.token = body.Token
	c.mu.Unlock()
	return body.Token, nil
}

// SaveCarrier posts one selection to the save action.
func (c *Client) SaveCarrier(ctx context.Context, instance shipdomain.InstanceID, carrier, custom string) (SaveResult, error) {
	token, err := c.cachedToken(ctx)
	if err != nil {
		return SaveResult{}, err
	}
	form := url.Values{
		"action":      {saveAction},
		"nonce":       {token},
		"instance_id": {strconv.FormatInt(int64(instance), 10)},
		"carrier":     {carrier},
		"custom":      {custom},
	}
	resp, err := c.send(ctx, http.MethodPost, "/v1/ajax", form)
	if err != nil {
		return SaveResult{}, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return SaveResult{}, fmt.Errorf("decode save response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusForbidden:
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		return SaveResult{}, ErrTokenRejected
	case !env.Success:
		return SaveResult{}, fmt.Errorf("save carrier failed: %s", env.Data.Message)
	}
	return env.Data, nil
}

// Send implements carriersync.Sender.
func (c *Client) Send(ctx context.Context, payload carriersync.Payload) error {
	_, err := c.SaveCarrier(ctx, payload.Instance, payload.Carrier, payload.CustomText)
	return err
}

// Rates lists the quoted rates for the session.
func (c *Client) Rates(ctx context.Context) ([]Rate, error) {
	var rates []Rate
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/rates", nil, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

// ChooseShippingMethods records the checked rate ids.
func (c *Client) ChooseShippingMethods(ctx context.Context, rateIDs []string) error {
	return c.do(ctx, http.MethodPost, "/v1/checkout/shipping-method", url.Values{"shipping_method[]": rateIDs}, nil)
}

// PlaceOrder submits the checkout form. Blocking notices are returned
// together with an error wrapping ErrValidation.
func (c *Client) PlaceOrder(ctx context.Context, carriers, customs map[shipdomain.InstanceID]string) (*Order, []Notice, error) {
	form := url.Values{}
	for id, v := range carriers {
		form.Set(fmt.Sprintf("mobapp_carrier[%d]", id), v)
	}
	for id, v := range customs {
		form.Set(fmt.Sprintf("mobapp_custom_carrier[%d]", id), v)
	}
	resp, err := c.send(ctx, http.MethodPost, "/v1/checkout/orders", form)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnprocessableEntity {
		var p struct {
			Extensions struct {
				Notices []Notice `json:"notices"`
			} `json:"extensions"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			return nil, nil, fmt.Errorf("decode validation problem: %w", err)
		}
		return nil, p.Extensions.Notices, ErrValidation
	}
	var order Order
	if err := decode(resp, &order); err != nil {
		return nil, nil, err
	}
	return &order, nil, nil
}

// ThankYou loads the thank-you view of an order, which runs the last commit.
func (c *Client) ThankYou(ctx context.Context, orderID int64) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/checkout/orders/%d/thank-you", orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) cachedToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}
	return c.Token(ctx)
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	resp, err := c.send(ctx, method, path, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, form url.Values) (*http.Response, error) {
	if c == nil || c.http == nil {
		return nil, errors.New("checkout client not configured")
	}
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call checkout API: %w", err)
	}
	return resp, nil
}

func decode(resp *http.Response, out any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		var p problem
		if err := json.NewDecoder(resp.Body).Decode(&p); err == nil && (p.Detail != "" || p.Title != "") {
			return fmt.Errorf("checkout API error %d: %s", resp.StatusCode, strings.TrimSpace(p.Title+" "+p.Detail))
		}
		return fmt.Errorf("checkout API unexpected status: %s", resp.Status)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode checkout response: %w", err)
	}
	return nil
}

var _ carriersync.Sender = (*Client)(nil)
