//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-gin-carrier-checkout/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type saveEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Saved     bool   `json:"saved"`
		Duplicate bool   `json:"duplicate"`
		Message   string `json:"message"`
	} `json:"data"`
}

type emailField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type apiError struct {
	status int
}

func (e apiError) Error() string {
	return fmt.Sprintf("api error (status %d)", e.status)
}

func TestStorefrontCheckoutContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	formContentType := "application/x-www-form-urlencoded"

	pact.AddInteraction().
		Given(pacttest.StateInstanceConfigured).
		UponReceiving("a carrier save with a valid token").
		WithRequest("POST", "/v1/ajax", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Cookie", matchers.S(pacttest.SessionCookie()))
			b.Header("Content-Type", matchers.S(formContentType))
			b.Body(formContentType, []byte(saveForm(pacttest.Token).Encode()))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success": matchers.Like(true),
				"data": matchers.Map{
					"saved":     matchers.Like(true),
					"duplicate": matchers.Like(false),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateInstanceConfigured).
		UponReceiving("a carrier save with a stale token").
		WithRequest("POST", "/v1/ajax", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Cookie", matchers.S(pacttest.SessionCookie()))
			b.Header("Content-Type", matchers.S(formContentType))
			b.Body(formContentType, []byte(saveForm(pacttest.BadToken).Encode()))
		}).
		WillRespondWith(http.StatusForbidden, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success": matchers.Like(false),
				"data":    matchers.Map{"message": matchers.S("Nonce inválido")},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderCommitted).
		UponReceiving("a request for the email carrier fields of an order").
		WithRequest("GET", fmt.Sprintf("/v1/orders/%d/email-fields", pacttest.ExistingOrderID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Map{
				"key":   matchers.Term("mobapp_carrier_1", "^mobapp_carrier_[0-9]+$"),
				"label": matchers.Like("Transportista (" + pacttest.InstanceTitle + ")"),
				"value": matchers.Like("Andreani"),
			}, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateNoOrders).
		UponReceiving("a request for the carrier details of a missing order").
		WithRequest("GET", fmt.Sprintf("/v1/orders/%d/details", pacttest.MissingOrderID)).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := &storefrontClient{baseURL: fmt.Sprintf("http://%s:%d", config.Host, config.Port), http: &http.Client{Timeout: 5 * time.Second}}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		saved, err := client.save(ctx, pacttest.Token)
		if err != nil {
			return fmt.Errorf("save carrier: %w", err)
		}
		if !saved.Success || !saved.Data.Saved {
			return fmt.Errorf("expected save to succeed, got %+v", saved)
		}

		rejected, err := client.save(ctx, pacttest.BadToken)
		if err == nil || rejected.Data.Message == "" {
			return fmt.Errorf("expected 403 with message for stale token, got %+v", rejected)
		}

		fields, err := client.emailFields(ctx, pacttest.ExistingOrderID)
		if err != nil {
			return fmt.Errorf("email fields: %w", err)
		}
		if len(fields) == 0 || fields[0].Value == "" {
			return fmt.Errorf("expected carrier email fields, got %+v", fields)
		}

		if err := client.details(ctx, pacttest.MissingOrderID); err == nil {
			return fmt.Errorf("expected 404 for order %d", pacttest.MissingOrderID)
		}
		return nil
	})
	require.NoError(t, err)
}

func saveForm(token string) url.Values {
	return url.Values{
		"action":      {"mobapp_save_carrier"},
		"nonce":       {token},
		"instance_id": {fmt.Sprint(pacttest.InstanceID)},
		"carrier":     {"Andreani"},
		"custom":      {""},
	}
}

type storefrontClient struct {
	baseURL string
	http    *http.Client
}

func (c *storefrontClient) save(ctx context.Context, token string) (saveEnvelope, error) {
	var env saveEnvelope
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/ajax", strings.NewReader(saveForm(token).Encode()))
	if err != nil {
		return env, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", pacttest.SessionCookie())
	resp, err := c.http.Do(req)
	if err != nil {
		return env, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return env, err
	}
	if resp.StatusCode != http.StatusOK {
		return env, apiError{status: resp.StatusCode}
	}
	return env, nil
}

func (c *storefrontClient) emailFields(ctx context.Context, orderID int64) ([]emailField, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/orders/%d/email-fields", c.baseURL, orderID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError{status: resp.StatusCode}
	}
	var fields []emailField
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (c *storefrontClient) details(ctx context.Context, orderID int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/orders/%d/details", c.baseURL, orderID), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError{status: resp.StatusCode}
	}
	return nil
}
