package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-carrier-checkout/internal/clients/carriersync"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/adapters/seed"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

func TestSaveCarrier_FetchesTokenAndPostsForm(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/checkout/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("/v1/ajax", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "mobapp_save_carrier", r.PostForm.Get("action"))
		assert.Equal(t, "tok-1", r.PostForm.Get("nonce"))
		assert.Equal(t, "5", r.PostForm.Get("instance_id"))
		assert.Equal(t, "Andreani", r.PostForm.Get("carrier"))
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"saved": true, "duplicate": false}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(srv.URL, nil)
	require.NoError(t, err)

	res, err := c.SaveCarrier(context.Background(), 5, "Andreani", "")
	require.NoError(t, err)
	assert.True(t, res.Saved)

	require.NoError(t, c.Send(context.Background(), carriersync.Payload{Instance: 5, Carrier: "Andreani"}))
	assert.Equal(t, 1, tokenCalls)
}

func TestSaveCarrier_RejectedTokenIsDropped(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/checkout/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "stale"})
	})
	mux.HandleFunc("/v1/ajax", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "data": map[string]any{"message": "Nonce inválido"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(srv.URL, nil)
	require.NoError(t, err)

	_, err = c.SaveCarrier(context.Background(), 5, "OCA", "")
	require.ErrorIs(t, err, ErrTokenRejected)
	_, err = c.SaveCarrier(context.Background(), 5, "OCA", "")
	require.ErrorIs(t, err, ErrTokenRejected)
	assert.Equal(t, 2, tokenCalls)
}

func TestPlaceOrder_ReturnsNotices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "custom", r.PostForm.Get("mobapp_carrier[5]"))
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"title":  "Unprocessable Entity",
			"status": 422,
			"extensions": map[string]any{
				"notices": []map[string]any{{"code": "missing_custom", "instance": 5, "message": "x"}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, nil)
	require.NoError(t, err)

	_, notices, err := c.PlaceOrder(context.Background(), map[shipdomain.InstanceID]string{5: "custom"}, nil)
	require.ErrorIs(t, err, ErrValidation)
	require.Len(t, notices, 1)
	assert.Equal(t, "missing_custom", notices[0].Code)
	assert.EqualValues(t, 5, notices[0].Instance)
}

func TestClient_ConfigureInstanceSendsJSON(t *testing.T) {
	allow := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/admin/shipping/instances/9", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "OCA\nAndreani", body["carriers"])
		assert.Equal(t, false, body["allowCustom"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":9,"methodId":"mobapp_envio_personalizado","carriers":["OCA","Andreani"],"allowCustom":false}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	inst, err := client.ConfigureInstance(context.Background(), seed.InstanceEntry{
		ID: 9, Method: "mobapp_envio_personalizado", Carriers: "OCA\nAndreani", AllowCustom: &allow,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"OCA", "Andreani"}, inst.Domain().Carriers)
	assert.False(t, inst.Domain().AllowCustom)
}
