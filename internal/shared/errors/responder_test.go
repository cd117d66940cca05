package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("order missing")

func respondWith(t *testing.T, r *ChainedResponder, err error) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/orders/9", nil)
	r.RespondError(c, err)
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, problem
}

func TestChainedResponder_MapsWrappedSentinel(t *testing.T) {
	r := NewChainedResponder("https://errors.example.com", SentinelMapper(ErrNotFound, errMissing))

	rec, problem := respondWith(t, r, fmt.Errorf("load: %w", errMissing))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, "https://errors.example.com"+TypeNotFound, problem.Type)
	assert.Equal(t, "load: order missing", problem.Detail)
	assert.Equal(t, "/v1/orders/9", problem.Instance)
}

func TestChainedResponder_FirstMatchWins(t *testing.T) {
	r := NewChainedResponder("",
		SentinelMapper(ErrForbidden, errMissing),
		SentinelMapper(ErrNotFound, errMissing),
	)
	rec, _ := respondWith(t, r, errMissing)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChainedResponder_Fallbacks(t *testing.T) {
	r := NewChainedResponder("", SentinelMapper(ErrNotFound, errMissing))

	rec, problem := respondWith(t, r, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, TypeInternal, problem.Type)
	assert.Equal(t, "boom", problem.Detail)

	rec, problem = respondWith(t, r, ErrBadRequest.WithDetail("bad id"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad id", problem.Detail)
}

func TestNewCheckoutBlockedProblem(t *testing.T) {
	p := NewCheckoutBlockedProblem([]string{"missing_carrier"})
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Equal(t, TypeCheckoutBlocked, p.Type)
	assert.Equal(t, []string{"missing_carrier"}, p.Extensions["notices"])
	assert.Equal(t, "Checkout Blocked: checkout blocked by carrier validation", p.Error())
}
