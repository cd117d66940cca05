package carrierserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CounterSource reports the process counters by instrument name.
type CounterSource interface {
	CounterTotals(ctx context.Context) (map[string]int64, error)
}

// MetricsAPI exposes the checkout counters to operators.
type MetricsAPI struct {
	counters CounterSource
}

// NewMetricsAPI creates a MetricsAPI reading from counters.
func NewMetricsAPI(counters CounterSource) MetricsAPI {
	return MetricsAPI{counters: counters}
}

// Get /v1/admin/metrics
// Returns the totals of the save, commit and quote counters
func (api *MetricsAPI) Counters(c *gin.Context) {
	totals := map[string]int64{}
	if api.counters != nil {
		var err error
		totals, err = api.counters.CounterTotals(c.Request.Context())
		if err != nil {
			respondCheckoutError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, totals)
}
