package carrierserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
	shipports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/ports"
	apierrors "github.com/Apurer/go-gin-carrier-checkout/internal/shared/errors"
)

// ShippingAdminAPI exposes the per-instance settings form.
type ShippingAdminAPI struct {
	service shipports.Service
}

// NewShippingAdminAPI creates a ShippingAdminAPI backed by the provided service.
func NewShippingAdminAPI(service shipports.Service) ShippingAdminAPI {
	return ShippingAdminAPI{service: service}
}

// Get /v1/admin/shipping/instances
// Lists configured shipping instances
func (api *ShippingAdminAPI) ListInstances(c *gin.Context) {
	instances, err := api.service.Instances(c.Request.Context())
	if err != nil {
		respondShippingError(c, err)
		return
	}
	out := make([]ShippingInstance, 0, len(instances))
	for _, inst := range instances {
		out = append(out, fromInstance(inst))
	}
	c.JSON(http.StatusOK, out)
}

// Put /v1/admin/shipping/instances/:instanceId
// Creates or updates the settings of one instance
func (api *ShippingAdminAPI) ConfigureInstance(c *gin.Context) {
	id, ok := parseIDParam(c, "instanceId")
	if !ok {
		return
	}
	var payload ShippingInstanceSettings
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	inst, err := api.service.Configure(c.Request.Context(), shipdomain.InstanceID(id), payload.MethodID, payload.toDomain())
	if err != nil {
		respondShippingError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromInstance(inst))
}
