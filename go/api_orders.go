package carrierserver

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	ordershttpmapper "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/adapters/render"
	ordersdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-carrier-checkout/internal/shared/errors"
)

// OrdersAPI serves the read-only carrier views of stored orders.
type OrdersAPI struct {
	service ordersports.Service
}

// NewOrdersAPI creates an OrdersAPI backed by the provided service.
func NewOrdersAPI(service ordersports.Service) OrdersAPI {
	return OrdersAPI{service: service}
}

// AdminOrder is an order with the rendered admin carrier box.
type AdminOrder struct {
	ordershttpmapper.Order
	AdminBox string `json:"adminBox,omitempty"`
}

// Get /v1/orders/:orderId/details
// Renders the carrier section of the customer order page
func (api *OrdersAPI) OrderDetails(c *gin.Context) {
	descriptions, ok := api.describe(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.OrderDetails(&buf, descriptions); err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Get /v1/orders/:orderId/email
// Renders the carrier block appended to order emails
func (api *OrdersAPI) OrderEmail(c *gin.Context) {
	format, ok := bindQueryString(c, "format")
	if !ok {
		return
	}
	contentType := "text/html; charset=utf-8"
	switch render.Format(format) {
	case "", render.FormatHTML:
		format = string(render.FormatHTML)
	case render.FormatPlain:
		contentType = "text/plain; charset=utf-8"
	default:
		respondProblem(c, apierrors.ErrBadRequest.WithDetail("format must be html or plain"))
		return
	}
	descriptions, ok := api.describe(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.Email(&buf, descriptions, render.Format(format)); err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Get /v1/orders/:orderId/email-fields
// Lists the carriers as email order-meta fields
func (api *OrdersAPI) OrderEmailFields(c *gin.Context) {
	descriptions, ok := api.describe(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, render.EmailFields(descriptions))
}

// Get /v1/admin/orders
// Lists orders with their carrier summary column
func (api *OrdersAPI) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	orders, err := api.service.ListOrders(ctx)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	out := make([]ordershttpmapper.Order, 0, len(orders))
	for _, order := range orders {
		body, err := describeOrder(ctx, api.service, order)
		if err != nil {
			respondCheckoutError(c, err)
			return
		}
		out = append(out, body)
	}
	c.JSON(http.StatusOK, out)
}

// Get /v1/admin/orders/:orderId
// Returns an order with the admin carrier box
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	order, ok := api.load(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	descriptions, err := api.service.DescribeCarriers(ctx, order)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	var box bytes.Buffer
	if err := render.AdminBox(&box, descriptions); err != nil {
		respondCheckoutError(c, err)
		return
	}
	body := ordershttpmapper.WithDescriptions(ordershttpmapper.FromDomainOrder(order), descriptions, render.Summary(descriptions))
	c.JSON(http.StatusOK, AdminOrder{Order: body, AdminBox: box.String()})
}

func (api *OrdersAPI) load(c *gin.Context) (*ordersdomain.Order, bool) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return nil, false
	}
	order, err := api.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondCheckoutError(c, err)
		return nil, false
	}
	return order, true
}

func (api *OrdersAPI) describe(c *gin.Context) ([]ordersports.CarrierDescription, bool) {
	order, ok := api.load(c)
	if !ok {
		return nil, false
	}
	descriptions, err := api.service.DescribeCarriers(c.Request.Context(), order)
	if err != nil {
		respondCheckoutError(c, err)
		return nil, false
	}
	return descriptions, true
}
