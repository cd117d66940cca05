package mapper

import (
	"strconv"
	"time"

	ordersdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
)

// ShippingLine is the transport shape of one order shipping item.
type ShippingLine struct {
	ID          int64   `json:"id"`
	MethodID    string  `json:"methodId"`
	InstanceID  int64   `json:"instanceId,omitempty"`
	MethodTitle string  `json:"methodTitle"`
	Total       float64 `json:"total"`
}

// Carrier is one committed carrier as exposed over HTTP.
type Carrier struct {
	InstanceID  int64  `json:"instanceId"`
	Carrier     string `json:"carrier"`
	MethodTitle string `json:"methodTitle,omitempty"`
}

// Order represents the transport-layer shape of an order.
type Order struct {
	ID               int64          `json:"id"`
	Status           string         `json:"status"`
	ShippingLines    []ShippingLine `json:"shippingLines"`
	Carriers         []Carrier      `json:"carriers"`
	CarrierTrigger   string         `json:"carrierTrigger,omitempty"`
	CarrierSummary   string         `json:"carrierSummary,omitempty"`
	CarriersResolved bool           `json:"carriersResolved"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *ordersdomain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:               order.ID,
		Status:           string(order.Status),
		ShippingLines:    make([]ShippingLine, 0, len(order.ShippingLines)),
		Carriers:         []Carrier{},
		CarriersResolved: order.HasCarriers(),
		CreatedAt:        order.CreatedAt,
	}
	for _, line := range order.ShippingLines {
		out.ShippingLines = append(out.ShippingLines, ShippingLine{
			ID:          line.ID,
			MethodID:    line.MethodID,
			InstanceID:  int64(line.InstanceID),
			MethodTitle: line.MethodTitle,
			Total:       line.Total,
		})
	}
	if order.HasCarriers() {
		out.CarrierTrigger = string(order.Carriers.Trigger)
		for _, entry := range order.Carriers.Entries() {
			out.Carriers = append(out.Carriers, Carrier{
				InstanceID:  int64(entry.Instance),
				Carrier:     entry.Carrier,
				MethodTitle: entry.MethodTitle,
			})
		}
	}
	return out
}

// WithDescriptions replaces carrier titles with the resolved descriptions
// and sets the summary column value.
func WithDescriptions(order Order, descriptions []ordersports.CarrierDescription, summary string) Order {
	byInstance := make(map[int64]ordersports.CarrierDescription, len(descriptions))
	for _, d := range descriptions {
		byInstance[int64(d.Instance)] = d
	}
	for i := range order.Carriers {
		if d, ok := byInstance[order.Carriers[i].InstanceID]; ok && d.Title != "" {
			order.Carriers[i].MethodTitle = d.Title
		}
	}
	order.CarrierSummary = summary
	return order
}

// CarriersByInstance keys the committed carriers by instance id string,
// the shape the legacy order meta used.
func CarriersByInstance(order *ordersdomain.Order) map[string]string {
	out := map[string]string{}
	if !order.HasCarriers() {
		return out
	}
	for id, carrier := range order.Carriers.Carriers {
		out[strconv.FormatInt(int64(id), 10)] = carrier
	}
	return out
}
