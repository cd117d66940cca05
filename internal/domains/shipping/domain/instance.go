package domain

import (
	"errors"
	"strings"
)

// InstanceID identifies one configured shipping method instance within a zone.
type InstanceID int64

const (
	// MethodCustomCarrier lets the customer choose among configured carriers or type one.
	MethodCustomCarrier = "mobapp_envio_personalizado"
	// MethodPayAtDestination ships with a chosen carrier and collects freight on delivery.
	MethodPayAtDestination = "mobapp_transporte_pago_destino"
)

const (
	defaultTitle            = "Elija su método de envío"
	defaultCustomFieldLabel = "Transportista personalizado"
)

var (
	ErrInvalidInstanceID = errors.New("instance id must be greater than zero")
	ErrUnknownMethod     = errors.New("shipping method is not provided by this module")
	ErrNegativeCost      = errors.New("shipping cost must not be negative")
)

// Instance holds the settings of one shipping method instance.
type Instance struct {
	ID               InstanceID
	MethodID         string
	Title            string
	Cost             float64
	FreeShipping     bool
	Carriers         []string
	AllowCustom      bool
	CustomFieldLabel string
}

// NewInstance builds an instance with the defaults the admin form would apply.
func NewInstance(id InstanceID, methodID string) (*Instance, error) {
	inst := &Instance{
		ID:               id,
		MethodID:         methodID,
		Title:            defaultTitle,
		AllowCustom:      true,
		CustomFieldLabel: defaultCustomFieldLabel,
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// Validate enforces the instance invariants and fills blank labels.
func (i *Instance) Validate() error {
	if i.ID <= 0 {
		return ErrInvalidInstanceID
	}
	if !IsCarrierMethod(i.MethodID) {
		return ErrUnknownMethod
	}
	if i.Cost < 0 {
		return ErrNegativeCost
	}
	i.Title = strings.TrimSpace(i.Title)
	if i.Title == "" {
		i.Title = defaultTitle
	}
	i.CustomFieldLabel = strings.TrimSpace(i.CustomFieldLabel)
	if i.CustomFieldLabel == "" {
		i.CustomFieldLabel = defaultCustomFieldLabel
	}
	return nil
}

// SetCarriersText replaces the configured carriers from newline separated admin text.
func (i *Instance) SetCarriersText(raw string) {
	i.Carriers = SplitCarrierLines(raw)
}

// Options returns the carrier labels offered to the customer, in configured order.
func (i *Instance) Options() []string {
	if i == nil {
		return nil
	}
	return CarrierOptions(i.Carriers)
}

// OffersSelector reports whether the checkout should render a selector at all.
func (i *Instance) OffersSelector() bool {
	return len(i.Options()) > 0 || i.AllowCustom
}

// Clone returns a deep copy of the instance.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	clone := *i
	clone.Carriers = append([]string(nil), i.Carriers...)
	return &clone
}

// IsCarrierMethod reports whether the method id belongs to this module.
func IsCarrierMethod(methodID string) bool {
	switch methodID {
	case MethodCustomCarrier, MethodPayAtDestination:
		return true
	default:
		return false
	}
}
