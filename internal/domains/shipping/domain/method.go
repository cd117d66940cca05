package domain

import "strings"

// ShippingMethod is the capability every carrier-selecting method provides.
type ShippingMethod interface {
	ID() string
	Instance() *Instance
	Configure(settings Settings) error
	Quote(pkg Package, selection Selection) Rate
	DescribeSelection(selection Selection) string
}

// Settings mirrors the per-instance admin form.
type Settings struct {
	Title            string
	Cost             float64
	FreeShipping     bool
	CarriersText     string
	AllowCustom      bool
	CustomFieldLabel string
}

// CarrierSelector is the carrier-choice behaviour shared by every method kind.
type CarrierSelector struct {
	instance *Instance
}

// Instance exposes the configured instance.
func (c *CarrierSelector) Instance() *Instance {
	return c.instance
}

// Configure applies admin settings, keeping the instance identity.
func (c *CarrierSelector) Configure(settings Settings) error {
	next := c.instance.Clone()
	next.Title = settings.Title
	next.Cost = settings.Cost
	next.FreeShipping = settings.FreeShipping
	next.SetCarriersText(settings.CarriersText)
	next.AllowCustom = settings.AllowCustom
	next.CustomFieldLabel = settings.CustomFieldLabel
	if err := next.Validate(); err != nil {
		return err
	}
	c.instance = next
	return nil
}

// DescribeSelection renders the selection the way the rate label shows it.
func (c *CarrierSelector) DescribeSelection(selection Selection) string {
	return strings.TrimSpace(selection.Display())
}

func (c *CarrierSelector) label(selection Selection) string {
	label := c.instance.Title
	if described := c.DescribeSelection(selection); described != "" {
		label = label + " - " + described
	}
	return label
}

type customCarrierMethod struct {
	CarrierSelector
}

func (m *customCarrierMethod) ID() string { return MethodCustomCarrier }

func (m *customCarrierMethod) Quote(_ Package, selection Selection) Rate {
	cost := m.instance.Cost
	if m.instance.FreeShipping {
		cost = 0
	}
	return Rate{
		ID:         RateID(MethodCustomCarrier, m.instance.ID),
		MethodID:   MethodCustomCarrier,
		InstanceID: m.instance.ID,
		Label:      m.label(selection),
		Cost:       cost,
	}
}

// payAtDestinationMethod never charges at checkout; freight is collected on delivery.
type payAtDestinationMethod struct {
	CarrierSelector
}

func (m *payAtDestinationMethod) ID() string { return MethodPayAtDestination }

func (m *payAtDestinationMethod) Quote(_ Package, selection Selection) Rate {
	return Rate{
		ID:         RateID(MethodPayAtDestination, m.instance.ID),
		MethodID:   MethodPayAtDestination,
		InstanceID: m.instance.ID,
		Label:      m.label(selection),
		Cost:       0,
	}
}

// NewMethod returns the method implementation for the instance's method id.
func NewMethod(instance *Instance) (ShippingMethod, error) {
	if instance == nil {
		return nil, ErrInvalidInstanceID
	}
	inst := instance.Clone()
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	selector := CarrierSelector{instance: inst}
	switch inst.MethodID {
	case MethodCustomCarrier:
		return &customCarrierMethod{CarrierSelector: selector}, nil
	case MethodPayAtDestination:
		return &payAtDestinationMethod{CarrierSelector: selector}, nil
	default:
		return nil, ErrUnknownMethod
	}
}
