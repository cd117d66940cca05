package carrierserver

import (
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// TokenResponse carries the save-action token.
type TokenResponse struct {
	Token string `json:"token"`
}

// AjaxResponse is the envelope of the save action.
type AjaxResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// AjaxMessage is the data of a failed save action.
type AjaxMessage struct {
	Message string `json:"message"`
}

// CarrierSelector describes the selector rendered under a rate.
type CarrierSelector struct {
	Options          []string `json:"options"`
	AllowCustom      bool     `json:"allowCustom"`
	CustomFieldLabel string   `json:"customFieldLabel"`
	Carrier          string   `json:"carrier,omitempty"`
	CustomText       string   `json:"customText,omitempty"`
	CustomVisible    bool     `json:"customVisible"`
}

// Rate is one quoted shipping option.
type Rate struct {
	ID         string           `json:"id"`
	MethodID   string           `json:"methodId"`
	InstanceID int64            `json:"instanceId"`
	Label      string           `json:"label"`
	Cost       float64          `json:"cost"`
	Chosen     bool             `json:"chosen"`
	Selector   *CarrierSelector `json:"selector,omitempty"`
}

// ChosenMethodsResponse lists the chosen rate ids.
type ChosenMethodsResponse struct {
	Chosen []string `json:"chosen"`
}

// SelectionsResponse lists the stored selections keyed by instance id.
type SelectionsResponse struct {
	Selections map[shipdomain.InstanceID]shipdomain.Selection `json:"selections"`
}

// ValidationResponse reports the notices that would block checkout.
type ValidationResponse struct {
	Valid   bool `json:"valid"`
	Notices any  `json:"notices"`
}

// ShippingInstance is the admin view of one instance.
type ShippingInstance struct {
	ID               int64    `json:"id"`
	MethodID         string   `json:"methodId"`
	Title            string   `json:"title"`
	Cost             float64  `json:"cost"`
	FreeShipping     bool     `json:"freeShipping"`
	Carriers         []string `json:"carriers"`
	Options          []string `json:"options"`
	AllowCustom      bool     `json:"allowCustom"`
	CustomFieldLabel string   `json:"customFieldLabel"`
}

// ShippingInstanceSettings is the admin form body. Carriers is the raw
// textarea content, one carrier per line.
type ShippingInstanceSettings struct {
	MethodID         string  `json:"methodId"`
	Title            string  `json:"title"`
	Cost             float64 `json:"cost"`
	FreeShipping     bool    `json:"freeShipping"`
	Carriers         string  `json:"carriers"`
	AllowCustom      *bool   `json:"allowCustom"`
	CustomFieldLabel string  `json:"customFieldLabel"`
}

func (s ShippingInstanceSettings) toDomain() shipdomain.Settings {
	allow := true
	if s.AllowCustom != nil {
		allow = *s.AllowCustom
	}
	return shipdomain.Settings{
		Title:            s.Title,
		Cost:             s.Cost,
		FreeShipping:     s.FreeShipping,
		CarriersText:     s.Carriers,
		AllowCustom:      allow,
		CustomFieldLabel: s.CustomFieldLabel,
	}
}

func fromInstance(inst *shipdomain.Instance) ShippingInstance {
	return ShippingInstance{
		ID:               int64(inst.ID),
		MethodID:         inst.MethodID,
		Title:            inst.Title,
		Cost:             inst.Cost,
		FreeShipping:     inst.FreeShipping,
		Carriers:         append([]string{}, inst.Carriers...),
		Options:          append([]string{}, inst.Options()...),
		AllowCustom:      inst.AllowCustom,
		CustomFieldLabel: inst.CustomFieldLabel,
	}
}
