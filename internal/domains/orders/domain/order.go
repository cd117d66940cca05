package domain

import (
	"errors"
	"strings"
	"time"

	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// Status captures the checkout lifecycle stage of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

var (
	ErrInvalidOrderID = errors.New("order id must be greater than zero")
	ErrInvalidStatus  = errors.New("invalid order status")
	// ErrAlreadyResolved signals the order already carries a carrier record.
	ErrAlreadyResolved = errors.New("order carriers already resolved")
	ErrEmptyRecord     = errors.New("carrier record is empty")
)

// ShippingLine is one shipping item of an order.
type ShippingLine struct {
	ID          int64
	MethodID    string
	InstanceID  shipdomain.InstanceID
	MethodTitle string
	Total       float64
}

// Order is the persisted result of a checkout.
type Order struct {
	ID            int64
	SessionID     string
	Status        Status
	ShippingLines []ShippingLine
	Carriers      *CarrierRecord
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrder builds a pending order from the chosen shipping lines.
func NewOrder(sessionID string, lines []ShippingLine, now time.Time) *Order {
	return &Order{
		SessionID:     sessionID,
		Status:        StatusPending,
		ShippingLines: append([]ShippingLine(nil), lines...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks the order invariants.
func (o *Order) Validate() error {
	if o.ID < 0 {
		return ErrInvalidOrderID
	}
	switch o.Status {
	case StatusPending, StatusProcessing, StatusCompleted:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// UpdateStatus moves the order to status.
func (o *Order) UpdateStatus(status Status) error {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted:
		o.Status = status
		return nil
	default:
		return ErrInvalidStatus
	}
}

// HasCarriers reports whether a carrier record has been committed.
func (o *Order) HasCarriers() bool {
	return o != nil && o.Carriers != nil && !o.Carriers.IsEmpty()
}

// CommitCarriers freezes the record onto the order and suffixes each
// matching carrier shipping line title with its carrier. It fails with
// ErrAlreadyResolved when a record already exists.
func (o *Order) CommitCarriers(record CarrierRecord) error {
	if o.HasCarriers() {
		return ErrAlreadyResolved
	}
	if record.IsEmpty() {
		return ErrEmptyRecord
	}
	frozen := record.Clone()
	o.Carriers = &frozen
	for i := range o.ShippingLines {
		line := &o.ShippingLines[i]
		if !shipdomain.IsCarrierMethod(line.MethodID) {
			continue
		}
		if carrier, ok := frozen.Carriers[line.InstanceID]; ok {
			line.MethodTitle = WithCarrierSuffix(line.MethodTitle, carrier)
		}
	}
	return nil
}

// WithCarrierSuffix returns title ending in exactly one " - carrier",
// collapsing any repeated trailing copies.
func WithCarrierSuffix(title, carrier string) string {
	if carrier == "" {
		return title
	}
	suffix := " - " + carrier
	trimmed := strings.TrimRight(title, " \t")
	for strings.HasSuffix(trimmed, suffix) {
		trimmed = strings.TrimRight(strings.TrimSuffix(trimmed, suffix), " \t")
	}
	return trimmed + suffix
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.ShippingLines = append([]ShippingLine(nil), o.ShippingLines...)
	if o.Carriers != nil {
		rec := o.Carriers.Clone()
		clone.Carriers = &rec
	}
	return &clone
}
