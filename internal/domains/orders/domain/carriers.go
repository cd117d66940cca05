package domain

import (
	"errors"
	"sort"
	"time"

	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// Trigger names the lifecycle point that resolved an order's carriers.
type Trigger string

const (
	TriggerOrderCreated   Trigger = "order_created"
	TriggerOrderProcessed Trigger = "order_processed"
	TriggerThankYou       Trigger = "thank_you"
)

var ErrInvalidTrigger = errors.New("invalid commit trigger")

// Validate rejects unknown triggers.
func (t Trigger) Validate() error {
	switch t {
	case TriggerOrderCreated, TriggerOrderProcessed, TriggerThankYou:
		return nil
	default:
		return ErrInvalidTrigger
	}
}

// CarrierRecord is the carrier snapshot frozen onto an order.
type CarrierRecord struct {
	Carriers     map[shipdomain.InstanceID]string
	MethodTitles map[shipdomain.InstanceID]string
	Trigger      Trigger
	ResolvedAt   time.Time
}

// CarrierEntry is one instance of a record, ready for display.
type CarrierEntry struct {
	Instance    shipdomain.InstanceID
	Carrier     string
	MethodTitle string
}

// IsEmpty reports whether the record names no carrier.
func (r CarrierRecord) IsEmpty() bool {
	return len(r.Carriers) == 0
}

// Entries lists the record ordered by instance id.
func (r CarrierRecord) Entries() []CarrierEntry {
	entries := make([]CarrierEntry, 0, len(r.Carriers))
	for id, carrier := range r.Carriers {
		entries = append(entries, CarrierEntry{Instance: id, Carrier: carrier, MethodTitle: r.MethodTitles[id]})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Instance < entries[j].Instance })
	return entries
}

// Clone returns a deep copy.
func (r CarrierRecord) Clone() CarrierRecord {
	clone := r
	clone.Carriers = make(map[shipdomain.InstanceID]string, len(r.Carriers))
	for k, v := range r.Carriers {
		clone.Carriers[k] = v
	}
	clone.MethodTitles = make(map[shipdomain.InstanceID]string, len(r.MethodTitles))
	for k, v := range r.MethodTitles {
		clone.MethodTitles[k] = v
	}
	return clone
}
