package application

import (
	"context"
	"sort"
	"time"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	seldomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// Resolver turns a checkout session plus the posted form into the carrier
// values an order should carry. Posted values win over session values.
type Resolver struct {
	instances ports.InstanceLookup
}

func NewResolver(instances ports.InstanceLookup) *Resolver {
	return &Resolver{instances: instances}
}

// Validate reports the notices that must block order creation. A chosen
// instance needs a resolved value; free text only counts when the carrier
// is "custom". Numeric values are not checked against the option list.
func (r *Resolver) Validate(sess *seldomain.CheckoutSession, submission seldomain.FormSubmission) []domain.Notice {
	sub := submission.Sanitized()
	var notices []domain.Notice
	for _, id := range chosenInstances(sess) {
		carrier, custom := fieldValues(sess, sub, id)
		switch {
		case carrier == shipdomain.CustomCarrier && custom == "":
			notices = append(notices, domain.NewNotice(domain.NoticeMissingCustom, id))
		case resolvedValue(carrier, custom) == "":
			notices = append(notices, domain.NewNotice(domain.NoticeMissingCarrier, id))
		}
	}
	return notices
}

// Record resolves every carrier the session and submission name into a
// record stamped with trigger. The record is empty when nothing resolves.
func (r *Resolver) Record(ctx context.Context, sess *seldomain.CheckoutSession, submission seldomain.FormSubmission, trigger domain.Trigger, at time.Time) domain.CarrierRecord {
	record := domain.CarrierRecord{
		Carriers:     map[shipdomain.InstanceID]string{},
		MethodTitles: map[shipdomain.InstanceID]string{},
		Trigger:      trigger,
		ResolvedAt:   at,
	}
	sub := submission.Sanitized()
	for _, id := range r.candidates(sess, sub) {
		inst := r.instance(ctx, id)
		carrier, custom := fieldValues(sess, sub, id)
		label := shipdomain.ResolveLabel(inst.Options(), resolvedValue(carrier, custom))
		if label == "" {
			continue
		}
		record.Carriers[id] = label
		if inst != nil && inst.Title != "" {
			record.MethodTitles[id] = inst.Title
		}
	}
	return record
}

// candidates lists the instances to resolve. Chosen carrier rates come
// first; without any chosen rate the posted carriers are used, and without
// those every instance with a stored selection.
func (r *Resolver) candidates(sess *seldomain.CheckoutSession, sub seldomain.FormSubmission) []shipdomain.InstanceID {
	if sess != nil && len(sess.ChosenMethods) > 0 {
		return chosenInstances(sess)
	}
	var ids []shipdomain.InstanceID
	if len(sub.Carriers) > 0 {
		for id := range sub.Carriers {
			if id > 0 {
				ids = append(ids, id)
			}
		}
	} else if sess != nil {
		for id, sel := range sess.Selections {
			if id > 0 && !sel.IsEmpty() {
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// instance degrades to nil on any lookup failure so the carrier is kept
// as typed with no option list to index into.
func (r *Resolver) instance(ctx context.Context, id shipdomain.InstanceID) *shipdomain.Instance {
	if r == nil || r.instances == nil {
		return nil
	}
	inst, err := r.instances.Get(ctx, id)
	if err != nil {
		return nil
	}
	return inst
}

func chosenInstances(sess *seldomain.CheckoutSession) []shipdomain.InstanceID {
	if sess == nil {
		return nil
	}
	seen := map[shipdomain.InstanceID]struct{}{}
	var ids []shipdomain.InstanceID
	for _, rateID := range sess.ChosenMethods {
		id, ok := shipdomain.CarrierInstanceOf(rateID)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func fieldValues(sess *seldomain.CheckoutSession, sub seldomain.FormSubmission, id shipdomain.InstanceID) (carrier, custom string) {
	stored := sess.Selection(id)
	carrier, ok := sub.Carrier(id)
	if !ok {
		carrier = stored.Carrier
	}
	custom, ok = sub.Custom(id)
	if !ok {
		custom = stored.CustomText
	}
	return carrier, custom
}

// resolvedValue is the custom text when the carrier is "custom", otherwise
// the carrier itself.
func resolvedValue(carrier, custom string) string {
	if carrier == shipdomain.CustomCarrier {
		return custom
	}
	return carrier
}
