package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

func TestWithCarrierSuffix(t *testing.T) {
	assert.Equal(t, "Envío - Andreani", WithCarrierSuffix("Envío", "Andreani"))
	assert.Equal(t, "Envío - Andreani", WithCarrierSuffix("Envío - Andreani", "Andreani"))
	assert.Equal(t, "Envío - Andreani", WithCarrierSuffix("Envío - Andreani - Andreani  ", "Andreani"))
	assert.Equal(t, "Envío - OCA - Andreani", WithCarrierSuffix("Envío - OCA", "Andreani"))
	assert.Equal(t, "Envío", WithCarrierSuffix("Envío", ""))

	once := WithCarrierSuffix("Envío", "OCA")
	assert.Equal(t, once, WithCarrierSuffix(once, "OCA"))
}

func sampleOrder() *Order {
	return NewOrder("sess", []ShippingLine{
		{ID: 1, MethodID: shipdomain.MethodCustomCarrier, InstanceID: 5, MethodTitle: "Envío"},
		{ID: 2, MethodID: "flat_rate", InstanceID: 5, MethodTitle: "Tarifa plana"},
	}, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestCommitCarriers_WriteOnce(t *testing.T) {
	order := sampleOrder()
	record := CarrierRecord{
		Carriers:     map[shipdomain.InstanceID]string{5: "Andreani"},
		MethodTitles: map[shipdomain.InstanceID]string{5: "Envío"},
		Trigger:      TriggerOrderCreated,
	}
	require.NoError(t, order.CommitCarriers(record))
	assert.Equal(t, "Envío - Andreani", order.ShippingLines[0].MethodTitle)
	assert.Equal(t, "Tarifa plana", order.ShippingLines[1].MethodTitle)

	record.Carriers[5] = "OCA"
	assert.Equal(t, "Andreani", order.Carriers.Carriers[5])

	err := order.CommitCarriers(CarrierRecord{Carriers: map[shipdomain.InstanceID]string{5: "OCA"}})
	require.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Equal(t, "Envío - Andreani", order.ShippingLines[0].MethodTitle)
}

func TestCommitCarriers_RejectsEmpty(t *testing.T) {
	order := sampleOrder()
	require.ErrorIs(t, order.CommitCarriers(CarrierRecord{}), ErrEmptyRecord)
	assert.False(t, order.HasCarriers())
}

func TestCarrierRecord_EntriesSorted(t *testing.T) {
	rec := CarrierRecord{
		Carriers:     map[shipdomain.InstanceID]string{9: "OCA", 2: "Andreani"},
		MethodTitles: map[shipdomain.InstanceID]string{2: "Envío"},
	}
	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, CarrierEntry{Instance: 2, Carrier: "Andreani", MethodTitle: "Envío"}, entries[0])
	assert.Equal(t, CarrierEntry{Instance: 9, Carrier: "OCA"}, entries[1])
}

func TestClone_DoesNotShareRecord(t *testing.T) {
	order := sampleOrder()
	require.NoError(t, order.CommitCarriers(CarrierRecord{Carriers: map[shipdomain.InstanceID]string{5: "OCA"}}))
	clone := order.Clone()
	clone.Carriers.Carriers[5] = "changed"
	clone.ShippingLines[0].MethodTitle = "changed"
	assert.Equal(t, "OCA", order.Carriers.Carriers[5])
	assert.Equal(t, "Envío - OCA", order.ShippingLines[0].MethodTitle)
}

func TestTriggerAndStatus(t *testing.T) {
	assert.NoError(t, TriggerThankYou.Validate())
	assert.ErrorIs(t, Trigger("later").Validate(), ErrInvalidTrigger)
	order := sampleOrder()
	assert.ErrorIs(t, order.UpdateStatus("lost"), ErrInvalidStatus)
	require.NoError(t, order.UpdateStatus(StatusProcessing))
	assert.NoError(t, order.Validate())
}

func TestNewNotice(t *testing.T) {
	n := NewNotice(NoticeMissingCustom, 5)
	assert.Equal(t, "Por favor especifique el transportista personalizado.", n.Message)
	assert.Equal(t, shipdomain.InstanceID(5), n.Instance)
}
