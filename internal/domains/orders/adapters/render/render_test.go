package render

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
)

func sampleCarriers() []ordersports.CarrierDescription {
	return []ordersports.CarrierDescription{
		{Instance: 5, Title: "Envío a domicilio", Carrier: "Andreani"},
		{Instance: 9, Carrier: "Flete <Juan>"},
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestViews_Golden(t *testing.T) {
	g := newGoldie(t)
	cases := []struct {
		name   string
		render func(*bytes.Buffer) error
	}{
		{"admin_box", func(b *bytes.Buffer) error { return AdminBox(b, sampleCarriers()) }},
		{"order_details", func(b *bytes.Buffer) error { return OrderDetails(b, sampleCarriers()) }},
		{"email_html", func(b *bytes.Buffer) error { return Email(b, sampleCarriers(), FormatHTML) }},
		{"email_plain", func(b *bytes.Buffer) error { return Email(b, sampleCarriers(), FormatPlain) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tc.render(&buf))
			g.Assert(t, tc.name, buf.Bytes())
		})
	}
}

func TestViews_EmptyRendersNothing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, AdminBox(&buf, nil))
	require.NoError(t, OrderDetails(&buf, nil))
	require.NoError(t, Email(&buf, nil, FormatHTML))
	require.NoError(t, Email(&buf, nil, FormatPlain))
	assert.Zero(t, buf.Len())
	assert.Empty(t, EmailFields(nil))
	assert.Empty(t, Summary(nil))
}

func TestEmailFields(t *testing.T) {
	fields := EmailFields(sampleCarriers())
	require.Len(t, fields, 2)
	assert.Equal(t, EmailField{Key: "mobapp_carrier_1", Label: "Transportista (Envío a domicilio)", Value: "Andreani"}, fields[0])
	assert.Equal(t, EmailField{Key: "mobapp_carrier_2", Label: "Transportista (instancia 9)", Value: "Flete &lt;Juan&gt;"}, fields[1])
}

func TestSummaryAndLabel(t *testing.T) {
	assert.Equal(t, "Andreani, Flete <Juan>", Summary(sampleCarriers()))
	assert.Equal(t, "Instancia 9", Label(ordersports.CarrierDescription{Instance: 9}))
}
