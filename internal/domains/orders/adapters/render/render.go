// Package render formats committed order carriers for the admin order
// screen, the customer order page, transactional emails and the order list.
// Every function writes nothing when the order has no carriers.
package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
)

// Format selects an email body variant.
type Format string

const (
	FormatHTML  Format = "html"
	FormatPlain Format = "plain"
)

// EmailField is one labelled value in the email order-meta table.
type EmailField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type line struct {
	Label   string
	Carrier string
}

var (
	adminTmpl = template.Must(template.New("admin").Parse(
		`<div class="mobapp-transportistas-admin"><h4>Transportistas (Mobapp)</h4>` +
			`{{range .}}<p><strong>{{.Label}}:</strong> {{.Carrier}}</p>{{end}}</div>`))

	detailsTmpl = template.Must(template.New("details").Parse(
		`<section class="woocommerce-order-carrier"><h2>Información de transporte</h2>` +
			`{{range .}}<p><strong>{{.Label}}:</strong> {{.Carrier}}</p>{{end}}</section>`))

	emailTmpl = template.Must(template.New("email").Parse(
		`<div class="mobapp-transportistas-email"><h3>Transportistas seleccionados</h3>` +
			`{{range .}}<p><strong>{{.Label}}:</strong> {{.Carrier}}</p>{{end}}</div>`))
)

// Label names an instance the way every view shows it.
func Label(d ordersports.CarrierDescription) string {
	if d.Title != "" {
		return fmt.Sprintf("%s (instancia %d)", d.Title, d.Instance)
	}
	return fmt.Sprintf("Instancia %d", d.Instance)
}

// AdminBox renders the block shown under the shipping address in admin.
func AdminBox(w io.Writer, carriers []ordersports.CarrierDescription) error {
	return execute(w, adminTmpl, carriers)
}

// OrderDetails renders the section appended to the customer order page.
func OrderDetails(w io.Writer, carriers []ordersports.CarrierDescription) error {
	return execute(w, detailsTmpl, carriers)
}

// Email renders the block appended after the email order table.
func Email(w io.Writer, carriers []ordersports.CarrierDescription, format Format) error {
	if format != FormatPlain {
		return execute(w, emailTmpl, carriers)
	}
	if len(carriers) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("\nTransportistas:\n")
	for _, d := range carriers {
		fmt.Fprintf(&b, " - %s: %s\n", Label(d), d.Carrier)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// EmailFields lists the carriers as numbered order-meta fields.
func EmailFields(carriers []ordersports.CarrierDescription) []EmailField {
	fields := make([]EmailField, 0, len(carriers))
	for i, d := range carriers {
		label := fmt.Sprintf("Transportista (instancia %d)", d.Instance)
		if d.Title != "" {
			label = fmt.Sprintf("Transportista (%s)", d.Title)
		}
		fields = append(fields, EmailField{
			Key:   fmt.Sprintf("mobapp_carrier_%d", i+1),
			Label: label,
			Value: template.HTMLEscapeString(d.Carrier),
		})
	}
	return fields
}

// Summary is the order-list column value.
func Summary(carriers []ordersports.CarrierDescription) string {
	names := make([]string, 0, len(carriers))
	for _, d := range carriers {
		names = append(names, d.Carrier)
	}
	return strings.Join(names, ", ")
}

func execute(w io.Writer, tmpl *template.Template, carriers []ordersports.CarrierDescription) error {
	if len(carriers) == 0 {
		return nil
	}
	lines := make([]line, 0, len(carriers))
	for _, d := range carriers {
		lines = append(lines, line{Label: Label(d), Carrier: d.Carrier})
	}
	return tmpl.Execute(w, lines)
}
