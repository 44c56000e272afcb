package email

import (
	"strings"
	"text/template"

	"github.com/example/minishop/internal/domain/order"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(
	`Hi {{.Order.Customer.Name}},

Thank you for your order!

Order number: {{.ShortID}}
{{range .Order.Items}}  {{.ProductName}} x{{.Quantity}}  {{.Price.StringFixed 2}}
{{end}}
Total: {{.Order.Total.StringFixed 2}}

We will let you know as soon as your order ships.
Shipping to: {{.Order.Customer.Address}}
`))

var statusUpdateTmpl = template.Must(template.New("status").Parse(
	`Hi {{.Order.Customer.Name}},

Your order {{.ShortID}} moved from {{.Previous}} to {{.Order.Status}}.

Total: {{.Order.Total.StringFixed 2}}
`))

type templateData struct {
	Order    order.Order
	ShortID  string
	Previous order.Status
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// BuildConfirmationBody renders the order confirmation email body.
func BuildConfirmationBody(o order.Order) (string, error) {
	var b strings.Builder
	err := confirmationTmpl.Execute(&b, templateData{Order: o, ShortID: shortID(o.ID)})
	return b.String(), err
}

// BuildStatusUpdateBody renders the status change email body.
func BuildStatusUpdateBody(o order.Order, previous order.Status) (string, error) {
	var b strings.Builder
	err := statusUpdateTmpl.Execute(&b, templateData{Order: o, ShortID: shortID(o.ID), Previous: previous})
	return b.String(), err
}
