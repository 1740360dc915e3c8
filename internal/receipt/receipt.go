// Package receipt renders a settled order as fixed-width plain text for the
// counter printer.
package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"coffee-pos/internal/cart"
	"coffee-pos/internal/order"
	"coffee-pos/internal/payment"
)

const width = 38

// Render produces the printable receipt for an order. storeName comes from
// the store settings; method is how the order was settled.
func Render(storeName string, o *order.Order, method payment.Method) string {
	var b strings.Builder
	rule := strings.Repeat("-", width)

	center(&b, storeName)
	center(&b, "Order "+o.Number)
	b.WriteString(rule + "\n")

	row(&b, "Order ID", o.ID)
	row(&b, "Date", o.CreatedAt.Format(time.DateTime))
	if o.Fulfillment == cart.DineIn {
		row(&b, "Dine-in", "Table "+o.Table)
	} else {
		row(&b, "Takeaway", "")
	}
	if o.CustomerName != "" {
		row(&b, "Customer", o.CustomerName)
	}
	b.WriteString(rule + "\n")

	for _, li := range o.Items {
		amount(&b, fmt.Sprintf("%dx %s", li.Quantity, li.Item.Name), li.LineTotal())
		for _, sel := range li.Selections {
			b.WriteString("   + " + sel.Name + "\n")
		}
	}
	b.WriteString(rule + "\n")

	amount(&b, "Subtotal", o.Subtotal)
	amount(&b, "Tax", o.Tax)
	amount(&b, "TOTAL", o.Total)
	row(&b, "Paid by", method.Label())
	b.WriteString(rule + "\n")
	center(&b, "Thank you, see you soon!")

	return b.String()
}

func center(b *strings.Builder, s string) {
	if pad := (width - len(s)) / 2; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(s + "\n")
}

func row(b *strings.Builder, label, value string) {
	if value == "" {
		b.WriteString(label + "\n")
		return
	}
	gap := width - len(label) - len(value)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(label + strings.Repeat(" ", gap) + value + "\n")
}

func amount(b *strings.Builder, label string, d decimal.Decimal) {
	row(b, label, "$"+d.StringFixed(2))
}
