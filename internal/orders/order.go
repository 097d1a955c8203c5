package orders

import (
	"fmt"
	"strconv"
	"strings"
)

// LineItem is one purchased product on a completed order.
type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Order is the completed-order payload delivered by the storefront.
// Billing and shipping are open maps because the storefront's checkout
// fields are configurable; well-known keys are first_name, last_name,
// phone, email, address_1, city.
type Order struct {
	ID            int64             `json:"id" validate:"required,gt=0"`
	Total         string            `json:"total"`
	Status        string            `json:"status"`
	CreatedAt     string            `json:"created_at"`
	PaymentMethod string            `json:"payment_method"`
	CustomerNote  string            `json:"customer_note"`
	Billing       map[string]string `json:"billing"`
	Shipping      map[string]string `json:"shipping"`
	Items         []LineItem        `json:"line_items"`
}

func (o Order) IDString() string {
	return strconv.FormatInt(o.ID, 10)
}

// FieldValue resolves one mapping source field against the order.
// Unknown fields yield "" and are skipped by the exporter.
func (o Order) FieldValue(sourceField string) string {
	switch sourceField {
	case "order_id":
		return o.IDString()
	case "order_total":
		return o.Total
	case "order_date":
		return o.CreatedAt
	case "order_status":
		return o.Status
	case "payment_method":
		return o.PaymentMethod
	case "customer_note":
		return o.CustomerNote
	case "product_names":
		return o.joinItems(func(it LineItem) string { return it.Name })
	case "product_quantities":
		return o.joinItems(func(it LineItem) string { return strconv.Itoa(it.Quantity) })
	case "product_details":
		return o.joinItems(func(it LineItem) string {
			return fmt.Sprintf("%s (x%d)", it.Name, it.Quantity)
		})
	case "billing_full_name":
		return strings.TrimSpace(o.Billing["first_name"] + " " + o.Billing["last_name"])
	}

	if key, ok := strings.CutPrefix(sourceField, "billing_"); ok {
		return o.Billing[key]
	}
	if key, ok := strings.CutPrefix(sourceField, "shipping_"); ok {
		return o.Shipping[key]
	}
	return ""
}

func (o Order) joinItems(render func(LineItem) string) string {
	parts := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		parts = append(parts, render(item))
	}
	return strings.Join(parts, ", ")
}
