package attribution

import "strings"

// Hidden field names injected into storefront forms.
const (
	FieldCustomerSource = "customer-source"
	FieldOrderLink      = "order-link"
	FieldBuyLink        = "buy-link"
)

// Form is a mutable set of form fields to hydrate.
type Form struct {
	Fields map[string]string
}

func NewForm() *Form {
	return &Form{Fields: make(map[string]string)}
}

func (f *Form) ensure(name, value string) {
	if f.Fields == nil {
		f.Fields = make(map[string]string)
	}
	f.Fields[name] = value
}

// HiddenFields are the three attribution values carried by every form.
type HiddenFields struct {
	CustomerSource string `json:"customer-source"`
	OrderLink      string `json:"order-link"`
	BuyLink        string `json:"buy-link"`
}

// ResolveHiddenFields builds the hidden-field values for the current page.
// Called immediately before assembling any submission so the values
// reflect the freshest attribution state.
func ResolveHiddenFields(v Values, cartLinks []string, pageURL string) HiddenFields {
	return HiddenFields{
		CustomerSource: v.Source,
		OrderLink:      v.LandingURL,
		BuyLink:        BuyLink(cartLinks, pageURL),
	}
}

// Hydrate sets the three hidden fields on each form. Idempotent: setting
// the same values again is safe.
func Hydrate(fields HiddenFields, forms ...*Form) {
	for _, form := range forms {
		if form == nil {
			continue
		}
		form.ensure(FieldCustomerSource, fields.CustomerSource)
		form.ensure(FieldOrderLink, fields.OrderLink)
		form.ensure(FieldBuyLink, fields.BuyLink)
	}
}

// BuyLink prefers the cart item permalinks when any are present, falling
// back to the current page URL.
func BuyLink(cartLinks []string, pageURL string) string {
	links := make([]string, 0, len(cartLinks))
	for _, l := range cartLinks {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			links = append(links, trimmed)
		}
	}
	if len(links) > 0 {
		return strings.Join(links, ", ")
	}
	return pageURL
}
