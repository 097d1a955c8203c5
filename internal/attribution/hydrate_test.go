package attribution

import "testing"

func TestBuyLinkPrefersCartPermalinks(t *testing.T) {
	got := BuyLink([]string{"https://site.test/p/tea", " ", "https://site.test/p/coffee"}, "https://site.test/shop")
	want := "https://site.test/p/tea, https://site.test/p/coffee"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if got := BuyLink(nil, "https://site.test/shop"); got != "https://site.test/shop" {
		t.Fatalf("expected page URL fallback, got %q", got)
	}
}

func TestHydrateSetsHiddenFieldsIdempotently(t *testing.T) {
	values := Values{Source: LabelFacebookAds, LandingURL: "https://site.test/landing"}
	fields := ResolveHiddenFields(values, nil, "https://site.test/shop")

	form := NewForm()
	form.Fields["your-name"] = "An"
	Hydrate(fields, form)
	Hydrate(fields, form)

	if form.Fields[FieldCustomerSource] != LabelFacebookAds {
		t.Fatalf("customer-source = %q", form.Fields[FieldCustomerSource])
	}
	if form.Fields[FieldOrderLink] != "https://site.test/landing" {
		t.Fatalf("order-link = %q", form.Fields[FieldOrderLink])
	}
	if form.Fields[FieldBuyLink] != "https://site.test/shop" {
		t.Fatalf("buy-link = %q", form.Fields[FieldBuyLink])
	}
	if form.Fields["your-name"] != "An" {
		t.Fatal("hydration touched a user field")
	}
}

func TestHydrateToleratesNilForms(t *testing.T) {
	Hydrate(HiddenFields{}, nil, &Form{})
}
