package records

import "testing"

func TestAssembleUserValuesWin(t *testing.T) {
	rec := Assemble(
		map[string]any{"customer-source": "X"},
		[]Field{{Key: "customer-source", Value: "Y"}},
	)
	if v, _ := rec.Get("customer-source"); v != "X" {
		t.Fatalf("expected user value, got %q", v)
	}

	rec = Assemble(nil, []Field{{Key: "customer-source", Value: "Y"}})
	if v, _ := rec.Get("customer-source"); v != "Y" {
		t.Fatalf("expected metadata backfill, got %q", v)
	}
}

func TestAssembleBackfillsEmptyUserValues(t *testing.T) {
	rec := Assemble(
		map[string]any{"order-link": ""},
		[]Field{{Key: "order-link", Value: "https://site.test/landing"}},
	)
	if v, _ := rec.Get("order-link"); v != "https://site.test/landing" {
		t.Fatalf("empty user value not backfilled: %q", v)
	}
}

func TestAssembleDropsInternalFields(t *testing.T) {
	rec := Assemble(map[string]any{
		"_wpcf7":               "123",
		"_wpcf7_version":       "5.9",
		"g-recaptcha-response": "tok",
		"h-captcha-response":   "tok",
		"your-name":            "An",
	}, nil)

	if rec.Len() != 1 {
		t.Fatalf("expected only the user field, got keys %v", rec.Keys())
	}
	if v, _ := rec.Get("your-name"); v != "An" {
		t.Fatalf("your-name = %q", v)
	}
}

func TestAssembleFlattensArrays(t *testing.T) {
	rec := Assemble(map[string]any{
		"colors": []any{"red", "", "blue"},
		"count":  float64(3),
	}, nil)

	if v, _ := rec.Get("colors"); v != "red, blue" {
		t.Fatalf("colors = %q", v)
	}
	if v, _ := rec.Get("count"); v != "3" {
		t.Fatalf("count = %q", v)
	}
}

func TestRecordPreservesInsertionOrder(t *testing.T) {
	rec := New()
	rec.Set("b", "1")
	rec.Set("a", "2")
	rec.Set("b", "3")

	keys := rec.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("unexpected order: %v", keys)
	}
	if v, _ := rec.Get("b"); v != "3" {
		t.Fatalf("overwrite lost: %q", v)
	}
}
