package orders

import (
	"context"
	"io"
	"testing"

	"github.com/maisydat/sheetbridge/internal/attribution"
	"github.com/maisydat/sheetbridge/pkg/db/models"
	"github.com/maisydat/sheetbridge/pkg/logger"
	"github.com/maisydat/sheetbridge/pkg/sheets"
)

type fakeSettings struct {
	settings *models.FormSettings
	err      error
}

func (f *fakeSettings) GetSettings(_ context.Context, _ string) (*models.FormSettings, error) {
	return f.settings, f.err
}

type fakeMappings struct {
	mappings []models.FieldMapping
	err      error
}

func (f *fakeMappings) ListMappings(_ context.Context, _ string) ([]models.FieldMapping, error) {
	return f.mappings, f.err
}

type fakeFlags struct {
	exported map[string]bool
	marked   []string
}

func (f *fakeFlags) AlreadyExported(_ context.Context, orderID string) bool {
	return f.exported[orderID]
}

func (f *fakeFlags) MarkExported(_ context.Context, orderID string) {
	f.marked = append(f.marked, orderID)
}

type fakeSink struct {
	result sheets.Result
	calls  int
	keys   []string
	fields map[string]string
}

func (f *fakeSink) AppendRow(_ context.Context, _, _ string, keys []string, fields map[string]string) sheets.Result {
	f.calls++
	f.keys = keys
	f.fields = fields
	return f.result
}

func exportSettings() *models.FormSettings {
	return &models.FormSettings{
		FormID:        exportSettingsID,
		Enabled:       true,
		SpreadsheetID: "orders-sheet",
		SheetName:     "Sheet1",
	}
}

func orderMappings() []models.FieldMapping {
	return []models.FieldMapping{
		{Scope: models.MappingScopeOrder, SourceField: "billing_full_name", Destination: "your-name"},
		{Scope: models.MappingScopeOrder, SourceField: "billing_phone", Destination: "your-phone"},
		{Scope: models.MappingScopeOrder, SourceField: "order_total", Destination: "total"},
		{Scope: models.MappingScopeOrder, SourceField: "product_details", Destination: "products"},
	}
}

func testOrder() Order {
	return Order{
		ID:            55,
		Total:         "250000",
		Status:        "completed",
		PaymentMethod: "COD",
		Billing:       map[string]string{"first_name": "An", "last_name": "Nguyễn", "phone": "0901"},
		Items: []LineItem{
			{Name: "Trà Ô Long", Quantity: 2},
			{Name: "Cà Phê", Quantity: 1},
		},
	}
}

func newTestOrderService(t *testing.T, settings SettingsRepository, mappings MappingRepository, flags ExportFlags, sink Sink) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "orders-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	svc, err := NewService(settings, mappings, flags, sink, nil, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestExportCompletedMapsOrderFields(t *testing.T) {
	sink := &fakeSink{result: sheets.Result{Success: true, UpdatedRows: 1}}
	flags := &fakeFlags{}
	svc := newTestOrderService(t, &fakeSettings{settings: exportSettings()}, &fakeMappings{mappings: orderMappings()}, flags, sink)

	outcome := svc.ExportCompleted(context.Background(), ExportInput{
		Order: testOrder(),
		Attribution: attribution.HiddenFields{
			CustomerSource: attribution.LabelFacebookAds,
			OrderLink:      "https://site.test/landing",
		},
	})

	if !outcome.Delivered {
		t.Fatalf("expected delivery, got %+v", outcome)
	}
	if sink.fields["your-name"] != "An Nguyễn" {
		t.Fatalf("your-name = %q", sink.fields["your-name"])
	}
	if sink.fields["your-phone"] != "0901" {
		t.Fatalf("your-phone = %q", sink.fields["your-phone"])
	}
	if sink.fields["products"] != "Trà Ô Long (x2), Cà Phê (x1)" {
		t.Fatalf("products = %q", sink.fields["products"])
	}
	if sink.fields["source"] != "woocommerce" {
		t.Fatalf("source = %q", sink.fields["source"])
	}
	if sink.fields["order_id"] != "55" {
		t.Fatalf("order_id = %q", sink.fields["order_id"])
	}
	if sink.fields[attribution.FieldCustomerSource] != attribution.LabelFacebookAds {
		t.Fatalf("customer-source = %q", sink.fields[attribution.FieldCustomerSource])
	}
	if len(flags.marked) != 1 || flags.marked[0] != "55" {
		t.Fatalf("export flag not set: %v", flags.marked)
	}
}

func TestExportCompletedSkipsDuplicates(t *testing.T) {
	sink := &fakeSink{result: sheets.Result{Success: true, UpdatedRows: 1}}
	flags := &fakeFlags{exported: map[string]bool{"55": true}}
	svc := newTestOrderService(t, &fakeSettings{settings: exportSettings()}, &fakeMappings{mappings: orderMappings()}, flags, sink)

	outcome := svc.ExportCompleted(context.Background(), ExportInput{Order: testOrder()})

	if !outcome.Duplicate {
		t.Fatalf("expected duplicate outcome, got %+v", outcome)
	}
	if sink.calls != 0 {
		t.Fatal("duplicate order reached the sink")
	}
}

func TestExportCompletedKeepsFlagUnsetOnSinkFailure(t *testing.T) {
	sink := &fakeSink{result: sheets.Result{Success: false, Message: "no rows appended"}}
	flags := &fakeFlags{}
	svc := newTestOrderService(t, &fakeSettings{settings: exportSettings()}, &fakeMappings{mappings: orderMappings()}, flags, sink)

	outcome := svc.ExportCompleted(context.Background(), ExportInput{Order: testOrder()})

	if outcome.Delivered {
		t.Fatal("failed append reported as delivered")
	}
	if len(flags.marked) != 0 {
		t.Fatal("export flag set despite sink failure")
	}
}

func TestExportCompletedRequiresConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		settings *models.FormSettings
		mappings []models.FieldMapping
	}{
		{"no settings", nil, orderMappings()},
		{"disabled", &models.FormSettings{FormID: exportSettingsID, SpreadsheetID: "s"}, orderMappings()},
		{"no mappings", exportSettings(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			svc := newTestOrderService(t, &fakeSettings{settings: tt.settings}, &fakeMappings{mappings: tt.mappings}, &fakeFlags{}, sink)

			outcome := svc.ExportCompleted(context.Background(), ExportInput{Order: testOrder()})

			if outcome.Delivered || sink.calls != 0 {
				t.Fatalf("unconfigured export reached the sink: %+v", outcome)
			}
		})
	}
}

func TestOrderFieldValues(t *testing.T) {
	order := testOrder()
	order.CustomerNote = "giao giờ hành chính"

	tests := []struct {
		field string
		want  string
	}{
		{"order_id", "55"},
		{"order_total", "250000"},
		{"order_status", "completed"},
		{"payment_method", "COD"},
		{"customer_note", "giao giờ hành chính"},
		{"product_names", "Trà Ô Long, Cà Phê"},
		{"product_quantities", "2, 1"},
		{"billing_full_name", "An Nguyễn"},
		{"billing_phone", "0901"},
		{"shipping_city", ""},
		{"unknown_field", ""},
	}

	for _, tt := range tests {
		if got := order.FieldValue(tt.field); got != tt.want {
			t.Fatalf("FieldValue(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}
