package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/maisydat/sheetbridge/internal/attribution"
	"github.com/maisydat/sheetbridge/internal/orders"
	"github.com/maisydat/sheetbridge/pkg/logger"
)

func TestOrderCompleted(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	reader := attribution.NewReader()

	makeRequest := func(body string) (*httptest.ResponseRecorder, *stubOrderService) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/completed", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		stub := &stubOrderService{}
		rec := httptest.NewRecorder()
		OrderCompleted(stub, reader, logg).ServeHTTP(rec, req)
		return rec, stub
	}

	t.Run("rejects missing order id", func(t *testing.T) {
		rec, stub := makeRequest(`{"total":"250000"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing order id, got %d", rec.Code)
		}
		if stub.called {
			t.Fatalf("expected service not to be invoked")
		}
	})

	t.Run("exports valid order", func(t *testing.T) {
		body := `{"id":55,"total":"250000","status":"completed","line_items":[{"name":"Trà Ô Long","quantity":2}]}`
		rec, stub := makeRequest(body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !stub.called {
			t.Fatalf("expected ExportCompleted to be invoked")
		}
		if stub.input.Order.ID != 55 {
			t.Fatalf("unexpected order id %d", stub.input.Order.ID)
		}
		if got := stub.input.Attribution.CustomerSource; got != attribution.LabelDirect {
			t.Fatalf("expected direct fallback source, got %q", got)
		}
	})

	t.Run("duplicate outcome still returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/completed", strings.NewReader(`{"id":55}`))
		req.Header.Set("Content-Type", "application/json")
		stub := &stubOrderService{outcome: orders.ExportOutcome{Duplicate: true, Message: "order already exported"}}
		rec := httptest.NewRecorder()
		OrderCompleted(stub, reader, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for duplicate order, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "already exported") {
			t.Fatalf("expected duplicate message in body, got %s", rec.Body.String())
		}
	})
}

type stubOrderService struct {
	called  bool
	input   orders.ExportInput
	outcome orders.ExportOutcome
}

func (s *stubOrderService) ExportCompleted(ctx context.Context, input orders.ExportInput) orders.ExportOutcome {
	s.called = true
	s.input = input
	if s.outcome == (orders.ExportOutcome{}) {
		return orders.ExportOutcome{Delivered: true, Message: "row appended"}
	}
	return s.outcome
}
