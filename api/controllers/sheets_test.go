package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/maisydat/sheetbridge/pkg/config"
	"github.com/maisydat/sheetbridge/pkg/logger"
)

func TestSheetsTest(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	cfg := config.SheetsConfig{DefaultSheetName: "Sheet1"}

	t.Run("rejects missing spreadsheet id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sheets/test", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		SheetsTest(nil, cfg, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing spreadsheet id, got %d", rec.Code)
		}
	})

	t.Run("reports malformed credential override as failed probe", func(t *testing.T) {
		body := `{"spreadsheet_id":"sheet-1","service_account_json":"not json"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sheets/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		SheetsTest(nil, cfg, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 with a failure result, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"success":false`) {
			t.Fatalf("expected failed result, got %s", rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "invalid service account credentials") {
			t.Fatalf("expected credential message, got %s", rec.Body.String())
		}
	})
}
