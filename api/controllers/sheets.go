package controllers

import (
	"net/http"

	"github.com/maisydat/sheetbridge/api/responses"
	"github.com/maisydat/sheetbridge/api/validators"
	"github.com/maisydat/sheetbridge/pkg/config"
	"github.com/maisydat/sheetbridge/pkg/logger"
	"github.com/maisydat/sheetbridge/pkg/sheets"
)

type sheetsTestRequest struct {
	SpreadsheetID string `json:"spreadsheet_id" validate:"required"`
	// ServiceAccountJSON overrides the configured credential for this
	// probe only, so operators can vet a new key before rotating it in.
	ServiceAccountJSON string `json:"service_account_json"`
}

// SheetsTest probes connectivity to a spreadsheet and reports the outcome as
// a result payload rather than an error: a failed probe is a useful answer.
func SheetsTest(client *sheets.Client, cfg config.SheetsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body sheetsTestRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		probe := client
		if body.ServiceAccountJSON != "" {
			overrideCfg := cfg
			overrideCfg.ServiceAccountJSON = body.ServiceAccountJSON
			c, err := sheets.NewClient(overrideCfg, logg)
			if err != nil {
				responses.WriteSuccess(w, sheets.Result{
					Success: false,
					Message: "invalid service account credentials: " + err.Error(),
				})
				return
			}
			probe = c
		}

		responses.WriteSuccess(w, probe.TestConnection(ctx, body.SpreadsheetID))
	}
}
