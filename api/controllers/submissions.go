package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maisydat/sheetbridge/api/middleware"
	"github.com/maisydat/sheetbridge/api/responses"
	"github.com/maisydat/sheetbridge/api/validators"
	"github.com/maisydat/sheetbridge/internal/attribution"
	"github.com/maisydat/sheetbridge/internal/forms"
	pkgerrors "github.com/maisydat/sheetbridge/pkg/errors"
	"github.com/maisydat/sheetbridge/pkg/logger"
)

type submissionRequest struct {
	Fields    map[string]any `json:"fields" validate:"required"`
	CartLinks []string       `json:"cart_links"`
	PageURL   string         `json:"page_url"`
}

// SubmitForm accepts one form submission, re-resolves attribution from the
// request cookies immediately before assembly, and hands the row to the
// forms service. The response is 200 whatever the sink outcome: a sheet
// failure never fails the submission.
func SubmitForm(svc forms.Service, reader *attribution.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		formID := chi.URLParam(r, "formID")
		if formID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "form id required"))
			return
		}

		var body submissionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		currentURL := body.PageURL
		if currentURL == "" {
			currentURL = r.Referer()
		}

		hidden := attribution.HiddenFields{
			CustomerSource: reader.ResolveSource(ctx, r),
			OrderLink:      reader.ResolveLandingURL(ctx, r, currentURL),
			BuyLink:        attribution.BuyLink(body.CartLinks, currentURL),
		}

		outcome := svc.Submit(ctx, forms.SubmitInput{
			FormID:      formID,
			Fields:      body.Fields,
			Attribution: hidden,
			SubmitterIP: middleware.ClientIP(r),
		})

		responses.WriteSuccess(w, outcome)
	}
}
