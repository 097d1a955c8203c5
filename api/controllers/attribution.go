package controllers

import (
	"net/http"

	"github.com/maisydat/sheetbridge/api/middleware"
	"github.com/maisydat/sheetbridge/api/responses"
	"github.com/maisydat/sheetbridge/internal/attribution"
)

// AttributionFields serves the hidden-field values the storefront script
// injects into its forms. The capture middleware has already resolved the
// visitor's first-touch state by the time this runs.
func AttributionFields() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values := middleware.AttributionValues(r.Context())

		pageURL := r.URL.Query().Get("page_url")
		if pageURL == "" {
			pageURL = r.Referer()
		}

		cartLinks := r.URL.Query()["cart_link"]
		fields := attribution.ResolveHiddenFields(values, cartLinks, pageURL)
		responses.WriteSuccess(w, fields)
	}
}
