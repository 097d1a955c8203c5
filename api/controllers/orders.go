package controllers

import (
	"net/http"

	"github.com/maisydat/sheetbridge/api/responses"
	"github.com/maisydat/sheetbridge/api/validators"
	"github.com/maisydat/sheetbridge/internal/attribution"
	"github.com/maisydat/sheetbridge/internal/orders"
	"github.com/maisydat/sheetbridge/pkg/logger"
)

// OrderCompleted accepts an order-completion event and exports the mapped
// row once per order. Repeated deliveries of the same order are reported
// as duplicates, not errors.
func OrderCompleted(svc orders.Service, reader *attribution.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var order orders.Order
		if err := validators.DecodeJSONBody(r, &order); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		currentURL := r.Referer()
		hidden := attribution.HiddenFields{
			CustomerSource: reader.ResolveSource(ctx, r),
			OrderLink:      reader.ResolveLandingURL(ctx, r, currentURL),
			BuyLink:        attribution.BuyLink(nil, currentURL),
		}

		outcome := svc.ExportCompleted(ctx, orders.ExportInput{
			Order:       order,
			Attribution: hidden,
		})

		responses.WriteSuccess(w, outcome)
	}
}
