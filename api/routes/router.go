package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maisydat/sheetbridge/api/controllers"
	"github.com/maisydat/sheetbridge/api/middleware"
	"github.com/maisydat/sheetbridge/internal/attribution"
	"github.com/maisydat/sheetbridge/internal/forms"
	"github.com/maisydat/sheetbridge/internal/orders"
	"github.com/maisydat/sheetbridge/pkg/config"
	"github.com/maisydat/sheetbridge/pkg/logger"
	"github.com/maisydat/sheetbridge/pkg/sheets"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	registry *prometheus.Registry,
	capturer *attribution.Capturer,
	reader *attribution.Reader,
	formsService forms.Service,
	ordersService orders.Service,
	sheetsClient *sheets.Client,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AttributionCapture(capturer))

		r.Get("/attribution/fields", controllers.AttributionFields())
		r.Post("/forms/{formID}/submissions", controllers.SubmitForm(formsService, reader, logg))
		r.Post("/orders/completed", controllers.OrderCompleted(ordersService, reader, logg))
		r.Post("/sheets/test", controllers.SheetsTest(sheetsClient, cfg.Sheets, logg))
	})

	return r
}
