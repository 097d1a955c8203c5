package middleware

import (
	"context"
	"net/http"

	"github.com/maisydat/sheetbridge/internal/attribution"
)

type attributionKey struct{}

// AttributionCapture runs the first-touch capture on every request passing
// through it and stores the resolved values in the request context. The
// page that triggered the call is taken from the page_url query parameter
// when present, else from the Referer header.
func AttributionCapture(capt *attribution.Capturer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pageURL := r.URL.Query().Get("page_url")
			if pageURL == "" {
				pageURL = r.Referer()
			}

			values := capt.Capture(r.Context(), w, r, pageURL)
			ctx := WithAttribution(r.Context(), values)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithAttribution(ctx context.Context, values attribution.Values) context.Context {
	return context.WithValue(ctx, attributionKey{}, values)
}

// AttributionValues returns the values the capture middleware resolved for
// this request. The zero value means the middleware did not run.
func AttributionValues(ctx context.Context) attribution.Values {
	values, _ := ctx.Value(attributionKey{}).(attribution.Values)
	return values
}
