package attribution

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/maisydat/sheetbridge/pkg/config"
	"github.com/maisydat/sheetbridge/pkg/logger"
)

func testAttributionConfig() config.AttributionConfig {
	return config.AttributionConfig{
		DurableTTL: 180 * 24 * time.Hour,
		SessionTTL: 24 * time.Hour,
	}
}

func testCaptureLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "attribution-test", Level: logger.ParseLevel("error"), Output: io.Discard})
}

// carryCookies copies the cookies a previous response set onto a new request.
func carryCookies(t *testing.T, rec *httptest.ResponseRecorder, r *http.Request) {
	t.Helper()
	resp := http.Response{Header: rec.Header()}
	for _, c := range resp.Cookies() {
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
}

func TestCaptureIsWriteOnce(t *testing.T) {
	capt := NewCapturer(testAttributionConfig(), nil, testCaptureLogger())

	first := httptest.NewRequest(http.MethodGet, "https://site.test/api/v1/attribution/fields", nil)
	firstRec := httptest.NewRecorder()
	got := capt.Capture(first.Context(), firstRec, first, "https://site.test/landing?utm_source=facebook_ads")

	if !got.Captured {
		t.Fatal("expected first eligible page view to capture")
	}
	if got.Source != LabelFacebookAds {
		t.Fatalf("expected %q, got %q", LabelFacebookAds, got.Source)
	}

	second := httptest.NewRequest(http.MethodGet, "https://site.test/api/v1/attribution/fields", nil)
	carryCookies(t, firstRec, second)
	secondRec := httptest.NewRecorder()
	again := capt.Capture(second.Context(), secondRec, second, "https://site.test/other-page")

	if again.LandingURL != got.LandingURL || again.Source != got.Source {
		t.Fatalf("second page view changed the record: %+v vs %+v", again, got)
	}
	if !again.Captured {
		t.Fatal("expected the durable record to be recognized")
	}
}

func TestCaptureFirstTouchBeatsLaterReferrer(t *testing.T) {
	capt := NewCapturer(testAttributionConfig(), nil, testCaptureLogger())

	first := httptest.NewRequest(http.MethodGet, "https://site.test/", nil)
	firstRec := httptest.NewRecorder()
	got := capt.Capture(first.Context(), firstRec, first, "https://site.test/")
	if got.Source != LabelDirect {
		t.Fatalf("expected direct first touch, got %q", got.Source)
	}

	second := httptest.NewRequest(http.MethodGet, "https://site.test/", nil)
	second.Header.Set("Referer", "https://www.google.com/search?q=x")
	carryCookies(t, firstRec, second)
	again := capt.Capture(second.Context(), httptest.NewRecorder(), second, "https://site.test/pricing")

	if again.Source != LabelDirect {
		t.Fatalf("later referrer overwrote the first touch: got %q", again.Source)
	}
}

func TestCaptureSkipsCheckoutLandingPages(t *testing.T) {
	capt := NewCapturer(testAttributionConfig(), nil, testCaptureLogger())

	r := httptest.NewRequest(http.MethodGet, "https://site.test/", nil)
	rec := httptest.NewRecorder()
	got := capt.Capture(r.Context(), rec, r, "https://site.test/checkout/order-received/99")

	if got.Captured {
		t.Fatal("a checkout page must not become the permanent record")
	}

	resp := http.Response{Header: rec.Header()}
	for _, c := range resp.Cookies() {
		if c.Name == CookieFirstVisitSet || c.Name == CookieFirstVisitOrderLink {
			t.Fatalf("durable cookie %q written for a checkout landing", c.Name)
		}
	}

	// The next eligible page still captures.
	next := httptest.NewRequest(http.MethodGet, "https://site.test/", nil)
	carryCookies(t, rec, next)
	nextRec := httptest.NewRecorder()
	after := capt.Capture(next.Context(), nextRec, next, "https://site.test/products/tea")

	if !after.Captured {
		t.Fatal("expected capture on the first eligible page")
	}
	if strings.Contains(after.LandingURL, "checkout") || strings.Contains(after.LandingURL, "order-received") {
		t.Fatalf("captured a transactional landing: %q", after.LandingURL)
	}
}

func TestCaptureSubstitutesDurableURLOnCheckout(t *testing.T) {
	capt := NewCapturer(testAttributionConfig(), nil, testCaptureLogger())

	r := httptest.NewRequest(http.MethodGet, "https://site.test/", nil)
	// Durable URL from an earlier visit, but no marker.
	r.AddCookie(&http.Cookie{Name: CookieFirstVisitOrderLink, Value: "https://site.test/landing"})
	got := capt.Capture(r.Context(), httptest.NewRecorder(), r, "https://site.test/checkout")

	if got.LandingURL != "https://site.test/landing" {
		t.Fatalf("expected the prior durable URL, got %q", got.LandingURL)
	}
}

func TestCaptureSessionCookieGuardsLegacyURL(t *testing.T) {
	capt := NewCapturer(testAttributionConfig(), nil, testCaptureLogger())

	// A leftover initial_url from a different session is ignored because
	// the session cookie does not match.
	r := httptest.NewRequest(http.MethodGet, "https://site.test/", nil)
	r.AddCookie(&http.Cookie{Name: CookieInitialURL, Value: "https://site.test/old-campaign"})
	r.AddCookie(&http.Cookie{Name: CookieSessionID, Value: "stale-session"})
	got := capt.Capture(r.Context(), httptest.NewRecorder(), r, "https://site.test/fresh")

	// Session cookie matches, so the legacy URL is honored.
	if got.LandingURL != "https://site.test/old-campaign" {
		t.Fatalf("expected legacy URL with matching session, got %q", got.LandingURL)
	}

	r2 := httptest.NewRequest(http.MethodGet, "https://site.test/", nil)
	r2.AddCookie(&http.Cookie{Name: CookieInitialURL, Value: "https://site.test/old-campaign"})
	got2 := capt.Capture(r2.Context(), httptest.NewRecorder(), r2, "https://site.test/fresh")

	if got2.LandingURL != "https://site.test/fresh" {
		t.Fatalf("expected the current page without a session cookie, got %q", got2.LandingURL)
	}
}
