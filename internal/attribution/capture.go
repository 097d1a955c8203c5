package attribution

import (
	"context"
	"net/http"
	"strings"

	"github.com/maisydat/sheetbridge/pkg/config"
	"github.com/maisydat/sheetbridge/pkg/logger"
	"github.com/maisydat/sheetbridge/pkg/redis"
)

const markerValue = "1"

// Values is the attribution state resolved for one request.
type Values struct {
	SessionID  string
	LandingURL string
	Referrer   string
	Source     string
	Captured   bool
}

// Capturer owns first-touch capture: on the first eligible page view of a
// visitor it classifies the traffic source and persists the result to the
// durable cookie tier exactly once.
type Capturer struct {
	cfg    config.AttributionConfig
	redis  *redis.Client
	logger *logger.Logger
}

func NewCapturer(cfg config.AttributionConfig, client *redis.Client, logg *logger.Logger) *Capturer {
	return &Capturer{cfg: cfg, redis: client, logger: logg}
}

// transactionalURL reports whether the URL is a checkout or
// order-confirmation page, which must never become a landing page.
func transactionalURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.Contains(lower, "checkout") || strings.Contains(lower, "order-received")
}

// Capture runs the first-touch state machine for one page view. pageURL is
// the storefront page that triggered the request. Safe to call on every
// request: once the durable marker is present the stored triple is
// returned untouched.
func (c *Capturer) Capture(ctx context.Context, w http.ResponseWriter, r *http.Request, pageURL string) Values {
	cookies := NewCookieStore(w, r, c.cfg.CookieDomain, c.cfg.SecureCookies)

	sessionID := cookies.Get(ctx, CookieSessionID)
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	if v, ok := c.capturedValues(ctx, cookies, sessionID); ok {
		return v
	}

	sessions := NewSessionStore(c.redis, c.logger, sessionID, c.cfg.SessionTTL)

	landing, referrer := c.resolveFirstTouch(ctx, cookies, sessions, sessionID, pageURL, r.Referer())

	if transactionalURL(landing) {
		// A transactional page must not poison the permanent record.
		// Fall back to the last durable URL when one exists, serve
		// usable values either way, and leave the marker unset so a
		// later eligible page still captures.
		if prev := cookies.Get(ctx, CookieFirstVisitOrderLink); prev != "" && !transactionalURL(prev) {
			landing = prev
		}
		source := Classify(landing, referrer, r.UserAgent())
		return Values{SessionID: sessionID, LandingURL: landing, Referrer: referrer, Source: source}
	}

	source := Classify(landing, referrer, r.UserAgent())

	cookies.Set(ctx, CookieFirstVisitOrderLink, landing, c.cfg.DurableTTL)
	cookies.Set(ctx, CookieFirstVisitSource, source, c.cfg.DurableTTL)
	cookies.Set(ctx, CookieFirstVisitSet, markerValue, c.cfg.DurableTTL)

	cookies.Set(ctx, CookieSessionID, sessionID, c.cfg.SessionTTL)
	cookies.Set(ctx, CookieInitialURL, landing, c.cfg.SessionTTL)
	cookies.Set(ctx, CookieInitialReferrer, referrer, c.cfg.SessionTTL)
	cookies.Set(ctx, CookieCustomerSource, source, c.cfg.SessionTTL)

	sessions.Set(ctx, fieldInitialURL, landing, 0)
	sessions.Set(ctx, fieldInitialReferrer, referrer, 0)
	sessions.Set(ctx, fieldCustomerSource, source, 0)

	ctx = c.logger.WithSessionID(ctx, sessionID)
	c.logger.Info(ctx, "first touch captured: "+source)

	return Values{SessionID: sessionID, LandingURL: landing, Referrer: referrer, Source: source, Captured: true}
}

// capturedValues returns the durable triple when the marker and both
// values are present. The permanent tier is trusted unconditionally.
func (c *Capturer) capturedValues(ctx context.Context, cookies *CookieStore, sessionID string) (Values, bool) {
	if cookies.Get(ctx, CookieFirstVisitSet) == "" {
		return Values{}, false
	}
	landing := cookies.Get(ctx, CookieFirstVisitOrderLink)
	source := cookies.Get(ctx, CookieFirstVisitSource)
	if landing == "" || source == "" {
		return Values{}, false
	}
	return Values{
		SessionID:  sessionID,
		LandingURL: landing,
		Referrer:   cookies.Get(ctx, CookieInitialReferrer),
		Source:     source,
		Captured:   true,
	}, true
}

// resolveFirstTouch finds the landing URL and referrer for the current
// session: same-session ephemeral state first, then the legacy cookie pair
// (only with a matching session cookie), then the current page view.
func (c *Capturer) resolveFirstTouch(ctx context.Context, cookies *CookieStore, sessions *SessionStore, sessionID, pageURL, requestReferrer string) (string, string) {
	if stored := sessions.Get(ctx, fieldInitialURL); stored != "" {
		return stored, sessions.Get(ctx, fieldInitialReferrer)
	}

	cookieSession := cookies.Get(ctx, CookieSessionID)
	cookieURL := cookies.Get(ctx, CookieInitialURL)
	if cookieSession != "" && cookieSession == sessionID && cookieURL != "" && !transactionalURL(cookieURL) {
		return cookieURL, cookies.Get(ctx, CookieInitialReferrer)
	}

	return pageURL, requestReferrer
}
