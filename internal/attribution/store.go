package attribution

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/maisydat/sheetbridge/pkg/logger"
	"github.com/maisydat/sheetbridge/pkg/redis"
)

// Cookie names shared with the storefront script. The first_visit set is
// the durable tier (180 days); the rest are the short-lived legacy pair
// the older script version wrote for the server to read.
const (
	CookieFirstVisitSource    = "first_visit_source"
	CookieFirstVisitOrderLink = "first_visit_order_link"
	CookieFirstVisitSet       = "first_visit_set"
	CookieInitialURL          = "initial_url"
	CookieInitialReferrer     = "initial_referrer"
	CookieCustomerSource      = "customer_source"
	CookieSessionID           = "session_id"
)

// Ephemeral tier field names.
const (
	fieldInitialURL      = "initial_url"
	fieldInitialReferrer = "initial_referrer"
	fieldCustomerSource  = "customer_source"
)

// Store is one get/set surface over a persistence tier. Reads and writes
// are soft: a missing value or an unavailable backend yields "" and a
// dropped write, never an error that aborts the request.
type Store interface {
	Get(ctx context.Context, key string) string
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// CookieStore is the durable tier, backed by the visitor's cookies on the
// current request/response pair. Constructed fresh per request.
type CookieStore struct {
	r      *http.Request
	w      http.ResponseWriter
	domain string
	secure bool
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, domain string, secure bool) *CookieStore {
	return &CookieStore{r: r, w: w, domain: domain, secure: secure}
}

func (s *CookieStore) Get(_ context.Context, key string) string {
	c, err := s.r.Cookie(key)
	if err != nil {
		return ""
	}
	val, err := url.QueryUnescape(c.Value)
	if err != nil {
		return c.Value
	}
	return val
}

func (s *CookieStore) Set(_ context.Context, key, value string, ttl time.Duration) {
	if s.w == nil {
		return
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     "/",
		Domain:   s.domain,
		MaxAge:   int(ttl.Seconds()),
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	// Keep the current request consistent with what was just written so
	// later reads in the same request see the new value.
	s.r.AddCookie(&http.Cookie{Name: key, Value: url.QueryEscape(value)})
}

// SessionStore is the ephemeral tier: redis entries namespaced by session
// token with a short TTL. Backend failures are logged and swallowed.
type SessionStore struct {
	client    *redis.Client
	logger    *logger.Logger
	sessionID string
	ttl       time.Duration
}

func NewSessionStore(client *redis.Client, logg *logger.Logger, sessionID string, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, logger: logg, sessionID: sessionID, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, key string) string {
	if s.client == nil || s.sessionID == "" {
		return ""
	}
	val, err := s.client.Get(ctx, s.client.SessionKey(s.sessionID, key))
	if err != nil {
		s.logger.Warn(ctx, fmt.Sprintf("session store read failed for %s: %v", key, err))
		return ""
	}
	return val
}

func (s *SessionStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if s.client == nil || s.sessionID == "" {
		return
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	if err := s.client.Set(ctx, s.client.SessionKey(s.sessionID, key), value, ttl); err != nil {
		s.logger.Warn(ctx, fmt.Sprintf("session store write failed for %s: %v", key, err))
	}
}
