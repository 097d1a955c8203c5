package attribution

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Reader resolves attribution values from an incoming request's cookies at
// submission-processing time. It mirrors the capture priorities but reads
// only; nothing here writes state or fails the surrounding request.
type Reader struct {
	sourceRules  []sourceRule
	landingRules []landingRule
}

type sourceRule struct {
	name  string
	apply func(readCtx) (string, bool)
}

type landingRule struct {
	name  string
	apply func(readCtx) (string, bool)
}

type readCtx struct {
	cookie     func(string) string
	referrer   string
	host       string
	currentURL string
}

func NewReader() *Reader {
	return &Reader{
		sourceRules: []sourceRule{
			// The permanent tier is trusted unconditionally.
			{"durable_source", func(rc readCtx) (string, bool) {
				if v := rc.cookie(CookieFirstVisitSource); v != "" {
					return v, true
				}
				return "", false
			}},
			{"legacy_source", func(rc readCtx) (string, bool) {
				if v := rc.cookie(CookieCustomerSource); v != "" {
					return v, true
				}
				return "", false
			}},
		},
		landingRules: []landingRule{
			{"durable_url", func(rc readCtx) (string, bool) {
				v := rc.cookie(CookieFirstVisitOrderLink)
				if validLandingURL(v) {
					return v, true
				}
				return "", false
			}},
			// The legacy cookie is only trusted alongside a session
			// cookie: without one it may be a stale leftover from an
			// unrelated earlier session.
			{"legacy_url", func(rc readCtx) (string, bool) {
				v := rc.cookie(CookieInitialURL)
				if validLandingURL(v) && rc.cookie(CookieSessionID) != "" {
					return v, true
				}
				return "", false
			}},
			{"same_origin_referrer", func(rc readCtx) (string, bool) {
				ref := rc.referrer
				if ref == "" || transactionalURL(ref) {
					return "", false
				}
				refHost := hostOf(ref)
				if refHost == strings.ToLower(rc.host) || rc.host == "" {
					return ref, true
				}
				return "", false
			}},
		},
	}
}

// ResolveSource returns the visitor's traffic source from request cookies,
// falling back to the direct label when no tier has a value.
func (rd *Reader) ResolveSource(_ context.Context, r *http.Request) string {
	rc := readCtxFrom(r, "")
	for _, rule := range rd.sourceRules {
		if v, ok := rule.apply(rc); ok {
			return v
		}
	}
	return LabelDirect
}

// ResolveLandingURL returns the visitor's first-touch landing URL, with the
// request's own URL as the final fallback.
func (rd *Reader) ResolveLandingURL(_ context.Context, r *http.Request, currentURL string) string {
	rc := readCtxFrom(r, currentURL)
	for _, rule := range rd.landingRules {
		if v, ok := rule.apply(rc); ok {
			return v
		}
	}
	return currentURL
}

func readCtxFrom(r *http.Request, currentURL string) readCtx {
	return readCtx{
		cookie: func(name string) string {
			c, err := r.Cookie(name)
			if err != nil {
				return ""
			}
			v, err := url.QueryUnescape(c.Value)
			if err != nil {
				return c.Value
			}
			return v
		},
		referrer:   r.Referer(),
		host:       r.Host,
		currentURL: currentURL,
	}
}

// validLandingURL accepts absolute http(s) URLs that are not checkout or
// order-confirmation pages.
func validLandingURL(raw string) bool {
	if raw == "" || transactionalURL(raw) {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
