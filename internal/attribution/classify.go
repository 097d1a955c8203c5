package attribution

import (
	"net/url"
	"strings"
)

// Channel labels. The Vietnamese strings are the exact values the
// storefront's reporting sheets expect, so they are not translated.
const (
	LabelFacebookAds  = "Quảng Cáo Facebook"
	LabelGoogleAds    = "Quảng Cáo Google"
	LabelZaloAds      = "Quảng Cáo Zalo"
	LabelTikTokAds    = "Quảng Cáo TikTok"
	LabelInstagramAds = "Quảng Cáo Instagram"
	LabelFacebook     = "Facebook"
	LabelZalo         = "Zalo"
	LabelTikTok       = "TikTok"
	LabelGoogleSEO    = "SEO Google"
	LabelShopee       = "Shopee"
	LabelLazada       = "Lazada"
	LabelTiki         = "Tiki"
	LabelDirect       = "Trực Tiếp Trên Web"
)

// signal is the normalized input a rule matches against. Built once per
// classification so the rules stay cheap and side-effect free.
type signal struct {
	rawURL    string
	lowerURL  string
	query     url.Values
	utmSource string
	hasUTM    bool
	referrer  string
	refHost   string
	userAgent string
}

func newSignal(pageURL, referrer, userAgent string) signal {
	sig := signal{
		rawURL:    pageURL,
		lowerURL:  strings.ToLower(pageURL),
		referrer:  strings.ToLower(referrer),
		userAgent: strings.ToLower(userAgent),
		refHost:   hostOf(referrer),
	}
	sig.query = queryOf(pageURL)
	if vs, ok := sig.query["utm_source"]; ok && len(vs) > 0 {
		sig.hasUTM = true
		sig.utmSource = vs[0]
	}
	return sig
}

// hostOf extracts the lowercase host of a URL, degrading to "" on any
// parse failure so a malformed referrer simply matches no rule.
func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func queryOf(raw string) url.Values {
	_, q, found := strings.Cut(raw, "?")
	if !found {
		return url.Values{}
	}
	parsed, err := url.ParseQuery(q)
	if err != nil {
		return url.Values{}
	}
	return parsed
}

func (s signal) hasParam(name string) bool {
	if _, ok := s.query[name]; ok {
		return true
	}
	return strings.Contains(s.lowerURL, name)
}

// anyMention reports whether the platform token appears in the landing URL,
// the referrer, or the user agent (in-app browsers tag the UA).
func (s signal) anyMention(token string) bool {
	return strings.Contains(s.lowerURL, token) ||
		strings.Contains(s.referrer, token) ||
		strings.Contains(s.userAgent, token)
}

// utmPlatforms maps utm_source substrings to ads labels, checked in order.
var utmPlatforms = []struct {
	token string
	label string
}{
	{"facebook", LabelFacebookAds},
	{"google", LabelGoogleAds},
	{"zalo", LabelZaloAds},
	{"tiktok", LabelTikTokAds},
}

type rule struct {
	name  string
	apply func(signal) (string, bool)
}

// rules is the classification cascade, first match wins. Order matters:
// explicit campaign tags beat click ids, click ids beat organic markers,
// organic markers beat marketplace referrers.
var rules = []rule{
	{"utm_source", func(s signal) (string, bool) {
		if !s.hasUTM {
			return "", false
		}
		val := strings.ToLower(s.utmSource)
		for _, p := range utmPlatforms {
			if strings.Contains(val, p.token) {
				return p.label, true
			}
		}
		// Unrecognized campaign sources pass through untouched.
		return s.utmSource, true
	}},
	{"fbclid", func(s signal) (string, bool) {
		if !s.hasParam("fbclid") {
			return "", false
		}
		// Meta's click id is shared across its apps; the referrer host
		// tells Instagram traffic apart from Facebook traffic.
		if strings.Contains(s.refHost, "instagram") {
			return LabelInstagramAds, true
		}
		return LabelFacebookAds, true
	}},
	{"facebook_organic", func(s signal) (string, bool) {
		if s.anyMention("facebook") {
			return LabelFacebook, true
		}
		return "", false
	}},
	{"gclid", func(s signal) (string, bool) {
		if s.hasParam("gclid") {
			return LabelGoogleAds, true
		}
		return "", false
	}},
	{"google_organic", func(s signal) (string, bool) {
		if s.hasParam("srsltid") || strings.Contains(s.referrer, "google") {
			return LabelGoogleSEO, true
		}
		return "", false
	}},
	{"ttclid", func(s signal) (string, bool) {
		if s.hasParam("ttclid") {
			return LabelTikTokAds, true
		}
		return "", false
	}},
	{"zalo", func(s signal) (string, bool) {
		if s.anyMention("zalo") {
			return LabelZalo, true
		}
		return "", false
	}},
	{"tiktok", func(s signal) (string, bool) {
		if s.anyMention("tiktok") {
			return LabelTikTok, true
		}
		return "", false
	}},
	{"marketplace", func(s signal) (string, bool) {
		for _, m := range []struct {
			token string
			label string
		}{
			{"shopee", LabelShopee},
			{"lazada", LabelLazada},
			{"tiki", LabelTiki},
		} {
			if strings.Contains(s.refHost, m.token) {
				return m.label, true
			}
		}
		return "", false
	}},
}

// Classify maps a landing URL, referrer, and user agent to a channel label.
// Pure and deterministic. Malformed inputs never fail, they just fall
// through to the direct label.
func Classify(pageURL, referrer, userAgent string) string {
	sig := newSignal(pageURL, referrer, userAgent)
	for _, r := range rules {
		if label, ok := r.apply(sig); ok {
			return label
		}
	}
	return LabelDirect
}
