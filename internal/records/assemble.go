package records

import (
	"fmt"
	"sort"
	"strings"
)

// Internal form-builder fields and bot-protection tokens that must never
// reach the sheet.
var (
	excludedPrefixes = []string{"_wpcf7"}
	excludedKeys     = map[string]bool{
		"g-recaptcha-response": true,
		"h-captcha-response":   true,
	}
)

// Field is one metadata column in append order.
type Field struct {
	Key   string
	Value string
}

// Assemble merges user-submitted fields with attribution metadata.
// User values always win; a metadata value only fills a key the user left
// absent or empty. User fields are laid out in sorted key order so the
// resulting column shape is stable; metadata columns follow.
func Assemble(userFields map[string]any, metadata []Field) *Record {
	rec := New()

	keys := make([]string, 0, len(userFields))
	for k := range userFields {
		if excluded(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		rec.Set(k, flatten(userFields[k]))
	}

	for _, m := range metadata {
		if existing, ok := rec.Get(m.Key); ok && existing != "" {
			continue
		}
		rec.Set(m.Key, m.Value)
	}

	return rec
}

func excluded(key string) bool {
	if excludedKeys[key] {
		return true
	}
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// flatten renders a submitted value as a cell string. Arrays (checkbox
// groups, multi-selects) become a comma-joined list of their non-empty
// elements.
func flatten(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return joinNonEmpty(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, flatten(item))
		}
		return joinNonEmpty(parts)
	case float64:
		// JSON numbers decode as float64; render integers without a
		// trailing fraction.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
