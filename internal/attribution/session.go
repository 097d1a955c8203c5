package attribution

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// NewSessionID returns an opaque per-browsing-session token: the current
// millisecond timestamp in base36 plus a random base36 suffix. Uniqueness
// only needs to hold within a cookie's one-day lifetime.
func NewSessionID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strconv.FormatUint(rand.Uint64(), 36)
	return ts + suffix
}
