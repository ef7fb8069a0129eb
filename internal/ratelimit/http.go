package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
)

// UnknownIdentity is shared by every request that carries no client IP
// header, so those clients draw from one bucket.
const UnknownIdentity = "unknown"

// ClientIdentity picks the client IP set by the edge proxy:
// CF-Connecting-IP, then the first X-Forwarded-For hop, then UnknownIdentity.
func ClientIdentity(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return UnknownIdentity
}

// SetHeaders writes the X-RateLimit-* telemetry, plus Retry-After on denial.
func SetHeaders(h http.Header, d Decision) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(d.Remaining, 0)))
	h.Set("X-RateLimit-Reset", d.ResetAt.UTC().Format("2006-01-02T15:04:05.000Z"))
	if !d.Allowed {
		h.Set("Retry-After", strconv.Itoa(d.RetryAfter))
	}
}
