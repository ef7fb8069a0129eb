package courier

import "net/http"

// CORS holds the static origin allow-list. Matching is exact: no wildcards
// and no subdomain matching.
type CORS struct {
	allowed map[string]struct{}
}

func NewCORS(origins []string) CORS {
	c := CORS{allowed: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		c.allowed[o] = struct{}{}
	}
	return c
}

// AllowOrigin reports whether origin is allow-listed. The literal "null"
// origin (sandboxed frames, file:// pages) is never allowed.
func (c CORS) AllowOrigin(origin string) bool {
	if origin == "" || origin == "null" {
		return false
	}
	_, ok := c.allowed[origin]
	return ok
}

// Apply sets the CORS response headers for a request from origin. A denied
// origin gets no Access-Control-Allow-Origin at all, which browsers treat
// as a refusal.
func (c CORS) Apply(h http.Header, origin string) {
	if c.AllowOrigin(origin) {
		h.Set("Access-Control-Allow-Origin", origin)
	} else {
		h.Del("Access-Control-Allow-Origin")
	}
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
	h.Set("Access-Control-Expose-Headers", "X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset, Retry-After")
	h.Set("Access-Control-Max-Age", "86400")
	h.Add("Vary", "Origin")
}
