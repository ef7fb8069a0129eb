package courier

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSAllowOrigin(t *testing.T) {
	c := NewCORS([]string{"https://philipmutua.xyz", "https://www.philipmutua.xyz"})

	cases := map[string]bool{
		"https://philipmutua.xyz":      true,
		"https://www.philipmutua.xyz":  true,
		"https://evil.example":         false,
		"https://blog.philipmutua.xyz": false,
		"http://philipmutua.xyz":       false,
		"https://philipmutua.xyz/":     false,
		"null":                         false,
		"":                             false,
	}
	for origin, want := range cases {
		assert.Equal(t, want, c.AllowOrigin(origin), origin)
	}
}

func TestCORSApply(t *testing.T) {
	c := NewCORS([]string{"https://philipmutua.xyz"})
	h := http.Header{}

	c.Apply(h, "https://philipmutua.xyz")

	assert.Equal(t, "https://philipmutua.xyz", h.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", h.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, X-API-Key", h.Get("Access-Control-Allow-Headers"))
	assert.Contains(t, h.Get("Access-Control-Expose-Headers"), "Retry-After")
	assert.Equal(t, "86400", h.Get("Access-Control-Max-Age"))
	assert.Equal(t, []string{"Origin"}, h.Values("Vary"))
}

func TestCORSApplyDeniedOriginSetsNoAllowOrigin(t *testing.T) {
	c := NewCORS([]string{"https://philipmutua.xyz", "null"})

	for _, origin := range []string{"null", "https://evil.example", ""} {
		h := http.Header{}
		c.Apply(h, origin)

		_, present := h["Access-Control-Allow-Origin"]
		assert.False(t, present, "origin %q", origin)
		assert.Equal(t, "POST, OPTIONS", h.Get("Access-Control-Allow-Methods"), origin)
	}
}
