package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Reader resolves settings from the process environment, falling back to a
// set of file defaults. Parse failures are collected and reported by Err so
// every misconfigured key shows up at once.
type Reader struct {
	lookup   func(string) (string, bool)
	defaults map[string]string
	errs     []error
}

func New(defaults map[string]string) *Reader {
	return NewWithLookup(os.LookupEnv, defaults)
}

func NewWithLookup(lookup func(string) (string, bool), defaults map[string]string) *Reader {
	normalized := make(map[string]string, len(defaults))
	for k, v := range defaults {
		normalized[ToEnvKey(k)] = v
	}
	return &Reader{lookup: lookup, defaults: normalized}
}

func (r *Reader) raw(k string) string {
	if v, ok := r.lookup(k); ok && v != "" {
		return v
	}
	return r.defaults[k]
}

func (r *Reader) Require(k string) string {
	v := strings.TrimSpace(r.raw(k))
	if v == "" {
		r.errs = append(r.errs, fmt.Errorf("missing env %s", k))
	}
	return v
}

func (r *Reader) String(k, d string) string {
	v := r.raw(k)
	if v == "" {
		return d
	}
	return v
}

func (r *Reader) Int(k string, d int) int {
	v := r.raw(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("env %s must be int", k))
		return d
	}
	return n
}

func (r *Reader) Float(k string, d float64) float64 {
	v := r.raw(k)
	if v == "" {
		return d
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("env %s must be a number", k))
		return d
	}
	return f
}

func (r *Reader) Bool(k string, d bool) bool {
	v := r.raw(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes":
		return true
	case "0", "f", "false", "n", "no":
		return false
	default:
		r.errs = append(r.errs, fmt.Errorf("env %s must be boolean", k))
		return d
	}
}

func (r *Reader) Duration(k string, d time.Duration) time.Duration {
	v := r.raw(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("env %s must be a duration (e.g. 15m)", k))
		return d
	}
	return dur
}

// List splits a comma-separated value, dropping empty entries.
func (r *Reader) List(k string, d []string) []string {
	v := r.raw(k)
	if strings.TrimSpace(v) == "" {
		return d
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (r *Reader) Err() error {
	return errors.Join(r.errs...)
}

func ToEnvKey(s string) string {
	// Uppercase and replace non-alnum with underscore
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
