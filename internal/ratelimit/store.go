// Package ratelimit implements the per-client fixed-window quota kept in a
// shared key-value store.
//
// The store offers only get and put-with-expiry, with no atomic increment.
// Two requests from the same client racing through CheckAndRecord can read
// the same count and both write count+1, so the limiter is best-effort: under
// concurrency it may admit up to (concurrency-1) extra requests per window.
package ratelimit

import (
	"context"
	"time"
)

// Store is the key-value capability the limiter depends on.
//
// Get reports found=false for keys that are absent or already expired.
// PutWithTTL overwrites the value and lets the store delete it after ttl.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	PutWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Record is the persisted window state for one client identity.
type Record struct {
	Count       int   `json:"count"`
	WindowStart int64 `json:"windowStart"` // epoch milliseconds
}

func (r Record) start() time.Time {
	return time.UnixMilli(r.WindowStart)
}
