package ratelimit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const (
	DefaultWindow       = 15 * time.Minute
	DefaultMaxRequests  = 5
	DefaultStoreTimeout = 2 * time.Second

	KeyPrefix = "rate_limit:"
)

// Decision is the outcome of one CheckAndRecord call.
type Decision struct {
	Allowed bool
	// Disabled is set when no store is configured and nothing was counted.
	Disabled  bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is the wait in whole seconds; only set when denied.
	RetryAfter int
}

// Limiter is a fixed-window counter: the first request from an identity
// opens a window of fixed length, and at most maxRequests requests are
// admitted until the window ends.
type Limiter struct {
	store   Store
	max     int
	window  time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Limiter)

func WithMaxRequests(n int) Option {
	return func(l *Limiter) { l.max = n }
}

func WithWindow(d time.Duration) Option {
	return func(l *Limiter) { l.window = d }
}

// WithStoreTimeout bounds each store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(l *Limiter) { l.timeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

// New returns a limiter backed by store. A nil store disables limiting.
func New(store Store, opts ...Option) *Limiter {
	l := &Limiter{
		store:   store,
		max:     DefaultMaxRequests,
		window:  DefaultWindow,
		timeout: DefaultStoreTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.max <= 0 {
		l.max = DefaultMaxRequests
	}
	if l.window < time.Second {
		l.window = DefaultWindow
	}
	return l
}

func (l *Limiter) MaxRequests() int { return l.max }
func (l *Limiter) Window() time.Duration { return l.window }

// Key returns the store key for a client identity.
func Key(identity string) string {
	return KeyPrefix + identity
}

// CheckAndRecord counts one request for identity at now and decides whether
// it is admitted. Store failures never deny a request.
func (l *Limiter) CheckAndRecord(ctx context.Context, identity string, now time.Time) Decision {
	if l == nil || l.store == nil {
		return Decision{
			Allowed:   true,
			Disabled:  true,
			Limit:     DefaultMaxRequests,
			Remaining: DefaultMaxRequests,
			ResetAt:   now.Add(DefaultWindow),
		}
	}

	key := Key(identity)
	rec, found, err := l.read(ctx, key)
	if err != nil {
		l.logger.WarnContext(ctx, "rate limit store unavailable, allowing request",
			"key", key,
			"err", err,
		)
		return Decision{
			Allowed:   true,
			Limit:     l.max,
			Remaining: l.max - 1,
			ResetAt:   now.Add(l.window),
		}
	}

	var elapsed time.Duration
	if found {
		// Clock skew between instances can put windowStart in the future.
		elapsed = max(now.Sub(rec.start()), 0)
	}

	if !found || rec.Count < 1 || elapsed >= l.window {
		fresh := Record{Count: 1, WindowStart: now.UnixMilli()}
		l.write(ctx, key, fresh, l.window)
		return Decision{
			Allowed:   true,
			Limit:     l.max,
			Remaining: l.max - 1,
			ResetAt:   fresh.start().Add(l.window),
		}
	}

	left := l.window - elapsed
	resetAt := rec.start().Add(l.window)

	count := rec.Count + 1
	if count > l.max {
		// Nothing is written: the stored count stays at most max and the
		// window is left untouched.
		return Decision{
			Allowed:    false,
			Limit:      l.max,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: ceilSeconds(left),
		}
	}

	l.write(ctx, key, Record{Count: count, WindowStart: rec.WindowStart}, left)
	return Decision{
		Allowed:   true,
		Limit:     l.max,
		Remaining: l.max - count,
		ResetAt:   resetAt,
	}
}

func (l *Limiter) read(ctx context.Context, key string) (Record, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	raw, found, err := l.store.Get(ctx, key)
	if err != nil || !found {
		return Record{}, false, err
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		l.logger.WarnContext(ctx, "discarding malformed rate limit record", "key", key, "err", err)
		return Record{}, false, nil
	}
	return rec, true, nil
}

func (l *Limiter) write(ctx context.Context, key string, rec Record, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	raw, err := json.Marshal(rec)
	if err != nil {
		l.logger.ErrorContext(ctx, "encode rate limit record", "key", key, "err", err)
		return
	}
	ttl = time.Duration(ceilSeconds(ttl)) * time.Second
	if err := l.store.PutWithTTL(ctx, key, raw, ttl); err != nil {
		l.logger.WarnContext(ctx, "rate limit store write failed", "key", key, "err", err)
	}
}

// ceilSeconds rounds d up to whole seconds, never below one.
func ceilSeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
