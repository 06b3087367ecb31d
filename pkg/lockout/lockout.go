package lockout

import (
	"context"
	"log/slog"
	"time"
)

// Store counts failures per key within a fixed window.
type Store interface {
	// Incr adds one failure for the key and returns the new count. The
	// first failure of a window starts it; the count resets when the
	// window lapses.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)

	// Count returns the current failure count for the key.
	Count(ctx context.Context, key string) (int64, error)

	// Reset clears the key.
	Reset(ctx context.Context, key string) error
}

// Config holds lockout policy configuration.
type Config struct {
	// MaxAttempts is the number of failures tolerated within the window.
	MaxAttempts int64 `env:"LOCKOUT_MAX_ATTEMPTS" envDefault:"5"`

	// Window is the fixed window failures are counted over.
	Window time.Duration `env:"LOCKOUT_WINDOW" envDefault:"30m"`
}

// DefaultConfig returns the reference policy: 5 failures per 30 minutes.
func DefaultConfig() Config {
	return Config{MaxAttempts: 5, Window: 30 * time.Minute}
}

// Guard enforces a failed-login lockout policy over a counter store.
type Guard struct {
	store Store
	cfg   Config
	log   *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithConfig overrides the default policy.
func WithConfig(cfg Config) Option {
	return func(g *Guard) { g.cfg = cfg }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(g *Guard) {
		if log != nil {
			g.log = log
		}
	}
}

// New creates a guard over the given counter store.
func New(store Store, opts ...Option) *Guard {
	if store == nil {
		panic("lockout: store is required")
	}

	g := &Guard{
		store: store,
		cfg:   DefaultConfig(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RecordFailure counts one failed attempt for the key. Best-effort: a
// counter failure is logged, not returned, matching the tracking posture of
// the rest of the module.
func (g *Guard) RecordFailure(ctx context.Context, key string) {
	if _, err := g.store.Incr(ctx, key, g.cfg.Window); err != nil {
		g.log.ErrorContext(ctx, "lockout counter increment failed", "key", key, "error", err)
	}
}

// Allowed reports whether the key is still under the failure threshold.
// A counter backend failure fails open: login availability is preferred
// over lockout strictness, and the failure is logged for operators.
func (g *Guard) Allowed(ctx context.Context, key string) bool {
	count, err := g.store.Count(ctx, key)
	if err != nil {
		g.log.ErrorContext(ctx, "lockout counter read failed", "key", key, "error", err)
		return true
	}
	return count < g.cfg.MaxAttempts
}

// Reset clears the failure count, typically after a successful login.
func (g *Guard) Reset(ctx context.Context, key string) {
	if err := g.store.Reset(ctx, key); err != nil {
		g.log.ErrorContext(ctx, "lockout counter reset failed", "key", key, "error", err)
	}
}
