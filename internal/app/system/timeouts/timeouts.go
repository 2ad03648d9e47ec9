// Package timeouts holds the context deadlines used by handlers, stores and
// workers. Four tiers cover every operation in the service:
//
//   - Ping: database connectivity checks (/health, startup)
//   - Short: single-document reads and writes, counts
//   - Medium: list queries and simple mutations
//   - Long: multi-collection writes (result attachment, cascading deletes)
//     and whole-collection reads (indicators, report exports)
//
// Values can be overridden at startup from TIMEOUT_* environment variables.
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config is a snapshot of the four tiers. Zero fields mean "keep current".
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Defaults are the values in effect until Configure or ConfigureFromEnv runs.
var Defaults = Config{
	Ping:   2 * time.Second,
	Short:  5 * time.Second,
	Medium: 10 * time.Second,
	Long:   30 * time.Second,
}

var (
	mu  sync.RWMutex
	cur = Defaults
)

func Ping() time.Duration   { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration  { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration   { return get(func(c Config) time.Duration { return c.Long }) }

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(cur)
}

// Current returns the tiers in effect.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure overrides every positive field of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&cur.Ping, cfg.Ping)
	merge(&cur.Short, cfg.Short)
	merge(&cur.Medium, cfg.Medium)
	merge(&cur.Long, cfg.Long)
}

// Reset restores Defaults. Tests that call Configure should defer it.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = Defaults
}

func merge(dst *time.Duration, d time.Duration) bool {
	if d <= 0 {
		return false
	}
	*dst = d
	return true
}

// ConfigureFromEnv applies TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM and
// TIMEOUT_LONG (Go duration strings). Unset, unparsable and non-positive
// values are ignored. It returns how many tiers changed.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()

	targets := []struct {
		env string
		dst *time.Duration
	}{
		{"TIMEOUT_PING", &cur.Ping},
		{"TIMEOUT_SHORT", &cur.Short},
		{"TIMEOUT_MEDIUM", &cur.Medium},
		{"TIMEOUT_LONG", &cur.Long},
	}

	n := 0
	for _, t := range targets {
		d, err := time.ParseDuration(os.Getenv(t.env))
		if err != nil {
			continue
		}
		if merge(t.dst, d) {
			n++
		}
	}
	return n
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when the
// deadline was what ended the operation.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && ctx.Err() == context.DeadlineExceeded {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}
