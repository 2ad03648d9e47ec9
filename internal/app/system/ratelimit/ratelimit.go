// internal/app/system/ratelimit/ratelimit.go

// Package ratelimit holds the in-memory sign-in and registration throttles.
// State is per process; a restart clears every counter.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/missio/internal/app/system/normalize"
)

// Limiter is a fixed-window counter per key. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	max     int
	period  time.Duration
	now     func() time.Time
}

type bucket struct {
	hits    int
	resetAt time.Time
}

func (b *bucket) expired(at time.Time) bool { return b == nil || at.After(b.resetAt) }

// New creates a limiter allowing max hits per key per period.
func New(max int, period time.Duration) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		max:     max,
		period:  period,
		now:     time.Now,
	}
}

// Allow counts one hit for key and reports whether it is within the limit.
// A refused hit is not counted.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	at := l.now()
	b := l.buckets[key]
	if b.expired(at) {
		b = &bucket{resetAt: at.Add(l.period)}
		l.buckets[key] = b
	}
	if b.hits >= l.max {
		return false
	}
	b.hits++
	return true
}

// Remaining returns how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b.expired(l.now()) {
		return l.max
	}
	return max(l.max-b.hits, 0)
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}

// Sweep drops expired buckets and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	at := l.now()
	removed := 0
	for key, b := range l.buckets {
		if b.expired(at) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// ClientIP returns the host part of r.RemoteAddr, or RemoteAddr itself when
// it carries no port. Proxy headers are resolved earlier by chi's RealIP.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// rule is one throttle in a LoginLimiter: a limiter, the request key it
// counts, and the message shown when it trips.
type rule struct {
	limiter *Limiter
	key     func(r *http.Request, email string) string
	message string
}

// Registrations allowed per client IP per RegisterPeriod.
const (
	RegisterLimit  = 5
	RegisterPeriod = time.Hour
)

// LoginLimiter throttles sign-in attempts per client IP and per e-mail, and
// registrations per client IP. Sign-in rules are checked in order and the
// first one that trips wins.
type LoginLimiter struct {
	rules   []rule
	byEmail *Limiter
	signups *Limiter

	done     chan struct{}
	stopOnce sync.Once
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 per e-mail per
// 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

// NewLoginLimiterWithConfig builds a login limiter with explicit limits.
func NewLoginLimiterWithConfig(perIP int, ipPeriod time.Duration, perEmail int, emailPeriod time.Duration) *LoginLimiter {
	byEmail := New(perEmail, emailPeriod)
	return &LoginLimiter{
		rules: []rule{
			{
				limiter: New(perIP, ipPeriod),
				key:     func(r *http.Request, _ string) string { return ClientIP(r) },
				message: "Too many sign-in attempts. Please wait a minute before trying again.",
			},
			{
				limiter: byEmail,
				key:     func(_ *http.Request, email string) string { return normalize.Email(email) },
				message: "Too many sign-in attempts for this account. Please wait a few minutes.",
			},
		},
		byEmail: byEmail,
		signups: New(RegisterLimit, RegisterPeriod),
		done:    make(chan struct{}),
	}
}

// CheckRegister counts one registration from the client and reports whether
// it may proceed.
func (ll *LoginLimiter) CheckRegister(r *http.Request) (ok bool, reason string) {
	if !ll.signups.Allow(ClientIP(r)) {
		return false, "Too many registrations from this address. Please try again later."
	}
	return true, ""
}

// Check counts one attempt and reports whether it may proceed. reason is a
// user-facing message when it may not. Blank keys are not counted.
func (ll *LoginLimiter) Check(r *http.Request, email string) (ok bool, reason string) {
	for _, rl := range ll.rules {
		key := rl.key(r, email)
		if key == "" {
			continue
		}
		if !rl.limiter.Allow(key) {
			return false, rl.message
		}
	}
	return true, ""
}

// ResetEmail clears the per-account window after a successful sign-in.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := normalize.Email(email); key != "" {
		ll.byEmail.Reset(key)
	}
}

// StartSweeper drops expired buckets every interval until Stop.
func (ll *LoginLimiter) StartSweeper(interval time.Duration) {
	go func() {
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-ll.done:
				return
			case <-tick.C:
				for _, rl := range ll.rules {
					rl.limiter.Sweep()
				}
				ll.signups.Sweep()
			}
		}
	}()
}

// Stop ends the sweeper. Repeated calls are no-ops.
func (ll *LoginLimiter) Stop() {
	ll.stopOnce.Do(func() { close(ll.done) })
}
