package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestLimiter_WindowAndExpiry(t *testing.T) {
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	l := New(2, time.Minute)
	l.now = c.now

	assert.True(t, l.Allow("k"))
	assert.Equal(t, 1, l.Remaining("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
	assert.Equal(t, 0, l.Remaining("k"))
	assert.True(t, l.Allow("other"), "keys are independent")

	c.t = c.t.Add(time.Minute + time.Second)
	assert.Equal(t, 2, l.Remaining("k"))
	assert.True(t, l.Allow("k"))
}

func TestLimiter_ResetAndSweep(t *testing.T) {
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	l := New(1, time.Minute)
	l.now = c.now

	l.Allow("a")
	assert.False(t, l.Allow("a"))
	l.Reset("a")
	assert.True(t, l.Allow("a"))

	l.Allow("b")
	c.t = c.t.Add(2 * time.Minute)
	assert.Equal(t, 2, l.Sweep())
	assert.Equal(t, 0, l.Sweep())
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "203.0.113.7:51234"
	assert.Equal(t, "203.0.113.7", ClientIP(r))

	r.RemoteAddr = "203.0.113.8"
	assert.Equal(t, "203.0.113.8", ClientIP(r))
}

func TestLoginLimiter(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer ll.Stop()
	r := httptest.NewRequest("POST", "/login", nil)

	ok, _ := ll.Check(r, "Ana@Example.com")
	assert.True(t, ok)
	ok, _ = ll.Check(r, "ana@example.com ")
	assert.True(t, ok)
	ok, reason := ll.Check(r, "ana@example.com")
	assert.False(t, ok, "e-mail limit is case-insensitive")
	assert.Contains(t, reason, "this account")

	ll.ResetEmail("ANA@example.com")
	ok, _ = ll.Check(r, "ana@example.com")
	assert.True(t, ok)
}

func TestLoginLimiter_PerIP(t *testing.T) {
	ll := NewLoginLimiterWithConfig(1, time.Minute, 100, time.Minute)
	ll.StartSweeper(time.Hour)
	defer ll.Stop()
	r := httptest.NewRequest("POST", "/login", nil)

	ok, _ := ll.Check(r, "a@example.com")
	assert.True(t, ok)
	ok, reason := ll.Check(r, "b@example.com")
	assert.False(t, ok)
	assert.Contains(t, reason, "wait a minute")

	ll.Stop()
	ll.Stop()
}

func TestLoginLimiter_CheckRegister(t *testing.T) {
	ll := NewLoginLimiter()
	defer ll.Stop()
	r := httptest.NewRequest("POST", "/register", nil)
	r.RemoteAddr = "198.51.100.4:4000"

	for i := 0; i < RegisterLimit; i++ {
		ok, _ := ll.CheckRegister(r)
		assert.True(t, ok, "registration %d", i+1)
	}
	ok, reason := ll.CheckRegister(r)
	assert.False(t, ok)
	assert.Contains(t, reason, "registrations")

	other := httptest.NewRequest("POST", "/register", nil)
	other.RemoteAddr = "198.51.100.5:4000"
	ok, _ = ll.CheckRegister(other)
	assert.True(t, ok, "addresses are independent")

	// Sign-in is counted separately.
	ok, _ = ll.Check(r, "ana@example.com")
	assert.True(t, ok)
}
