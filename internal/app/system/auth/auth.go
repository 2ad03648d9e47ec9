// Package auth keeps the signed-in profile in a gorilla cookie session and
// provides the access middleware used by every feature router.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey       = "is_authenticated"
	userIDKey       = "user_id"
	userEmailKey    = "user_email"
	userRoleKey     = "user_role"
	userStatusKey   = "user_status"
	userCongregKey  = "user_congregation"
	defaultSessName = "missio-session"
)

// SessionUser is the signed-in profile as seen by handlers.
type SessionUser struct {
	ID           string
	Email        string
	Role         string
	Status       string
	Congregation string
}

// IsAdmin reports whether the user has the admin role.
func (u *SessionUser) IsAdmin() bool { return strings.EqualFold(u.Role, "admin") }

// IsApproved reports whether the user's status is approved.
func (u *SessionUser) IsApproved() bool { return strings.EqualFold(u.Status, "approved") }

// UserFetcher loads the current state of a user on each request, so role and
// approval changes apply without signing in again. It returns nil when the
// user no longer exists.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user LoadSessionUser put in the context.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u into the request context the way LoadSessionUser does.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager. In production
// (secure=true) cookies are Secure and SameSite=None; over plain http in dev
// they are SameSite=Lax.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = defaultSessName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	store.MaxAge(opts.MaxAge)

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher makes LoadSessionUser load fresh user data per request.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) {
	sm.fetcher = f
}

// sessionFields maps session keys onto SessionUser fields.
func sessionFields(u *SessionUser) map[string]*string {
	return map[string]*string{
		userIDKey:      &u.ID,
		userEmailKey:   &u.Email,
		userRoleKey:    &u.Role,
		userStatusKey:  &u.Status,
		userCongregKey: &u.Congregation,
	}
}

// SignIn stores u in the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	for key, field := range sessionFields(u) {
		sess.Values[key] = *field
	}
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser puts the signed-in user, if any, into the request context.
// With a fetcher the profile is reloaded on every request, so approval and
// role changes apply at once; a profile that no longer exists counts as
// signed out. Without one the cookie copy is used.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := sm.sessionUser(r); u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

func (sm *SessionManager) sessionUser(r *http.Request) *SessionUser {
	sess, _ := sm.store.Get(r, sm.name)
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return nil
	}

	u := &SessionUser{}
	for key, field := range sessionFields(u) {
		*field, _ = sess.Values[key].(string)
	}
	if sm.fetcher == nil {
		return u
	}

	fresh := sm.fetcher.FetchUser(r.Context(), u.ID)
	if fresh == nil {
		sm.log.Debug("session user not found", zap.String("user_id", u.ID))
	}
	return fresh
}

// guard builds middleware that rejects requests for which deny returns a
// non-zero status. Signed-out requests always get 401.
func guard(deny func(u *SessionUser) (int, string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if status, code := deny(u); status != 0 {
				writeError(w, status, code)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSignedIn answers 401 when there is no user in context.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return guard(func(*SessionUser) (int, string) { return 0, "" })(next)
}

// RequireApproved answers 401 when signed out and 403 "pending_approval"
// while the user's status is anything but approved.
func (sm *SessionManager) RequireApproved(next http.Handler) http.Handler {
	return guard(func(u *SessionUser) (int, string) {
		if !u.IsApproved() {
			return http.StatusForbidden, "pending_approval"
		}
		return 0, ""
	})(next)
}

// RequireRole answers 401 when signed out and 403 "forbidden" when the
// user's role is not one of allowed. Roles compare case-insensitively.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]bool, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = true
	}
	return guard(func(u *SessionUser) (int, string) {
		if !set[strings.ToLower(u.Role)] {
			return http.StatusForbidden, "forbidden"
		}
		return 0, ""
	})
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
