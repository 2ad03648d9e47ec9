// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds Missio's app-level configuration, loaded in LoadConfig
// from config files, MISSIO_* environment variables, and flags.
//
// Framework settings (ports, TLS, log level, CORS, body limits) live in
// WAFFLE's CoreConfig and are not repeated here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: missio-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Lifetime of the session cookie

	// CSRFKey is the 32-byte key for gorilla/csrf. Blank generates a random
	// key per process, which invalidates tokens on restart.
	CSRFKey string

	// Admin seeding. When AdminEmail is set the profile is created or
	// promoted to an approved admin on startup.
	AdminEmail    string
	AdminPassword string

	// ReportTimeZone is the IANA zone used for month boundaries and for
	// interpreting event times entered without an offset.
	ReportTimeZone string

	// PendingPollInterval is how often the pending-approval count is refreshed.
	PendingPollInterval time.Duration

	// Audit logging
	AuditLogAuth  string // all|db|log|off for sign-in and registration events
	AuditLogAdmin string // all|db|log|off for data and approval changes
}
