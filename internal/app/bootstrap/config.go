// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys are Missio's settings on top of WAFFLE's core config. Each key
// can come from the config file, a MISSIO_-prefixed environment variable
// (MISSIO_MONGO_URI), or a flag of the same name (--mongo_uri).
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "missio", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "Upper bound on pooled MongoDB connections"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "Idle MongoDB connections kept open"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Cookie signing key; replace the default outside development"},
	{Name: "session_name", Default: "missio-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (e.g., 24h, 168h)"},
	{Name: "csrf_key", Default: "", Desc: "32-byte CSRF key (blank generates one per process)"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the admin profile to create or promote on startup"},
	{Name: "admin_password", Default: "", Desc: "Password for a newly created admin profile"},

	// Reporting
	{Name: "report_time_zone", Default: "America/Sao_Paulo", Desc: "IANA time zone for monthly report boundaries"},
	{Name: "pending_poll_interval", Default: "60s", Desc: "How often the pending-approval count is refreshed"},

	// Audit trail: all | db | log | off
	{Name: "audit_log_auth", Default: "all", Desc: "Where sign-in, sign-out and registration events go"},
	{Name: "audit_log_admin", Default: "all", Desc: "Where record changes and approvals go"},
}

// LoadConfig loads WAFFLE core config and Missio's app config.
//
// Precedence is flags > env (MISSIO_*) > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MISSIO", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		AdminEmail:    strings.TrimSpace(appValues.String("admin_email")),
		AdminPassword: appValues.String("admin_password"),

		ReportTimeZone:      appValues.String("report_time_zone"),
		PendingPollInterval: appValues.Duration("pending_poll_interval", time.Minute),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configurations that would fail later at connect
// time or on the first request.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if _, err := time.LoadLocation(appCfg.ReportTimeZone); err != nil {
		return fmt.Errorf("invalid report_time_zone %q: %w", appCfg.ReportTimeZone, err)
	}
	if appCfg.PendingPollInterval <= 0 {
		return fmt.Errorf("pending_poll_interval must be positive, got %s", appCfg.PendingPollInterval)
	}
	if appCfg.SessionMaxAge <= 0 {
		return fmt.Errorf("session_max_age must be positive, got %s", appCfg.SessionMaxAge)
	}
	if appCfg.CSRFKey != "" && len(appCfg.CSRFKey) != 32 {
		return fmt.Errorf("csrf_key must be exactly 32 bytes, got %d", len(appCfg.CSRFKey))
	}
	if appCfg.AdminEmail != "" && appCfg.AdminPassword == "" {
		return fmt.Errorf("admin_email is set but admin_password is empty")
	}
	for key, mode := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		switch mode {
		case "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, mode)
		}
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
		logger.Warn("session_key is the development default; set MISSIO_SESSION_KEY in production")
	}
	return nil
}
