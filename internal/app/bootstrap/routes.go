// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"
	"time"

	auditlogfeature "github.com/dalemusser/missio/internal/app/features/auditlog"
	collaboratorsfeature "github.com/dalemusser/missio/internal/app/features/collaborators"
	congregationsfeature "github.com/dalemusser/missio/internal/app/features/congregations"
	dashboardfeature "github.com/dalemusser/missio/internal/app/features/dashboard"
	departmentsfeature "github.com/dalemusser/missio/internal/app/features/departments"
	errorsfeature "github.com/dalemusser/missio/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/missio/internal/app/features/events"
	healthfeature "github.com/dalemusser/missio/internal/app/features/health"
	indicatorsfeature "github.com/dalemusser/missio/internal/app/features/indicators"
	loginfeature "github.com/dalemusser/missio/internal/app/features/login"
	logoutfeature "github.com/dalemusser/missio/internal/app/features/logout"
	reportsfeature "github.com/dalemusser/missio/internal/app/features/reports"
	userinfofeature "github.com/dalemusser/missio/internal/app/features/userinfo"
	usersfeature "github.com/dalemusser/missio/internal/app/features/users"
	profilestore "github.com/dalemusser/missio/internal/app/store/profiles"
	"github.com/dalemusser/missio/internal/app/system/auth"
	"github.com/dalemusser/missio/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler.
//
// Layout:
//
//	/health, /metrics            public
//	/api/login, /api/register    public, outside CSRF (no token exists yet)
//	/api/...                     session + CSRF protected; per-feature gates
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh profile data on each request, so approval and role changes take
	// effect without signing out.
	sessionMgr.SetUserFetcher(profilestore.NewFetcher(deps.MongoDatabase))

	loc, err := time.LoadLocation(appCfg.ReportTimeZone)
	if err != nil {
		return nil, fmt.Errorf("load report time zone: %w", err)
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	csrfMW, err := newCSRF(appCfg, secure, errLog, logger)
	if err != nil {
		return nil, err
	}

	audit := newAuditLogger(deps.MongoDatabase, appCfg, logger)
	db := deps.MongoDatabase

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(sessionMgr.LoadSessionUser)

	r.NotFound(errLog.NotFound)
	r.MethodNotAllowed(errLog.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		// Authentication
		loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, audit, logger)
		loginHandler.Limiter = deps.LoginLimiter
		loginfeature.MountRoutes(api, loginHandler)

		api.Group(func(pr chi.Router) {
			pr.Use(csrfMW)

			logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, logger)
			logoutfeature.MountRoutes(pr, logoutHandler, sessionMgr)

			userinfoHandler := userinfofeature.NewHandler(db, errLog, audit, logger)
			userinfofeature.MountRoutes(pr, userinfoHandler, sessionMgr)

			// Reference data
			congHandler := congregationsfeature.NewHandler(db, errLog, audit, logger)
			pr.Mount("/congregations", congregationsfeature.Routes(congHandler, sessionMgr))

			deptHandler := departmentsfeature.NewHandler(db, errLog, audit)
			pr.Mount("/departments", departmentsfeature.Routes(deptHandler, sessionMgr))

			// Volunteers and events
			collabHandler := collaboratorsfeature.NewHandler(db, errLog, audit, logger)
			pr.Mount("/collaborators", collaboratorsfeature.Routes(collabHandler, sessionMgr))

			eventsHandler := eventsfeature.NewHandler(db, loc, errLog, audit, logger)
			pr.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr))

			// Aggregates
			dashboardHandler := dashboardfeature.NewHandler(db, errLog, logger)
			pr.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

			indicatorsHandler := indicatorsfeature.NewHandler(db, errLog, logger)
			pr.Mount("/indicators", indicatorsfeature.Routes(indicatorsHandler, sessionMgr))

			reportsHandler := reportsfeature.NewHandler(db, loc, errLog, logger)
			pr.Mount("/reports", reportsfeature.Routes(reportsHandler, sessionMgr))

			// User administration
			var pending usersfeature.PendingCache
			if deps.PendingPoll != nil {
				pending = deps.PendingPoll
			}
			usersHandler := usersfeature.NewHandler(db, pending, errLog, audit, logger)
			pr.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

			auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
			pr.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
		})
	})

	return r, nil
}

// newCSRF returns gorilla/csrf middleware. The client reads the token from
// GET /api/me and echoes it in X-CSRF-Token.
func newCSRF(appCfg AppConfig, secure bool, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	key := []byte(appCfg.CSRFKey)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, fmt.Errorf("generate csrf key")
		}
		logger.Warn("csrf_key not set; generated a per-process key")
	}

	opts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed",
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)))
			errLog.Forbidden(w, r)
		})),
	}
	if appCfg.SessionDomain != "" {
		opts = append(opts, csrf.Domain(appCfg.SessionDomain))
	}
	protect := csrf.Protect(key, opts...)

	if secure {
		return protect, nil
	}
	// Plain HTTP in development: skip the HTTPS-only referer check.
	return func(next http.Handler) http.Handler {
		h := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}, nil
}
