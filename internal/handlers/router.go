package handlers

import (
	"net/http"

	"github.com/Varun5711/modesta/internal/logger"
	"github.com/Varun5711/modesta/internal/middleware"
)

type RouterConfig struct {
	Auth           *AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	Health         *HealthHandler
	// Analytics and RateLimiter are optional.
	Analytics    *AnalyticsHandler
	RateLimiter  *middleware.RateLimiter
	CORSOrigins  []string
	MaxBodyBytes int64
	// TrustedProxies may be nil; forwarding headers are then ignored.
	TrustedProxies *middleware.TrustedProxies
	Log            *logger.Logger
}

// NewRouter mounts every route and wraps the mux with the global middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	mw := cfg.AuthMiddleware

	api := http.NewServeMux()
	api.HandleFunc("POST /api/auth/signup", cfg.Auth.Signup)
	api.HandleFunc("POST /api/auth/login", cfg.Auth.Login)
	api.HandleFunc("POST /api/auth/verify-email", cfg.Auth.VerifyEmail)
	api.HandleFunc("POST /api/auth/resend-verification", cfg.Auth.ResendVerification)
	api.Handle("POST /api/auth/set-password", mw.RequireSetPasswordOrAuth(http.HandlerFunc(cfg.Auth.SetPassword)))
	api.Handle("GET /api/auth/me", mw.RequireAuth(http.HandlerFunc(cfg.Auth.Me)))

	admin := func(h http.HandlerFunc) http.Handler {
		return mw.RequireAuth(mw.RequireAdmin(h))
	}
	api.Handle("GET /api/admin/ping", admin(AdminPing))
	api.Handle("GET /api/admin/status", admin(cfg.Health.AdminStatus))
	if cfg.Analytics != nil {
		api.Handle("GET /api/admin/analytics/events", admin(cfg.Analytics.GetEventCounts))
		api.Handle("GET /api/admin/analytics/email-failures", admin(cfg.Analytics.GetEmailFailures))
		api.Handle("GET /api/admin/analytics/devices", admin(cfg.Analytics.GetDeviceStats))
	}
	api.HandleFunc("/", NotFound)

	var apiHandler http.Handler = api
	if cfg.RateLimiter != nil {
		apiHandler = cfg.RateLimiter.Middleware(apiHandler)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.HandleFunc("GET /{$}", cfg.Health.Root)
	mux.HandleFunc("GET /health", cfg.Health.Health)
	NewSwaggerHandler().RegisterRoutes(mux)
	mux.HandleFunc("/", NotFound)

	log := cfg.Log
	if log == nil {
		log = logger.New("http")
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 10 << 10
	}

	return middleware.Chain(mux,
		middleware.RealIP(cfg.TrustedProxies),
		middleware.Recover(log),
		middleware.Logging(log),
		middleware.CORS(cfg.CORSOrigins...),
		middleware.BodyLimit(maxBody),
	)
}
