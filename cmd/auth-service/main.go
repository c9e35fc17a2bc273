package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Varun5711/modesta/internal/auth"
	"github.com/Varun5711/modesta/internal/cache"
	"github.com/Varun5711/modesta/internal/clickhouse"
	"github.com/Varun5711/modesta/internal/config"
	"github.com/Varun5711/modesta/internal/database"
	"github.com/Varun5711/modesta/internal/events"
	grpcclient "github.com/Varun5711/modesta/internal/grpc"
	"github.com/Varun5711/modesta/internal/handlers"
	"github.com/Varun5711/modesta/internal/health"
	"github.com/Varun5711/modesta/internal/logger"
	"github.com/Varun5711/modesta/internal/mailer"
	"github.com/Varun5711/modesta/internal/middleware"
	"github.com/Varun5711/modesta/internal/redis"
	"github.com/Varun5711/modesta/internal/service"
	"github.com/Varun5711/modesta/internal/storage"
	"google.golang.org/grpc"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "query the running service's gRPC health endpoint and exit")
	migrate := flag.Bool("migrate", false, "apply pending migrations before serving")
	flag.Parse()

	log := logger.New("auth-service")
	log.SetStdLog()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}

	if *healthcheck {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := grpcclient.CheckHealth(ctx, "127.0.0.1:"+cfg.Server.GRPCHealthPort, health.ServiceName); err != nil {
			log.Error("Unhealthy: %v", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *migrate {
		if err := database.Migrate(cfg.Database.PrimaryDSN, "up"); err != nil {
			log.Fatal("Failed to migrate: %v", err)
		}
	}

	dbManager, err := database.NewDBManager(ctx, database.Config{
		PrimaryDSN:      cfg.Database.PrimaryDSN,
		ReplicaDSNs:     cfg.Database.ReplicaDSNs,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer dbManager.Close()

	var (
		publisher   events.Publisher = events.Nop{}
		producer    *events.Producer
		rateLimiter *middleware.RateLimiter
		redisPinger health.Pinger
	)
	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, running without rate limiting and auth events: %v", err)
	} else {
		defer redisClient.Close()
		producer = events.NewProducer(redisClient.Raw(), cfg.Redis.StreamName)
		publisher = producer
		rateLimiter = middleware.NewRateLimiter(redisClient.Raw(), cfg.RateLimit.Requests, cfg.RateLimit.Window)
		redisPinger = redisClient
	}

	var analytics *handlers.AnalyticsHandler
	chClient, err := clickhouse.NewClient(ctx, cfg.ClickHouse)
	if err != nil {
		log.Warn("ClickHouse unavailable, admin analytics disabled: %v", err)
	} else {
		defer chClient.Close()
		analytics = handlers.NewAnalyticsHandler(chClient).
			WithCache(cache.NewMultiTierCache(64, redisClient.Raw(), cfg.Analytics.CacheTTL, "analytics:"))
	}

	tokens, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	if err != nil {
		log.Fatal("Failed to create token manager: %v", err)
	}

	renderer := mailer.NewRenderer(cfg.Server.ClientURL, cfg.Auth.VerificationTokenTTL)
	m := mailer.New(cfg.SMTP, renderer, os.Stdout)
	if !cfg.SMTP.Enabled() {
		log.Warn("SMTP not configured, verification emails will be printed to stdout")
	}

	authService := service.NewAuthService(
		storage.NewPostgresUserStorage(dbManager),
		auth.NewHasher(cfg.Auth.BcryptCost),
		tokens,
		m,
		publisher,
	).WithVerificationTTL(cfg.Auth.VerificationTokenTTL)

	exposeDetail := cfg.Server.IsDevelopment()
	checks := map[string]health.Pinger{"postgres": dbManager}
	if redisPinger != nil {
		checks["redis"] = redisPinger
	}
	httpChecks := make(map[string]handlers.Pinger, len(checks))
	for name, p := range checks {
		httpChecks[name] = p
	}

	healthHandler := handlers.NewHealthHandler(httpChecks).
		WithStats("database", func(context.Context) (interface{}, error) {
			return dbManager.Stats(), nil
		})
	if producer != nil {
		healthHandler.WithStats("authEventsBacklog", func(ctx context.Context) (interface{}, error) {
			return producer.StreamLength(ctx)
		})
	}

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		log.Fatal("Invalid TRUSTED_PROXIES: %v", err)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(authService, exposeDetail),
		AuthMiddleware: middleware.NewAuthMiddleware(authService, cfg.Auth.CookieName, exposeDetail),
		Health:         healthHandler,
		Analytics:      analytics,
		RateLimiter:    rateLimiter,
		CORSOrigins:    corsOrigins(cfg.Server),
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		TrustedProxies: trustedProxies,
		Log:            logger.New("http"),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	checker := health.NewChecker(checks)
	grpcServer := grpc.NewServer()
	checker.Register(grpcServer)
	go checker.Run(ctx, 10*time.Second)

	lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCHealthPort)
	if err != nil {
		log.Fatal("Failed to listen on %s: %v", cfg.Server.GRPCHealthPort, err)
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC health server stopped: %v", err)
		}
	}()

	go func() {
		log.Info("API listening on port %s (%s)", cfg.Server.APIPort, cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down auth service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown: %v", err)
	}
	grpcServer.GracefulStop()

	log.Info("Auth service stopped")
}

// corsOrigins allows the configured client in production and the local dev
// servers otherwise.
func corsOrigins(cfg config.ServerConfig) []string {
	if cfg.IsDevelopment() {
		return []string{cfg.ClientURL, "http://localhost:8080", "http://localhost:3000"}
	}
	return []string{cfg.ClientURL}
}
