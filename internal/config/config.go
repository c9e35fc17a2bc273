package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is not defined in environment variables")

type Config struct {
	Server     ServerConfig
	Auth       AuthConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	SMTP       SMTPConfig
	RateLimit  RateLimitConfig
	Analytics  AnalyticsConfig
	ClickHouse ClickHouseConfig
	Cleanup    CleanupConfig
}

type ServerConfig struct {
	APIPort        string
	GRPCHealthPort string
	ClientURL      string
	Env            string
	MaxBodyBytes   int64
	// TrustedProxies are CIDRs or addresses allowed to set X-Forwarded-For.
	TrustedProxies []string
}

// IsDevelopment gates exposing internal error detail in responses.
func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

type AuthConfig struct {
	JWTSecret            string
	SessionTTL           time.Duration
	VerificationTokenTTL time.Duration
	BcryptCost           int
	CookieName           string
}

type DatabaseConfig struct {
	PrimaryDSN      string
	ReplicaDSNs     []string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	StreamName string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether real SMTP delivery is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type AnalyticsConfig struct {
	ConsumerGroup string
	ConsumerName  string
	BatchSize     int
	PollInterval  time.Duration
	BlockTime     time.Duration
	// CacheTTL bounds how stale the admin analytics views may be.
	CacheTTL time.Duration
}

type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	MaxConns int
}

type CleanupConfig struct {
	Interval time.Duration
	LockTTL  time.Duration
}

// Load reads .env when present and builds the config from the environment.
// A missing JWT_SECRET is a startup error.
func Load() (*Config, error) {
	cfg := load()
	if cfg.Auth.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

// LoadWorker is Load for processes that never issue or verify tokens
// (migrations and background workers).
func LoadWorker() *Config {
	return load()
}

func load() *Config {
	// Load .env if it exists (local dev), ignore if not
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			APIPort:        getEnv("API_PORT", "5000"),
			GRPCHealthPort: getEnv("GRPC_HEALTH_PORT", "50060"),
			ClientURL:      strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:8080"), "/"),
			Env:            getEnv("APP_ENV", "development"),
			MaxBodyBytes:   int64(getEnvAsInt("MAX_BODY_BYTES", 10*1024)),
			TrustedProxies: getEnvAsCSV("TRUSTED_PROXIES"),
		},
		Auth: AuthConfig{
			JWTSecret:            os.Getenv("JWT_SECRET"),
			SessionTTL:           getEnvAsDuration("JWT_EXPIRES_IN", 30*24*time.Hour),
			VerificationTokenTTL: getEnvAsDuration("VERIFICATION_TOKEN_TTL", 24*time.Hour),
			BcryptCost:           getEnvAsInt("BCRYPT_COST", 12),
			CookieName:           getEnv("AUTH_COOKIE_NAME", "jwt"),
		},
		Database: DatabaseConfig{
			PrimaryDSN:      getEnv("DB_PRIMARY_DSN", ""),
			ReplicaDSNs:     getEnvAsList("DB_REPLICA1_DSN", "DB_REPLICA2_DSN"),
			MaxConns:        int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:        int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			StreamName: getEnv("AUTH_EVENTS_STREAM", "auth:events"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("EMAIL_FROM", ""),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
		Analytics: AnalyticsConfig{
			ConsumerGroup: getEnv("ANALYTICS_CONSUMER_GROUP", "auth-analytics"),
			ConsumerName:  getEnv("ANALYTICS_CONSUMER_NAME", "worker-1"),
			BatchSize:     getEnvAsInt("ANALYTICS_BATCH_SIZE", 100),
			PollInterval:  getEnvAsDuration("ANALYTICS_POLL_INTERVAL", time.Second),
			BlockTime:     getEnvAsDuration("ANALYTICS_BLOCK_TIME", 5*time.Second),
			CacheTTL:      getEnvAsDuration("ANALYTICS_CACHE_TTL", time.Minute),
		},
		ClickHouse: ClickHouseConfig{
			Addr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("CLICKHOUSE_DATABASE", "analytics"),
			Username: getEnv("CLICKHOUSE_USERNAME", "clickhouse"),
			Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			MaxConns: getEnvAsInt("CLICKHOUSE_MAX_CONNS", 10),
		},
		Cleanup: CleanupConfig{
			Interval: getEnvAsDuration("CLEANUP_INTERVAL", time.Hour),
			LockTTL:  getEnvAsDuration("CLEANUP_LOCK_TTL", 5*time.Minute),
		},
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList collects the non-empty values of keys, in order.
func getEnvAsList(keys ...string) []string {
	var out []string
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			out = append(out, value)
		}
	}
	return out
}

// getEnvAsCSV splits a comma-separated value, dropping empty items.
func getEnvAsCSV(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL      string
	SessionFile string
	Timeout     time.Duration
}

// LoadClient reads the terminal client's settings. The session file
// defaults to ~/.modesta/session.json.
func LoadClient() ClientConfig {
	_ = godotenv.Load()

	sessionFile := os.Getenv("SESSION_FILE")
	if sessionFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			sessionFile = filepath.Join(home, ".modesta", "session.json")
		} else {
			sessionFile = ".modesta-session.json"
		}
	}

	return ClientConfig{
		APIURL:      strings.TrimRight(getEnv("API_URL", "http://localhost:5000/api"), "/"),
		SessionFile: sessionFile,
		Timeout:     getEnvAsDuration("API_TIMEOUT", 10*time.Second),
	}
}
