package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage backend: "redis" (default) or "memory" (dev only, no fan-out
	// across processes and nothing survives a restart).
	Storage string

	// Auth provider: "oidc" => userinfo endpoint, "file" => static token file.
	AuthProvider string
	UserinfoURL  string        // userinfo endpoint of the identity provider (oidc)
	TokenFile    string        // path to the static tokens.yaml (file)
	AuthTimeout  time.Duration // per-verification timeout for the oidc provider

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)

	SweepInterval time.Duration // interval for the key-invariant sweeper (default: 24h)

	AllowedOrigins []string // CORS allowed origins; empty = allow all
	TrustProxy     bool     // true => trust X-Forwarded-For headers
	RateBurst      int      // rate limit bucket size per caller
	RatePerMin     int      // rate limit refill per caller per minute
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("BMK_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("BMK_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("BMK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BMK_PRETTY_LOG", true),

		// Storage
		Storage: getenv("BMK_STORAGE", "redis"),

		// Auth
		AuthProvider: getenv("BMK_AUTH_PROVIDER", "oidc"),
		UserinfoURL:  getenv("BMK_AUTH_USERINFO_URL", ""),
		TokenFile:    getenv("BMK_AUTH_TOKEN_FILE", ""),
		AuthTimeout:  mustDuration("BMK_AUTH_TIMEOUT", 5*time.Second),

		// Redis settings
		RedisAddr:             getenv("BMK_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("BMK_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("BMK_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("BMK_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("BMK_REDIS_DB", 0),
		RedisDT:               mustDuration("BMK_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("BMK_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("BMK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("BMK_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("BMK_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("BMK_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("BMK_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("BMK_REDIS_RETRY_INTERVAL", 2*time.Second),

		SweepInterval: mustDuration("BMK_SWEEP_INTERVAL", 24*time.Hour),

		// Access
		AllowedOrigins: splitAndTrim(getenv("BMK_ALLOWED_ORIGINS", "")),
		TrustProxy:     mustBool("BMK_TRUST_PROXY", true),
		RateBurst:      getenvInt("BMK_RATE_BURST", 30),
		RatePerMin:     getenvInt("BMK_RATE_PER_MIN", 60),
	}

	switch cfg.Storage {
	case "redis", "memory":
	default:
		panic(fmt.Sprintf("❌ FATAL: BMK_STORAGE must be redis or memory, got %q", cfg.Storage))
	}

	switch cfg.AuthProvider {
	case "oidc":
		if cfg.UserinfoURL == "" {
			panic("❌ FATAL: BMK_AUTH_USERINFO_URL is required when BMK_AUTH_PROVIDER=oidc")
		}
	case "file":
		if cfg.TokenFile == "" {
			panic("❌ FATAL: BMK_AUTH_TOKEN_FILE is required when BMK_AUTH_PROVIDER=file")
		}
	default:
		panic(fmt.Sprintf("❌ FATAL: BMK_AUTH_PROVIDER must be oidc or file, got %q", cfg.AuthProvider))
	}

	if cfg.Storage == "redis" && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: BMK_REDIS_PASSWORD is required when BMK_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
