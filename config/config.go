package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetchConfig controls how upstream pages are requested.
// UserAgent and Cookie impersonate a desktop Chrome and go stale.
type FetchConfig struct {
	// AllowedPrefix is the literal prefix every target URL must carry.
	AllowedPrefix string // default: "https://cartoons.lk/"

	UserAgent      string
	Cookie         string
	AcceptLanguage string // default: "en-US,en;q=0.9"

	// Timeout bounds the whole upstream fetch, body included.
	Timeout time.Duration // default: 10s

	// MaxBodyBytes caps how much of the upstream body is read.
	MaxBodyBytes int64 // default: 10 MB

	// ChromeTLS dials HTTPS with a Chrome ClientHello instead of Go's own.
	ChromeTLS bool // default: true

	// Proxy is an optional upstream proxy: http://, https:// or socks5://.
	// ChromeTLS only reaches the target through socks5 proxies; with an
	// http(s) proxy net/http tunnels via CONNECT and performs its own TLS
	// handshake to the target.
	Proxy string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per identity. <= 0 disables limiting.
	RequestsPerSecond float64 // default: 0 (disabled)

	// Burst is the maximum burst size per identity.
	Burst int // default: 10
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	// TTL is how long a successful response is reused. 0 disables caching.
	TTL time.Duration // default: 0

	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

const (
	DefaultAllowedPrefix  = "https://cartoons.lk/"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	DefaultCookie         = "SITE_TOTAL_ID=aR02hJnYNxzKzKk5JvGoRQABjRI; _ga=GA1.1.1780473608.1763522184"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
)

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("CARTOONDL_HOST", "0.0.0.0"),
			Port: envIntOr("CARTOONDL_PORT", 8080),
			Mode: envOr("CARTOONDL_MODE", "release"),
		},
		Fetch: FetchConfig{
			AllowedPrefix:  envOr("CARTOONDL_ALLOWED_PREFIX", DefaultAllowedPrefix),
			UserAgent:      envOr("CARTOONDL_USER_AGENT", DefaultUserAgent),
			Cookie:         envOr("CARTOONDL_COOKIE", DefaultCookie),
			AcceptLanguage: envOr("CARTOONDL_ACCEPT_LANGUAGE", DefaultAcceptLanguage),
			Timeout:        envDurationOr("CARTOONDL_FETCH_TIMEOUT", 10*time.Second),
			MaxBodyBytes:   int64(envIntOr("CARTOONDL_MAX_BODY_BYTES", 10<<20)),
			ChromeTLS:      envBoolOr("CARTOONDL_CHROME_TLS", true),
			Proxy:          os.Getenv("CARTOONDL_PROXY"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("CARTOONDL_AUTH_ENABLED", false),
			APIKeys: envSliceOr("CARTOONDL_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("CARTOONDL_RATE_RPS", 0),
			Burst:             envIntOr("CARTOONDL_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			TTL:        envDurationOr("CARTOONDL_CACHE_TTL", 0),
			MaxEntries: envIntOr("CARTOONDL_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("CARTOONDL_LOG_LEVEL", "info"),
			Format: envOr("CARTOONDL_LOG_FORMAT", "json"),
		},
	}
}

// Headers returns the browser-impersonation header set sent with every
// upstream request. Keys are canonical HTTP header names.
func (f FetchConfig) Headers() map[string]string {
	h := map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Ch-Ua":                 `"Google Chrome";v="131", "Chromium";v="131", "Not?A_Brand";v="24"`,
		"Sec-Ch-Ua-Mobile":          "?0",
		"Sec-Ch-Ua-Platform":        `"Windows"`,
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"User-Agent":                f.UserAgent,
		"Accept-Language":           f.AcceptLanguage,
	}
	if f.Cookie != "" {
		h["Cookie"] = f.Cookie
	}
	return h
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
