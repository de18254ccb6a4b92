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
	Browser   BrowserConfig
	Fetch     FetchConfig
	Pacing    PacingConfig
	Retry     RetryConfig
	Batch     BatchConfig
	Cache     CacheConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Webhook   WebhookConfig
	Hosts     HostsConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 9001
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance and the context pool.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// Contexts is the number of pooled browser identities (K).
	Contexts int // default: 4

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// Bin overrides the Chromium binary path.
	Bin string

	// Proxy is the default proxy URL for all contexts.
	Proxy string
}

// FetchConfig controls a single navigation attempt.
type FetchConfig struct {
	// NavTimeout is the deadline for the fast first navigation
	// (content-loaded wait).
	NavTimeout time.Duration // default: 20s

	// NavRetryTimeout is the deadline for the lenient second navigation
	// (full-load wait).
	NavRetryTimeout time.Duration // default: 60s

	// MarkerTimeout bounds one wait for the price-region selector.
	MarkerTimeout time.Duration // default: 2s

	// MarkerAttempts is how many times the price-region wait is retried
	// before the document is read as-is.
	MarkerAttempts int // default: 3

	// MinDocumentBytes is the size below which a document missing all
	// product markers is treated as suspicious.
	MinDocumentBytes int // default: 50 KB

	// FastPath enables the utls HTTP fetch tried before the browser.
	FastPath bool // default: true

	// FastPathTimeout is the deadline for the HTTP fast path.
	FastPathTimeout time.Duration // default: 8s
}

// PacingConfig controls the outbound admission limiter that mimics
// human pacing toward the target site.
type PacingConfig struct {
	Window       time.Duration // sliding window; default: 60s
	MaxPerWindow int           // admissions per window; default: 10
	MinDelay     time.Duration // spacing between admissions; default: 2s
	JitterMin    time.Duration // default: 300ms
	JitterMax    time.Duration // default: 1200ms
}

// RetryConfig controls per-URL retry behavior in the batch runner.
type RetryConfig struct {
	Attempts      int           // default: 3
	BackoffBase   time.Duration // default: 5s
	BackoffJitter time.Duration // default: 3s
}

// BatchConfig controls the bounded-concurrency batch runner.
type BatchConfig struct {
	// Concurrency bounds how many URLs are processed at once.
	// Independent of the context pool size.
	Concurrency int // default: 5

	// MaxURLs caps one batch request.
	MaxURLs int // default: 100
}

// CacheConfig controls the URL → price result cache.
type CacheConfig struct {
	TTL        time.Duration // default: 1h
	MaxEntries int           // default: 1000
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool // default: false
	APIKeys []string
}

// RateLimitConfig controls per-client API rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 5
	Burst             int     // default: 10
}

// WebhookConfig controls async result delivery.
type WebhookConfig struct {
	// Secret signs outgoing webhook payloads when non-empty.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// HostsConfig is the host allow-list for lookup URLs.
type HostsConfig struct {
	// Allowed lists accepted hosts; subdomains of an entry are accepted.
	Allowed []string // default: ["rozetka.com.ua"]
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SCRAPPER_HOST", "0.0.0.0"),
			Port: envIntOr("SCRAPPER_PORT", 9001),
			Mode: envOr("SCRAPPER_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:  envBoolOr("SCRAPPER_HEADLESS", true),
			Contexts:  envIntOr("SCRAPPER_CONTEXTS", 4),
			NoSandbox: envBoolOr("SCRAPPER_NO_SANDBOX", false),
			Bin:       os.Getenv("SCRAPPER_BROWSER_BIN"),
			Proxy:     os.Getenv("SCRAPPER_PROXY"),
		},
		Fetch: FetchConfig{
			NavTimeout:       envDurationOr("SCRAPPER_NAV_TIMEOUT", 20*time.Second),
			NavRetryTimeout:  envDurationOr("SCRAPPER_NAV_RETRY_TIMEOUT", 60*time.Second),
			MarkerTimeout:    envDurationOr("SCRAPPER_MARKER_TIMEOUT", 2*time.Second),
			MarkerAttempts:   envIntOr("SCRAPPER_MARKER_ATTEMPTS", 3),
			MinDocumentBytes: envIntOr("SCRAPPER_MIN_DOCUMENT_BYTES", 50*1024),
			FastPath:         envBoolOr("SCRAPPER_FAST_PATH", true),
			FastPathTimeout:  envDurationOr("SCRAPPER_FAST_PATH_TIMEOUT", 8*time.Second),
		},
		Pacing: PacingConfig{
			Window:       envDurationOr("SCRAPPER_PACING_WINDOW", 60*time.Second),
			MaxPerWindow: envIntOr("SCRAPPER_PACING_MAX", 10),
			MinDelay:     envDurationOr("SCRAPPER_PACING_MIN_DELAY", 2*time.Second),
			JitterMin:    envDurationOr("SCRAPPER_PACING_JITTER_MIN", 300*time.Millisecond),
			JitterMax:    envDurationOr("SCRAPPER_PACING_JITTER_MAX", 1200*time.Millisecond),
		},
		Retry: RetryConfig{
			Attempts:      envIntOr("SCRAPPER_RETRY_ATTEMPTS", 3),
			BackoffBase:   envDurationOr("SCRAPPER_RETRY_BACKOFF", 5*time.Second),
			BackoffJitter: envDurationOr("SCRAPPER_RETRY_JITTER", 3*time.Second),
		},
		Batch: BatchConfig{
			Concurrency: envIntOr("SCRAPPER_CONCURRENCY", 5),
			MaxURLs:     envIntOr("SCRAPPER_BATCH_MAX_URLS", 100),
		},
		Cache: CacheConfig{
			TTL:        envDurationOr("SCRAPPER_CACHE_TTL", time.Hour),
			MaxEntries: envIntOr("SCRAPPER_CACHE_MAX_ENTRIES", 1000),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SCRAPPER_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SCRAPPER_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SCRAPPER_RATE_RPS", 5.0),
			Burst:             envIntOr("SCRAPPER_RATE_BURST", 10),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("SCRAPPER_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("SCRAPPER_LOG_LEVEL", "info"),
			Format: envOr("SCRAPPER_LOG_FORMAT", "json"),
		},
		Hosts: HostsConfig{
			Allowed: envSliceOr("SCRAPPER_ALLOWED_HOSTS", []string{"rozetka.com.ua"}),
		},
	}
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
