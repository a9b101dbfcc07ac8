package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Paths     PathsConfig
	Browser   BrowserConfig
	Fetch     FetchConfig
	Engine    EngineConfig
	Limits    LimitsConfig
	Run       RunConfig
	Email     EmailConfig
	Webhook   WebhookConfig
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Schedule  ScheduleConfig
	Log       LogConfig
}

// PathsConfig locates the files a run reads and writes.
type PathsConfig struct {
	// Brands is the JSON5 brand list.
	Brands string // default: "brands.json"

	// State is the persisted product snapshot.
	State string // default: "data/state.json"

	// Reports is the directory daily markdown reports are written to.
	Reports string // default: "reports"
}

// BrowserConfig controls the Rod browser instance and the identity every
// page presents.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 4

	// DefaultProxy is the proxy URL for all browser traffic.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	UserAgent      string // default: desktop Chrome 120
	Locale         string // default: "en-GB"
	Timezone       string // default: "Europe/London"
	ViewportWidth  int    // default: 1366
	ViewportHeight int    // default: 2000
}

// FetchConfig controls how a single page is fetched.
type FetchConfig struct {
	// NavigationTimeout bounds one attempt at loading a page.
	NavigationTimeout time.Duration // default: 35s

	// SettleDelay is waited after the DOM is loaded so late widgets render.
	SettleDelay time.Duration // default: 1.5s

	// Attempts is the total number of tries per URL.
	Attempts int // default: 2

	// RetryBackoff is the pause between attempts.
	RetryBackoff time.Duration // default: 0

	// BlockedResourceTypes lists resource types aborted by the browser.
	// default: ["Image", "Media", "Font"]
	BlockedResourceTypes []string

	// BlockedHosts are URL substrings of trackers whose requests are aborted.
	BlockedHosts []string

	// Stealth injects the stealth script into every page.
	Stealth bool // default: false

	// HostInterval is the minimum spacing between requests to one host.
	HostInterval time.Duration // default: 1s
}

// EngineConfig selects the fetch engine.
type EngineConfig struct {
	// Mode is one of "rod", "rod-stealth", "http" or "auto".
	Mode string // default: "rod"

	// EscalationDelays is the staged start delay for each engine tier in
	// auto mode.
	EscalationDelays []time.Duration // default: [0s, 2s, 5s]

	// HTTPTimeout is the deadline for the plain HTTP engine.
	HTTPTimeout time.Duration // default: 10s

	// MemoryTTL is how long auto mode remembers the winning engine per host.
	MemoryTTL time.Duration // default: 24h
}

// LimitsConfig bounds the candidate lists.
type LimitsConfig struct {
	PageCap  int // default: 40
	BrandCap int // default: 30
}

// RunConfig controls a full radar run.
type RunConfig struct {
	// Workers is the number of brands scanned concurrently.
	Workers int // default: 1
}

// EmailConfig controls digest delivery over SMTP.
type EmailConfig struct {
	User string
	Pass string
	To   []string
	Host string // default: "smtp.gmail.com"
	Port int    // default: 587
}

// WebhookConfig controls the optional digest webhook.
type WebhookConfig struct {
	URL      string
	Secret   string
	Attempts int           // default: 3
	Timeout  time.Duration // default: 10s
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the API scan result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached scans.
	MaxEntries int // default: 256

	// MaxAge is how long a cached scan is served.
	MaxAge time.Duration // default: 10m
}

// ScheduleConfig controls the daemon.
type ScheduleConfig struct {
	// Cron is a standard five-field cron expression.
	Cron string // default: "0 7 * * *"

	// RunOnStart triggers one run as soon as the daemon starts.
	RunOnStart bool // default: false
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// DefaultUserAgent is a desktop Chrome user agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Paths: PathsConfig{
			Brands:  envOr("RADAR_BRANDS_FILE", "brands.json"),
			State:   envOr("RADAR_STATE_FILE", "data/state.json"),
			Reports: envOr("RADAR_REPORTS_DIR", "reports"),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("RADAR_HEADLESS", true),
			MaxPages:       envIntOr("RADAR_MAX_PAGES", 4),
			DefaultProxy:   os.Getenv("RADAR_PROXY"),
			NoSandbox:      envBoolOr("RADAR_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("RADAR_BROWSER_BIN"),
			UserAgent:      envOr("RADAR_USER_AGENT", DefaultUserAgent),
			Locale:         envOr("RADAR_LOCALE", "en-GB"),
			Timezone:       envOr("RADAR_TIMEZONE", "Europe/London"),
			ViewportWidth:  envIntOr("RADAR_VIEWPORT_WIDTH", 1366),
			ViewportHeight: envIntOr("RADAR_VIEWPORT_HEIGHT", 2000),
		},
		Fetch: FetchConfig{
			NavigationTimeout: envDurationOr("RADAR_NAV_TIMEOUT", 35*time.Second),
			SettleDelay:       envDurationOr("RADAR_SETTLE_DELAY", 1500*time.Millisecond),
			Attempts:          envIntOr("RADAR_FETCH_ATTEMPTS", 2),
			RetryBackoff:      envDurationOr("RADAR_RETRY_BACKOFF", 0),
			BlockedResourceTypes: envSliceOr("RADAR_BLOCKED_RESOURCES", []string{
				"Image", "Media", "Font",
			}),
			BlockedHosts: envSliceOr("RADAR_BLOCKED_HOSTS", []string{
				"doubleclick.net", "googletagmanager.com", "analytics", "facebook.net", "tiktokcdn",
			}),
			Stealth:      envBoolOr("RADAR_STEALTH", false),
			HostInterval: envDurationOr("RADAR_HOST_INTERVAL", time.Second),
		},
		Engine: EngineConfig{
			Mode:             envOr("RADAR_ENGINE", "rod"),
			EscalationDelays: envDurationSliceOr("RADAR_ESCALATION_DELAYS", []time.Duration{0, 2 * time.Second, 5 * time.Second}),
			HTTPTimeout:      envDurationOr("RADAR_HTTP_TIMEOUT", 10*time.Second),
			MemoryTTL:        envDurationOr("RADAR_ENGINE_MEMORY_TTL", 24*time.Hour),
		},
		Limits: LimitsConfig{
			PageCap:  envIntOr("RADAR_PAGE_CAP", 40),
			BrandCap: envIntOr("RADAR_BRAND_CAP", 30),
		},
		Run: RunConfig{
			Workers: envIntOr("RADAR_WORKERS", 1),
		},
		Email: EmailConfig{
			User: os.Getenv("EMAIL_USER"),
			Pass: os.Getenv("EMAIL_PASS"),
			To:   envSliceOr("EMAIL_TO", nil),
			Host: envOr("RADAR_SMTP_HOST", "smtp.gmail.com"),
			Port: envIntOr("RADAR_SMTP_PORT", 587),
		},
		Webhook: WebhookConfig{
			URL:      os.Getenv("RADAR_WEBHOOK_URL"),
			Secret:   os.Getenv("RADAR_WEBHOOK_SECRET"),
			Attempts: envIntOr("RADAR_WEBHOOK_ATTEMPTS", 3),
			Timeout:  envDurationOr("RADAR_WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Server: ServerConfig{
			Host: envOr("RADAR_HOST", "0.0.0.0"),
			Port: envIntOr("RADAR_PORT", 8080),
			Mode: envOr("RADAR_MODE", "release"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("RADAR_AUTH_ENABLED", true),
			APIKeys: envSliceOr("RADAR_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("RADAR_RATE_RPS", 2.0),
			Burst:             envIntOr("RADAR_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("RADAR_CACHE_MAX_ENTRIES", 256),
			MaxAge:     envDurationOr("RADAR_CACHE_MAX_AGE", 10*time.Minute),
		},
		Schedule: ScheduleConfig{
			Cron:       envOr("RADAR_SCHEDULE", "0 7 * * *"),
			RunOnStart: envBoolOr("RADAR_RUN_ON_START", false),
		},
		Log: LogConfig{
			Level:  envOr("RADAR_LOG_LEVEL", "info"),
			Format: envOr("RADAR_LOG_FORMAT", "text"),
		},
	}
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]time.Duration, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if d, err := time.ParseDuration(trimmed); err == nil {
					result = append(result, d)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
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
