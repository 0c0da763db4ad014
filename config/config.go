package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Exchange endpoints
	TWSEBaseURL string
	MOPSBaseURL string
	ESGBaseURL  string

	// Fetch behavior. SSL verification, retries and backoff are explicit
	// here and handed to the client constructor — never ambient state.
	VerifyTLS    bool
	FetchRetries int
	FetchBackoff time.Duration
	FetchTimeout time.Duration
	FetchWorkers int
	RequestDelay time.Duration
	UserAgent    string

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration
	SQLitePath    string
	MetricsAddr   string

	// Analysis
	Stocks          string // comma-separated stock IDs, e.g. "2330,2317"
	MarketIndex     string
	RiskFreeRate    float64
	TradingDays     int
	SMAWindows      string // comma-separated, e.g. "10,50,200"
	EMASpans        string
	RSIWindows      string
	BollingerWindow int

	// Export
	ExportPath string

	// Backfill scheduling (cron expression; empty = run once)
	BackfillSchedule string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		TWSEBaseURL: getEnv("TWSE_BASE_URL", "https://www.twse.com.tw"),
		MOPSBaseURL: getEnv("MOPS_BASE_URL", "https://mopsov.twse.com.tw"),
		ESGBaseURL:  getEnv("ESG_BASE_URL", "https://esggenplus.twse.com.tw"),

		VerifyTLS:    getEnvBool("VERIFY_TLS", false), // exchange cert chain is unreliable
		FetchRetries: getEnvInt("FETCH_RETRIES", 3),
		FetchBackoff: getEnvDuration("FETCH_BACKOFF", 5*time.Second),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		FetchWorkers: getEnvInt("FETCH_WORKERS", 5),
		RequestDelay: getEnvDuration("REQUEST_DELAY", 3*time.Second),
		UserAgent:    getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      getEnvDuration("CACHE_TTL", 12*time.Hour),
		SQLitePath:    getEnv("SQLITE_PATH", "data/prices.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),

		Stocks:          getEnv("STOCKS", "2330"),
		MarketIndex:     getEnv("MARKET_INDEX", "^TWII"),
		RiskFreeRate:    getEnvFloat("RISK_FREE_RATE", 0.02),
		TradingDays:     getEnvInt("TRADING_DAYS", 252),
		SMAWindows:      getEnv("SMA_WINDOWS", "10,50,200"),
		EMASpans:        getEnv("EMA_SPANS", "12,26"),
		RSIWindows:      getEnv("RSI_WINDOWS", "14"),
		BollingerWindow: getEnvInt("BOLLINGER_WINDOW", 20),

		ExportPath: getEnv("EXPORT_PATH", "out/analysis.xlsx"),

		BackfillSchedule: getEnv("BACKFILL_SCHEDULE", ""),
	}
}

// ParseStocks parses the Stocks string into a slice of stock IDs.
func (c *Config) ParseStocks() []string {
	return splitList(c.Stocks)
}

// ParseWindows parses a comma-separated window list, skipping invalid entries.
func ParseWindows(s string) []int {
	parts := splitList(s)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			log.Printf("[config] skipping invalid window value: %q", p)
			continue
		}
		out = append(out, n)
	}
	return out
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid int for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] invalid float for %s: %q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[config] invalid bool for %s: %q, using %v", key, v, fallback)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid duration for %s: %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
