package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.TWSEBaseURL != "https://www.twse.com.tw" {
		t.Errorf("TWSEBaseURL: %s", cfg.TWSEBaseURL)
	}
	if cfg.FetchRetries != 3 || cfg.FetchWorkers != 5 {
		t.Errorf("fetch defaults: retries=%d workers=%d", cfg.FetchRetries, cfg.FetchWorkers)
	}
	if cfg.RequestDelay != 3*time.Second {
		t.Errorf("RequestDelay: %s", cfg.RequestDelay)
	}
	if cfg.TradingDays != 252 || cfg.RiskFreeRate != 0.02 {
		t.Errorf("analysis defaults: days=%d rf=%g", cfg.TradingDays, cfg.RiskFreeRate)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STOCKS", "2330, 2317 ,2454")
	t.Setenv("FETCH_RETRIES", "7")
	t.Setenv("VERIFY_TLS", "true")
	t.Setenv("CACHE_TTL", "90m")

	cfg := Load()
	if cfg.FetchRetries != 7 {
		t.Errorf("FETCH_RETRIES: %d", cfg.FetchRetries)
	}
	if !cfg.VerifyTLS {
		t.Error("VERIFY_TLS: false")
	}
	if cfg.CacheTTL != 90*time.Minute {
		t.Errorf("CACHE_TTL: %s", cfg.CacheTTL)
	}
	stocks := cfg.ParseStocks()
	if len(stocks) != 3 || stocks[0] != "2330" || stocks[1] != "2317" || stocks[2] != "2454" {
		t.Errorf("ParseStocks: %v", stocks)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("FETCH_RETRIES", "many")
	t.Setenv("RISK_FREE_RATE", "two percent")
	t.Setenv("FETCH_BACKOFF", "soon")

	cfg := Load()
	if cfg.FetchRetries != 3 {
		t.Errorf("invalid int fallback: %d", cfg.FetchRetries)
	}
	if cfg.RiskFreeRate != 0.02 {
		t.Errorf("invalid float fallback: %g", cfg.RiskFreeRate)
	}
	if cfg.FetchBackoff != 5*time.Second {
		t.Errorf("invalid duration fallback: %s", cfg.FetchBackoff)
	}
}

func TestParseWindows(t *testing.T) {
	got := ParseWindows("10, 50,abc,-3,200,")
	want := []int{10, 50, 200}
	if len(got) != len(want) {
		t.Fatalf("ParseWindows: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("window %d: got %d, want %d", i, got[i], want[i])
		}
	}
	if len(ParseWindows("")) != 0 {
		t.Error("empty list should parse to no windows")
	}
}
