// Package twse fetches Taiwanese exchange data: daily OHLCV quotes and
// valuation ratios from the TWSE open endpoints, quarterly financial
// statements from MOPS, and ESG disclosures.
//
// The package is a thin I/O layer: it delivers clean rows to the engines
// and maps every per-unit failure (timeout, bad payload, no data) to an
// empty result so one dead unit never aborts its siblings.
package twse

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"finpanel/internal/metrics"
	"finpanel/internal/store/redis"
)

// Config configures the exchange client. TLS verification, retry count and
// backoff delay are explicit constructor inputs, not package state.
type Config struct {
	TWSEBaseURL string
	MOPSBaseURL string
	ESGBaseURL  string

	VerifyTLS    bool
	Retries      int
	Backoff      time.Duration
	Timeout      time.Duration
	Workers      int           // bounded fetch concurrency
	RequestDelay time.Duration // fixed inter-request spacing per rate limits
	UserAgent    string
}

func (c *Config) withDefaults() {
	if c.TWSEBaseURL == "" {
		c.TWSEBaseURL = "https://www.twse.com.tw"
	}
	if c.MOPSBaseURL == "" {
		c.MOPSBaseURL = "https://mopsov.twse.com.tw"
	}
	if c.ESGBaseURL == "" {
		c.ESGBaseURL = "https://esggenplus.twse.com.tw"
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 5 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Workers <= 0 {
		c.Workers = 5
	}
	if c.RequestDelay <= 0 {
		c.RequestDelay = 3 * time.Second
	}
}

// Client talks to the exchange endpoints with retry, rate limiting, and an
// optional response cache.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cache   *redis.Cache // nil disables caching
	metrics *metrics.Metrics
}

// New builds a Client. cache and m may be nil.
func New(cfg Config, cache *redis.Cache, m *metrics.Metrics) *Client {
	cfg.withDefaults()
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS},
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
		cache:   cache,
		metrics: m,
	}
}

// get fetches url with the configured retry/backoff policy, returning the
// response body. Results are cached under (endpoint, unit) when a cache is
// configured.
func (c *Client) get(ctx context.Context, endpoint, unit, url string) ([]byte, error) {
	return c.fetch(ctx, endpoint, unit, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
}

func (c *Client) fetch(ctx context.Context, endpoint, unit string, newReq func(context.Context) (*http.Request, error)) ([]byte, error) {
	key := redis.Key(endpoint, unit)
	if c.cache != nil {
		if b, ok := c.cache.Get(ctx, key); ok {
			if c.metrics != nil {
				c.metrics.CacheHitsTotal.Inc()
			}
			return b, nil
		}
		if c.metrics != nil {
			c.metrics.CacheMissesTotal.Inc()
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.Retries; attempt++ {
		if attempt > 0 {
			if c.metrics != nil {
				c.metrics.FetchRetriesTotal.Inc()
			}
			select {
			case <-time.After(c.cfg.Backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := newReq(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept", "application/json, text/html, */*")
		req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")

		if c.metrics != nil {
			c.metrics.FetchRequestsTotal.WithLabelValues(endpoint).Inc()
		}
		start := time.Now()
		resp, err := c.http.Do(req)
		if c.metrics != nil {
			c.metrics.FetchDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		}
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%s: unexpected status %d", endpoint, resp.StatusCode)
			continue
		}

		if c.cache != nil {
			c.cache.Set(ctx, key, body)
		}
		return body, nil
	}

	if c.metrics != nil {
		c.metrics.FetchFailuresTotal.WithLabelValues(endpoint).Inc()
	}
	return nil, fmt.Errorf("%s %s: retries exhausted: %w", endpoint, unit, lastErr)
}
