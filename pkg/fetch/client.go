// Package fetch provides the single-page HTTP JSON fetcher with error
// classification and optional Redis-backed page caching.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/criscriscristof/pagestream/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for fetch operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagestream_requests_total",
		Help: "Total page requests by status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagestream_request_duration_seconds",
		Help:    "Page request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagestream_errors_total",
		Help: "Total fetch errors by class",
	}, []string{"class"})
)

// Client fetches single JSON pages from HTTP APIs.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the fetch client configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// Timeout per request
	Timeout time.Duration

	// Redis client for the optional page cache (nil disables caching)
	Redis *redis.Client

	// CacheTTL is the lifetime of cached page bodies
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration without caching.
func DefaultConfig() Config {
	return Config{
		UserAgent: "pagestream/0.1.0",
		Timeout:   30 * time.Second,
		CacheTTL:  5 * time.Minute,
	}
}

// New creates a new fetch client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "fetch").Logger()

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis, cfg.CacheTTL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  cacheManager,
		config: cfg,
		logger: logger,
	}, nil
}

// Fetch performs one GET request and returns the raw response body.
// Any transport error or non-2xx status is returned as a *FetchError;
// failures are terminal for the page, there are no retries.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	// Check cache first
	if c.cache != nil {
		key := cache.Key(url)
		entry, err := c.cache.Get(ctx, key)
		if err == nil {
			c.logger.Debug().
				Str("url", url).
				Bool("cache_hit", true).
				Msg("Serving page from cache")
			return entry.Body, nil
		}
		if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("url", url).Msg("Cache get error")
		}
	}

	startTime := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &FetchError{
			URL:     url,
			Class:   ErrorClassNetwork,
			Message: "create request",
			Err:     err,
		}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", url).Msg("Executing page request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("HTTP request failed")
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues("network_error").Inc()
		return nil, &FetchError{
			URL:     url,
			Class:   ErrorClassNetwork,
			Message: "request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errClass := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Page request error")

		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Class:      errClass,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Class:      ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	// Store in cache on success
	if c.cache != nil {
		key := cache.Key(url)
		if err := c.cache.Set(ctx, key, body, resp.StatusCode); err != nil {
			c.logger.Warn().Err(err).Str("url", url).Msg("Failed to cache page")
		}
	}

	return body, nil
}

// FetchJSON performs one GET request and decodes the body as JSON.
// The decoded value is either a map[string]any (JSON object) or []any
// (JSON array); any other shape is a decode failure.
func (c *Client) FetchJSON(ctx context.Context, url string) (any, error) {
	body, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Warn().Err(err).Str("url", url).Msg("Failed to decode JSON body")
		return nil, &FetchError{
			URL:     url,
			Class:   ErrorClassDecode,
			Message: "invalid JSON body",
			Err:     err,
		}
	}

	switch decoded.(type) {
	case map[string]any, []any:
		return decoded, nil
	default:
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &FetchError{
			URL:     url,
			Class:   ErrorClassDecode,
			Message: fmt.Sprintf("unexpected JSON shape %T", decoded),
		}
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
