// internal/scraper/client.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/utils"
)

// Fetcher downloads product pages.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string, headers map[string]string) (*Page, error)
}

// HTTPClient is the default Fetcher: an HTTP client rate limited per host,
// with user agent rotation and retries on transient failures.
type HTTPClient struct {
	httpClient    *http.Client
	userAgents    []string
	currentUA     int
	uaMutex       sync.Mutex
	rateLimiter   *HostRateLimiter
	retryAttempts int
	retryDelay    time.Duration
	maxBodyBytes  int64
	headers       map[string]string
	metrics       *monitoring.MetricsManager
	logger        utils.Logger
}

// ClientConfig defines configuration options for the HTTP client
type ClientConfig struct {
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	UserAgents    []string
	Headers       map[string]string
	RateLimit     float64 // requests per second and host
	RateBurst     int
	MaxBodyBytes  int64
	Metrics       *monitoring.MetricsManager
	Logger        utils.Logger
}

// NewHTTPClient creates a new HTTP client with the specified configuration.
// A negative RetryAttempts disables retries.
func NewHTTPClient(config ClientConfig) *HTTPClient {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = 2
	}
	if config.RetryAttempts < 0 {
		config.RetryAttempts = 0
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2.0
	}
	if config.RateBurst == 0 {
		config.RateBurst = 5
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = 5 << 20
	}
	if len(config.UserAgents) == 0 {
		config.UserAgents = getDefaultUserAgents()
	}
	if config.Logger == nil {
		config.Logger = utils.NewComponentLogger("fetcher")
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &HTTPClient{
		httpClient:    httpClient,
		userAgents:    config.UserAgents,
		rateLimiter:   NewHostRateLimiter(config.RateLimit, config.RateBurst),
		retryAttempts: config.RetryAttempts,
		retryDelay:    config.RetryDelay,
		maxBodyBytes:  config.MaxBodyBytes,
		headers:       config.Headers,
		metrics:       config.Metrics,
		logger:        config.Logger,
	}
}

// Fetch performs a GET with retries. headers are applied on top of the
// client's own headers, typically the retailer config's.
func (c *HTTPClient) Fetch(ctx context.Context, pageURL string, headers map[string]string) (*Page, error) {
	if !utils.IsValidURL(pageURL) {
		return nil, utils.NewError(utils.ErrCodeInvalidURL, "url must be an absolute http(s) URL").
			WithContext("url", pageURL).
			WithUserMessage("Please provide a full product link starting with http:// or https://.").
			Build()
	}
	host := utils.Hostname(pageURL)
	log := c.logger.WithField("url", pageURL)

	var lastErr error
	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		if attempt > 0 {
			if err := c.waitForRetry(ctx, attempt-1); err != nil {
				return nil, err
			}
		}
		if err := c.rateLimiter.Wait(ctx, host); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		page, retry, err := c.do(ctx, pageURL, headers)
		if err == nil {
			c.rateLimiter.ReportSuccess(host)
			page.Attempts = attempt + 1
			c.metrics.RecordPageFetched(host, page.StatusCode)
			return page, nil
		}
		lastErr = err
		if retry {
			c.rateLimiter.ReportError(host)
		}
		if ctx.Err() != nil || !retry {
			break
		}
		log.WithField("attempt", attempt+1).Debugf("fetch failed, retrying: %v", err)
	}

	return nil, utils.NewError(utils.ErrCodeFetchFailed, "failed to fetch product page").
		WithCause(lastErr).
		WithContext("url", pageURL).
		WithUserMessage("The product page could not be downloaded. Check the link and try again.").
		Build()
}

func (c *HTTPClient) do(ctx context.Context, pageURL string, headers map[string]string) (*Page, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	c.setRequestHeaders(req, headers)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordPageFetched(utils.Hostname(pageURL), 0)
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordPageFetched(utils.Hostname(pageURL), resp.StatusCode)
		return nil, shouldRetryStatusCode(resp.StatusCode), &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, URL: pageURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read body: %w", err)
	}

	return &Page{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, false, nil
}

// setRequestHeaders configures request headers including user agent rotation
func (c *HTTPClient) setRequestHeaders(req *http.Request, extra map[string]string) {
	req.Header.Set("User-Agent", c.getNextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range extra {
		req.Header.Set(key, value)
	}
}

// getNextUserAgent returns the next user agent in rotation
func (c *HTTPClient) getNextUserAgent() string {
	c.uaMutex.Lock()
	defer c.uaMutex.Unlock()

	userAgent := c.userAgents[c.currentUA]
	c.currentUA = (c.currentUA + 1) % len(c.userAgents)
	return userAgent
}

// waitForRetry implements exponential backoff with jitter
func (c *HTTPClient) waitForRetry(ctx context.Context, attempt int) error {
	backoff := c.retryDelay * time.Duration(1<<uint(attempt))
	if half := int64(backoff / 2); half > 0 {
		backoff += time.Duration(rand.Int63n(half))
	}
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}

	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// shouldRetryStatusCode determines if a status code warrants a retry
func shouldRetryStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		520, 521, 522, 523, 524: // CloudFlare
		return true
	}
	return false
}

// getDefaultUserAgents returns a set of realistic user agent strings
func getDefaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
	}
}

// HTTPError represents a non-2xx response.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (URL: %s)", e.StatusCode, e.Status, e.URL)
}
