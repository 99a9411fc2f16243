package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wonny/valuescreen/pkg/config"
	"github.com/wonny/valuescreen/pkg/logger"
	"github.com/wonny/valuescreen/pkg/redis"
)

// maxRetryDelay caps the exponential backoff
const maxRetryDelay = 10 * time.Second

// Client fetches vendor pages: fixed User-Agent, timeout, optional retry
// and an optional read-through page cache.
// ⭐ SSOT: 모든 HTTP 요청은 이 클라이언트를 통해서만 수행
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	userAgent  string
	maxRetries int // 0 = 재시도 없음
	retryDelay time.Duration
	cache      *redis.Cache
	cacheTTL   time.Duration
}

// New creates a new HTTP client from config
// ⭐ SSOT: http.Client 인스턴스는 여기서만 생성
func New(cfg *config.Config, log *logger.Logger) *Client {
	timeout := cfg.HTTP.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	userAgent := cfg.HTTP.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0"
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
		userAgent:  userAgent,
		maxRetries: cfg.HTTP.MaxRetries,
		retryDelay: cfg.HTTP.RetryDelay,
	}
}

// WithCache enables the page cache for GetText
func (c *Client) WithCache(cache *redis.Cache, ttl time.Duration) *Client {
	c.cache = cache
	c.cacheTTL = ttl
	return c
}

// GetText fetches url and returns the response body as text, whatever the
// status code: vendors sometimes answer 403/404 with a usable page.
// A non-200 is logged; only 200 bodies go into the page cache.
// Errors are transport failures (DNS, connect, timeout, body read).
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	key := redis.PageKey(url)

	if c.cache.Enabled() {
		text, found, err := c.cache.GetText(ctx, key)
		if err != nil {
			// 캐시 장애는 요청 실패로 보지 않음
			c.logger.WithError(err).WithField("url", url).Warn("Page cache read failed")
		} else if found {
			c.logger.WithField("url", url).Debug("Page cache hit")
			return text, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create GET request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	text := string(body)

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(map[string]interface{}{
			"url":         url,
			"status_code": resp.StatusCode,
			"bytes":       len(body),
		}).Warn("Non-200 response, parsing body anyway")
		return text, nil
	}

	if c.cache.Enabled() {
		if err := c.cache.SetText(ctx, key, text, c.cacheTTL); err != nil {
			c.logger.WithError(err).WithField("url", url).Warn("Page cache write failed")
		}
	}

	return text, nil
}

// do executes the request with retry logic and logging
func (c *Client) do(req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	url := req.URL.String()

	req.Header.Set("User-Agent", c.userAgent)

	c.logger.WithField("url", url).Debug("HTTP request started")

	resp, err := c.doWithRetry(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"url":      url,
			"duration": duration,
		}).Warn("HTTP request failed")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"url":         url,
		"status_code": resp.StatusCode,
		"duration":    duration,
	}).Debug("HTTP request completed")

	return resp, nil
}

// doWithRetry retries 5xx/429 and transport errors with exponential backoff.
// With maxRetries == 0 it is a single attempt.
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	delay := c.retryDelay

	for attempt := 0; ; attempt++ {
		resp, err := c.httpClient.Do(req)
		if err == nil && !IsRetryableError(resp.StatusCode) {
			return resp, nil
		}

		// 마지막 시도: 받은 그대로 반환 (5xx 본문도 파싱 대상)
		if attempt >= c.maxRetries {
			return resp, err
		}

		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		c.logger.WithFields(map[string]interface{}{
			"attempt": attempt + 1,
			"delay":   delay,
			"url":     req.URL.String(),
		}).Warn("Retrying HTTP request")

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

// IsRetryableError reports whether a status code is worth retrying
func IsRetryableError(statusCode int) bool {
	// Retry on 5xx server errors and 429 Too Many Requests
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
