package finviz

import (
	"context"
	"fmt"
	"regexp"

	"github.com/wonny/valuescreen/pkg/httputil"
	"github.com/wonny/valuescreen/pkg/logger"
)

// Finviz 마크업이 바뀌면 이 두 패턴만 고치면 됨
var tickerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:ticker|quote)\.ashx\?t=([A-Z]{1,6})(?:[&#"])?`),
	regexp.MustCompile(`\bdata-ticker="([A-Z]{1,6})"`),
}

var validTicker = regexp.MustCompile(`^[A-Z]{1,6}$`)

// Client fetches screener pages and extracts ticker symbols
// ⭐ SSOT: Finviz 페이지 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
}

// NewClient creates a new Finviz client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
	}
}

// FetchTickers downloads pageURL and returns the tickers found on it
func (c *Client) FetchTickers(ctx context.Context, pageURL string) ([]string, error) {
	html, err := c.httpClient.GetText(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch screener page: %w", err)
	}

	tickers := ExtractTickers(html)

	c.logger.WithFields(map[string]interface{}{
		"url":   pageURL,
		"bytes": len(html),
		"count": len(tickers),
	}).Debug("Extracted tickers from screener page")

	return tickers, nil
}

// ExtractTickers returns the unique tickers referenced by html, in the order
// they were first seen (quote links first, then data-ticker attributes).
// Malformed or empty input yields an empty slice.
func ExtractTickers(html string) []string {
	seen := make(map[string]struct{})
	tickers := make([]string, 0)

	for _, re := range tickerPatterns {
		for _, m := range re.FindAllStringSubmatch(html, -1) {
			t := m[1]
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}

			if validTicker.MatchString(t) {
				tickers = append(tickers, t)
			}
		}
	}

	return tickers
}
