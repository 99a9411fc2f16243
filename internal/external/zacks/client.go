package zacks

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/wonny/valuescreen/pkg/httputil"
	"github.com/wonny/valuescreen/pkg/logger"
)

// ErrNoRank is returned when the rank page carries no rank chip
var ErrNoRank = errors.New("no rank on page")

// <span class="... rank_chip ...">N</span> 의 첫 번째 매치만 사용
var rankPattern = regexp.MustCompile(`<span[^>]*class="[^"]*rank_chip[^"]*"[^>]*>(\d)</span>`)

// Client fetches the Zacks rank page for a ticker
// ⭐ SSOT: Zacks 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Zacks client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// RankURL returns the rank page URL for ticker
func (c *Client) RankURL(ticker string) string {
	return fmt.Sprintf(
		"%s/defer/premium_research_v2.php?premium_string=0&ticker_string=%s&logged_string=0",
		c.baseURL, url.QueryEscape(ticker),
	)
}

// FetchRank returns the Zacks rank of ticker (1 = Strong Buy ... 5 = Strong Sell)
func (c *Client) FetchRank(ctx context.Context, ticker string) (int, error) {
	html, err := c.httpClient.GetText(ctx, c.RankURL(ticker))
	if err != nil {
		return 0, fmt.Errorf("fetch rank page: %w", err)
	}

	rank, ok := ParseRank(html)
	if !ok {
		return 0, ErrNoRank
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"rank":   rank,
	}).Debug("Fetched Zacks rank")

	return rank, nil
}

// ParseRank extracts the first single-digit rank chip from html
func ParseRank(html string) (int, bool) {
	m := rankPattern.FindStringSubmatch(html)
	if m == nil {
		return 0, false
	}

	rank, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return rank, true
}

// Qualifies reports whether rank lets a ticker proceed to valuation
func Qualifies(rank int) bool {
	return rank == 1 || rank == 2
}
