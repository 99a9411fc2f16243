package gurufocus

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/pkg/httputil"
	"github.com/wonny/valuescreen/pkg/logger"
)

// DCF 계산기 페이지에 박혀 있는 스크립트 변수에서 값을 뽑음
var (
	predictabilityPattern = regexp.MustCompile(`aria-valuenow="([0-9.]+)"`)
	intrinsicValuePattern = regexp.MustCompile(`isin:".*?",iv_dcEarning:([0-9.]+),`)
	pricePattern          = regexp.MustCompile(`pretax_margain:[^,]+,price:([0-9.]+),`)
)

// Client fetches the GuruFocus DCF calculator page for a ticker
// ⭐ SSOT: GuruFocus 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new GuruFocus client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ValuationURL returns the DCF calculator URL for ticker
func (c *Client) ValuationURL(ticker string) string {
	return fmt.Sprintf("%s/dcf-calculator?ticker=%s", c.baseURL, url.QueryEscape(ticker))
}

// FetchValuation downloads and parses the DCF page of ticker.
// A page without the expected markup is not an error: the missing fields
// come back as NaN and the filter drops the ticker.
func (c *Client) FetchValuation(ctx context.Context, ticker string) (*contracts.Valuation, error) {
	html, err := c.httpClient.GetText(ctx, c.ValuationURL(ticker))
	if err != nil {
		return nil, fmt.Errorf("fetch valuation page: %w", err)
	}

	v := ParseValuation(html)

	c.logger.WithFields(map[string]interface{}{
		"ticker":         ticker,
		"predictability": v.Predictability,
		"iv_dcEarning":   v.IVDCEarning,
		"price":          v.Price,
		"marginOfSafety": v.MarginOfSafety,
	}).Debug("Fetched GuruFocus valuation")

	return &v, nil
}

// ParseValuation extracts predictability, intrinsic value and price from html
// and derives the margin of safety
func ParseValuation(html string) contracts.Valuation {
	iv := matchFloat(intrinsicValuePattern, html)
	price := matchFloat(pricePattern, html)

	return contracts.Valuation{
		Predictability: matchFloat(predictabilityPattern, html),
		IVDCEarning:    iv,
		Price:          price,
		MarginOfSafety: MarginOfSafety(iv, price),
	}
}

// MarginOfSafety returns (iv - price) / iv * 100 rounded to two decimals.
// NaN when either input is NaN or zero.
func MarginOfSafety(iv, price float64) float64 {
	if math.IsNaN(iv) || math.IsNaN(price) || iv == 0 || price == 0 {
		return math.NaN()
	}

	mos := (iv - price) / iv * 100
	return math.Round(mos*100) / 100
}

// matchFloat returns the first capture of re as a float, NaN if absent
func matchFloat(re *regexp.Regexp, html string) float64 {
	m := re.FindStringSubmatch(html)
	if m == nil {
		return math.NaN()
	}
	return parseLeadingFloat(m[1])
}

// parseLeadingFloat parses the longest numeric prefix of s ("1.2.3" -> 1.2)
func parseLeadingFloat(s string) float64 {
	if i := strings.Index(s, "."); i >= 0 {
		if j := strings.Index(s[i+1:], "."); j >= 0 {
			s = s[:i+1+j]
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// ErrRange도 NaN: JSON은 Inf를 인코딩하지 못하므로 의도적으로 무값 처리
		return math.NaN()
	}
	return f
}
