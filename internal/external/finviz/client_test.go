package finviz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuescreen/pkg/config"
	"github.com/wonny/valuescreen/pkg/httputil"
	"github.com/wonny/valuescreen/pkg/logger"
)

func TestExtractTickers(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "quote link and data attribute",
			html: `<a href="quote.ashx?t=AAPL&ty=c">AAPL</a><tr data-ticker="MSFT">`,
			want: []string{"AAPL", "MSFT"},
		},
		{
			name: "ticker link",
			html: `<a href="ticker.ashx?t=AAPL">x</a> <div data-ticker="MSFT"></div>`,
			want: []string{"AAPL", "MSFT"},
		},
		{
			name: "duplicates across patterns",
			html: `quote.ashx?t=NVDA" quote.ashx?t=NVDA# data-ticker="NVDA" data-ticker="AMD"`,
			want: []string{"NVDA", "AMD"},
		},
		{
			name: "first seen order kept",
			html: `quote.ashx?t=ZM& quote.ashx?t=A& quote.ashx?t=ZM&`,
			want: []string{"ZM", "A"},
		},
		{
			name: "lowercase ignored",
			html: `quote.ashx?t=aapl data-ticker="msft"`,
			want: []string{},
		},
		{
			name: "longer symbol truncated to six letters",
			html: `quote.ashx?t=ABCDEFGH`,
			want: []string{"ABCDEF"},
		},
		{
			name: "data-ticker longer than six letters ignored",
			html: `data-ticker="ABCDEFG"`,
			want: []string{},
		},
		{
			name: "attribute must start on a word boundary",
			html: `xdata-ticker="AAPL"`,
			want: []string{},
		},
		{
			name: "empty input",
			html: "",
			want: []string{},
		},
		{
			name: "malformed html",
			html: `<<<quote.ashx?t=>>> data-ticker="" <a`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTickers(tt.html)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTickersShapeAndUniqueness(t *testing.T) {
	shape := regexp.MustCompile(`^[A-Z]{1,6}$`)
	inputs := []string{
		`quote.ashx?t=BRK data-ticker="BRK" ticker.ashx?t=GOOGL&x quote.ashx?t=GOOGL`,
		`data-ticker="A" data-ticker="AB" data-ticker="ABC" quote.ashx?t=ABCDEFGHIJ`,
		`ticker.ashx?t=T1 quote.ashx?t=X-Y data-ticker="Z.Z"`,
	}

	for _, html := range inputs {
		got := ExtractTickers(html)
		seen := map[string]bool{}
		for _, ticker := range got {
			assert.Regexp(t, shape, ticker)
			assert.False(t, seen[ticker], "duplicate ticker %s", ticker)
			seen[ticker] = true
		}
	}
}

func TestFetchTickers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/screener.ashx":
			w.Write([]byte(`<a href="quote.ashx?t=AAPL&ty=c">AAPL</a><tr data-ticker="MSFT">`))
		case "/blocked":
			// 상태 코드와 무관하게 본문을 파싱
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`<a href="quote.ashx?t=KO">KO</a>`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	client := NewClient(httputil.New(config.Default(), logger.Nop()), logger.Nop())
	ctx := context.Background()

	tickers, err := client.FetchTickers(ctx, server.URL+"/screener.ashx?v=111")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)

	tickers, err = client.FetchTickers(ctx, server.URL+"/blocked")
	require.NoError(t, err)
	assert.Equal(t, []string{"KO"}, tickers)

	tickers, err = client.FetchTickers(ctx, server.URL+"/broken")
	require.NoError(t, err)
	assert.Empty(t, tickers)

	server.Close()
	_, err = client.FetchTickers(ctx, server.URL+"/screener.ashx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch screener page")
}
