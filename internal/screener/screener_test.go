package screener

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/internal/external/zacks"
	"github.com/wonny/valuescreen/pkg/logger"
)

// fakeSource returns a fixed ticker list
type fakeSource struct {
	tickers []string
	err     error
}

func (f *fakeSource) FetchTickers(ctx context.Context, pageURL string) ([]string, error) {
	return f.tickers, f.err
}

// fakeRanks serves ranks from a map; missing tickers have no rank
type fakeRanks struct {
	ranks  map[string]int
	errs   map[string]error
	jitter bool
	calls  int32
}

func (f *fakeRanks) FetchRank(ctx context.Context, ticker string) (int, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.jitter {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err, ok := f.errs[ticker]; ok {
		return 0, err
	}
	rank, ok := f.ranks[ticker]
	if !ok {
		return 0, zacks.ErrNoRank
	}
	return rank, nil
}

// fakeValuations serves valuations from a map
type fakeValuations struct {
	values map[string]contracts.Valuation
	errs   map[string]error
	calls  int32
}

func (f *fakeValuations) FetchValuation(ctx context.Context, ticker string) (*contracts.Valuation, error) {
	atomic.AddInt32(&f.calls, 1)
	if err, ok := f.errs[ticker]; ok {
		return nil, err
	}
	v, ok := f.values[ticker]
	if !ok {
		return nil, errors.New("not found")
	}
	return &v, nil
}

func val(pred, iv, price float64) contracts.Valuation {
	mos := math.NaN()
	if iv != 0 && price != 0 {
		mos = math.Round((iv-price)/iv*100*100) / 100
	}
	return contracts.Valuation{Predictability: pred, IVDCEarning: iv, Price: price, MarginOfSafety: mos}
}

func newTestScreener(src *fakeSource, ranks *fakeRanks, vals *fakeValuations, concurrency int) *Screener {
	return New(src, ranks, vals, DefaultThresholds(), concurrency, logger.Nop())
}

func TestScreen(t *testing.T) {
	src := &fakeSource{tickers: []string{"AAPL", "MSFT", "IBM", "NVDA", "ZERO", "DOWN", "LOWP", "CHEAP", "GONE"}}
	ranks := &fakeRanks{
		ranks: map[string]int{
			"AAPL": 1, "MSFT": 2, "IBM": 3, "ZERO": 1, "DOWN": 2, "LOWP": 1, "CHEAP": 2,
		},
		errs: map[string]error{"GONE": errors.New("connection reset")},
	}
	vals := &fakeValuations{
		values: map[string]contracts.Valuation{
			"AAPL":  val(4.5, 100, 70),
			"MSFT":  val(2, 200, 150),
			"ZERO":  val(5, 0, 70),
			"LOWP":  val(1, 100, 50),
			"CHEAP": val(3, 100, 90),
		},
		errs: map[string]error{"DOWN": errors.New("dial tcp: i/o timeout")},
	}

	for _, concurrency := range []int{1, 4, 16} {
		s := newTestScreener(src, ranks, vals, concurrency)

		result, err := s.Screen(context.Background(), "https://finviz.example/screener")
		require.NoError(t, err)

		require.Equal(t, 2, result.Count)
		require.Len(t, result.Filtered, 2)

		assert.Equal(t, "AAPL", result.Filtered[0].Ticker)
		assert.Equal(t, 1, result.Filtered[0].Rank)
		assert.Equal(t, 4.5, result.Filtered[0].Predictability)
		assert.Equal(t, 100.0, result.Filtered[0].IVDCEarning)
		assert.Equal(t, 70.0, result.Filtered[0].Price)
		assert.Equal(t, 30.0, result.Filtered[0].MarginOfSafety)

		assert.Equal(t, "MSFT", result.Filtered[1].Ticker)
		assert.Equal(t, 25.0, result.Filtered[1].MarginOfSafety)

		byTicker := map[string]contracts.Outcome{}
		for _, o := range result.Outcomes {
			byTicker[o.Ticker] = o
		}
		require.Len(t, result.Outcomes, len(src.tickers))

		assert.Equal(t, contracts.ReasonRankExcluded, byTicker["IBM"].Reason)
		assert.Equal(t, contracts.ReasonNoRank, byTicker["NVDA"].Reason)
		assert.Equal(t, contracts.ReasonMarginNaN, byTicker["ZERO"].Reason)
		assert.Equal(t, contracts.ReasonPredictabilityLow, byTicker["LOWP"].Reason)
		assert.Equal(t, contracts.ReasonMarginLow, byTicker["CHEAP"].Reason)

		assert.Equal(t, contracts.StatusFailed, byTicker["DOWN"].Status)
		assert.Equal(t, contracts.StageValuation, byTicker["DOWN"].Stage)
		assert.Error(t, byTicker["DOWN"].Err)

		assert.Equal(t, contracts.StatusFailed, byTicker["GONE"].Status)
		assert.Equal(t, contracts.StageRank, byTicker["GONE"].Stage)

		tally := result.Tally()
		assert.Equal(t, 2, tally[contracts.StatusIncluded])
		assert.Equal(t, 5, tally[contracts.StatusSkipped])
		assert.Equal(t, 2, tally[contracts.StatusFailed])
	}
}

func TestScreenOnlyValuesQualifiedRanks(t *testing.T) {
	src := &fakeSource{tickers: []string{"A", "B", "C", "D", "E"}}
	ranks := &fakeRanks{ranks: map[string]int{"A": 1, "B": 2, "C": 3, "D": 4, "E": 5}}
	vals := &fakeValuations{values: map[string]contracts.Valuation{}}

	_, err := newTestScreener(src, ranks, vals, 1).Screen(context.Background(), "u")
	require.NoError(t, err)

	assert.Equal(t, int32(5), atomic.LoadInt32(&ranks.calls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&vals.calls))
}

func TestScreenValuationErrorDoesNotAbort(t *testing.T) {
	src := &fakeSource{tickers: []string{"FAIL", "NEXT"}}
	ranks := &fakeRanks{ranks: map[string]int{"FAIL": 1, "NEXT": 1}}
	vals := &fakeValuations{
		values: map[string]contracts.Valuation{"NEXT": val(3, 100, 60)},
		errs:   map[string]error{"FAIL": errors.New("network is unreachable")},
	}

	result, err := newTestScreener(src, ranks, vals, 1).Screen(context.Background(), "u")
	require.NoError(t, err)

	require.Equal(t, 1, result.Count)
	assert.Equal(t, "NEXT", result.Filtered[0].Ticker)
	assert.Equal(t, contracts.ReasonValuationUnavailable, result.Outcomes[0].Reason)
}

func TestScreenKeepsExtractionOrderUnderConcurrency(t *testing.T) {
	tickers := make([]string, 0, 26)
	ranks := &fakeRanks{ranks: map[string]int{}, jitter: true}
	vals := &fakeValuations{values: map[string]contracts.Valuation{}}
	for c := 'A'; c <= 'Z'; c++ {
		ticker := string(c) + "X"
		tickers = append(tickers, ticker)
		ranks.ranks[ticker] = 1
		vals.values[ticker] = val(2, 100, 50)
	}

	result, err := newTestScreener(&fakeSource{tickers: tickers}, ranks, vals, 8).
		Screen(context.Background(), "u")
	require.NoError(t, err)

	require.Equal(t, len(tickers), result.Count)
	for i, entry := range result.Filtered {
		assert.Equal(t, tickers[i], entry.Ticker)
	}
}

func TestScreenSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("fetch screener page: unexpected status code: 403")}
	ranks := &fakeRanks{}

	result, err := newTestScreener(src, ranks, &fakeValuations{}, 4).Screen(context.Background(), "u")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ranks.calls))
}

func TestScreenNoTickers(t *testing.T) {
	result, err := newTestScreener(&fakeSource{tickers: []string{}}, &fakeRanks{}, &fakeValuations{}, 4).
		Screen(context.Background(), "u")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Count)
	assert.NotNil(t, result.Filtered, "filtered must serialise as [] not null")
}

func TestScreenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{tickers: []string{"AAPL"}}
	ranks := &fakeRanks{ranks: map[string]int{"AAPL": 1}}

	_, err := newTestScreener(src, ranks, &fakeValuations{}, 1).Screen(ctx, "u")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTickers(t *testing.T) {
	src := &fakeSource{tickers: []string{"AAPL", "MSFT"}}

	tickers, err := newTestScreener(src, &fakeRanks{}, &fakeValuations{}, 1).Tickers(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)
}
