package screener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/internal/external/zacks"
	"github.com/wonny/valuescreen/pkg/logger"
)

// Screener runs the extract -> rank -> valuation -> filter pipeline
// ⭐ SSOT: 스크리닝 파이프라인은 여기서만
type Screener struct {
	tickers     contracts.TickerSource
	ranks       contracts.RankProvider
	valuations  contracts.ValuationProvider
	thresholds  Thresholds
	concurrency int
	logger      *logger.Logger
}

// New creates a new screener
func New(
	tickers contracts.TickerSource,
	ranks contracts.RankProvider,
	valuations contracts.ValuationProvider,
	thresholds Thresholds,
	concurrency int,
	log *logger.Logger,
) *Screener {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Screener{
		tickers:     tickers,
		ranks:       ranks,
		valuations:  valuations,
		thresholds:  thresholds,
		concurrency: concurrency,
		logger:      log,
	}
}

// Tickers returns the tickers found on sourceURL (ticker-only variant)
func (s *Screener) Tickers(ctx context.Context, sourceURL string) ([]string, error) {
	return s.tickers.FetchTickers(ctx, sourceURL)
}

// Screen extracts tickers from sourceURL and returns those passing every
// threshold. Only a failure to load the source page (or cancellation) is
// returned as an error; per-ticker failures end up in Outcomes.
func (s *Screener) Screen(ctx context.Context, sourceURL string) (*contracts.ScreenResult, error) {
	start := time.Now()

	tickers, err := s.tickers.FetchTickers(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	result, err := s.ScreenTickers(ctx, tickers)
	if err != nil {
		return nil, err
	}

	tally := result.Tally()
	s.logger.WithFields(map[string]interface{}{
		"url":      sourceURL,
		"tickers":  len(tickers),
		"included": tally[contracts.StatusIncluded],
		"skipped":  tally[contracts.StatusSkipped],
		"failed":   tally[contracts.StatusFailed],
		"duration": time.Since(start),
	}).Info("Screen completed")

	return result, nil
}

// ScreenTickers evaluates tickers with at most s.concurrency in flight.
// Outcomes (and the filtered list) keep the input order.
func (s *Screener) ScreenTickers(ctx context.Context, tickers []string) (*contracts.ScreenResult, error) {
	outcomes := make([]contracts.Outcome, len(tickers))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, ticker := range tickers {
		g.Go(func() error {
			outcomes[i] = s.evaluate(ctx, ticker)
			return nil
		})
	}
	_ = g.Wait() // evaluate never fails the group

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("screen cancelled: %w", err)
	}

	result := &contracts.ScreenResult{
		Filtered: make([]contracts.FilteredEntry, 0),
		Outcomes: outcomes,
	}
	for _, o := range outcomes {
		if o.Included() {
			result.Filtered = append(result.Filtered, o.Entry())
		}
	}
	result.Count = len(result.Filtered)

	return result, nil
}

// evaluate runs one ticker through rank, valuation and thresholds
func (s *Screener) evaluate(ctx context.Context, ticker string) contracts.Outcome {
	out := contracts.Outcome{Ticker: ticker, Stage: contracts.StageRank}

	rank, err := s.ranks.FetchRank(ctx, ticker)
	switch {
	case errors.Is(err, zacks.ErrNoRank):
		return s.skip(out, contracts.ReasonNoRank)
	case err != nil:
		return s.fail(out, err)
	}
	out.Rank = rank

	if !zacks.Qualifies(rank) {
		return s.skip(out, contracts.ReasonRankExcluded)
	}

	out.Stage = contracts.StageValuation
	valuation, err := s.valuations.FetchValuation(ctx, ticker)
	if err != nil {
		// null 센티널과 동일하게 취급
		out.Reason = contracts.ReasonValuationUnavailable
		return s.fail(out, err)
	}
	out.Valuation = valuation

	out.Stage = contracts.StageFilter
	if reason := s.thresholds.Evaluate(valuation); reason != contracts.ReasonNone {
		return s.skip(out, reason)
	}

	out.Status = contracts.StatusIncluded
	s.logger.WithFields(map[string]interface{}{
		"ticker":         ticker,
		"rank":           rank,
		"predictability": valuation.Predictability,
		"marginOfSafety": valuation.MarginOfSafety,
	}).Info("Ticker included")

	return out
}

func (s *Screener) skip(out contracts.Outcome, reason contracts.SkipReason) contracts.Outcome {
	out.Status = contracts.StatusSkipped
	out.Reason = reason

	s.logger.WithFields(map[string]interface{}{
		"ticker": out.Ticker,
		"stage":  out.Stage,
		"reason": reason,
		"rank":   out.Rank,
	}).Debug("Ticker skipped")

	return out
}

func (s *Screener) fail(out contracts.Outcome, err error) contracts.Outcome {
	out.Status = contracts.StatusFailed
	out.Err = err

	s.logger.WithError(err).WithFields(map[string]interface{}{
		"ticker": out.Ticker,
		"stage":  out.Stage,
	}).Warn("Ticker lookup failed")

	return out
}
