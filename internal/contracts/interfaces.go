package contracts

import "context"

// TickerSource extracts tickers from a screener page
// ⭐ SSOT: 티커 추출 인터페이스
type TickerSource interface {
	FetchTickers(ctx context.Context, pageURL string) ([]string, error)
}

// RankProvider looks up the vendor rank of a ticker
// ⭐ SSOT: 랭크 조회 인터페이스
type RankProvider interface {
	FetchRank(ctx context.Context, ticker string) (int, error)
}

// ValuationProvider looks up the DCF valuation of a ticker
// ⭐ SSOT: 밸류에이션 조회 인터페이스
type ValuationProvider interface {
	FetchValuation(ctx context.Context, ticker string) (*Valuation, error)
}
