package contracts

// Stage is the last pipeline step a ticker reached
type Stage string

const (
	StageRank      Stage = "rank"
	StageValuation Stage = "valuation"
	StageFilter    Stage = "filter"
)

// Status is the final disposition of a ticker
type Status string

const (
	StatusIncluded Status = "included"
	StatusSkipped  Status = "skipped" // 기준 미달
	StatusFailed   Status = "failed"  // 네트워크/파싱 오류
)

// SkipReason explains why a ticker was left out of the result
type SkipReason string

const (
	ReasonNone                 SkipReason = ""
	ReasonNoRank               SkipReason = "no_rank"
	ReasonRankExcluded         SkipReason = "rank_excluded"
	ReasonValuationUnavailable SkipReason = "valuation_unavailable"
	ReasonPredictabilityNaN    SkipReason = "predictability_missing"
	ReasonMarginNaN            SkipReason = "margin_missing"
	ReasonPredictabilityLow    SkipReason = "predictability_low"
	ReasonMarginLow            SkipReason = "margin_low"
)

// Outcome is the per-ticker result of a screen.
// Failed and skipped tickers are both omitted from the response; the
// distinction only exists for logs and the CLI.
type Outcome struct {
	Ticker    string
	Stage     Stage
	Status    Status
	Reason    SkipReason
	Rank      int // 0 = 랭크 없음
	Valuation *Valuation
	Err       error
}

// Included reports whether the ticker made it into the result
func (o Outcome) Included() bool {
	return o.Status == StatusIncluded
}

// Entry converts an included outcome to its response entry
func (o Outcome) Entry() FilteredEntry {
	entry := FilteredEntry{Ticker: o.Ticker, Rank: o.Rank}
	if o.Valuation != nil {
		entry.Valuation = *o.Valuation
	}
	return entry
}
