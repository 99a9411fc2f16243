package contracts

// Valuation is the GuruFocus DCF snapshot for one ticker.
// Missing fields are NaN; MarginOfSafety is derived from IVDCEarning and Price.
type Valuation struct {
	Predictability float64 `json:"predictability"`
	IVDCEarning    float64 `json:"iv_dcEarning"`
	Price          float64 `json:"price"`
	MarginOfSafety float64 `json:"marginOfSafety"`
}

// FilteredEntry is one ticker that passed every threshold
// JSON: {ticker, rank, predictability, iv_dcEarning, price, marginOfSafety}
type FilteredEntry struct {
	Ticker string `json:"ticker"`
	Rank   int    `json:"rank"`
	Valuation
}

// ScreenResult is the response of a full rank + valuation screen
type ScreenResult struct {
	Filtered []FilteredEntry `json:"filtered"`
	Count    int             `json:"count"`

	// 티커별 판정 내역 (응답에는 포함하지 않음)
	Outcomes []Outcome `json:"-"`
}

// TickerList is the response of the ticker-only variant
type TickerList struct {
	Tickers []string `json:"tickers"`
}

// Tally counts outcomes by status
func (r *ScreenResult) Tally() map[Status]int {
	tally := map[Status]int{
		StatusIncluded: 0,
		StatusSkipped:  0,
		StatusFailed:   0,
	}
	for _, o := range r.Outcomes {
		tally[o.Status]++
	}
	return tally
}
