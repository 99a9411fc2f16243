package commands

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuescreen/internal/contracts"
)

func sampleResult() *contracts.ScreenResult {
	included := &contracts.Valuation{Predictability: 4.5, IVDCEarning: 100, Price: 70, MarginOfSafety: 30}
	low := &contracts.Valuation{Predictability: 1, IVDCEarning: 50, Price: 40, MarginOfSafety: 20}

	return &contracts.ScreenResult{
		Filtered: []contracts.FilteredEntry{{Ticker: "AAPL", Rank: 1, Valuation: *included}},
		Count:    1,
		Outcomes: []contracts.Outcome{
			{Ticker: "AAPL", Stage: contracts.StageFilter, Status: contracts.StatusIncluded, Rank: 1, Valuation: included},
			{Ticker: "MSFT", Stage: contracts.StageRank, Status: contracts.StatusSkipped, Reason: contracts.ReasonRankExcluded, Rank: 3},
			{Ticker: "KO", Stage: contracts.StageFilter, Status: contracts.StatusSkipped, Reason: contracts.ReasonPredictabilityLow, Rank: 2, Valuation: low},
			{Ticker: "DOWN", Stage: contracts.StageRank, Status: contracts.StatusFailed, Err: errors.New("timeout")},
		},
	}
}

func TestOutcomeRow(t *testing.T) {
	result := sampleResult()

	assert.Equal(t,
		[]string{"AAPL", "included", "filter", "1", "4.5", "100", "70", "30", ""},
		outcomeRow(result.Outcomes[0]))
	assert.Equal(t,
		[]string{"MSFT", "skipped", "rank", "3", "-", "-", "-", "-", "rank_excluded"},
		outcomeRow(result.Outcomes[1]))
	assert.Equal(t,
		[]string{"DOWN", "failed", "rank", "-", "-", "-", "-", "-", "error"},
		outcomeRow(result.Outcomes[3]))
}

func TestOutcomeRowNaN(t *testing.T) {
	row := outcomeRow(contracts.Outcome{
		Ticker:    "X",
		Stage:     contracts.StageFilter,
		Status:    contracts.StatusSkipped,
		Reason:    contracts.ReasonMarginNaN,
		Rank:      2,
		Valuation: &contracts.Valuation{Predictability: 3, IVDCEarning: math.NaN(), Price: 10, MarginOfSafety: math.NaN()},
	})

	assert.Equal(t, []string{"X", "skipped", "filter", "2", "3", "-", "10", "-", "margin_missing"}, row)
}

func TestWriteScreenTable(t *testing.T) {
	var buf bytes.Buffer
	writeScreenTable(&buf, "https://finviz.com/screener.ashx?v=111", sampleResult(), 1500*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "https://finviz.com/screener.ashx?v=111")
	assert.Contains(t, out, "TICKER")
	assert.Contains(t, out, "1 included, 2 skipped, 1 failed in 1.50s")

	// 모든 티커가 추출 순서대로 출력됨
	aapl := strings.Index(out, "AAPL")
	msft := strings.Index(out, "MSFT")
	ko := strings.Index(out, "KO ")
	down := strings.Index(out, "DOWN")
	require.True(t, aapl >= 0 && msft >= 0 && ko >= 0 && down >= 0, out)
	assert.True(t, aapl < msft && msft < ko && ko < down)
}

func TestWriteScreenJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeScreenJSON(&buf, sampleResult()))

	assert.JSONEq(t, `{
		"filtered": [{"ticker":"AAPL","rank":1,"predictability":4.5,"iv_dcEarning":100,"price":70,"marginOfSafety":30}],
		"count": 1
	}`, buf.String())
}

func TestPrintTableRow(t *testing.T) {
	var buf bytes.Buffer
	PrintTableHeader(&buf, []string{"A", "B"}, []int{3, 2})
	PrintTableRow(&buf, []string{"x", "y"}, []int{3, 2})

	assert.Equal(t, "A    B\n───────\nx    y\n", buf.String())
}

func TestPrintKeyValue(t *testing.T) {
	var buf bytes.Buffer
	PrintKeyValue(&buf, "job", "@daily", 5)
	PrintSuccess(&buf, "done")
	PrintError(&buf, "failed")
	PrintList(&buf, []string{"one"})

	assert.Equal(t, "   job   : @daily\n✅ done\n❌ failed\n   • one\n", buf.String())
}
