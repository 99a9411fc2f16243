package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/valuescreen/internal/contracts"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen [url]",
	Short: "스크리닝 1회 실행",
	Long: `스크리너 페이지를 한 번 스크리닝하고 결과를 출력합니다.

url을 생략하면 FINVIZ_SCREENER_URL (기본 스크리너)을 사용합니다.
기본 출력은 모든 티커의 처리 결과 테이블이며,
--json은 /api/screen 과 동일한 응답 본문을 출력합니다.

Example:
  go run ./cmd/screener screen
  go run ./cmd/screener screen "https://finviz.com/screener.ashx?v=111" --json
  go run ./cmd/screener screen --concurrency 1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScreen,
}

var (
	screenJSON        bool
	screenConcurrency int
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().BoolVar(&screenJSON, "json", false, "API 응답과 같은 JSON 출력")
	screenCmd.Flags().IntVar(&screenConcurrency, "concurrency", 0, "동시 처리 티커 수 (default: SCREEN_CONCURRENCY)")
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if screenConcurrency > 0 {
		cfg.Screen.Concurrency = screenConcurrency
	}

	log, s, closeFn := setupWith(cfg)
	defer closeFn()

	sourceURL := cfg.Finviz.ScreenerURL
	if len(args) == 1 {
		sourceURL = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	result, err := s.Screen(ctx, sourceURL)
	if err != nil {
		log.WithError(err).Error("Screen failed")
		return err
	}

	out := cmd.OutOrStdout()
	if screenJSON {
		return writeScreenJSON(out, result)
	}

	writeScreenTable(out, sourceURL, result, time.Since(start))
	return nil
}

// writeScreenJSON writes the same body /api/screen returns
func writeScreenJSON(w io.Writer, result *contracts.ScreenResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

var outcomeColumns = []string{"TICKER", "STATUS", "STAGE", "RANK", "PRED", "IV", "PRICE", "MOS%", "REASON"}
var outcomeWidths = []int{8, 9, 10, 4, 6, 10, 10, 8, 22}

// writeScreenTable prints every ticker's outcome followed by a summary
func writeScreenTable(w io.Writer, sourceURL string, result *contracts.ScreenResult, elapsed time.Duration) {
	PrintDoubleSeparator(w)
	fmt.Fprintln(w, "  Value Screen")
	PrintSeparator(w)
	PrintKeyValue(w, "Source", sourceURL, 8)
	PrintKeyValue(w, "Tickers", strconv.Itoa(len(result.Outcomes)), 8)
	PrintSeparator(w)
	fmt.Fprintln(w)

	PrintTableHeader(w, outcomeColumns, outcomeWidths)
	for _, o := range result.Outcomes {
		PrintTableRow(w, outcomeRow(o), outcomeWidths)
	}

	tally := result.Tally()
	fmt.Fprintln(w)
	PrintSuccess(w, fmt.Sprintf("%d included, %d skipped, %d failed in %.2fs",
		tally[contracts.StatusIncluded],
		tally[contracts.StatusSkipped],
		tally[contracts.StatusFailed],
		elapsed.Seconds(),
	))
}

// outcomeRow renders one outcome as table cells
func outcomeRow(o contracts.Outcome) []string {
	rank := "-"
	if o.Rank > 0 {
		rank = strconv.Itoa(o.Rank)
	}

	pred, iv, price, mos := "-", "-", "-", "-"
	if o.Valuation != nil {
		pred = formatFloat(o.Valuation.Predictability)
		iv = formatFloat(o.Valuation.IVDCEarning)
		price = formatFloat(o.Valuation.Price)
		mos = formatFloat(o.Valuation.MarginOfSafety)
	}

	reason := string(o.Reason)
	if o.Err != nil && reason == "" {
		reason = "error"
	}

	return []string{o.Ticker, string(o.Status), string(o.Stage), rank, pred, iv, price, mos, reason}
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
