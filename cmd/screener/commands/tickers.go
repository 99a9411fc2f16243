package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// tickersCmd represents the tickers command
var tickersCmd = &cobra.Command{
	Use:   "tickers [url]",
	Short: "스크리너 페이지의 티커 추출",
	Long: `스크리너 페이지에서 티커만 추출해 한 줄에 하나씩 출력합니다.
Zacks / GuruFocus 조회는 하지 않습니다.

Example:
  go run ./cmd/screener tickers
  go run ./cmd/screener tickers "https://finviz.com/screener.ashx?v=111&f=cap_large"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTickers,
}

func init() {
	rootCmd.AddCommand(tickersCmd)
}

func runTickers(cmd *cobra.Command, args []string) error {
	cfg, log, s, closeFn, err := setup()
	if err != nil {
		return err
	}
	defer closeFn()

	sourceURL := cfg.Finviz.ScreenerURL
	if len(args) == 1 {
		sourceURL = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tickers, err := s.Tickers(ctx, sourceURL)
	if err != nil {
		log.WithError(err).Error("Ticker extraction failed")
		return err
	}

	out := cmd.OutOrStdout()
	for _, ticker := range tickers {
		fmt.Fprintln(out, ticker)
	}

	log.WithField("count", len(tickers)).Debug("Tickers printed")
	return nil
}
