package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/valuescreen/internal/api"
	"github.com/wonny/valuescreen/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                - Health check
  GET  /api/screen?url=...    - Rank + DCF 필터 결과
  GET  /api/tickers[?url=...] - 티커 목록만 추출

Example:
  go run ./cmd/screener serve
  go run ./cmd/screener serve --port 9090`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (default: PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Config, logger, screener
	cfg, log, s, closeFn, err := setup()
	if err != nil {
		return err
	}
	defer closeFn()

	// Override port if flag is set
	if servePort != "" {
		cfg.Port = servePort
	}

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 2. Handler, router, server
	screenHandler := handlers.NewScreenHandler(s, cfg.Finviz.ScreenerURL, log)
	server := api.New(api.NewRouter(screenHandler, log), log)

	ln, err := api.Listen(cfg.Port)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n✅ Server running on http://localhost:%d\n", ln.Addr().(*net.TCPAddr).Port)
	fmt.Fprintln(out, "\nAvailable endpoints:")
	PrintList(out, []string{
		"GET  /health",
		"GET  /api/screen?url=...",
		"GET  /api/tickers[?url=...]",
	})
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// 3. Serve until interrupted (graceful shutdown은 Serve가 처리)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, ln)
}
