package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/valuescreen/internal/screener"
	"github.com/wonny/valuescreen/pkg/config"
	"github.com/wonny/valuescreen/pkg/logger"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Value Screener - Finviz → Zacks → GuruFocus 가치주 스크리너",
	Long: `Value Screener CLI

Finviz 스크리너 페이지에서 티커를 추출하고
Zacks Rank (1, 2)와 GuruFocus DCF 안전마진 (>= 25%)으로 필터링합니다.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener serve
  go run ./cmd/screener screen
  go run ./cmd/screener screen "https://finviz.com/screener.ashx?v=111&f=fa_pe_u15" --json
  go run ./cmd/screener tickers
  go run ./cmd/screener scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads config and applies the global flags on top of it
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	switch env {
	case "":
	case "development", "staging", "production":
		cfg.Env = env
	default:
		return nil, fmt.Errorf("--env must be one of: development, staging, production")
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// setup loads config, creates the logger and wires the screener.
// The returned close func must be called when done.
func setup() (*config.Config, *logger.Logger, *screener.Screener, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	log, s, closeFn := setupWith(cfg)
	return cfg, log, s, closeFn, nil
}

// setupWith is setup for an already loaded (and possibly overridden) config
func setupWith(cfg *config.Config) (*logger.Logger, *screener.Screener, func() error) {
	log := logger.New(cfg)

	s, closeFn := screener.Build(cfg, log)
	return log, s, closeFn
}
