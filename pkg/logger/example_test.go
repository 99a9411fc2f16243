package logger_test

import (
	"errors"

	"github.com/wonny/valuescreen/pkg/config"
	"github.com/wonny/valuescreen/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	// Create logger (SSOT)
	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Screen started")
	log.WithField("skipped", 3).Warn("Tickers skipped")
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"ticker":         "AAPL",
		"rank":           1,
		"marginOfSafety": 31.2,
	}).Info("Ticker included")
	// {"level":"info","service":"value-screener","ticker":"AAPL","rank":1,"marginOfSafety":31.2,"message":"Ticker included",...}
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("unexpected status code: 503")
	log.WithError(err).
		WithField("ticker", "MSFT").
		Error("Valuation fetch failed")
}
