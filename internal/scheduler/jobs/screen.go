package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/pkg/logger"
)

// ScreenRunner runs a full screen over a source page
type ScreenRunner interface {
	Screen(ctx context.Context, sourceURL string) (*contracts.ScreenResult, error)
}

// ScreenJob screens the default screener page on a schedule.
// Results are only logged, nothing is stored.
type ScreenJob struct {
	runner    ScreenRunner
	sourceURL string
	schedule  string
	logger    *logger.Logger
}

// NewScreenJob creates a new screen job
func NewScreenJob(runner ScreenRunner, sourceURL, schedule string, log *logger.Logger) *ScreenJob {
	return &ScreenJob{
		runner:    runner,
		sourceURL: sourceURL,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *ScreenJob) Name() string {
	return "default_screen"
}

// Schedule returns the cron schedule (SCREEN_SCHEDULE)
func (j *ScreenJob) Schedule() string {
	return j.schedule
}

// Run executes the screen and logs the included tickers
func (j *ScreenJob) Run(ctx context.Context) error {
	j.logger.WithField("url", j.sourceURL).Debug("Starting scheduled screen")

	result, err := j.runner.Screen(ctx, j.sourceURL)
	if err != nil {
		return fmt.Errorf("scheduled screen: %w", err)
	}

	tickers := make([]string, 0, len(result.Filtered))
	for _, entry := range result.Filtered {
		tickers = append(tickers, entry.Ticker)
	}

	j.logger.WithFields(map[string]interface{}{
		"count":   result.Count,
		"tickers": tickers,
	}).Info("Scheduled screen completed")

	return nil
}
