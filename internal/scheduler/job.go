package scheduler

import (
	"context"
	"time"
)

// Job is a named unit of work run on a cron schedule
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule uses the six-field cron syntax (seconds first),
	// e.g. "0 30 22 * * 1-5", or a descriptor such as "@every 1h"
	Schedule() string
}

// JobResult is one execution of a job
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// runLogSize is the number of results kept per job
const runLogSize = 100

// runLog keeps the latest results of a single job, oldest first (메모리에만 보관)
type runLog struct {
	results []JobResult
}

func (l *runLog) record(result JobResult) {
	l.results = append(l.results, result)
	if over := len(l.results) - runLogSize; over > 0 {
		l.results = append(l.results[:0], l.results[over:]...)
	}
}

// summarize folds the log into stats in one pass
func (l *runLog) summarize(name, schedule string, next time.Time) JobStats {
	stats := JobStats{
		JobName:   name,
		Schedule:  schedule,
		NextRun:   next,
		TotalRuns: len(l.results),
	}

	for i := range l.results {
		r := &l.results[i]
		started := r.StartTime
		stats.LastRun = &started

		if r.Success {
			stats.SuccessCount++
			stats.LastSuccess = &started
		} else {
			stats.FailureCount++
			stats.LastFailure = &started
		}
	}

	if stats.TotalRuns > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalRuns)
	}

	return stats
}

// JobStats summarizes the kept results of a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	NextRun      time.Time  `json:"next_run"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"` // 0.0 - 1.0
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}
