package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/valuescreen/pkg/logger"
)

// Scheduler runs registered jobs on their cron schedules and keeps a short
// in-memory run log per job. Failed runs are not retried; the next tick is
// the retry.
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	entries map[string]cron.EntryID
	logs    map[string]*runLog
	mu      sync.RWMutex
}

// New creates a scheduler that accepts six-field cron expressions
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		logger:  log,
		jobs:    make(map[string]Job),
		entries: make(map[string]cron.EntryID),
		logs:    make(map[string]*runLog),
	}
}

// AddJob registers job under its name; names must be unique
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	entryID, err := s.cron.AddFunc(job.Schedule(), func() {
		s.execute(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.entries[name] = entryID
	s.logs[name] = &runLog{}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
		"next_run": s.nextRunLocked(name, time.Now()),
	}).Info("Job added to scheduler")

	return nil
}

// Start starts the cron loop in its own goroutine
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops the cron loop and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// NextRun returns when the job fires next. Computed from the schedule, so it
// is valid before Start as well.
func (s *Scheduler) NextRun(jobName string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.entries[jobName]; !exists {
		return time.Time{}, fmt.Errorf("job %s not found", jobName)
	}
	return s.nextRunLocked(jobName, time.Now()), nil
}

func (s *Scheduler) nextRunLocked(jobName string, from time.Time) time.Time {
	entry := s.cron.Entry(s.entries[jobName])
	if entry.Schedule == nil {
		return time.Time{}
	}
	return entry.Schedule.Next(from)
}

// RunJobNow runs a job synchronously, outside of its schedule
func (s *Scheduler) RunJobNow(ctx context.Context, jobName string) (JobResult, error) {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return JobResult{}, fmt.Errorf("job %s not found", jobName)
	}

	return s.execute(ctx, job), nil
}

// execute runs job once and records the result
func (s *Scheduler) execute(ctx context.Context, job Job) JobResult {
	name := job.Name()
	log := s.logger.WithField("job", name)
	log.Info("Job started")

	start := time.Now()
	err := job.Run(ctx)

	result := JobResult{
		JobName:   name,
		StartTime: start,
		Duration:  time.Since(start),
		Success:   err == nil,
	}

	if err != nil {
		result.Error = err.Error()
		log.WithError(err).WithField("duration", result.Duration).Error("Job failed")
	} else {
		log.WithField("duration", result.Duration).Info("Job completed successfully")
	}

	s.mu.Lock()
	if l, ok := s.logs[name]; ok {
		l.record(result)
	}
	s.mu.Unlock()

	return result
}

// GetAllJobs returns all registered job names, sorted
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// GetJobStats returns run statistics and the next fire time for every job
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	stats := make(map[string]JobStats, len(s.jobs))
	for name, job := range s.jobs {
		stats[name] = s.logs[name].summarize(name, job.Schedule(), s.nextRunLocked(name, now))
	}

	return stats
}
