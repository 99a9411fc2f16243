package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/valuescreen/internal/scheduler"
	"github.com/wonny/valuescreen/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/screener scheduler start
  go run ./cmd/screener scheduler list
  go run ./cmd/screener scheduler run default_screen`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- default_screen: SCREEN_SCHEDULE (기본 평일 22:30, 기본 스크리너 URL)

결과는 로그로만 남습니다. 스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, closeFn, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer closeFn()

	sched.Start()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Value Screener Scheduler ===")
	PrintSuccess(out, "Scheduler started successfully")
	fmt.Fprintln(out, "\nRegistered jobs:")
	printJobs(cmd, sched)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, closeFn, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer closeFn()

	fmt.Fprintln(cmd.OutOrStdout(), "Registered jobs:")
	printJobs(cmd, sched)

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	out := cmd.OutOrStdout()

	sched, closeFn, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer closeFn()

	fmt.Fprintf(out, "Running job: %s\n", jobName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := sched.RunJobNow(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(out, fmt.Sprintf("Job %s failed after %.2fs: %s", jobName, result.Duration.Seconds(), result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess(out, fmt.Sprintf("Job %s completed in %.2fs", jobName, result.Duration.Seconds()))
	return nil
}

func printJobs(cmd *cobra.Command, sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()
	for _, jobName := range sched.GetAllJobs() {
		st := stats[jobName]
		value := fmt.Sprintf("%s (next: %s)", st.Schedule, st.NextRun.Format(time.RFC3339))
		if st.TotalRuns > 0 {
			value += fmt.Sprintf(", %d runs, %.0f%% ok", st.TotalRuns, st.SuccessRate*100)
		}
		PrintKeyValue(cmd.OutOrStdout(), jobName, value, 16)
	}
}

func initScheduler() (*scheduler.Scheduler, func() error, error) {
	// 1. Config, logger, screener
	cfg, log, s, closeFn, err := setup()
	if err != nil {
		return nil, nil, err
	}

	// 2. Create scheduler (재시도 없음)
	sched := scheduler.New(log)

	// 3. Register jobs
	job := jobs.NewScreenJob(s, cfg.Finviz.ScreenerURL, cfg.Screen.Schedule, log)
	if err := sched.AddJob(job); err != nil {
		closeFn()
		return nil, nil, err
	}

	return sched, closeFn, nil
}
