package background

import (
	"context"
	"sort"
	"sync"
	"time"

	"mandirdaan/internal/config"
	"mandirdaan/internal/jobs"
	"mandirdaan/pkg/logger"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	reminderJobName         = "pledge-reminders"
	analyticsRefreshJobName = "donation-breakdown-refresh"
	analyticsRefreshEvery   = time.Hour
)

// JobScheduler runs the periodic jobs in process. Job errors are logged and
// never stop the scheduler.
type JobScheduler struct {
	scheduler        gocron.Scheduler
	reminders        *jobs.ReminderJob
	analyticsRefresh *jobs.AnalyticsRefreshService
	logger           *logger.Logger
	jobJobs          map[string]gocron.Job
	mu               sync.RWMutex
}

// NewJobScheduler creates a new job scheduler. analyticsRefresh may be nil.
func NewJobScheduler(cfg config.ReminderConfig, reminders *jobs.ReminderJob, analyticsRefresh *jobs.AnalyticsRefreshService, log *logger.Logger) (*JobScheduler, error) {
	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(location))
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:        scheduler,
		reminders:        reminders,
		analyticsRefresh: analyticsRefresh,
		logger:           log,
		jobJobs:          make(map[string]gocron.Job),
	}
	if err := js.registerJobs(cfg.Hour); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", zap.Int("jobs", len(js.jobJobs)))
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(reminderHour int) error {
	reminderJob, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(reminderHour), 0, 0))),
		gocron.NewTask(js.sendReminders),
		gocron.WithName(reminderJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	js.jobJobs[reminderJobName] = reminderJob

	if js.analyticsRefresh == nil {
		return nil
	}
	refreshJob, err := js.scheduler.NewJob(
		gocron.DurationJob(analyticsRefreshEvery),
		gocron.NewTask(js.refreshAnalytics),
		gocron.WithName(analyticsRefreshJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.logger.Error("failed to create breakdown refresh job", err)
		return nil
	}
	js.jobJobs[analyticsRefreshJobName] = refreshJob
	return nil
}

func (js *JobScheduler) sendReminders() {
	if _, err := js.reminders.RunOnce(context.Background(), time.Now()); err != nil {
		js.logger.Error("pledge reminder run failed", err)
	}
}

func (js *JobScheduler) refreshAnalytics() {
	if _, err := js.analyticsRefresh.RefreshAllTenants(context.Background()); err != nil {
		js.logger.Error("donation breakdown refresh failed", err)
	}
}

// RunReminderNow runs the reminder scan outside the daily schedule.
func (js *JobScheduler) RunReminderNow(ctx context.Context) (jobs.ReminderRunResult, error) {
	return js.reminders.RunOnce(ctx, time.Now())
}

type JobInfo struct {
	Name    string     `json:"name"`
	NextRun *time.Time `json:"nextRun,omitempty"`
	LastRun *time.Time `json:"lastRun,omitempty"`
}

type SchedulerStatus struct {
	TotalJobs       int                     `json:"totalJobs"`
	Jobs            []JobInfo               `json:"jobs"`
	ReminderRunning bool                    `json:"reminderRunning"`
	LastReminderRun *jobs.ReminderRunResult `json:"lastReminderRun,omitempty"`
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() SchedulerStatus {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := SchedulerStatus{
		TotalJobs:       len(js.jobJobs),
		Jobs:            make([]JobInfo, 0, len(js.jobJobs)),
		ReminderRunning: js.reminders.Running(),
		LastReminderRun: js.reminders.LastRun(),
	}
	for name, job := range js.jobJobs {
		info := JobInfo{Name: name}
		if next, err := job.NextRun(); err == nil && !next.IsZero() {
			info.NextRun = &next
		}
		if last, err := job.LastRun(); err == nil && !last.IsZero() {
			info.LastRun = &last
		}
		status.Jobs = append(status.Jobs, info)
	}
	sort.Slice(status.Jobs, func(i, j int) bool { return status.Jobs[i].Name < status.Jobs[j].Name })
	return status
}
