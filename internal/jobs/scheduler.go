package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mesa/internal/config"
	"mesa/internal/services"

	"github.com/go-co-op/gocron/v2"
)

const jobTimeout = 10 * time.Minute

// Scheduler runs the periodic maintenance jobs: the daily report export and
// the stale pending-order sweep.
type Scheduler struct {
	scheduler gocron.Scheduler
	orders    services.OrderService
	reports   services.ReportService
	cfg       config.JobsConfig
	log       *slog.Logger
	jobs      map[string]gocron.Job
	now       func() time.Time
}

// NewScheduler registers the jobs without starting them. reports may be nil,
// in which case no report job is registered.
func NewScheduler(orders services.OrderService, reports services.ReportService, cfg config.JobsConfig, log *slog.Logger) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{
		scheduler: scheduler,
		orders:    orders,
		reports:   reports,
		cfg:       cfg,
		log:       log,
		jobs:      make(map[string]gocron.Job),
		now:       time.Now,
	}
	if err := s.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs() error {
	if s.reports != nil {
		job, err := s.scheduler.NewJob(
			gocron.CronJob(s.cfg.ReportCron, false),
			gocron.NewTask(s.runDailyReports),
			gocron.WithName("daily-report-export"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("register report job: %w", err)
		}
		s.jobs["daily-report-export"] = job
	}

	if s.cfg.SweepInterval > 0 {
		job, err := s.scheduler.NewJob(
			gocron.DurationJob(s.cfg.SweepInterval),
			gocron.NewTask(s.runStaleSweep),
			gocron.WithName("stale-order-sweep"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("register sweep job: %w", err)
		}
		s.jobs["stale-order-sweep"] = job
	}

	s.log.Info("registered background jobs", "count", len(s.jobs))
	return nil
}

func (s *Scheduler) Start() {
	s.log.Info("starting background job scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	s.log.Info("stopping background job scheduler")
	return s.scheduler.Shutdown()
}

// Jobs returns the names of the registered jobs.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for _, job := range s.scheduler.Jobs() {
		names = append(names, job.Name())
	}
	return names
}

// runDailyReports exports the previous UTC day for every restaurant.
func (s *Scheduler) runDailyReports() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	day := s.now().UTC().AddDate(0, 0, -1)
	start := time.Now()
	n, err := s.reports.ExportAll(ctx, day)
	if err != nil {
		s.log.Error("daily report export failed", "date", day.Format("2006-01-02"), "error", err)
		return
	}
	s.log.Info("daily reports exported", "date", day.Format("2006-01-02"), "restaurants", n, "duration", time.Since(start))
}

func (s *Scheduler) runStaleSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.orders.CancelStale(ctx, s.cfg.StaleOrderAfter)
	if err != nil {
		s.log.Error("stale order sweep failed", "cancelled", n, "error", err)
		return
	}
	if n > 0 {
		s.log.Info("cancelled stale orders", "count", n, "older_than", s.cfg.StaleOrderAfter)
	}
}
