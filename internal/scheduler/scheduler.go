package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RahulJ0hn/Clarifi/internal/config"
	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"github.com/RahulJ0hn/Clarifi/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CheckRunner executes one check cycle for a monitor.
type CheckRunner interface {
	Check(ctx context.Context, monitorID string) *models.CheckResult
}

// Store is the persistence surface the scheduler needs for startup and
// maintenance.
type Store interface {
	LoadActiveMonitors(ctx context.Context) ([]*models.Monitor, error)
	DeleteExpiredNotifications(ctx context.Context, cutoff time.Time) (int64, error)
}

// ResourceGuard gates check admission under host pressure.
type ResourceGuard interface {
	AllowCheck() bool
}

// Status is a point-in-time snapshot of the scheduler.
type Status struct {
	Running        bool                 `json:"running"`
	ScheduledCount int                  `json:"scheduled_count"`
	NextFire       map[string]time.Time `json:"next_fire,omitempty"`
	Healthy        bool                 `json:"healthy"`
}

// job tracks one monitor's cron registration. The inFlight flag enforces the
// overlap policy: a tick that fires while the previous check is still running
// is dropped, not queued.
type job struct {
	entryID  cron.EntryID
	interval time.Duration
	inFlight atomic.Bool
}

// Scheduler drives periodic checks with per-monitor intervals. Each monitor
// has at most one registration and at most one running check at any time.
type Scheduler struct {
	cron   *cron.Cron
	runner CheckRunner
	store  Store
	guard  ResourceGuard
	cfg    config.SchedulerConfig
	logger zerolog.Logger
	sem    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	jobs    map[string]*job
	running bool

	maintenanceFailed atomic.Bool
}

// NewScheduler creates a scheduler; Start brings it to life.
func NewScheduler(cfg config.SchedulerConfig, runner CheckRunner, store Store, guard ResourceGuard, logger zerolog.Logger) *Scheduler {
	maxConcurrent := cfg.MaxConcurrentChecks
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		store:  store,
		guard:  guard,
		cfg:    cfg,
		logger: logger.With().Str("component", "Scheduler").Logger(),
		sem:    make(chan struct{}, maxConcurrent),
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]*job),
	}
}

// Start loads every active monitor into the schedule, registers the daily
// maintenance job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	monitors, err := s.store.LoadActiveMonitors(ctx)
	if err != nil {
		return errorwrapper.WrapError(err, "loading active monitors")
	}
	for _, m := range monitors {
		if err := s.Upsert(m); err != nil {
			s.logger.Error().Err(err).Str("monitor_id", m.ID).Msg("Failed to schedule monitor")
		}
	}

	maintenanceHours := s.cfg.MaintenanceIntervalHours
	if maintenanceHours <= 0 {
		maintenanceHours = 24
	}
	spec := fmt.Sprintf("@every %dh", maintenanceHours)
	if _, err := s.cron.AddFunc(spec, s.runMaintenance); err != nil {
		return errorwrapper.WrapError(err, "registering maintenance job")
	}

	s.cron.Start()
	s.logger.Info().Int("monitors", len(monitors)).Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for in-flight checks to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	// Cancel only after every in-flight check has drained: the checks run
	// on s.ctx, and they are allowed to finish rather than being aborted.
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()
	s.wg.Wait()
	s.cancel()
	s.logger.Info().Msg("Scheduler stopped")
}

// Upsert registers the monitor or reschedules it when its interval changed.
// Upserting an unchanged monitor is a no-op; a monitor never holds more than
// one registration.
func (s *Scheduler) Upsert(m *models.Monitor) error {
	interval := m.CheckInterval()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[m.ID]; ok {
		if existing.interval == interval {
			return nil
		}
		s.cron.Remove(existing.entryID)
		delete(s.jobs, m.ID)
	}

	j := &job{interval: interval}
	monitorID := m.ID
	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		s.runCheck(monitorID, j)
	})
	if err != nil {
		return errorwrapper.WrapError(err, "scheduling monitor "+m.ID)
	}
	j.entryID = entryID
	s.jobs[m.ID] = j

	s.logger.Info().Str("monitor_id", m.ID).Dur("interval", interval).Msg("Monitor scheduled")
	return nil
}

// Remove unschedules a monitor. Removing an unknown ID is a no-op.
func (s *Scheduler) Remove(monitorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[monitorID]
	if !ok {
		return
	}
	s.cron.Remove(j.entryID)
	delete(s.jobs, monitorID)
	s.logger.Info().Str("monitor_id", monitorID).Msg("Monitor unscheduled")
}

// Status reports the current schedule.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:        s.running,
		ScheduledCount: len(s.jobs),
		Healthy:        s.running && !s.maintenanceFailed.Load(),
		NextFire:       make(map[string]time.Time, len(s.jobs)),
	}
	for id, j := range s.jobs {
		if entry := s.cron.Entry(j.entryID); entry.ID != 0 {
			status.NextFire[id] = entry.Next
		}
	}
	return status
}

// runCheck is the cron callback body for one monitor tick.
func (s *Scheduler) runCheck(monitorID string, j *job) {
	if !j.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug().Str("monitor_id", monitorID).Msg("Previous check still running, tick dropped")
		return
	}
	defer j.inFlight.Store(false)

	if s.guard != nil && !s.guard.AllowCheck() {
		return
	}

	select {
	case s.sem <- struct{}{}:
	case <-s.ctx.Done():
		return
	}
	defer func() { <-s.sem }()

	s.wg.Add(1)
	defer s.wg.Done()

	result := s.runner.Check(s.ctx, monitorID)
	if result.Inactive || (result.Err != nil && errors.Is(result.Err, errorwrapper.ErrMonitorNotFound)) {
		// The monitor was deleted or deactivated out of band; reap the
		// stale registration.
		s.Remove(monitorID)
	}
}

// runMaintenance purges notifications past the retention window.
func (s *Scheduler) runMaintenance() {
	retentionDays := s.cfg.NotificationRetentionDays
	if retentionDays <= 0 {
		retentionDays = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	removed, err := s.store.DeleteExpiredNotifications(s.ctx, cutoff)
	if err != nil {
		s.maintenanceFailed.Store(true)
		s.logger.Error().Err(err).Msg("Notification maintenance failed")
		return
	}
	s.maintenanceFailed.Store(false)
	s.logger.Info().Int64("removed", removed).Msg("Notification maintenance completed")
}
