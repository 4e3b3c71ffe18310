package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"greeting-card-go/internal/config"
	"greeting-card-go/internal/metrics"
)

// Counter reports how many greetings are stored
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Scheduler periodically refreshes collection statistics
type Scheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.SchedulerConfig
	counter   Counter
	metrics   *metrics.Metrics
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
	lastCount int
	lastRun   time.Time
	lastErr   error
	mu        sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.SchedulerConfig, counter Counter, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		config:  cfg,
		counter: counter,
		metrics: m,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	c := cron.New(cron.WithSeconds())
	entryID, err := c.AddFunc(s.config.Interval, s.refresh)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = c
	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started with interval: %s", s.config.Interval)
	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	ctx := s.cron.Stop()
	s.isRunning = false
	s.mu.Unlock()

	// a running refresh takes the lock to record its result
	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// RunOnce refreshes the statistics immediately
func (s *Scheduler) RunOnce() error {
	s.refresh()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// LastCount returns the collection size seen by the latest refresh
func (s *Scheduler) LastCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCount
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// GetLastRun returns when the statistics were last refreshed successfully,
// scheduled or via RunOnce
func (s *Scheduler) GetLastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

func (s *Scheduler) refresh() {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := s.counter.Count(ctx)

	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.lastCount = n
		s.lastRun = time.Now().UTC()
	}
	s.mu.Unlock()

	if err != nil {
		logrus.WithError(err).Warn("Failed to refresh greeting statistics")
		return
	}

	s.metrics.GreetingsTotal.Set(float64(n))
	logrus.WithField("count", n).Debug("Greeting statistics refreshed")
}
