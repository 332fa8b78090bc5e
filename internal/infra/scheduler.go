package infra

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"chartanalyst/internal/service"
)

// sessionSweepSpec runs the idle-session sweep once a minute
const sessionSweepSpec = "0 * * * * *"

// SchedulerConfig holds the housekeeping settings
type SchedulerConfig struct {
	SessionIdleTTL   time.Duration
	HistoryRetention time.Duration
	HistoryPurgeSpec string // six-field cron spec, seconds first
}

// Scheduler runs background housekeeping: idle session eviction and
// history retention
type Scheduler struct {
	cron     *cron.Cron
	sessions *service.SessionStore
	history  *service.HistoryService
	cfg      SchedulerConfig
}

// NewScheduler creates a new scheduler
func NewScheduler(sessions *service.SessionStore, history *service.HistoryService, cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sessions: sessions,
		history:  history,
		cfg:      cfg,
	}
}

// Start registers the jobs and starts the scheduler
func (s *Scheduler) Start() error {
	log.Println("Starting scheduler...")

	if _, err := s.cron.AddFunc(sessionSweepSpec, s.sweepSessions); err != nil {
		return err
	}

	if s.cfg.HistoryRetention > 0 && s.cfg.HistoryPurgeSpec != "" {
		if _, err := s.cron.AddFunc(s.cfg.HistoryPurgeSpec, s.purgeHistory); err != nil {
			return err
		}
		log.Printf("[OK] History purge scheduled (%s, retention %s)", s.cfg.HistoryPurgeSpec, s.cfg.HistoryRetention)
	}

	s.cron.Start()
	log.Printf("[OK] Scheduler started (session idle TTL %s)", s.cfg.SessionIdleTTL)
	return nil
}

func (s *Scheduler) sweepSessions() {
	s.sessions.Sweep(s.cfg.SessionIdleTTL)
}

func (s *Scheduler) purgeHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Println("[CRON] History purge triggered")
	if _, err := s.history.Purge(ctx, s.cfg.HistoryRetention); err != nil {
		log.Printf("ERROR: Scheduled history purge failed: %v", err)
	}
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Println("[OK] Scheduler stopped")
}
