package scheduler

import (
	"fmt"
	"log"

	"property-catalog/internal/cleanup"
	"property-catalog/internal/config"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the orphaned-media cleanup on a daily schedule
type Scheduler struct {
	cron      *cron.Cron
	cleanup   *cleanup.Service
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(cleanupService *cleanup.Service, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		cleanup: cleanupService,
		config:  cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Cleanup.Enabled {
		log.Println("Scheduler: Media cleanup is disabled in configuration")
		return nil
	}

	// Parse daily run time (HH:MM format in config)
	cronSpec := s.parseDailyRunTime(s.config.Cleanup.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: Starting daily media cleanup...")
		if err := s.RunNow(); err != nil {
			log.Printf("Scheduler: Media cleanup failed: %v", err)
		} else {
			log.Println("Scheduler: Media cleanup completed successfully")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with daily cleanup at %s (cron: %s)", s.config.Cleanup.DailyRunTime, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// RunNow executes the cleanup immediately with the configured settings.
func (s *Scheduler) RunNow() error {
	_, err := s.cleanup.Run(cleanup.Config{
		RetentionHours:   s.config.Cleanup.RetentionHours,
		MaxDeletionCount: s.config.Cleanup.MaxDeletionCount,
		DryRun:           s.config.Cleanup.DryRun,
	})
	return err
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "03:00" -> "0 3 * * *" (run at 3:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}
	return "0 3 * * *"
}
