package ratelimit

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"research-hub/internal/common/logging"
)

// Sweeper periodically purges expired counters from a LocalStore
type Sweeper struct {
	cron     *cron.Cron
	store    *LocalStore
	interval time.Duration
	logger   logging.Logger
}

// NewSweeper creates a sweeper; call Start to schedule it
func NewSweeper(store *LocalStore, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{
		cron:     cron.New(),
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Start schedules the sweep on "@every <interval>"
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.sweep); err != nil {
		return fmt.Errorf("failed to schedule rate limit sweeper: %w", err)
	}
	s.cron.Start()

	s.logger.Info("Rate limit sweeper started", logging.Duration("interval", s.interval))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	removed := s.store.Purge()
	s.logger.Debug("expired rate limit counters purged",
		logging.Int("removed", removed),
		logging.Int("remaining", s.store.Len()),
	)
}
