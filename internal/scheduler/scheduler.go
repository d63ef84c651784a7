package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/narodmon-avg/internal/models"
)

// Updater runs one update cycle over every known type.
type Updater interface {
	UpdateAll(ctx context.Context, typeID int) (*models.CycleReport, error)
}

type Scheduler struct {
	ctx          context.Context
	updater      Updater
	logger       *logrus.Logger
	cron         *cron.Cron
	startupDelay time.Duration
	interval     time.Duration
	cycleTimeout time.Duration

	wg sync.WaitGroup
}

func NewScheduler(ctx context.Context, updater Updater, logger *logrus.Logger, startupDelay, interval time.Duration) *Scheduler {
	return &Scheduler{
		ctx:          ctx,
		updater:      updater,
		logger:       logger,
		cron:         cron.New(),
		startupDelay: startupDelay,
		interval:     interval,
		cycleTimeout: 2 * time.Minute,
	}
}

// Start the scheduler
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("invalid update interval: %s", s.interval)
	}

	// Run an update every interval
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.collectData)
	if err != nil {
		return err
	}
	s.cron.Start()

	// One extra run shortly after startup
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.WithField("delay", s.startupDelay.String()).Info("Narodmon scheduler loaded")

		timer := time.NewTimer(s.startupDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
			s.collectData()
		}
	}()

	return nil
}

// collectData runs one update cycle; errors are logged, never propagated
func (s *Scheduler) collectData() {
	ctx, cancel := context.WithTimeout(s.ctx, s.cycleTimeout)
	defer cancel()

	if _, err := s.updater.UpdateAll(ctx, 0); err != nil {
		s.logger.WithError(err).Error("Scheduled update failed")
	}
}

// Stop the scheduler and wait for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
}
