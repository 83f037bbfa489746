package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"teambot/internal/domain"
	"teambot/pkg/logger"
)

// Scheduler drives the two background sweeps: the per-minute
// due-notification pass and the daily expiry sweep. It is started once at
// process initialization and owned by the process lifetime.
type Scheduler struct {
	teams      TeamService
	notifier   Notifier
	logger     *logger.Logger
	window     time.Duration
	interval   time.Duration
	expiryHour int

	now func() time.Time

	mu        sync.Mutex
	isRunning bool
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(teams TeamService, notifier Notifier, log *logger.Logger, window, interval time.Duration, expiryHour int) *Scheduler {
	return &Scheduler{
		teams:      teams,
		notifier:   notifier,
		logger:     log,
		window:     window,
		interval:   interval,
		expiryHour: expiryHour,
		now:        time.Now,
	}
}

// Start launches the background sweep loops
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	s.stop = make(chan struct{})
	s.wg.Add(2)
	go s.notifyLoop(ctx)
	go s.expiryLoop(ctx)

	s.isRunning = true
	s.logger.WithFields(map[string]interface{}{
		"notify_interval": s.interval.String(),
		"notify_window":   s.window.String(),
		"expiry_hour":     s.expiryHour,
	}).Info("Scheduler started")
	return nil
}

// Stop shuts the sweep loops down, waiting for an in-flight pass to finish
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	close(s.stop)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) notifyLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.RunDuePass(ctx, s.now()); err != nil {
				s.logger.WithError(err).Error("Due-notification pass failed")
			}
		}
	}
}

func (s *Scheduler) expiryLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		timer := time.NewTimer(untilNextHour(s.now(), s.expiryHour))
		select {
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
			if err := s.RunExpirySweep(ctx, s.now()); err != nil {
				s.logger.WithError(err).Error("Expiry sweep failed")
			}
		}
	}
}

// RunDuePass notifies and removes every team that entered the due window.
// Delivery is at-most-once: the team is removed whether or not the
// notification went out, so it is never considered again.
func (s *Scheduler) RunDuePass(ctx context.Context, now time.Time) error {
	teams, err := s.teams.DueForNotification(ctx, now, s.window)
	if err != nil {
		return fmt.Errorf("failed to query due teams: %w", err)
	}

	for _, team := range teams {
		s.notifyAndRemove(ctx, team)
	}
	return nil
}

// notifyAndRemove handles a single due team; failures are logged and never
// abort the rest of the pass
func (s *Scheduler) notifyAndRemove(ctx context.Context, team *domain.Team) {
	log := s.logger.WithField("team_id", team.ID)

	if team.GroupID == "" {
		log.Warn("Due team has no group id, removing without notification")
	} else {
		sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := s.notifier.Send(sendCtx, team.GroupID, dueMessage(team))
		cancel()
		if err != nil {
			log.WithError(err).WithField("group_id", team.GroupID).Error("Failed to deliver due notification")
		} else {
			log.WithField("group_id", team.GroupID).Info("Due notification delivered")
		}
	}

	if err := s.teams.Remove(ctx, team.ID); err != nil {
		log.WithError(err).Error("Failed to remove notified team")
	}
}

// RunExpirySweep silently deletes teams whose start time has passed
func (s *Scheduler) RunExpirySweep(ctx context.Context, now time.Time) error {
	removed, err := s.teams.SweepExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to sweep expired teams: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"removed": removed,
		"cutoff":  now.Format(domain.TimeLayout),
	}).Info("Expiry sweep completed")
	return nil
}

// dueMessage builds the group notification mentioning every member
func dueMessage(team *domain.Team) string {
	var b strings.Builder
	fmt.Fprintf(&b, "队伍 %d 即将开始！\n", team.ID)
	for _, m := range team.Members {
		fmt.Fprintf(&b, "[CQ:at,qq=%s] ", m.UserID)
	}
	return b.String()
}

// untilNextHour returns the duration until the next local occurrence of
// hour:00
func untilNextHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
