// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package backup

import (
	"context"
	"time"

	"github.com/tomtom215/telebackup/internal/logging"
)

// Scheduler runs backup cycles on a fixed interval. It implements
// suture.Service; the supervisor restarts it if a cycle panics.
type Scheduler struct {
	agent    *Agent
	interval time.Duration
}

// NewScheduler wraps the agent in a periodic runner using the agent's
// configured schedule interval.
func NewScheduler(agent *Agent) *Scheduler {
	return &Scheduler{
		agent:    agent,
		interval: agent.cfg.Schedule.Interval,
	}
}

// Serve runs cycles until the context is canceled. A failed cycle is
// logged and the schedule continues; the next tick retries.
func (s *Scheduler) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", s.interval).Msg("Backup scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Backup scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.agent.Backup(ctx); err != nil {
				logging.Error().Err(err).Msg("Scheduled backup failed")
			}
		}
	}
}

// String names the service in supervisor logs.
func (s *Scheduler) String() string {
	return "backup-scheduler"
}
