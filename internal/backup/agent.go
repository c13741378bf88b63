// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package backup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/telebackup/internal/identity"
	"github.com/tomtom215/telebackup/internal/logging"
	"github.com/tomtom215/telebackup/internal/metrics"
	"github.com/tomtom215/telebackup/internal/quota"
	"github.com/tomtom215/telebackup/internal/store"
)

// Stores bundles the datastore interfaces the agent operates on.
type Stores struct {
	Sms     store.SmsStore
	Mms     store.MmsStore
	Threads store.ThreadStore
	Lines   store.LineStore
}

// Agent owns the backup and restore passes. One agent serves the CLI,
// the scheduler, and the HTTP surface; passes serialize on an internal
// mutex so at most one runs at a time.
type Agent struct {
	cfg       Config
	stores    Stores
	subs      *identity.Subscriptions
	tracker   *quota.Tracker
	transport Transport

	mu sync.Mutex
}

// NewAgent validates the configuration and builds the subscription
// identity maps from the active line registrations.
func NewAgent(ctx context.Context, cfg Config, stores Stores, tracker *quota.Tracker, transport Transport) (*Agent, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backup configuration: %w", err)
	}

	lines, err := stores.Lines.ActiveLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active lines: %w", err)
	}

	return &Agent{
		cfg:       cfg,
		stores:    stores,
		subs:      identity.NewSubscriptions(lines),
		tracker:   tracker,
		transport: transport,
	}, nil
}

// Tracker exposes the quota tracker for the notification surface.
func (a *Agent) Tracker() *quota.Tracker {
	return a.tracker
}

// BackupResult summarizes one export cycle.
type BackupResult struct {
	CycleID        string        `json:"cycle_id"`
	SmsEntries     int           `json:"sms_entries"`
	MmsEntries     int           `json:"mms_entries"`
	Chunks         int           `json:"chunks"`
	ChunksWithheld int           `json:"chunks_withheld"`
	BytesSent      int64         `json:"bytes_sent"`
	Duration       time.Duration `json:"duration"`
}

// RestoreResult summarizes one restore cycle.
type RestoreResult struct {
	CycleID      string        `json:"cycle_id"`
	Files        int           `json:"files"`
	FilesSkipped int           `json:"files_skipped"`
	SmsRestored  int           `json:"sms_restored"`
	SmsSkipped   int           `json:"sms_skipped"`
	MmsRestored  int           `json:"mms_restored"`
	MmsSkipped   int           `json:"mms_skipped"`
	MmsDropped   int           `json:"mms_dropped"`
	Duration     time.Duration `json:"duration"`
}

// Backup runs one export cycle.
func (a *Agent) Backup(ctx context.Context) (*BackupResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cycleID := uuid.NewString()
	start := time.Now()
	logging.Info().Str("cycle_id", cycleID).Msg("Backup cycle starting")

	result, err := a.export(ctx, cycleID)
	metrics.RecordBackupCycle(time.Since(start), err)
	if err != nil {
		logging.Error().Err(err).Str("cycle_id", cycleID).Msg("Backup cycle failed")
		return nil, err
	}

	result.CycleID = cycleID
	result.Duration = time.Since(start)
	logging.Info().
		Str("cycle_id", cycleID).
		Int("sms_entries", result.SmsEntries).
		Int("mms_entries", result.MmsEntries).
		Int("chunks", result.Chunks).
		Int("chunks_withheld", result.ChunksWithheld).
		Int64("bytes_sent", result.BytesSent).
		Dur("duration", result.Duration).
		Msg("Backup cycle complete")
	return result, nil
}

// Restore runs one restore cycle.
func (a *Agent) Restore(ctx context.Context) (*RestoreResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cycleID := uuid.NewString()
	start := time.Now()
	logging.Info().Str("cycle_id", cycleID).Msg("Restore cycle starting")

	result, err := a.restore(ctx)
	metrics.RecordRestoreCycle(time.Since(start), err)
	if err != nil {
		logging.Error().Err(err).Str("cycle_id", cycleID).Msg("Restore cycle failed")
		return nil, err
	}

	result.CycleID = cycleID
	result.Duration = time.Since(start)
	logging.Info().
		Str("cycle_id", cycleID).
		Int("files", result.Files).
		Int("files_skipped", result.FilesSkipped).
		Int("sms_restored", result.SmsRestored).
		Int("sms_skipped", result.SmsSkipped).
		Int("mms_restored", result.MmsRestored).
		Int("mms_skipped", result.MmsSkipped).
		Int("mms_dropped", result.MmsDropped).
		Dur("duration", result.Duration).
		Msg("Restore cycle complete")
	return result, nil
}

// OnQuotaExceeded records a remote quota-exceeded notification.
func (a *Agent) OnQuotaExceeded(backupDataBytes, quotaBytes int64) error {
	return a.tracker.OnQuotaExceeded(backupDataBytes, quotaBytes)
}
