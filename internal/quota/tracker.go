// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package quota

import (
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/telebackup/internal/logging"
)

// overageMargin pads the reported overage so the withheld prefix clears
// the quota with headroom instead of landing exactly on the boundary.
const overageMargin = 1.1

// resetInterval is how long a quota-exceeded state throttles backups
// before expiring on its own.
const resetInterval = 30 * 24 * time.Hour

// Tracker applies persisted quota state to backup cycles. BeginCycle
// computes the byte budget to withhold; ShouldWithhold consumes it chunk
// by chunk. The tracker serializes its own state transitions, but one
// cycle's BeginCycle/ShouldWithhold sequence belongs to a single
// goroutine.
type Tracker struct {
	store Store
	now   func() time.Time

	mu        sync.Mutex
	remaining int64
}

// NewTracker creates a tracker over the given persistent store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// BeginCycle loads the persisted state and arms the withholding budget
// for the cycle that is starting. Expired state is cleared and does not
// throttle. Returns the armed budget in bytes.
func (t *Tracker) BeginCycle() (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.remaining = 0

	state, err := t.store.Load()
	if err != nil {
		return 0, err
	}
	if state == nil {
		return 0, nil
	}

	if state.ResetAt <= t.now().UnixMilli() {
		logging.Info().Msg("Quota state expired, clearing")
		if err := t.store.Clear(); err != nil {
			return 0, fmt.Errorf("failed to clear expired quota state: %w", err)
		}
		return 0, nil
	}

	if over := state.BackupBytes - state.QuotaBytes; over > 0 {
		t.remaining = int64(float64(over) * overageMargin)
		logging.Info().
			Int64("backup_bytes", state.BackupBytes).
			Int64("quota_bytes", state.QuotaBytes).
			Int64("withhold_bytes", t.remaining).
			Msg("Quota pressure active, withholding backup output")
	}
	return t.remaining, nil
}

// ShouldWithhold reports whether the next produced chunk of the given
// size must be withheld from handoff. Each withheld chunk reduces the
// armed budget; once the budget is spent, subsequent chunks flow.
func (t *Tracker) ShouldWithhold(size int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remaining <= 0 {
		return false
	}
	t.remaining -= size
	return true
}

// Remaining returns the unspent withholding budget of the current cycle.
func (t *Tracker) Remaining() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// OnQuotaExceeded records a quota-exceeded notification from the remote
// side. An unexpired prior overage is folded, with margin, into the
// reported backup size so repeated notifications compound instead of
// resetting. The throttle deadline restarts from now.
func (t *Tracker) OnQuotaExceeded(backupDataBytes, quotaBytes int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	prior, err := t.store.Load()
	if err != nil {
		return err
	}
	if prior != nil {
		if over := prior.BackupBytes - prior.QuotaBytes; over > 0 {
			backupDataBytes += int64(float64(over) * overageMargin)
		}
	}

	state := &State{
		BackupBytes: backupDataBytes,
		QuotaBytes:  quotaBytes,
		ResetAt:     t.now().Add(resetInterval).UnixMilli(),
	}
	if err := t.store.Save(state); err != nil {
		return err
	}
	logging.Warn().
		Int64("backup_bytes", state.BackupBytes).
		Int64("quota_bytes", state.QuotaBytes).
		Time("reset_at", time.UnixMilli(state.ResetAt)).
		Msg("Quota exceeded notification recorded")
	return nil
}

// Current returns the persisted state, or nil when none is stored.
func (t *Tracker) Current() (*State, error) {
	return t.store.Load()
}

// Clear drops the persisted state and disarms the current budget.
func (t *Tracker) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remaining = 0
	return t.store.Clear()
}
