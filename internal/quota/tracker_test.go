// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package quota

import (
	"testing"
	"time"
)

func newTestTracker(now time.Time) *Tracker {
	t := NewTracker(NewMemoryStore())
	t.now = func() time.Time { return now }
	return t
}

func TestBeginCycleNoState(t *testing.T) {
	tr := newTestTracker(time.Now())

	budget, err := tr.BeginCycle()
	if err != nil {
		t.Fatalf("BeginCycle: %v", err)
	}
	if budget != 0 {
		t.Errorf("budget = %d, want 0", budget)
	}
	if tr.ShouldWithhold(500) {
		t.Error("ShouldWithhold = true without quota pressure")
	}
}

func TestOverageBudgetWithMargin(t *testing.T) {
	now := time.Now()
	tr := newTestTracker(now)

	if err := tr.OnQuotaExceeded(1000, 800); err != nil {
		t.Fatalf("OnQuotaExceeded: %v", err)
	}

	budget, err := tr.BeginCycle()
	if err != nil {
		t.Fatalf("BeginCycle: %v", err)
	}
	// 200 bytes over, padded by 10%.
	if budget != 220 {
		t.Errorf("budget = %d, want 220", budget)
	}
}

func TestShouldWithholdConsumesBudget(t *testing.T) {
	tr := newTestTracker(time.Now())
	if err := tr.OnQuotaExceeded(1000, 800); err != nil {
		t.Fatalf("OnQuotaExceeded: %v", err)
	}
	if _, err := tr.BeginCycle(); err != nil {
		t.Fatalf("BeginCycle: %v", err)
	}

	// 220 byte budget: 150 withheld, 100 withheld (budget goes negative),
	// then the next chunk flows.
	if !tr.ShouldWithhold(150) {
		t.Error("first chunk should be withheld")
	}
	if !tr.ShouldWithhold(100) {
		t.Error("second chunk should be withheld, budget still positive")
	}
	if tr.ShouldWithhold(100) {
		t.Error("third chunk should flow, budget spent")
	}
}

func TestNotUnderQuotaDoesNotThrottle(t *testing.T) {
	tr := newTestTracker(time.Now())
	if err := tr.OnQuotaExceeded(700, 800); err != nil {
		t.Fatalf("OnQuotaExceeded: %v", err)
	}

	budget, err := tr.BeginCycle()
	if err != nil {
		t.Fatalf("BeginCycle: %v", err)
	}
	if budget != 0 {
		t.Errorf("budget = %d, want 0 when reported size is under quota", budget)
	}
}

func TestExpiredStateCleared(t *testing.T) {
	store := NewMemoryStore()
	tr := NewTracker(store)

	base := time.Now()
	tr.now = func() time.Time { return base }
	if err := tr.OnQuotaExceeded(1000, 800); err != nil {
		t.Fatalf("OnQuotaExceeded: %v", err)
	}

	// Jump past the thirty day deadline.
	tr.now = func() time.Time { return base.Add(31 * 24 * time.Hour) }
	budget, err := tr.BeginCycle()
	if err != nil {
		t.Fatalf("BeginCycle: %v", err)
	}
	if budget != 0 {
		t.Errorf("budget = %d, want 0 after expiry", budget)
	}

	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state != nil {
		t.Errorf("state = %+v, want nil after expiry clear", state)
	}
}

func TestRepeatedNotificationsCompound(t *testing.T) {
	tr := newTestTracker(time.Now())

	if err := tr.OnQuotaExceeded(1000, 800); err != nil {
		t.Fatalf("first OnQuotaExceeded: %v", err)
	}
	// Prior overage 200 is folded in with margin: 1000 + 220 = 1220.
	if err := tr.OnQuotaExceeded(1000, 800); err != nil {
		t.Fatalf("second OnQuotaExceeded: %v", err)
	}

	state, err := tr.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if state == nil {
		t.Fatal("Current = nil, want state")
	}
	if state.BackupBytes != 1220 {
		t.Errorf("BackupBytes = %d, want 1220", state.BackupBytes)
	}
	if state.QuotaBytes != 800 {
		t.Errorf("QuotaBytes = %d, want 800", state.QuotaBytes)
	}
}

func TestNotificationSetsDeadline(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := newTestTracker(now)

	if err := tr.OnQuotaExceeded(1000, 800); err != nil {
		t.Fatalf("OnQuotaExceeded: %v", err)
	}

	state, err := tr.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	want := now.Add(30 * 24 * time.Hour).UnixMilli()
	if state.ResetAt != want {
		t.Errorf("ResetAt = %d, want %d", state.ResetAt, want)
	}
}

func TestClearDisarmsBudget(t *testing.T) {
	tr := newTestTracker(time.Now())
	if err := tr.OnQuotaExceeded(1000, 800); err != nil {
		t.Fatalf("OnQuotaExceeded: %v", err)
	}
	if _, err := tr.BeginCycle(); err != nil {
		t.Fatalf("BeginCycle: %v", err)
	}

	if err := tr.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if tr.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0 after Clear", tr.Remaining())
	}
	state, err := tr.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if state != nil {
		t.Errorf("state = %+v, want nil after Clear", state)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	state, err := store.Load()
	if err != nil || state != nil {
		t.Fatalf("Load on empty store = (%+v, %v), want (nil, nil)", state, err)
	}

	saved := &State{BackupBytes: 10, QuotaBytes: 5, ResetAt: 99}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *saved {
		t.Errorf("Load = %+v, want %+v", got, saved)
	}

	// The loaded copy is detached from the stored value.
	got.BackupBytes = 77
	again, _ := store.Load()
	if again.BackupBytes != 10 {
		t.Error("mutating a loaded state leaked into the store")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if state, _ := store.Load(); state != nil {
		t.Error("Load after Clear returned state")
	}
}
