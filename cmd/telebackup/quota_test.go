// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/telebackup/internal/quota"
)

func TestFormatQuotaState(t *testing.T) {
	deadline := time.Now().Add(30 * 24 * time.Hour)
	out := formatQuotaState(&quota.State{
		BackupBytes: 1000,
		QuotaBytes:  800,
		ResetAt:     deadline.UnixMilli(),
	})

	if !strings.Contains(out, "backup bytes: 1000") || !strings.Contains(out, "quota bytes:  800") {
		t.Errorf("output = %q", out)
	}

	// The deadline is stored as a millisecond epoch; reading it as
	// seconds would print a date tens of thousands of years out.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := lines[len(lines)-1]
	stamp := strings.TrimSpace(strings.TrimPrefix(last, "resets at:"))
	got, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		t.Fatalf("resets at %q is not RFC3339: %v", stamp, err)
	}
	if diff := got.Sub(deadline); diff > time.Second || diff < -time.Second {
		t.Errorf("resets at = %s, want within 1s of %s", got, deadline.UTC())
	}
}
