// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/telebackup/internal/archive"
	"github.com/tomtom215/telebackup/internal/quota"
	"github.com/tomtom215/telebackup/internal/storetest"
	"github.com/tomtom215/telebackup/internal/telephony"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	agent   *Agent
	store   *storetest.Store
	tracker *quota.Tracker
	staging string
	archive string
}

func newFixture(t *testing.T, maxRecords int) *fixture {
	t.Helper()

	base := t.TempDir()
	staging := filepath.Join(base, "staging")
	archiveDir := filepath.Join(base, "archive")

	st := storetest.New()
	st.SeedLine(telephony.LineRegistration{SubID: 1, Number: "+15551234567", CountryISO: "us"})

	tracker := quota.NewTracker(quota.NewMemoryStore())
	transport, err := NewDirTransport(archiveDir)
	if err != nil {
		t.Fatalf("NewDirTransport: %v", err)
	}

	agent, err := NewAgent(context.Background(), Config{
		Enabled:            true,
		StagingDir:         staging,
		ArchiveDir:         archiveDir,
		MaxRecordsPerChunk: maxRecords,
		Compression:        archive.CompressionZlib,
	}, Stores{Sms: st, Mms: st, Threads: st, Lines: st}, tracker, transport)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	return &fixture{agent: agent, store: st, tracker: tracker, staging: staging, archive: archiveDir}
}

func (f *fixture) archiveChunks(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.archive)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func seedSms(st *storetest.Store, date int64, body string) {
	st.SeedSms(&telephony.Sms{
		SubID:   1,
		Address: strPtr("+15550001111"),
		Body:    strPtr(body),
		Date:    date,
		Type:    1,
	})
}

func seedTextMms(st *storetest.Store, date int64, text string) {
	st.SeedMms(&telephony.Mms{
		SubID:       1,
		Date:        date,
		MessageType: 132,
		Version:     18,
		MessageBox:  telephony.MessageBoxInbox,
		TextOnly:    1,
		Addresses: []telephony.MmsAddress{
			{Type: 137, Address: "+15550001111", Charset: telephony.CharsetUTF8},
		},
		Body: &telephony.MmsBody{Text: text, Charset: telephony.CharsetUTF8},
	})
}

func TestBackupEmptyStores(t *testing.T) {
	f := newFixture(t, 1000)

	res, err := f.agent.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if res.Chunks != 0 || res.SmsEntries != 0 || res.MmsEntries != 0 {
		t.Errorf("result = %+v, want empty", res)
	}
	if names := f.archiveChunks(t); len(names) != 0 {
		t.Errorf("archive contains %v, want nothing", names)
	}
}

func TestBackupSplitsFullChunk(t *testing.T) {
	f := newFixture(t, 1000)
	for i := 0; i < 1001; i++ {
		seedSms(f.store, int64(1700000000000+i), "message")
	}

	res, err := f.agent.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if res.SmsEntries != 1001 {
		t.Errorf("SmsEntries = %d, want 1001", res.SmsEntries)
	}
	if res.Chunks != 2 {
		t.Errorf("Chunks = %d, want 2", res.Chunks)
	}

	names := f.archiveChunks(t)
	archive.SortDescending(names)
	want := []string{"000001_sms_backup", "000000_sms_backup"}
	if len(names) != 2 || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("archive = %v, want %v", names, want)
	}
}

func TestBackupMergeOrdersByDate(t *testing.T) {
	f := newFixture(t, 1000)

	// Short message date is milliseconds, multimedia is seconds. The
	// older head picks the kind, and the chosen side fills a whole chunk
	// before the heads are compared again: both short messages land in
	// chunk 0 even though the multimedia message falls between them.
	seedSms(f.store, 1000_000, "early sms")  // 1000 s
	seedTextMms(f.store, 2000, "middle mms") // 2000 s
	seedSms(f.store, 3000_000, "late sms")   // 3000 s

	res, err := f.agent.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if res.SmsEntries != 2 || res.MmsEntries != 1 {
		t.Errorf("entries = (%d sms, %d mms), want (2, 1)", res.SmsEntries, res.MmsEntries)
	}

	names := f.archiveChunks(t)
	archive.SortDescending(names)
	want := []string{"000001_mms_backup", "000000_sms_backup"}
	if len(names) != 2 {
		t.Fatalf("archive = %v, want 2 chunks", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("chunk[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestBackupTieGoesToMms(t *testing.T) {
	f := newFixture(t, 1000)

	seedSms(f.store, 2000_000, "sms at 2000s")
	seedTextMms(f.store, 2000, "mms at 2000s")

	_, err := f.agent.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	names := f.archiveChunks(t)
	archive.SortDescending(names)
	want := []string{"000001_sms_backup", "000000_mms_backup"}
	if len(names) != 2 || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("archive = %v, want %v (tie picks the multimedia side first)", names, want)
	}
}

func TestBackupSkipsBodylessMms(t *testing.T) {
	f := newFixture(t, 1000)

	f.store.SeedMms(&telephony.Mms{
		SubID:    1,
		Date:     1000,
		TextOnly: 1,
		// no Body: nothing restorable
	})

	res, err := f.agent.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if res.MmsEntries != 0 || res.Chunks != 0 {
		t.Errorf("result = %+v, want no entries and no chunks", res)
	}
	if names := f.archiveChunks(t); len(names) != 0 {
		t.Errorf("archive = %v, want empty (zero-entry chunk deleted)", names)
	}
}

func TestBackupSequenceGapAfterEmptyChunk(t *testing.T) {
	f := newFixture(t, 1000)

	// The bodyless multimedia message is older, so sequence 0 goes to the
	// multimedia chunk, which ends up empty and is deleted. The short
	// message chunk still gets sequence 1.
	f.store.SeedMms(&telephony.Mms{SubID: 1, Date: 1000, TextOnly: 1})
	seedSms(f.store, 2000_000, "after the gap")

	_, err := f.agent.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	names := f.archiveChunks(t)
	if len(names) != 1 || names[0] != "000001_sms_backup" {
		t.Errorf("archive = %v, want [000001_sms_backup]", names)
	}
}

func TestBackupWithholdsUnderQuotaPressure(t *testing.T) {
	f := newFixture(t, 1)
	for i := 0; i < 4; i++ {
		seedSms(f.store, int64(1700000000000+i), "withheld prefix test message")
	}

	// A tiny reported overage: only the first chunk of the next cycle is
	// withheld, the rest flow.
	if err := f.tracker.OnQuotaExceeded(801, 800); err != nil {
		t.Fatalf("OnQuotaExceeded: %v", err)
	}

	res, err := f.agent.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if res.ChunksWithheld != 1 {
		t.Errorf("ChunksWithheld = %d, want 1", res.ChunksWithheld)
	}
	if res.Chunks != 3 {
		t.Errorf("Chunks = %d, want 3", res.Chunks)
	}

	// The withheld chunk consumed sequence 0; the archive starts at 1.
	names := f.archiveChunks(t)
	archive.SortDescending(names)
	if len(names) != 3 || names[len(names)-1] != "000001_sms_backup" {
		t.Errorf("archive = %v, want 3 chunks starting at 000001", names)
	}
}

func TestStagingEmptyAfterBackup(t *testing.T) {
	f := newFixture(t, 1000)
	seedSms(f.store, 1700000000000, "staged then handed off")

	if _, err := f.agent.Backup(context.Background()); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	entries, err := os.ReadDir(f.staging)
	if err != nil {
		t.Fatalf("ReadDir staging: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("staging contains %d leftover files, want 0", len(entries))
	}
}
