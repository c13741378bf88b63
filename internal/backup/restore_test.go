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

	"github.com/tomtom215/telebackup/internal/quota"
	"github.com/tomtom215/telebackup/internal/storetest"
	"github.com/tomtom215/telebackup/internal/telephony"
)

// restoreFixture builds a second agent over a fresh store sharing the
// first fixture's archive directory, simulating restore onto a new
// device.
func restoreFixture(t *testing.T, src *fixture) (*Agent, *storetest.Store) {
	t.Helper()

	st := storetest.New()
	st.SeedLine(telephony.LineRegistration{SubID: 7, Number: "+15551234567", CountryISO: "us"})

	transport, err := NewDirTransport(src.archive)
	if err != nil {
		t.Fatalf("NewDirTransport: %v", err)
	}
	agent, err := NewAgent(context.Background(), Config{
		StagingDir: filepath.Join(t.TempDir(), "staging"),
		ArchiveDir: src.archive,
	}, Stores{Sms: st, Mms: st, Threads: st, Lines: st}, quota.NewTracker(quota.NewMemoryStore()), transport)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	return agent, st
}

func TestRestoreRoundTrip(t *testing.T) {
	f := newFixture(t, 1000)
	seedSms(f.store, 1700000000000, "hello from the past")
	seedTextMms(f.store, 1700000100, "multimedia hello")

	if _, err := f.agent.Backup(context.Background()); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	agent, st := restoreFixture(t, f)
	res, err := agent.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if res.SmsRestored != 1 {
		t.Errorf("SmsRestored = %d, want 1", res.SmsRestored)
	}
	if res.MmsRestored != 1 {
		t.Errorf("MmsRestored = %d, want 1", res.MmsRestored)
	}
	if res.Files != 2 {
		t.Errorf("Files = %d, want 2", res.Files)
	}

	smsRows := st.SmsRows()
	if len(smsRows) != 1 {
		t.Fatalf("store has %d short messages, want 1", len(smsRows))
	}
	got := smsRows[0]
	if got.Body == nil || *got.Body != "hello from the past" {
		t.Errorf("Body = %v", got.Body)
	}
	if got.Date != 1700000000000 {
		t.Errorf("Date = %d", got.Date)
	}
	// self_phone resolved against the restore device's line registry.
	if got.SubID != 7 {
		t.Errorf("SubID = %d, want 7", got.SubID)
	}
	if got.Read != 1 || got.Seen != 1 {
		t.Errorf("read/seen = (%d, %d), want (1, 1)", got.Read, got.Seen)
	}
	if got.ThreadID == 0 {
		t.Error("ThreadID = 0, want a created thread")
	}

	// Applied files are deleted.
	entries, err := os.ReadDir(f.archive)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("archive still contains %d files, want 0", len(entries))
	}
}

func TestRestoreReconstructsMmsParts(t *testing.T) {
	f := newFixture(t, 1000)
	seedTextMms(f.store, 1700000100, "parts please")

	if _, err := f.agent.Backup(context.Background()); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	agent, st := restoreFixture(t, f)
	if _, err := agent.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	rows := st.MmsRows()
	if len(rows) != 1 {
		t.Fatalf("store has %d multimedia messages, want 1", len(rows))
	}
	mmsID := rows[0].ID

	parts := st.PartsOf(mmsID)
	if len(parts) != 2 {
		t.Fatalf("message has %d parts, want 2 (layout + text)", len(parts))
	}
	var smil, text *telephony.MmsPart
	for _, p := range parts {
		switch p.ContentType {
		case telephony.ContentTypeSmil:
			smil = p
		case telephony.ContentTypeText:
			text = p
		}
	}
	if smil == nil || text == nil {
		t.Fatalf("missing part: smil=%v text=%v", smil, text)
	}
	if smil.Seq != -1 || smil.Name != "smil.xml" || smil.ContentID != "<smil>" {
		t.Errorf("layout part = %+v", smil)
	}
	if text.Seq != 0 || text.Name != telephony.TextPartName || text.Text != "parts please" {
		t.Errorf("text part = %+v", text)
	}
	if text.Charset == nil || *text.Charset != telephony.CharsetUTF8 {
		t.Errorf("text charset = %v, want %d", text.Charset, telephony.CharsetUTF8)
	}

	addrs, err := st.Addresses(context.Background(), mmsID)
	if err != nil {
		t.Fatalf("Addresses: %v", err)
	}
	if len(addrs) != 1 || addrs[0].Address != "+15550001111" || addrs[0].Type != 137 {
		t.Errorf("addresses = %+v", addrs)
	}
}

func TestRestoreSkipsDuplicates(t *testing.T) {
	f := newFixture(t, 1000)
	seedSms(f.store, 1700000000000, "only once")
	seedTextMms(f.store, 1700000100, "also only once")

	if _, err := f.agent.Backup(context.Background()); err != nil {
		t.Fatalf("first Backup: %v", err)
	}

	agent, st := restoreFixture(t, f)
	if _, err := agent.Restore(context.Background()); err != nil {
		t.Fatalf("first Restore: %v", err)
	}

	// Back up the source again and restore onto the same target: every
	// record is already present and must be skipped.
	if _, err := f.agent.Backup(context.Background()); err != nil {
		t.Fatalf("second Backup: %v", err)
	}
	res, err := agent.Restore(context.Background())
	if err != nil {
		t.Fatalf("second Restore: %v", err)
	}

	if res.SmsRestored != 0 || res.SmsSkipped != 1 {
		t.Errorf("sms restored/skipped = (%d, %d), want (0, 1)", res.SmsRestored, res.SmsSkipped)
	}
	if res.MmsRestored != 0 || res.MmsSkipped != 1 {
		t.Errorf("mms restored/skipped = (%d, %d), want (0, 1)", res.MmsRestored, res.MmsSkipped)
	}
	if got := len(st.SmsRows()); got != 1 {
		t.Errorf("store has %d short messages after double restore, want 1", got)
	}
	if got := len(st.MmsRows()); got != 1 {
		t.Errorf("store has %d multimedia messages after double restore, want 1", got)
	}
}

func TestRestoreDedupIgnoresSender(t *testing.T) {
	f := newFixture(t, 1000)
	seedSms(f.store, 1700000000000, "same date same body")

	if _, err := f.agent.Backup(context.Background()); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	agent, st := restoreFixture(t, f)
	// Pre-seed the target with a message sharing (date, body) but from a
	// different sender. The dedup key deliberately ignores the address.
	st.SeedSms(&telephony.Sms{
		Address: strPtr("+19998887777"),
		Body:    strPtr("same date same body"),
		Date:    1700000000000,
	})

	res, err := agent.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if res.SmsRestored != 0 || res.SmsSkipped != 1 {
		t.Errorf("restored/skipped = (%d, %d), want (0, 1)", res.SmsRestored, res.SmsSkipped)
	}
}

func TestRestoreLeavesUnreadableFile(t *testing.T) {
	f := newFixture(t, 1000)
	seedSms(f.store, 1700000000000, "good chunk")
	if _, err := f.agent.Backup(context.Background()); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	// Drop a corrupt chunk file next to the good one. Descending order
	// visits it first.
	corrupt := filepath.Join(f.archive, "000009_sms_backup")
	if err := os.WriteFile(corrupt, []byte("not zlib data"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	agent, st := restoreFixture(t, f)
	res, err := agent.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if res.Files != 1 || res.FilesSkipped != 1 {
		t.Errorf("files/skipped = (%d, %d), want (1, 1)", res.Files, res.FilesSkipped)
	}
	if res.SmsRestored != 1 {
		t.Errorf("SmsRestored = %d, want 1 (good chunk still applied)", res.SmsRestored)
	}
	if _, err := os.Stat(corrupt); err != nil {
		t.Errorf("corrupt file should remain in place: %v", err)
	}
	if got := len(st.SmsRows()); got != 1 {
		t.Errorf("store has %d short messages, want 1", got)
	}
}

func TestRestoreIgnoresForeignFiles(t *testing.T) {
	f := newFixture(t, 1000)
	foreign := filepath.Join(f.archive, "README.txt")
	if err := os.WriteFile(foreign, []byte("keep me"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	agent, _ := restoreFixture(t, f)
	res, err := agent.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if res.Files != 0 || res.FilesSkipped != 0 {
		t.Errorf("result = %+v, want nothing touched", res)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Errorf("foreign file should remain: %v", err)
	}
}

func TestRestoreMissingArchiveDir(t *testing.T) {
	f := newFixture(t, 1000)
	agent, _ := restoreFixture(t, f)
	if err := os.RemoveAll(f.archive); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}

	res, err := agent.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if res.Files != 0 {
		t.Errorf("Files = %d, want 0", res.Files)
	}
}

func TestRestoreDropsFailingMms(t *testing.T) {
	f := newFixture(t, 1000)
	seedTextMms(f.store, 1700000100, "will fail to insert")
	seedSms(f.store, 1700000000000, "sms still lands")

	if _, err := f.agent.Backup(context.Background()); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	agent, st := restoreFixture(t, f)
	st.FailMmsInsert = os.ErrPermission

	res, err := agent.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if res.MmsRestored != 0 || res.MmsDropped != 1 {
		t.Errorf("mms restored/dropped = (%d, %d), want (0, 1)", res.MmsRestored, res.MmsDropped)
	}
	if res.SmsRestored != 1 {
		t.Errorf("SmsRestored = %d, want 1 (failure drops only the one message)", res.SmsRestored)
	}
}

func TestRestoreBatchesByConfiguredChunkSize(t *testing.T) {
	f := newFixture(t, 1000)
	for i := 0; i < 5; i++ {
		seedSms(f.store, int64(1700000000000+i), "message")
	}
	if _, err := f.agent.Backup(context.Background()); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	st := storetest.New()
	st.SeedLine(telephony.LineRegistration{SubID: 7, Number: "+15551234567", CountryISO: "us"})
	transport, err := NewDirTransport(f.archive)
	if err != nil {
		t.Fatalf("NewDirTransport: %v", err)
	}
	agent, err := NewAgent(context.Background(), Config{
		StagingDir:         filepath.Join(t.TempDir(), "staging"),
		ArchiveDir:         f.archive,
		MaxRecordsPerChunk: 2,
	}, Stores{Sms: st, Mms: st, Threads: st, Lines: st}, quota.NewTracker(quota.NewMemoryStore()), transport)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	res, err := agent.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if res.SmsRestored != 5 {
		t.Errorf("SmsRestored = %d, want 5", res.SmsRestored)
	}
	if len(st.SmsRows()) != 5 {
		t.Errorf("store has %d rows, want 5", len(st.SmsRows()))
	}
	// Two full batches and the remainder at end of file.
	if st.BulkInsertCalls != 3 {
		t.Errorf("BulkInsertCalls = %d, want 3", st.BulkInsertCalls)
	}
}
