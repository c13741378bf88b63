// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/tomtom215/telebackup/internal/archive"
	"github.com/tomtom215/telebackup/internal/identity"
	"github.com/tomtom215/telebackup/internal/logging"
	"github.com/tomtom215/telebackup/internal/metrics"
	"github.com/tomtom215/telebackup/internal/telephony"
)

// restorer carries the state of one restore cycle.
type restorer struct {
	agent *Agent
	dc    *archive.DecodeContext
	res   *RestoreResult

	smsBatch []*telephony.Sms
}

// restore scans the archive directory for chunk files and applies them
// newest first, both kinds intermixed. Files that cannot be opened or
// decoded are logged, skipped, and left in place; successfully applied
// files are deleted.
func (a *Agent) restore(ctx context.Context) (*RestoreResult, error) {
	entries, err := os.ReadDir(a.cfg.ArchiveDir)
	if err != nil {
		if os.IsNotExist(err) {
			return &RestoreResult{}, nil
		}
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	var names []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		if _, _, ok := archive.ParseChunkName(ent.Name()); ok {
			names = append(names, ent.Name())
		}
	}
	archive.SortDescending(names)

	r := &restorer{
		agent: a,
		dc: &archive.DecodeContext{
			Subs:    a.subs,
			Threads: identity.NewThreadResolver(a.stores.Threads),
		},
		res: &RestoreResult{},
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(a.cfg.ArchiveDir, name)
		if err := r.restoreFile(ctx, path); err != nil {
			logging.Warn().Err(err).Str("chunk", name).Msg("Skipping unreadable chunk file")
			r.res.FilesSkipped++
			metrics.RecordRestoreFileSkipped()
			continue
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to remove restored chunk %s: %w", name, err)
		}
		r.res.Files++
	}
	return r.res, nil
}

// restoreFile applies every entry of one chunk file. Any open or decode
// error aborts the file; rows already applied stay applied and the file
// is left for a later pass.
func (r *restorer) restoreFile(ctx context.Context, path string) error {
	_, kind, _ := archive.ParseChunkName(filepath.Base(path))

	cr, err := archive.OpenChunk(path, r.agent.cfg.Compression)
	if err != nil {
		return err
	}
	defer cr.Close() //nolint:errcheck // read-only reader

	for cr.More() {
		raw, err := cr.Next()
		if err != nil {
			return err
		}
		switch kind {
		case archive.KindSms:
			err = r.applySms(ctx, raw)
		case archive.KindMms:
			err = r.applyMms(ctx, raw)
		}
		if err != nil {
			return err
		}
	}

	// The batch must land before the file is deleted.
	if kind == archive.KindSms {
		return r.flushSmsBatch(ctx)
	}
	return nil
}

// applySms decodes and stages one short message, skipping duplicates.
// The dedup key is the exact (date, body) pair.
func (r *restorer) applySms(ctx context.Context, raw map[string]json.RawMessage) error {
	sms, err := archive.DecodeSms(ctx, r.dc, raw)
	if err != nil {
		return err
	}

	body := ""
	if sms.Body != nil {
		body = *sms.Body
	}
	exists, err := r.agent.stores.Sms.Exists(ctx, sms.Date, body)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate short message: %w", err)
	}
	if exists {
		r.res.SmsSkipped++
		metrics.RecordRecordsSkipped(string(archive.KindSms), 1)
		return nil
	}

	// The bulk insert batch is bounded by the same limit as chunk
	// production, so a full chunk flushes at most once mid-file.
	r.smsBatch = append(r.smsBatch, sms)
	if len(r.smsBatch) >= r.agent.cfg.MaxRecordsPerChunk {
		return r.flushSmsBatch(ctx)
	}
	return nil
}

func (r *restorer) flushSmsBatch(ctx context.Context) error {
	if len(r.smsBatch) == 0 {
		return nil
	}
	n, err := r.agent.stores.Sms.BulkInsert(ctx, r.smsBatch)
	if err != nil {
		return fmt.Errorf("failed to bulk insert short messages: %w", err)
	}
	r.res.SmsRestored += int(n)
	metrics.RecordRecordsRestored(string(archive.KindSms), int(n))
	r.smsBatch = r.smsBatch[:0]
	return nil
}

// applyMms decodes and reconstructs one multimedia message. Bodyless
// entries are dropped; duplicates (same date, same body text and
// charset) are skipped. Reconstruction failures drop the one message
// and the cycle continues.
func (r *restorer) applyMms(ctx context.Context, raw map[string]json.RawMessage) error {
	mms, err := archive.DecodeMms(ctx, r.dc, raw)
	if err != nil {
		return err
	}

	if mms.Body == nil {
		r.res.MmsDropped++
		metrics.RecordMessagesDropped(1)
		return nil
	}

	dup, err := r.mmsExists(ctx, mms)
	if err != nil {
		return err
	}
	if dup {
		r.res.MmsSkipped++
		metrics.RecordRecordsSkipped(string(archive.KindMms), 1)
		return nil
	}

	if err := r.insertMms(ctx, mms); err != nil {
		logging.Warn().Err(err).Int64("date", mms.Date).Msg("Dropping multimedia message that failed to restore")
		r.res.MmsDropped++
		metrics.RecordMessagesDropped(1)
		return nil
	}
	r.res.MmsRestored++
	metrics.RecordRecordsRestored(string(archive.KindMms), 1)
	return nil
}

// mmsExists checks for an existing message with the same date and the
// same assembled body text and charset.
func (r *restorer) mmsExists(ctx context.Context, mms *telephony.Mms) (bool, error) {
	ids, err := r.agent.stores.Mms.IDsByDate(ctx, mms.Date)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate multimedia message: %w", err)
	}
	for _, id := range ids {
		body, err := r.agent.stores.Mms.Body(ctx, id)
		if err != nil {
			return false, fmt.Errorf("failed to assemble body of message %d: %w", id, err)
		}
		if body == nil {
			continue
		}
		if body.Text == mms.Body.Text && body.Charset == mms.Body.Charset {
			return true, nil
		}
	}
	return false, nil
}

// insertMms reconstructs the full message: the synthetic SMIL layout
// part and the text part first, then the main row, then the parts are
// pointed at the assigned identifier, then the address rows. A failed
// address row is logged and skipped; everything earlier is fatal for
// this one message.
func (r *restorer) insertMms(ctx context.Context, mms *telephony.Mms) error {
	smilID, err := r.agent.stores.Mms.InsertPart(ctx, telephony.SmilPart(telephony.TextPartName))
	if err != nil {
		return fmt.Errorf("failed to insert layout part: %w", err)
	}
	textID, err := r.agent.stores.Mms.InsertPart(ctx, telephony.TextPart(telephony.TextPartName, mms.Body))
	if err != nil {
		return fmt.Errorf("failed to insert text part: %w", err)
	}

	mmsID, err := r.agent.stores.Mms.Insert(ctx, mms)
	if err != nil {
		return fmt.Errorf("failed to insert message row: %w", err)
	}
	if err := r.agent.stores.Mms.ReassignParts(ctx, []int64{smilID, textID}, mmsID); err != nil {
		return fmt.Errorf("failed to attach parts to message %d: %w", mmsID, err)
	}

	for _, addr := range mms.Addresses {
		if err := r.agent.stores.Mms.InsertAddress(ctx, mmsID, addr); err != nil {
			logging.Warn().Err(err).Int64("mms_id", mmsID).Str("address", addr.Address).Msg("Failed to insert address row")
		}
	}
	return nil
}
