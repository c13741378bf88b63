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

	"github.com/tomtom215/telebackup/internal/archive"
	"github.com/tomtom215/telebackup/internal/identity"
	"github.com/tomtom215/telebackup/internal/logging"
	"github.com/tomtom215/telebackup/internal/metrics"
	"github.com/tomtom215/telebackup/internal/store"
	"github.com/tomtom215/telebackup/internal/telephony"
)

// smsPeek wraps a cursor with one-row lookahead for the merge loop.
type smsPeek struct {
	cur  store.SmsCursor
	head *telephony.Sms
}

func newSmsPeek(cur store.SmsCursor) *smsPeek {
	p := &smsPeek{cur: cur}
	p.advance()
	return p
}

func (p *smsPeek) advance() {
	if row, ok := p.cur.Next(); ok {
		p.head = row
	} else {
		p.head = nil
	}
}

type mmsPeek struct {
	cur  store.MmsCursor
	head *telephony.Mms
}

func newMmsPeek(cur store.MmsCursor) *mmsPeek {
	p := &mmsPeek{cur: cur}
	p.advance()
	return p
}

func (p *mmsPeek) advance() {
	if row, ok := p.cur.Next(); ok {
		p.head = row
	} else {
		p.head = nil
	}
}

// exporter carries the state of one export cycle.
type exporter struct {
	agent    *Agent
	resolver *identity.ThreadResolver
	res      *BackupResult
}

// export walks both stores in ascending date order and merges them into
// a single chunk sequence. While both cursors are live, the older head
// picks the kind; short message dates are milliseconds and are scaled to
// seconds for the comparison, with ties going to the multimedia side.
// The chosen kind fills a whole chunk before the heads are compared
// again. Sequence numbers are consumed even for chunks that end up
// empty or withheld, so gaps in the archive are normal.
func (a *Agent) export(ctx context.Context, cycleID string) (*BackupResult, error) {
	if err := os.MkdirAll(a.cfg.StagingDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	budget, err := a.tracker.BeginCycle()
	if err != nil {
		return nil, fmt.Errorf("failed to load quota state: %w", err)
	}
	if budget > 0 {
		logging.Info().Str("cycle_id", cycleID).Int64("withhold_bytes", budget).Msg("Cycle starts under quota pressure")
	}

	smsCur, err := a.stores.Sms.QueryByDateAscending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query short messages: %w", err)
	}
	defer smsCur.Close() //nolint:errcheck // read-only cursor

	mmsCur, err := a.stores.Mms.QueryTextOnlyByDateAscending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query multimedia messages: %w", err)
	}
	defer mmsCur.Close() //nolint:errcheck // read-only cursor

	e := &exporter{
		agent:    a,
		resolver: identity.NewThreadResolver(a.stores.Threads),
		res:      &BackupResult{},
	}

	sms := newSmsPeek(smsCur)
	mms := newMmsPeek(mmsCur)

	seq := 0
	for sms.head != nil && mms.head != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sms.head.Date/1000 < mms.head.Date {
			err = e.writeSmsChunk(ctx, seq, sms)
		} else {
			err = e.writeMmsChunk(ctx, seq, mms)
		}
		if err != nil {
			return nil, err
		}
		seq++
	}
	for sms.head != nil {
		if err := e.writeSmsChunk(ctx, seq, sms); err != nil {
			return nil, err
		}
		seq++
	}
	for mms.head != nil {
		if err := e.writeMmsChunk(ctx, seq, mms); err != nil {
			return nil, err
		}
		seq++
	}

	if err := smsCur.Err(); err != nil {
		return nil, fmt.Errorf("short message cursor failed: %w", err)
	}
	if err := mmsCur.Err(); err != nil {
		return nil, fmt.Errorf("multimedia message cursor failed: %w", err)
	}
	return e.res, nil
}

// writeSmsChunk drains up to one chunk's worth of short messages.
func (e *exporter) writeSmsChunk(ctx context.Context, seq int, src *smsPeek) error {
	path := filepath.Join(e.agent.cfg.StagingDir, archive.ChunkName(seq, archive.KindSms))
	w, err := archive.NewChunkWriter(path, e.agent.cfg.Compression)
	if err != nil {
		return err
	}

	for src.head != nil && w.Entries() < e.agent.cfg.MaxRecordsPerChunk {
		s := src.head
		selfPhone, _ := e.agent.subs.PhoneForSubscription(s.SubID)
		recipients := e.resolver.RecipientsForThread(ctx, s.ThreadID)
		if err := archive.AppendSms(w, s, selfPhone, recipients); err != nil {
			e.discard(w)
			return err
		}
		e.res.SmsEntries++
		src.advance()
	}
	return e.finishChunk(ctx, w, archive.KindSms)
}

// writeMmsChunk drains up to one chunk's worth of multimedia messages.
// Messages without a text body are consumed without being written; a
// chunk can therefore end up empty, which still consumes its sequence
// number.
func (e *exporter) writeMmsChunk(ctx context.Context, seq int, src *mmsPeek) error {
	path := filepath.Join(e.agent.cfg.StagingDir, archive.ChunkName(seq, archive.KindMms))
	w, err := archive.NewChunkWriter(path, e.agent.cfg.Compression)
	if err != nil {
		return err
	}

	for src.head != nil && w.Entries() < e.agent.cfg.MaxRecordsPerChunk {
		m := src.head

		body, err := e.agent.stores.Mms.Body(ctx, m.ID)
		if err != nil {
			e.discard(w)
			return fmt.Errorf("failed to assemble body of message %d: %w", m.ID, err)
		}
		m.Body = body

		if m.Body != nil {
			m.Addresses, err = e.agent.stores.Mms.Addresses(ctx, m.ID)
			if err != nil {
				e.discard(w)
				return fmt.Errorf("failed to load addresses of message %d: %w", m.ID, err)
			}
		}

		selfPhone, _ := e.agent.subs.PhoneForSubscription(m.SubID)
		recipients := e.resolver.RecipientsForThread(ctx, m.ThreadID)
		written, err := archive.AppendMms(w, m, selfPhone, recipients)
		if err != nil {
			e.discard(w)
			return err
		}
		if written {
			e.res.MmsEntries++
		}
		src.advance()
	}
	return e.finishChunk(ctx, w, archive.KindMms)
}

// finishChunk closes the chunk and routes it: empty chunks are deleted,
// chunks under quota pressure are withheld, the rest are handed off.
func (e *exporter) finishChunk(ctx context.Context, w *archive.ChunkWriter, kind archive.Kind) error {
	entries := w.Entries()
	if err := w.Close(); err != nil {
		e.remove(w.Path())
		return fmt.Errorf("failed to finalize chunk: %w", err)
	}

	if entries == 0 {
		e.remove(w.Path())
		return nil
	}
	metrics.RecordChunkProduced(string(kind), entries)

	info, err := os.Stat(w.Path())
	if err != nil {
		e.remove(w.Path())
		return fmt.Errorf("failed to stat chunk: %w", err)
	}
	size := info.Size()

	if e.agent.tracker.ShouldWithhold(size) {
		e.remove(w.Path())
		e.res.ChunksWithheld++
		metrics.RecordChunkWithheld(string(kind))
		logging.Info().
			Str("chunk", filepath.Base(w.Path())).
			Int64("size", size).
			Msg("Withholding chunk under quota pressure")
		return nil
	}

	if err := e.agent.transport.Send(ctx, w.Path()); err != nil {
		e.remove(w.Path())
		return err
	}
	e.res.Chunks++
	e.res.BytesSent += size
	metrics.RecordBytesHandedOff(size)
	return nil
}

// discard closes and deletes a chunk that failed mid-write.
func (e *exporter) discard(w *archive.ChunkWriter) {
	w.Close() //nolint:errcheck // Best effort cleanup on error
	e.remove(w.Path())
}

func (e *exporter) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn().Err(err).Str("path", path).Msg("Failed to remove staged chunk")
	}
}
