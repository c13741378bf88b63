// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/telebackup/internal/metrics"
	"github.com/tomtom215/telebackup/internal/store"
	"github.com/tomtom215/telebackup/internal/telephony"
)

// smsCursor adapts sql.Rows to the typed store.SmsCursor contract.
type smsCursor struct {
	rows *sql.Rows
	err  error
}

func (c *smsCursor) Next() (*telephony.Sms, bool) {
	if c.err != nil || !c.rows.Next() {
		if c.err == nil {
			c.err = c.rows.Err()
		}
		return nil, false
	}

	var (
		s                      telephony.Sms
		address, body, subject sql.NullString
	)
	if err := c.rows.Scan(&s.ID, &s.ThreadID, &s.SubID, &address, &body, &subject,
		&s.Date, &s.DateSent, &s.Status, &s.Type, &s.Read, &s.Seen); err != nil {
		c.err = fmt.Errorf("failed to scan sms row: %w", err)
		return nil, false
	}
	s.Address = optStr(address)
	s.Body = optStr(body)
	s.Subject = optStr(subject)
	return &s, true
}

func (c *smsCursor) Err() error {
	return c.err
}

func (c *smsCursor) Close() error {
	return c.rows.Close()
}

// QueryByDateAscending opens a cursor over all short messages sorted
// ascending by date. The secondary _id sort keeps same-date rows stable.
func (db *DB) QueryByDateAscending(ctx context.Context) (store.SmsCursor, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT _id, thread_id, sub_id, address, body, subject,
		       date, date_sent, status, type, read, seen
		FROM sms
		ORDER BY date ASC, _id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sms: %w", err)
	}
	return &smsCursor{rows: rows}, nil
}

// Exists reports whether a short message with exactly this (date, body)
// pair is present. The dedup key deliberately ignores sender and thread.
func (db *DB) Exists(ctx context.Context, date int64, body string) (bool, error) {
	var n int
	row := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sms WHERE date = ? AND body = ?`, date, body)
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check sms existence: %w", err)
	}
	return n > 0, nil
}

// BulkInsert applies a batch of restored short messages in one
// transaction and returns the number of rows inserted.
func (db *DB) BulkInsert(ctx context.Context, batch []*telephony.Sms) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin bulk insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sms (thread_id, sub_id, address, body, subject,
		                 date, date_sent, status, type, read, seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare bulk insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // Best effort cleanup

	var inserted int64
	for _, s := range batch {
		if _, err := stmt.ExecContext(ctx, s.ThreadID, s.SubID,
			argStr(s.Address), argStr(s.Body), argStr(s.Subject),
			s.Date, s.DateSent, s.Status, s.Type, s.Read, s.Seen); err != nil {
			return 0, fmt.Errorf("failed to insert sms: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit bulk insert: %w", err)
	}

	metrics.RecordStoreQuery("bulk_insert", "sms", time.Since(start), nil)
	return inserted, nil
}
