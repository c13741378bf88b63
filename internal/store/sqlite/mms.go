// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/telebackup/internal/metrics"
	"github.com/tomtom215/telebackup/internal/store"
	"github.com/tomtom215/telebackup/internal/telephony"
)

// mmsCursor adapts sql.Rows to the typed store.MmsCursor contract.
type mmsCursor struct {
	rows *sql.Rows
	err  error
}

func (c *mmsCursor) Next() (*telephony.Mms, bool) {
	if c.err != nil || !c.rows.Next() {
		if c.err == nil {
			c.err = c.rows.Err()
		}
		return nil, false
	}

	var (
		m        telephony.Mms
		sub, ctl sql.NullString
		subCs    sql.NullInt64
	)
	if err := c.rows.Scan(&m.ID, &m.ThreadID, &m.SubID, &sub, &subCs,
		&m.Date, &m.DateSent, &m.MessageType, &m.Version, &m.MessageBox,
		&ctl, &m.Read, &m.Seen, &m.TextOnly); err != nil {
		c.err = fmt.Errorf("failed to scan mms row: %w", err)
		return nil, false
	}
	m.Subject = optStr(sub)
	if subCs.Valid {
		m.SubjectCharset = int(subCs.Int64)
	}
	m.ContentLocation = optStr(ctl)
	return &m, true
}

func (c *mmsCursor) Err() error {
	return c.err
}

func (c *mmsCursor) Close() error {
	return c.rows.Close()
}

// QueryTextOnlyByDateAscending opens a cursor over text-only multimedia
// messages sorted ascending by date. The text_only filter is part of the
// query; messages with binary payloads never reach the exporter.
func (db *DB) QueryTextOnlyByDateAscending(ctx context.Context) (store.MmsCursor, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT _id, thread_id, sub_id, sub, sub_cs,
		       date, date_sent, m_type, v, msg_box,
		       ct_l, read, seen, text_only
		FROM mms
		WHERE text_only = 1
		ORDER BY date ASC, _id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mms: %w", err)
	}
	return &mmsCursor{rows: rows}, nil
}

// IDsByDate returns the identifiers of all multimedia messages with the
// given date (second epoch).
func (db *DB) IDsByDate(ctx context.Context, date int64) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT _id FROM mms WHERE date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query mms by date: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan mms id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Body assembles the text body of a message: the text of every text/plain
// part concatenated in part insertion order, with the charset of the last
// contributing part. Returns (nil, nil) for a message with no text part.
func (db *DB) Body(ctx context.Context, id int64) (*telephony.MmsBody, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT text, chset FROM part
		WHERE mid = ? AND ct = ?
		ORDER BY _id ASC`, id, telephony.ContentTypeText)
	if err != nil {
		return nil, fmt.Errorf("failed to query mms parts: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	var (
		sb      strings.Builder
		charset int
		found   bool
	)
	for rows.Next() {
		var (
			text  sql.NullString
			chset sql.NullInt64
		)
		if err := rows.Scan(&text, &chset); err != nil {
			return nil, fmt.Errorf("failed to scan mms part: %w", err)
		}
		found = true
		if text.Valid {
			sb.WriteString(text.String)
		}
		if chset.Valid {
			charset = int(chset.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &telephony.MmsBody{Text: sb.String(), Charset: charset}, nil
}

// Addresses returns the ordered address rows of a message. Rows with an
// empty address are dropped here, matching the export retention rule.
func (db *DB) Addresses(ctx context.Context, id int64) ([]telephony.MmsAddress, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT type, address, charset FROM addr
		WHERE msg_id = ?
		ORDER BY _id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query mms addresses: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	var addrs []telephony.MmsAddress
	for rows.Next() {
		var (
			a       telephony.MmsAddress
			address sql.NullString
		)
		if err := rows.Scan(&a.Type, &address, &a.Charset); err != nil {
			return nil, fmt.Errorf("failed to scan mms address: %w", err)
		}
		if !address.Valid || address.String == "" {
			continue
		}
		a.Address = address.String
		addrs = append(addrs, a)
	}
	return addrs, rows.Err()
}

// Insert inserts the main multimedia record and returns its assigned id.
func (db *DB) Insert(ctx context.Context, m *telephony.Mms) (int64, error) {
	start := time.Now()
	var subCs any
	if m.Subject != nil {
		subCs = m.SubjectCharset
	}
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO mms (thread_id, sub_id, sub, sub_cs,
		                 date, date_sent, m_type, v, msg_box,
		                 ct_l, read, seen, text_only)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ThreadID, m.SubID, argStr(m.Subject), subCs,
		m.Date, m.DateSent, m.MessageType, m.Version, m.MessageBox,
		argStr(m.ContentLocation), m.Read, m.Seen, m.TextOnly)
	metrics.RecordStoreQuery("insert", "mms", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to insert mms: %w", err)
	}
	return res.LastInsertId()
}

// InsertPart inserts one part row and returns its identifier. The part
// may be inserted before its owning record exists (mid 0); ReassignParts
// fixes up the reference afterwards.
func (db *DB) InsertPart(ctx context.Context, p *telephony.MmsPart) (int64, error) {
	var chset any
	if p.Charset != nil {
		chset = *p.Charset
	}
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO part (mid, seq, ct, name, chset, cid, cl, text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.MmsID, p.Seq, p.ContentType, p.Name, chset,
		p.ContentID, p.ContentLocation, p.Text)
	if err != nil {
		return 0, fmt.Errorf("failed to insert mms part: %w", err)
	}
	return res.LastInsertId()
}

// ReassignParts points previously inserted parts at the record identifier
// assigned by Insert.
func (db *DB) ReassignParts(ctx context.Context, partIDs []int64, mmsID int64) error {
	if len(partIDs) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(partIDs)), ",")
	args := make([]any, 0, len(partIDs)+1)
	args = append(args, mmsID)
	for _, id := range partIDs {
		args = append(args, id)
	}
	//nolint:gosec // G202: placeholders is built from a fixed pattern
	query := `UPDATE part SET mid = ? WHERE _id IN (` + placeholders + `)`
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to reassign mms parts: %w", err)
	}
	return nil
}

// InsertAddress ties one address row to a restored record.
func (db *DB) InsertAddress(ctx context.Context, mmsID int64, a telephony.MmsAddress) error {
	if _, err := db.conn.ExecContext(ctx, `
		INSERT INTO addr (msg_id, type, address, charset)
		VALUES (?, ?, ?, ?)`,
		mmsID, a.Type, a.Address, a.Charset); err != nil {
		return fmt.Errorf("failed to insert mms address: %w", err)
	}
	return nil
}
