// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tomtom215/telebackup/internal/store"
)

// RecipientIDs returns the space-separated list of canonical recipient
// ids stored for a thread.
func (db *DB) RecipientIDs(ctx context.Context, threadID int64) (string, error) {
	var ids string
	row := db.conn.QueryRowContext(ctx,
		`SELECT recipient_ids FROM threads WHERE _id = ?`, threadID)
	if err := row.Scan(&ids); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("failed to query thread %d: %w", threadID, err)
	}
	return ids, nil
}

// CanonicalAddress resolves one canonical recipient id to its address.
func (db *DB) CanonicalAddress(ctx context.Context, id int64) (string, bool, error) {
	var address string
	row := db.conn.QueryRowContext(ctx,
		`SELECT address FROM canonical_addresses WHERE _id = ?`, id)
	if err := row.Scan(&address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to query canonical address %d: %w", id, err)
	}
	return address, true, nil
}

// GetOrCreateThread returns the thread grouping the given recipient set,
// creating canonical address and thread rows as needed. The recipient id
// list is stored sorted so the same set always maps to the same row.
func (db *DB) GetOrCreateThread(ctx context.Context, recipients []string) (int64, error) {
	ids := make([]int64, 0, len(recipients))
	for _, addr := range recipients {
		id, err := db.getOrCreateCanonicalAddress(ctx, addr)
		if err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	key := strings.Join(parts, " ")

	var threadID int64
	row := db.conn.QueryRowContext(ctx,
		`SELECT _id FROM threads WHERE recipient_ids = ?`, key)
	err := row.Scan(&threadID)
	if err == nil {
		return threadID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query thread by recipients: %w", err)
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO threads (recipient_ids) VALUES (?)`, key)
	if err != nil {
		return 0, fmt.Errorf("failed to create thread: %w", err)
	}
	return res.LastInsertId()
}

// getOrCreateCanonicalAddress maps an address to its canonical id,
// inserting a new row on first sight.
func (db *DB) getOrCreateCanonicalAddress(ctx context.Context, address string) (int64, error) {
	var id int64
	row := db.conn.QueryRowContext(ctx,
		`SELECT _id FROM canonical_addresses WHERE address = ?`, address)
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query canonical address: %w", err)
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO canonical_addresses (address) VALUES (?)`, address)
	if err != nil {
		return 0, fmt.Errorf("failed to create canonical address: %w", err)
	}
	return res.LastInsertId()
}
