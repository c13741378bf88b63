// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package sqlite

import (
	"context"
	"fmt"

	"github.com/tomtom215/telebackup/internal/telephony"
)

// ActiveLines lists the registered lines used to build the identity maps.
func (db *DB) ActiveLines(ctx context.Context) ([]telephony.LineRegistration, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT sub_id, number, country_iso FROM line_registrations ORDER BY sub_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query line registrations: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	var lines []telephony.LineRegistration
	for rows.Next() {
		var l telephony.LineRegistration
		if err := rows.Scan(&l.SubID, &l.Number, &l.CountryISO); err != nil {
			return nil, fmt.Errorf("failed to scan line registration: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// RegisterLine upserts a line registration. Used by the CLI to seed the
// identity maps on hosts without a subscription source.
func (db *DB) RegisterLine(ctx context.Context, l telephony.LineRegistration) error {
	if _, err := db.conn.ExecContext(ctx, `
		INSERT INTO line_registrations (sub_id, number, country_iso)
		VALUES (?, ?, ?)
		ON CONFLICT(sub_id) DO UPDATE SET number = excluded.number,
		                                  country_iso = excluded.country_iso`,
		l.SubID, l.Number, l.CountryISO); err != nil {
		return fmt.Errorf("failed to register line: %w", err)
	}
	return nil
}
