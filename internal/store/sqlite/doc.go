// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

/*
Package sqlite implements the store interfaces over a SQLite message
database using the pure-Go modernc.org/sqlite driver.

Schema mirrors the message provider layout: sms and mms main tables, the
part and addr sub-resource tables keyed by mms row id, a threads table
holding space-separated canonical recipient ids, the canonical_addresses
table, and line_registrations for the active lines.

Ordering guarantee: the export cursors use ORDER BY date ASC, _id ASC.
SQLite evaluates the ORDER BY over a stable snapshot of the single
connection's view, so rows arrive in non-decreasing date order for the
duration of the cursor. Text-only filtering for multimedia messages
happens in the cursor query (text_only = 1), not in application code.
*/
package sqlite
