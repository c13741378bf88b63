// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

/*
Package store defines the abstract datastore consumed by the backup agent.

The agent never talks to a database directly; it pulls rows through the
cursor and store interfaces declared here. The concrete SQLite
implementation lives in store/sqlite, and an in-memory implementation for
tests lives in storetest.

Cursors are pull-based finite sequences of typed rows with explicit
end-of-sequence signaling: Next returns (row, true) until the sequence is
exhausted, then (nil, false). After exhaustion Err reports any underlying
iteration error. Cursors are single forward passes; restartability is not
required or provided.

Both cursors MUST return rows in ascending order of their logical
timestamp (sms.date in milliseconds, mms.date in seconds). The merge
performed by the exporter depends on this ordering; implementations
document how they guarantee it.
*/
package store
