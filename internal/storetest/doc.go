// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

// Package storetest provides in-memory implementations of the store
// interfaces for tests. The fakes preserve the ordering and dedup
// contracts of the sqlite implementation without touching disk.
package storetest
