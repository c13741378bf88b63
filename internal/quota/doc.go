// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

// Package quota tracks remote storage quota pressure across backup
// cycles. When the remote side reports a quota excess, the tracker
// persists the reported sizes and withholds an estimated prefix of the
// next cycle's output until the overage is worked off or the thirty day
// deadline expires.
package quota
