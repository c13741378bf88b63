// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

// Package backup implements the export and restore engine.
//
// # Export
//
// A backup cycle walks the short message and text-only multimedia
// message stores in parallel date order and merges them into a single
// sequence of chunk files, at most 1000 records each. Chunks are
// staged locally, then handed to a Transport; under quota pressure an
// estimated prefix of the cycle's output is withheld instead of sent.
//
// # Restore
//
// Restore scans the archive directory for chunk files and applies them
// newest first, both kinds intermixed. Each file is deleted only after
// every entry in it has been applied or skipped; unreadable files are
// left in place for a later pass. Records already present in the store
// are skipped, so restore is idempotent.
//
// # Concurrency
//
// An Agent runs one pass at a time. Backup and Restore serialize on the
// same mutex; the scheduler and the HTTP surface share one Agent.
package backup
