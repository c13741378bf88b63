// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

// Command telebackup backs up SMS and text-only MMS records into
// chunked compressed archives and restores them back into the
// datastore, honoring remote storage quota notifications.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
