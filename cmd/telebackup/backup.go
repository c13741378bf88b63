// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run one backup cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.agent.Backup(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("backup complete: %d sms, %d mms, %d chunks (%d withheld), %d bytes sent in %s\n",
			result.SmsEntries, result.MmsEntries, result.Chunks,
			result.ChunksWithheld, result.BytesSent, result.Duration.Round(0))
		return nil
	},
}
