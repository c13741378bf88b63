// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Apply every archived chunk back into the datastore",
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

		result, err := a.agent.Restore(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("restore complete: %d files (%d skipped), sms %d restored / %d skipped, mms %d restored / %d skipped / %d dropped in %s\n",
			result.Files, result.FilesSkipped,
			result.SmsRestored, result.SmsSkipped,
			result.MmsRestored, result.MmsSkipped, result.MmsDropped,
			result.Duration.Round(0))
		return nil
	},
}
