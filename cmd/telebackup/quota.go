// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/telebackup/internal/quota"
	"github.com/tomtom215/telebackup/internal/telephony"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Inspect and manage persisted quota state",
}

var quotaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current quota state",
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

		state, err := a.agent.Tracker().Current()
		if err != nil {
			return err
		}
		if state == nil {
			fmt.Println("no quota state recorded")
			return nil
		}
		fmt.Print(formatQuotaState(state))
		return nil
	},
}

// formatQuotaState renders the persisted state for quota show. ResetAt
// is a millisecond epoch.
func formatQuotaState(state *quota.State) string {
	return fmt.Sprintf("backup bytes: %d\nquota bytes:  %d\nresets at:    %s\n",
		state.BackupBytes, state.QuotaBytes,
		time.UnixMilli(state.ResetAt).UTC().Format(time.RFC3339))
}

var quotaClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the persisted quota state",
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

		if err := a.agent.Tracker().Clear(); err != nil {
			return err
		}
		fmt.Println("quota state cleared")
		return nil
	},
}

var (
	notifyBackupBytes int64
	notifyQuotaBytes  int64
)

var quotaNotifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Record a quota-exceeded notification",
	RunE: func(cmd *cobra.Command, args []string) error {
		if notifyBackupBytes <= 0 || notifyQuotaBytes <= 0 {
			return fmt.Errorf("--backup-bytes and --quota-bytes must be positive")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.agent.OnQuotaExceeded(notifyBackupBytes, notifyQuotaBytes); err != nil {
			return err
		}
		fmt.Println("quota notification recorded")
		return nil
	},
}

var (
	lineSubID      int64
	lineNumber     string
	lineCountryISO string
)

var registerLineCmd = &cobra.Command{
	Use:   "register-line",
	Short: "Register a subscription line for self-phone resolution",
	RunE: func(cmd *cobra.Command, args []string) error {
		if lineNumber == "" || lineCountryISO == "" {
			return fmt.Errorf("--number and --country are required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.db.RegisterLine(cmd.Context(), telephony.LineRegistration{
			SubID:      lineSubID,
			Number:     lineNumber,
			CountryISO: lineCountryISO,
		})
		if err != nil {
			return err
		}
		fmt.Printf("line registered: sub %d -> %s (%s)\n", lineSubID, lineNumber, lineCountryISO)
		return nil
	},
}

func init() {
	quotaNotifyCmd.Flags().Int64Var(&notifyBackupBytes, "backup-bytes", 0, "size of the rejected backup in bytes")
	quotaNotifyCmd.Flags().Int64Var(&notifyQuotaBytes, "quota-bytes", 0, "remote quota in bytes")

	registerLineCmd.Flags().Int64Var(&lineSubID, "sub-id", -1, "subscription id of the line")
	registerLineCmd.Flags().StringVar(&lineNumber, "number", "", "phone number of the line")
	registerLineCmd.Flags().StringVar(&lineCountryISO, "country", "", "ISO country code of the line")

	quotaCmd.AddCommand(quotaShowCmd, quotaClearCmd, quotaNotifyCmd)
	rootCmd.AddCommand(registerLineCmd)
}
