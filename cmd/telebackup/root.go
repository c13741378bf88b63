// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package main

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"

	"github.com/tomtom215/telebackup/internal/archive"
	"github.com/tomtom215/telebackup/internal/backup"
	"github.com/tomtom215/telebackup/internal/config"
	"github.com/tomtom215/telebackup/internal/logging"
	"github.com/tomtom215/telebackup/internal/quota"
	"github.com/tomtom215/telebackup/internal/store/sqlite"
)

var rootCmd = &cobra.Command{
	Use:           "telebackup",
	Short:         "Quota-bounded SMS/MMS backup and restore",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(serveCmd, backupCmd, restoreCmd, quotaCmd, versionCmd)
}

// loadConfig loads the layered configuration and initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	return cfg, nil
}

// app bundles the wired application resources for one command run.
type app struct {
	cfg     *config.Config
	db      *sqlite.DB
	quotaDB *badger.DB
	agent   *backup.Agent
}

// newApp opens the datastore and quota store and wires the agent.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open datastore: %w", err)
	}

	quotaDB, err := badger.Open(badger.DefaultOptions(cfg.Quota.StorePath).WithLogger(nil))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open quota store: %w", err)
	}
	tracker := quota.NewTracker(quota.NewBadgerStore(quotaDB))

	transport, err := backup.NewDirTransport(cfg.Backup.ArchiveDir)
	if err != nil {
		quotaDB.Close()
		db.Close()
		return nil, err
	}

	agent, err := backup.NewAgent(ctx, backup.Config{
		Enabled:            cfg.Backup.Enabled,
		StagingDir:         cfg.Backup.StagingDir,
		ArchiveDir:         cfg.Backup.ArchiveDir,
		MaxRecordsPerChunk: cfg.Backup.MaxRecordsPerChunk,
		Compression:        archive.Compression(cfg.Backup.Compression),
		Schedule: backup.ScheduleConfig{
			Enabled:  cfg.Backup.ScheduleEnabled,
			Interval: cfg.Backup.Interval,
		},
	}, backup.Stores{
		Sms:     db,
		Mms:     db,
		Threads: db,
		Lines:   db,
	}, tracker, transport)
	if err != nil {
		quotaDB.Close()
		db.Close()
		return nil, err
	}

	return &app{cfg: cfg, db: db, quotaDB: quotaDB, agent: agent}, nil
}

// Close releases the application resources.
func (a *app) Close() {
	if err := a.quotaDB.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close quota store")
	}
	if err := a.db.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close datastore")
	}
}
