// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/telebackup/internal/api"
	"github.com/tomtom215/telebackup/internal/backup"
	"github.com/tomtom215/telebackup/internal/logging"
	"github.com/tomtom215/telebackup/internal/supervisor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backup scheduler and admin HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

		if cfg.Backup.Enabled && cfg.Backup.ScheduleEnabled {
			tree.AddBackupService(backup.NewScheduler(a.agent))
		} else {
			logging.Info().Msg("Backup scheduler disabled")
		}

		router := api.NewRouter(api.NewHandler(a.agent, version), api.RouterConfig{
			CORSOrigins:     cfg.API.CORSOrigins,
			RateLimitReqs:   cfg.API.RateLimitReqs,
			RateLimitWindow: cfg.API.RateLimitWindow,
			Timeout:         cfg.Server.Timeout,
		})
		server := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: cfg.Server.Timeout,
		}
		tree.AddAPIService(supervisor.NewHTTPService(server, supervisor.DefaultTreeConfig().ShutdownTimeout))

		logging.Info().
			Str("addr", server.Addr).
			Str("version", version).
			Msg("Telebackup starting")

		err = tree.Serve(ctx)
		if err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}
