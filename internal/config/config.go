// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

// Package config loads layered configuration: built-in defaults, an
// optional YAML file, then environment variables, each layer overriding
// the previous one.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/tomtom215/telebackup/internal/archive"
)

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Backup   BackupConfig   `koanf:"backup"`
	Quota    QuotaConfig    `koanf:"quota"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig locates the message datastore.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// BackupConfig configures the export engine.
type BackupConfig struct {
	Enabled            bool          `koanf:"enabled"`
	StagingDir         string        `koanf:"staging_dir"`
	ArchiveDir         string        `koanf:"archive_dir"`
	MaxRecordsPerChunk int           `koanf:"max_records_per_chunk"`
	Compression        string        `koanf:"compression"`
	ScheduleEnabled    bool          `koanf:"schedule_enabled"`
	Interval           time.Duration `koanf:"interval"`
}

// QuotaConfig locates the persistent quota state.
type QuotaConfig struct {
	StorePath string `koanf:"store_path"`
}

// ServerConfig configures the admin HTTP server.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// APIConfig configures the API middleware.
type APIConfig struct {
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before file and
// environment layers.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "/data/telebackup.db",
		},
		Backup: BackupConfig{
			Enabled:            true,
			StagingDir:         "/data/staging",
			ArchiveDir:         "/data/archive",
			MaxRecordsPerChunk: archive.MaxChunkRecords,
			Compression:        string(archive.CompressionZlib),
			ScheduleEnabled:    true,
			Interval:           24 * time.Hour,
		},
		Quota: QuotaConfig{
			StorePath: "/data/quota",
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8480,
			Timeout: 30 * time.Second,
		},
		API: APIConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Backup.StagingDir == "" || !filepath.IsAbs(c.Backup.StagingDir) {
		return fmt.Errorf("backup staging_dir must be an absolute path, got: %q", c.Backup.StagingDir)
	}
	if c.Backup.ArchiveDir == "" || !filepath.IsAbs(c.Backup.ArchiveDir) {
		return fmt.Errorf("backup archive_dir must be an absolute path, got: %q", c.Backup.ArchiveDir)
	}
	if c.Backup.MaxRecordsPerChunk < 1 {
		return fmt.Errorf("backup max_records_per_chunk must be at least 1, got: %d", c.Backup.MaxRecordsPerChunk)
	}
	if err := archive.Compression(c.Backup.Compression).Validate(); err != nil {
		return err
	}
	if c.Backup.ScheduleEnabled && c.Backup.Interval < time.Minute {
		return fmt.Errorf("backup interval must be at least 1 minute, got: %s", c.Backup.Interval)
	}
	if c.Quota.StorePath == "" {
		return fmt.Errorf("quota store_path is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got: %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive, got: %s", c.Server.Timeout)
	}
	if c.API.RateLimitReqs < 1 {
		return fmt.Errorf("api rate_limit_reqs must be at least 1, got: %d", c.API.RateLimitReqs)
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api rate_limit_window must be positive, got: %s", c.API.RateLimitWindow)
	}
	return nil
}
