// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package backup

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/telebackup/internal/archive"
)

func validConfig() Config {
	return Config{
		Enabled:            true,
		StagingDir:         "/var/lib/telebackup/staging",
		ArchiveDir:         "/var/lib/telebackup/archive",
		MaxRecordsPerChunk: 1000,
		Compression:        archive.CompressionZlib,
		Schedule:           ScheduleConfig{Enabled: true, Interval: 24 * time.Hour},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing staging", func(c *Config) { c.StagingDir = "" }, "staging directory is required"},
		{"relative staging", func(c *Config) { c.StagingDir = "staging" }, "absolute path"},
		{"missing archive", func(c *Config) { c.ArchiveDir = "" }, "archive directory is required"},
		{"relative archive", func(c *Config) { c.ArchiveDir = "archive" }, "absolute path"},
		{"same directories", func(c *Config) { c.ArchiveDir = c.StagingDir }, "must differ"},
		{"zero chunk size", func(c *Config) { c.MaxRecordsPerChunk = 0 }, "at least 1"},
		{"bad compression", func(c *Config) { c.Compression = "lz4" }, "unknown compression"},
		{"short interval", func(c *Config) { c.Schedule.Interval = time.Second }, "at least 1 minute"},
		{"short interval unscheduled ok", func(c *Config) {
			c.Schedule.Enabled = false
			c.Schedule.Interval = time.Second
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{StagingDir: "/s", ArchiveDir: "/a"}
	cfg.ApplyDefaults()

	if cfg.MaxRecordsPerChunk != archive.MaxChunkRecords {
		t.Errorf("MaxRecordsPerChunk = %d, want %d", cfg.MaxRecordsPerChunk, archive.MaxChunkRecords)
	}
	if cfg.Compression != archive.CompressionZlib {
		t.Errorf("Compression = %s, want zlib", cfg.Compression)
	}
	if cfg.Schedule.Interval != 24*time.Hour {
		t.Errorf("Interval = %s, want 24h", cfg.Schedule.Interval)
	}
}
