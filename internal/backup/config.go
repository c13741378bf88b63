// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package backup

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/tomtom215/telebackup/internal/archive"
)

// Config holds the backup engine configuration.
type Config struct {
	// Enabled gates the scheduler. Manual backup and restore operations
	// run regardless.
	Enabled bool

	// StagingDir is where chunks are written before handoff.
	StagingDir string

	// ArchiveDir is where restore looks for chunk files. With the
	// directory transport this is also the handoff target.
	ArchiveDir string

	// MaxRecordsPerChunk caps entries per chunk file.
	MaxRecordsPerChunk int

	// Compression is the chunk byte transform. Backup and restore must
	// agree on it.
	Compression archive.Compression

	// Schedule configures the periodic backup runner.
	Schedule ScheduleConfig
}

// ScheduleConfig configures the periodic backup runner.
type ScheduleConfig struct {
	Enabled  bool
	Interval time.Duration
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxRecordsPerChunk == 0 {
		c.MaxRecordsPerChunk = archive.MaxChunkRecords
	}
	if c.Compression == "" {
		c.Compression = archive.CompressionZlib
	}
	if c.Schedule.Interval == 0 {
		c.Schedule.Interval = 24 * time.Hour
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.StagingDir == "" {
		return fmt.Errorf("staging directory is required")
	}
	if !filepath.IsAbs(c.StagingDir) {
		return fmt.Errorf("staging directory must be an absolute path, got: %s", c.StagingDir)
	}
	if c.ArchiveDir == "" {
		return fmt.Errorf("archive directory is required")
	}
	if !filepath.IsAbs(c.ArchiveDir) {
		return fmt.Errorf("archive directory must be an absolute path, got: %s", c.ArchiveDir)
	}
	if c.StagingDir == c.ArchiveDir {
		return fmt.Errorf("staging and archive directories must differ")
	}
	if c.MaxRecordsPerChunk < 1 {
		return fmt.Errorf("max records per chunk must be at least 1, got: %d", c.MaxRecordsPerChunk)
	}
	if err := c.Compression.Validate(); err != nil {
		return err
	}
	if c.Schedule.Enabled && c.Schedule.Interval < time.Minute {
		return fmt.Errorf("schedule interval must be at least 1 minute, got: %s", c.Schedule.Interval)
	}
	return nil
}
