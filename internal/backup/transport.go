// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Transport hands a finished chunk file off to its destination. Send
// consumes the file: on success the staged copy no longer exists.
type Transport interface {
	Send(ctx context.Context, path string) error
}

// DirTransport moves chunks into a local directory. Rename is tried
// first; a cross-device rename falls back to copy and remove.
type DirTransport struct {
	dir string
}

// NewDirTransport creates the target directory if needed.
func NewDirTransport(dir string) (*DirTransport, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create transport directory %s: %w", dir, err)
	}
	return &DirTransport{dir: dir}, nil
}

// Send implements Transport.
func (t *DirTransport) Send(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dst := filepath.Join(t.dir, filepath.Base(path))
	if err := os.Rename(path, dst); err == nil {
		return nil
	}
	if err := copyFile(path, dst); err != nil {
		return fmt.Errorf("failed to hand off chunk %s: %w", filepath.Base(path), err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove staged chunk after handoff: %w", err)
	}
	return nil
}

//nolint:gosec // G304: both paths are built from configured directories
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // read-only file

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck // Best effort cleanup on error
		return err
	}
	return out.Close()
}
