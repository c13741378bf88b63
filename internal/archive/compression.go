// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package archive

import (
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Compression selects the pluggable byte transform wrapped around chunk
// content. The same transform must be configured for backup and restore.
type Compression string

const (
	// CompressionZlib is the default wire framing.
	CompressionZlib Compression = "zlib"
	// CompressionGzip wraps chunks in gzip framing.
	CompressionGzip Compression = "gzip"
	// CompressionZstd uses klauspost/compress zstd.
	CompressionZstd Compression = "zstd"
	// CompressionNone disables the transform. Mainly useful in tests.
	CompressionNone Compression = "none"
)

// Validate reports whether c names a known transform.
func (c Compression) Validate() error {
	switch c {
	case CompressionZlib, CompressionGzip, CompressionZstd, CompressionNone:
		return nil
	default:
		return fmt.Errorf("unknown compression %q (want zlib, gzip, zstd or none)", string(c))
	}
}

// nopWriteCloser passes writes through for CompressionNone.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewWriter wraps w in the compressing transform.
func (c Compression) NewWriter(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionZlib:
		return zlib.NewWriter(w), nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return enc, nil
	case CompressionNone:
		return nopWriteCloser{w}, nil
	default:
		return nil, c.Validate()
	}
}

// NewReader wraps r in the decompressing transform.
func (c Compression) NewReader(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CompressionZlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zlib reader: %w", err)
		}
		return zr, nil
	case CompressionGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gr, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	case CompressionNone:
		return io.NopCloser(r), nil
	default:
		return nil, c.Validate()
	}
}
