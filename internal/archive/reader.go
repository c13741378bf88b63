// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package archive

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// ChunkReader stream-decodes one chunk file as a JSON array of entries.
// Entries are surfaced as raw key/value maps; the decode tables turn them
// into records.
type ChunkReader struct {
	closers []io.Closer
	dec     *json.Decoder
}

// OpenChunk opens and decompresses a chunk file and consumes the array
// opener. Errors here mean the file is unreadable or not a chunk; the
// caller leaves it in place for a later pass.
//
//nolint:gosec // G304: path is built from the configured archive directory
func OpenChunk(path string, c Compression) (*ChunkReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk file: %w", err)
	}

	decomp, err := c.NewReader(file)
	if err != nil {
		file.Close() //nolint:errcheck // Best effort cleanup on error
		return nil, err
	}

	r := &ChunkReader{
		closers: []io.Closer{file, decomp},
		dec:     json.NewDecoder(bufio.NewReader(decomp)),
	}

	tok, err := r.dec.Token()
	if err != nil {
		r.Close() //nolint:errcheck // Best effort cleanup on error
		return nil, fmt.Errorf("failed to read chunk array opener: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		r.Close() //nolint:errcheck // Best effort cleanup on error
		return nil, fmt.Errorf("chunk does not contain a JSON array (got %v)", tok)
	}
	return r, nil
}

// More reports whether another entry remains in the array.
func (r *ChunkReader) More() bool {
	return r.dec.More()
}

// Next decodes the next entry as a raw field map.
func (r *ChunkReader) Next() (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := r.dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode chunk entry: %w", err)
	}
	return raw, nil
}

// Close closes the reader stack in reverse order.
func (r *ChunkReader) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
