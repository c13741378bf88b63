// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package archive

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goccy/go-json"
)

// ChunkWriter writes one chunk file: a compressed UTF-8 JSON array of
// entries. The writer stack is closed in reverse order on every exit
// path; a writer that saw an error still closes cleanly.
type ChunkWriter struct {
	path    string
	buf     *bufio.Writer
	closers []io.Closer
	entries int
	closed  bool
}

// NewChunkWriter creates the chunk file at path and opens the JSON array.
//
//nolint:gosec // G304: path is built from the configured staging directory
func NewChunkWriter(path string, c Compression) (*ChunkWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunk file: %w", err)
	}

	comp, err := c.NewWriter(file)
	if err != nil {
		file.Close() //nolint:errcheck // Best effort cleanup on error
		return nil, err
	}

	w := &ChunkWriter{
		path:    path,
		buf:     bufio.NewWriter(comp),
		closers: []io.Closer{file, comp},
	}
	if err := w.buf.WriteByte('['); err != nil {
		w.Close() //nolint:errcheck // Best effort cleanup on error
		return nil, fmt.Errorf("failed to open chunk array: %w", err)
	}
	return w, nil
}

// Path returns the chunk file path.
func (w *ChunkWriter) Path() string {
	return w.path
}

// Entries returns the number of entries written so far.
func (w *ChunkWriter) Entries() int {
	return w.entries
}

// append writes one completed entry object, managing array separators.
func (w *ChunkWriter) append(e *entry) error {
	if w.entries > 0 {
		if err := w.buf.WriteByte(','); err != nil {
			return fmt.Errorf("failed to write entry separator: %w", err)
		}
	}
	e.buf.WriteByte('}')
	if _, err := w.buf.Write(e.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	w.entries++
	return nil
}

// Close terminates the JSON array, flushes, and closes the writer stack
// in reverse order, returning the first error encountered.
func (w *ChunkWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var firstErr error
	if err := w.buf.WriteByte(']'); err != nil {
		firstErr = err
	}
	if err := w.buf.Flush(); err != nil && firstErr == nil {
		firstErr = err
	}
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// entry accumulates one archive object with field order preserved. A map
// would lose the store-defined field order the wire format requires.
type entry struct {
	buf bytes.Buffer
	n   int
}

// key writes the separator and quoted key.
func (e *entry) key(name string) {
	if e.n == 0 {
		e.buf.WriteByte('{')
	} else {
		e.buf.WriteByte(',')
	}
	e.n++
	e.buf.WriteByte('"')
	e.buf.WriteString(name)
	e.buf.WriteString(`":`)
}

// str emits a JSON string field.
func (e *entry) str(name, val string) {
	e.key(name)
	e.writeEscaped(val)
}

// intStr emits an integer in the wire's string form.
func (e *entry) intStr(name string, v int64) {
	e.str(name, strconv.FormatInt(v, 10))
}

// num emits a bare JSON number field.
func (e *entry) num(name string, v int64) {
	e.key(name)
	e.buf.WriteString(strconv.FormatInt(v, 10))
}

// strs emits an array-of-strings field.
func (e *entry) strs(name string, vals []string) {
	e.key(name)
	e.buf.WriteByte('[')
	for i, v := range vals {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.writeEscaped(v)
	}
	e.buf.WriteByte(']')
}

// raw emits a pre-encoded JSON value.
func (e *entry) raw(name string, data []byte) {
	e.key(name)
	e.buf.Write(data)
}

// writeEscaped writes a JSON-escaped string literal.
func (e *entry) writeEscaped(val string) {
	escaped, err := json.Marshal(val)
	if err != nil {
		// Strings never fail to marshal; keep the entry well formed anyway.
		e.buf.WriteString(`""`)
		return
	}
	e.buf.Write(escaped)
}
