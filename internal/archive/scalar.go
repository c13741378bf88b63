// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package archive

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// The wire format writes scalars as JSON strings, but other producers of
// the same schema write bare numbers. Every scalar setter accepts both
// forms, mirroring the coercion the original reader performs.

var nullLiteral = []byte("null")

// decodeString accepts a JSON string or number and returns its text.
func decodeString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, nullLiteral) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid string value: %w", err)
		}
		return s, nil
	}
	// Bare number: its text form is the value.
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string or number: %w", err)
	}
	return n.String(), nil
}

// decodeInt64 accepts a JSON number or numeric string.
func decodeInt64(raw json.RawMessage) (int64, error) {
	s, err := decodeString(raw)
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value %q: %w", s, err)
	}
	return v, nil
}

// decodeInt is decodeInt64 narrowed to int.
func decodeInt(raw json.RawMessage) (int, error) {
	v, err := decodeInt64(raw)
	return int(v), err
}
