// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package archive

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Kind identifies the record kind held by one chunk.
type Kind string

const (
	// KindSms marks a chunk of short messages.
	KindSms Kind = "sms"
	// KindMms marks a chunk of multimedia messages.
	KindMms Kind = "mms"
)

// MaxChunkRecords is the default upper bound on entries per chunk.
const MaxChunkRecords = 1000

// ChunkName builds the filename for a chunk: zero-padded shared sequence
// number plus kind suffix, e.g. 000042_sms_backup.
func ChunkName(seq int, kind Kind) string {
	return fmt.Sprintf("%06d_%s_backup", seq, kind)
}

var chunkNameRe = regexp.MustCompile(`^(\d{6})_(sms|mms)_backup$`)

// ParseChunkName splits a chunk filename into sequence number and kind.
// ok is false for names that are not chunk files.
func ParseChunkName(name string) (seq int, kind Kind, ok bool) {
	m := chunkNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, "", false
	}
	seq, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return seq, Kind(m[2]), true
}

// SortDescending orders chunk filenames newest-first. Lexical descending
// order is restore priority order: recent chunks are applied before older
// ones, both kinds intermixed.
func SortDescending(names []string) {
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
}
