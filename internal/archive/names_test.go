// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package archive

import (
	"reflect"
	"testing"
)

func TestChunkName(t *testing.T) {
	tests := []struct {
		name string
		seq  int
		kind Kind
		want string
	}{
		{"first sms", 0, KindSms, "000000_sms_backup"},
		{"first mms", 0, KindMms, "000000_mms_backup"},
		{"padded", 42, KindSms, "000042_sms_backup"},
		{"large", 123456, KindMms, "123456_mms_backup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChunkName(tt.seq, tt.kind); got != tt.want {
				t.Errorf("ChunkName(%d, %s) = %q, want %q", tt.seq, tt.kind, got, tt.want)
			}
		})
	}
}

func TestParseChunkName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantSeq  int
		wantKind Kind
		wantOK   bool
	}{
		{"sms chunk", "000007_sms_backup", 7, KindSms, true},
		{"mms chunk", "001000_mms_backup", 1000, KindMms, true},
		{"short sequence", "42_sms_backup", 0, "", false},
		{"unknown kind", "000001_rcs_backup", 0, "", false},
		{"trailing junk", "000001_sms_backup.tmp", 0, "", false},
		{"unrelated file", "notes.txt", 0, "", false},
		{"empty", "", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, kind, ok := ParseChunkName(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseChunkName(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if seq != tt.wantSeq || kind != tt.wantKind {
				t.Errorf("ParseChunkName(%q) = (%d, %s), want (%d, %s)", tt.input, seq, kind, tt.wantSeq, tt.wantKind)
			}
		})
	}
}

func TestParseChunkNameRoundTrip(t *testing.T) {
	for _, kind := range []Kind{KindSms, KindMms} {
		for _, seq := range []int{0, 1, 999, 123456} {
			name := ChunkName(seq, kind)
			gotSeq, gotKind, ok := ParseChunkName(name)
			if !ok || gotSeq != seq || gotKind != kind {
				t.Errorf("ParseChunkName(ChunkName(%d, %s)) = (%d, %s, %v)", seq, kind, gotSeq, gotKind, ok)
			}
		}
	}
}

func TestSortDescending(t *testing.T) {
	names := []string{
		"000001_mms_backup",
		"000003_sms_backup",
		"000000_sms_backup",
		"000002_mms_backup",
	}
	SortDescending(names)

	want := []string{
		"000003_sms_backup",
		"000002_mms_backup",
		"000001_mms_backup",
		"000000_sms_backup",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("SortDescending = %v, want %v", names, want)
	}
}
