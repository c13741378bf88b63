// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package telephony

import (
	"strings"
	"testing"
)

func TestSmilPart(t *testing.T) {
	part := SmilPart(TextPartName)

	if part.Seq != -1 {
		t.Errorf("Seq = %d, want -1", part.Seq)
	}
	if part.ContentType != ContentTypeSmil {
		t.Errorf("ContentType = %q", part.ContentType)
	}
	if part.Name != "smil.xml" || part.ContentID != "<smil>" {
		t.Errorf("Name = %q, ContentID = %q", part.Name, part.ContentID)
	}
	if part.Charset != nil {
		t.Error("SMIL part must not carry a charset")
	}
	if !strings.Contains(part.Text, `src="`+TextPartName+`"`) {
		t.Errorf("layout does not reference the text part: %s", part.Text)
	}
	if !strings.Contains(part.Text, `height="100%"`) {
		t.Errorf("region height not expanded: %s", part.Text)
	}
}

func TestTextPart(t *testing.T) {
	part := TextPart(TextPartName, &MmsBody{Text: "hello", Charset: CharsetUTF8})

	if part.Seq != 0 {
		t.Errorf("Seq = %d, want 0", part.Seq)
	}
	if part.ContentType != ContentTypeText {
		t.Errorf("ContentType = %q", part.ContentType)
	}
	if part.Charset == nil || *part.Charset != CharsetUTF8 {
		t.Errorf("Charset = %v, want %d", part.Charset, CharsetUTF8)
	}
	if part.Text != "hello" {
		t.Errorf("Text = %q", part.Text)
	}
	if part.ContentID != "<"+TextPartName+">" || part.ContentLocation != TextPartName {
		t.Errorf("ContentID = %q, ContentLocation = %q", part.ContentID, part.ContentLocation)
	}
}
