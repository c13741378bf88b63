// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package telephony

import "fmt"

// Content types of the two synthetic parts inserted for a restored
// text-only message.
const (
	ContentTypeSmil = "application/smil"
	ContentTypeText = "text/plain"
)

// TextPartName is the generated name of the restored text part, referenced
// from the SMIL layout.
const TextPartName = "text.000000.txt"

// smilTemplate is a single-region text layout with a 5000 ms paragraph
// duration. The %s placeholder is the text part name.
const smilTemplate = `<smil>` +
	`<head>` +
	`<layout>` +
	`<root-layout/>` +
	`<region id="Text" top="0" left="0" height="100%%" width="100%%"/>` +
	`</layout>` +
	`</head>` +
	`<body>` +
	`<par dur="5000ms">` +
	`<text src="%s" region="Text" />` +
	`</par>` +
	`</body>` +
	`</smil>`

// SmilPart builds the synthetic structural part describing a single-region
// text layout that references the given text part name. Seq -1 orders it
// before the text payload.
func SmilPart(textPartName string) *MmsPart {
	return &MmsPart{
		Seq:         -1,
		ContentType: ContentTypeSmil,
		Name:        "smil.xml",
		ContentID:   "<smil>",
		Text:        fmt.Sprintf(smilTemplate, textPartName),
	}
}

// TextPart builds the text payload part for a restored message body.
func TextPart(name string, body *MmsBody) *MmsPart {
	charset := body.Charset
	return &MmsPart{
		Seq:             0,
		ContentType:     ContentTypeText,
		Name:            name,
		Charset:         &charset,
		ContentID:       "<" + name + ">",
		ContentLocation: name,
		Text:            body.Text,
	}
}
