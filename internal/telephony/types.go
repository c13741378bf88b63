// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package telephony

// UnknownSubscription is the sentinel subscription reference used when a
// phone number cannot be resolved back to an active line on restore.
const UnknownSubscription int64 = -1

// CharsetUTF8 is the MIBenum value for UTF-8, the default character set
// substituted when an archive entry carries a subject without a charset.
const CharsetUTF8 = 106

// Message box codes for multimedia messages (mms.msg_box column).
const (
	MessageBoxAll    = 0
	MessageBoxInbox  = 1
	MessageBoxSent   = 2
	MessageBoxDrafts = 3
	MessageBoxOutbox = 4
)

// Sms is one short message row. Date and DateSent are millisecond epochs;
// Date is always present. Pointer fields mirror nullable store columns.
type Sms struct {
	ID       int64
	ThreadID int64
	SubID    int64
	Address  *string
	Body     *string
	Subject  *string
	Date     int64
	DateSent int64
	Status   int
	Type     int
	Read     int
	Seen     int
}

// Mms is one multimedia message row plus its resolved side data. Date and
// DateSent are SECOND epochs. Body is nil when the message has no text
// part; such messages are excluded from export entirely.
type Mms struct {
	ID              int64
	ThreadID        int64
	SubID           int64
	Subject         *string
	SubjectCharset  int
	Date            int64
	DateSent        int64
	MessageType     int
	Version         int
	MessageBox      int
	ContentLocation *string
	Read            int
	Seen            int
	TextOnly        int
	Addresses       []MmsAddress
	Body            *MmsBody
}

// MmsAddress is one ordered recipient/sender row of a multimedia message.
// Rows with an empty address string are never retained.
type MmsAddress struct {
	Type    int
	Address string
	Charset int
}

// MmsBody is the assembled text payload of a multimedia message: all text
// parts concatenated in part order, with the charset of the last
// contributing part.
type MmsBody struct {
	Text    string
	Charset int
}

// MmsPart is one row of the mms parts sub-resource. Charset is nil for
// parts that carry no character set (the SMIL layout part).
type MmsPart struct {
	ID              int64
	MmsID           int64
	Seq             int
	ContentType     string
	Name            string
	Charset         *int
	ContentID       string
	ContentLocation string
	Text            string
}

// LineRegistration describes one active line: the internal subscription
// id, the raw number as registered, and the ISO country of the
// registration. Identity maps are built from these at agent startup.
type LineRegistration struct {
	SubID      int64
	Number     string
	CountryISO string
}
