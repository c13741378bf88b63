// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package store

import (
	"context"
	"errors"

	"github.com/tomtom215/telebackup/internal/telephony"
)

// ErrNotFound is returned by lookups keyed on a missing identifier.
var ErrNotFound = errors.New("store: not found")

// SmsCursor iterates short message rows in ascending date order.
type SmsCursor interface {
	// Next returns the next row, or (nil, false) at end of sequence.
	Next() (*telephony.Sms, bool)
	// Err reports the error that terminated iteration, if any.
	Err() error
	Close() error
}

// MmsCursor iterates multimedia message rows in ascending date order.
// Rows carry the main record fields only; body and addresses are fetched
// separately through MmsStore.
type MmsCursor interface {
	Next() (*telephony.Mms, bool)
	Err() error
	Close() error
}

// SmsStore is the short message side of the datastore.
type SmsStore interface {
	// QueryByDateAscending opens a cursor over all short messages sorted
	// ascending by date.
	QueryByDateAscending(ctx context.Context) (SmsCursor, error)

	// Exists reports whether a message with exactly this (date, body) pair
	// is already present. This is the restore dedup key; it deliberately
	// ignores sender and thread.
	Exists(ctx context.Context, date int64, body string) (bool, error)

	// BulkInsert applies a batch of restored messages in one operation and
	// returns the number of rows inserted.
	BulkInsert(ctx context.Context, batch []*telephony.Sms) (int64, error)
}

// MmsStore is the multimedia message side of the datastore, including the
// parts and addresses sub-resources addressed by record identifier.
type MmsStore interface {
	// QueryTextOnlyByDateAscending opens a cursor over text-only
	// multimedia messages sorted ascending by date.
	QueryTextOnlyByDateAscending(ctx context.Context) (MmsCursor, error)

	// IDsByDate returns the identifiers of all messages with the given
	// date (second epoch). Used as the first stage of restore dedup.
	IDsByDate(ctx context.Context, date int64) ([]int64, error)

	// Body assembles the text body of the message: all text parts
	// concatenated in part order, charset of the last contributing part.
	// Returns (nil, nil) when the message has no text part.
	Body(ctx context.Context, id int64) (*telephony.MmsBody, error)

	// Addresses returns the ordered address rows of the message, skipping
	// rows with an empty address string.
	Addresses(ctx context.Context, id int64) ([]telephony.MmsAddress, error)

	// Insert inserts the main record and returns its assigned identifier.
	Insert(ctx context.Context, mms *telephony.Mms) (int64, error)

	// InsertPart inserts a part row (possibly before its owning record
	// exists) and returns the part identifier.
	InsertPart(ctx context.Context, part *telephony.MmsPart) (int64, error)

	// ReassignParts points previously inserted parts at the record
	// identifier assigned by Insert.
	ReassignParts(ctx context.Context, partIDs []int64, mmsID int64) error

	// InsertAddress ties one address row to a restored record.
	InsertAddress(ctx context.Context, mmsID int64, addr telephony.MmsAddress) error
}

// ThreadStore resolves thread references to recipient sets and back.
type ThreadStore interface {
	// RecipientIDs returns the space-separated list of internal recipient
	// ids for a thread.
	RecipientIDs(ctx context.Context, threadID int64) (string, error)

	// CanonicalAddress resolves one internal recipient id to the store's
	// normalized address. ok is false when the id is unknown.
	CanonicalAddress(ctx context.Context, id int64) (address string, ok bool, err error)

	// GetOrCreateThread returns the thread for the given recipient set,
	// creating thread (and canonical address) rows as needed. Not
	// idempotent with respect to the store; callers memoize per pass.
	GetOrCreateThread(ctx context.Context, recipients []string) (int64, error)
}

// LineStore lists the currently active line registrations. Queried once
// per agent lifetime to build the subscription/phone identity maps.
type LineStore interface {
	ActiveLines(ctx context.Context) ([]telephony.LineRegistration, error)
}
