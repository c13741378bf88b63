// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

/*
Package telephony defines the message domain model shared by the store,
archive codec, exporter and restore engine.

Two record kinds exist:

  - Sms: a short message. The date field is a millisecond epoch and is
    always present.
  - Mms: a text-only multimedia message. The date field is a SECOND epoch
    (matching the store's mms schema), with an ordered address list and at
    most one assembled text body.

Optionality follows the store's nullable columns: string columns that may
be NULL are pointer fields, numeric columns carry their store defaults.

The package also holds the constants the restore engine needs to
reconstruct a text-only message: the single-region SMIL layout template,
the generated text part name, and the content types of the synthetic
parts.
*/
package telephony
