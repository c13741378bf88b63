// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

/*
Package archive implements the portable chunk format and the record codec.

# Chunk format

A chunk is one file named {6-digit zero-padded sequence}_{sms|mms}_backup
holding a compressed UTF-8 JSON array of at most N entries of one record
kind. One sequence counter is shared by both kinds, so lexical filename
order equals production order across the whole cycle and chronological
order within a kind.

The compression transform is pluggable (Compression): zlib is the default
wire framing, with gzip and zstd (klauspost/compress) selectable by
configuration. Restore uses the configured transform.

# Record codec

Encoding walks a record's fields in store order and emits every non-null
field under its external key, with two rewrites: the subscription
reference becomes the resolved phone number under "self_phone" (omitted
when unresolved), and the thread reference becomes the resolved recipient
address array under "recipients". The internal row id is always omitted,
and row scalars are written as JSON strings. Field order is preserved by
an ordered object writer, never a map.

Decoding starts from kind-specific defaults and applies a closed decode
table: known external keys map to typed setters, unknown keys are skipped
without error (the schema is forward-compatible). Scalar setters accept
both the string and the numeric JSON form.
*/
package archive
