// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package archive

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/telebackup/internal/telephony"
)

// External keys of a short message entry.
const (
	keySelfPhone  = "self_phone"
	keyAddress    = "address"
	keyBody       = "body"
	keySubject    = "subject"
	keyDate       = "date"
	keyDateSent   = "date_sent"
	keyStatus     = "status"
	keyType       = "type"
	keyRecipients = "recipients"
)

// AppendSms encodes one short message into the chunk. selfPhone is the
// resolved phone number of the record's subscription ("" when unresolved,
// which omits the key); recipients is the resolved address list of the
// record's thread. The row id is never written. Fields are emitted in
// store order, non-null only, scalars as strings.
func AppendSms(w *ChunkWriter, s *telephony.Sms, selfPhone string, recipients []string) error {
	var e entry
	if selfPhone != "" {
		e.str(keySelfPhone, selfPhone)
	}
	if s.Address != nil {
		e.str(keyAddress, *s.Address)
	}
	if s.Body != nil {
		e.str(keyBody, *s.Body)
	}
	if s.Subject != nil {
		e.str(keySubject, *s.Subject)
	}
	e.intStr(keyDate, s.Date)
	e.intStr(keyDateSent, s.DateSent)
	e.intStr(keyStatus, int64(s.Status))
	e.intStr(keyType, int64(s.Type))
	if recipients == nil {
		recipients = []string{}
	}
	e.strs(keyRecipients, recipients)
	return w.append(&e)
}

// smsDecode is the in-flight state of one entry's decode.
type smsDecode struct {
	sms        telephony.Sms
	recipients []string
	hasThread  bool
}

// smsFields is the closed decode table for short message entries. Keys
// not present here fall through to the skip branch in DecodeSms.
var smsFields = map[string]func(context.Context, *DecodeContext, *smsDecode, json.RawMessage) error{
	keySelfPhone: func(_ context.Context, dc *DecodeContext, d *smsDecode, raw json.RawMessage) error {
		phone, err := decodeString(raw)
		if err != nil {
			return err
		}
		// Identity miss leaves the unknown-subscription sentinel in place.
		if sub, ok := dc.Subs.SubscriptionForPhone(phone); ok {
			d.sms.SubID = sub
		}
		return nil
	},
	keyAddress: func(_ context.Context, _ *DecodeContext, d *smsDecode, raw json.RawMessage) error {
		return setOptString(&d.sms.Address, raw)
	},
	keyBody: func(_ context.Context, _ *DecodeContext, d *smsDecode, raw json.RawMessage) error {
		return setOptString(&d.sms.Body, raw)
	},
	keySubject: func(_ context.Context, _ *DecodeContext, d *smsDecode, raw json.RawMessage) error {
		return setOptString(&d.sms.Subject, raw)
	},
	keyDate: func(_ context.Context, _ *DecodeContext, d *smsDecode, raw json.RawMessage) error {
		return setInt64(&d.sms.Date, raw)
	},
	keyDateSent: func(_ context.Context, _ *DecodeContext, d *smsDecode, raw json.RawMessage) error {
		return setInt64(&d.sms.DateSent, raw)
	},
	keyStatus: func(_ context.Context, _ *DecodeContext, d *smsDecode, raw json.RawMessage) error {
		return setInt(&d.sms.Status, raw)
	},
	keyType: func(_ context.Context, _ *DecodeContext, d *smsDecode, raw json.RawMessage) error {
		return setInt(&d.sms.Type, raw)
	},
	keyRecipients: func(_ context.Context, _ *DecodeContext, d *smsDecode, raw json.RawMessage) error {
		recipients, err := decodeRecipients(raw)
		if err != nil {
			return err
		}
		d.recipients = recipients
		d.hasThread = true
		return nil
	},
}

// DecodeSms turns one raw entry into a short message ready for
// insertion. Defaults before any key applies: read and seen are marked
// consumed, the subscription reference is the unknown sentinel.
func DecodeSms(ctx context.Context, dc *DecodeContext, raw map[string]json.RawMessage) (*telephony.Sms, error) {
	d := &smsDecode{
		sms: telephony.Sms{
			SubID: telephony.UnknownSubscription,
			Read:  1,
			Seen:  1,
		},
	}

	for key, val := range raw {
		setter, known := smsFields[key]
		if !known {
			skipUnknownField(KindSms, key)
			continue
		}
		if err := setter(ctx, dc, d, val); err != nil {
			return nil, fmt.Errorf("sms field %s: %w", key, err)
		}
	}

	if d.hasThread {
		d.sms.ThreadID = resolveThread(ctx, dc, d.recipients)
	}
	return &d.sms, nil
}

// setOptString assigns a decoded string to a pointer field.
func setOptString(dst **string, raw json.RawMessage) error {
	s, err := decodeString(raw)
	if err != nil {
		return err
	}
	*dst = &s
	return nil
}

// setInt64 assigns a decoded integer.
func setInt64(dst *int64, raw json.RawMessage) error {
	v, err := decodeInt64(raw)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// setInt assigns a decoded integer narrowed to int.
func setInt(dst *int, raw json.RawMessage) error {
	v, err := decodeInt(raw)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
