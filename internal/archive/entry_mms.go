// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/telebackup/internal/telephony"
)

// External keys of a multimedia message entry. Dates here are second
// epochs, unlike the millisecond epochs of short messages.
const (
	keySub          = "sub"
	keyMessageType  = "m_type"
	keyVersion      = "v"
	keyMessageBox   = "msg_box"
	keyContentLoc   = "ct_l"
	keyMmsAddresses = "mms_addresses"
	keyMmsBody      = "mms_body"
	keyMmsCharset   = "mms_charset"
	keySubCharset   = "sub_cs"

	keyAddrType    = "type"
	keyAddrAddress = "address"
	keyAddrCharset = "charset"
)

// AppendMms encodes one multimedia message into the chunk. Messages
// without an assembled text body carry nothing restorable and are not
// written; the boolean reports whether an entry was appended. Address
// sub-objects omit zero-valued type and charset.
func AppendMms(w *ChunkWriter, m *telephony.Mms, selfPhone string, recipients []string) (bool, error) {
	if m.Body == nil {
		return false, nil
	}

	var e entry
	if selfPhone != "" {
		e.str(keySelfPhone, selfPhone)
	}
	if m.Subject != nil {
		e.str(keySub, *m.Subject)
	}
	e.intStr(keyDate, m.Date)
	e.intStr(keyDateSent, m.DateSent)
	e.intStr(keyMessageType, int64(m.MessageType))
	e.intStr(keyVersion, int64(m.Version))
	e.intStr(keyMessageBox, int64(m.MessageBox))
	if m.ContentLocation != nil {
		e.str(keyContentLoc, *m.ContentLocation)
	}
	if recipients == nil {
		recipients = []string{}
	}
	e.strs(keyRecipients, recipients)
	e.raw(keyMmsAddresses, encodeAddresses(m.Addresses))
	e.str(keyMmsBody, m.Body.Text)
	e.num(keyMmsCharset, int64(m.Body.Charset))
	if m.Subject != nil {
		e.intStr(keySubCharset, int64(m.SubjectCharset))
	}

	if err := w.append(&e); err != nil {
		return false, err
	}
	return true, nil
}

// encodeAddresses renders the ordered address rows as a JSON array.
// Rows with an empty address string are dropped.
func encodeAddresses(addrs []telephony.MmsAddress) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	n := 0
	for _, a := range addrs {
		if a.Address == "" {
			continue
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		var sub entry
		if a.Type != 0 {
			sub.num(keyAddrType, int64(a.Type))
		}
		sub.str(keyAddrAddress, a.Address)
		if a.Charset != 0 {
			sub.num(keyAddrCharset, int64(a.Charset))
		}
		sub.buf.WriteByte('}')
		buf.Write(sub.buf.Bytes())
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// mmsDecode is the in-flight state of one entry's decode. Body text and
// charset arrive as separate keys and are joined once all keys are seen.
type mmsDecode struct {
	mms          telephony.Mms
	recipients   []string
	hasThread    bool
	bodyText     *string
	bodyCharset  *int
	hasSubjectCs bool
}

// mmsFields is the closed decode table for multimedia message entries.
var mmsFields = map[string]func(context.Context, *DecodeContext, *mmsDecode, json.RawMessage) error{
	keySelfPhone: func(_ context.Context, dc *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		phone, err := decodeString(raw)
		if err != nil {
			return err
		}
		if sub, ok := dc.Subs.SubscriptionForPhone(phone); ok {
			d.mms.SubID = sub
		}
		return nil
	},
	keySub: func(_ context.Context, _ *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		return setOptString(&d.mms.Subject, raw)
	},
	keyDate: func(_ context.Context, _ *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		return setInt64(&d.mms.Date, raw)
	},
	keyDateSent: func(_ context.Context, _ *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		return setInt64(&d.mms.DateSent, raw)
	},
	keyMessageType: func(_ context.Context, _ *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		return setInt(&d.mms.MessageType, raw)
	},
	keyVersion: func(_ context.Context, _ *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		return setInt(&d.mms.Version, raw)
	},
	keyMessageBox: func(_ context.Context, _ *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		return setInt(&d.mms.MessageBox, raw)
	},
	keyContentLoc: func(_ context.Context, _ *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		return setOptString(&d.mms.ContentLocation, raw)
	},
	keyRecipients: func(_ context.Context, _ *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		recipients, err := decodeRecipients(raw)
		if err != nil {
			return err
		}
		d.recipients = recipients
		d.hasThread = true
		return nil
	},
	keyMmsAddresses: func(_ context.Context, _ *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		addrs, err := decodeAddresses(raw)
		if err != nil {
			return err
		}
		d.mms.Addresses = addrs
		return nil
	},
	keyMmsBody: func(_ context.Context, _ *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		return setOptString(&d.bodyText, raw)
	},
	keyMmsCharset: func(_ context.Context, _ *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		cs, err := decodeInt(raw)
		if err != nil {
			return err
		}
		d.bodyCharset = &cs
		return nil
	},
	keySubCharset: func(_ context.Context, _ *DecodeContext, d *mmsDecode, raw json.RawMessage) error {
		if err := setInt(&d.mms.SubjectCharset, raw); err != nil {
			return err
		}
		d.hasSubjectCs = true
		return nil
	},
}

// DecodeMms turns one raw entry into a multimedia message ready for
// reconstruction. Defaults before any key applies: read and seen marked
// consumed, the all-messages box, text-only flagged, unknown
// subscription. A subject that arrives without its charset gets UTF-8.
// Body is nil when the entry carried no mms_body; the restore engine
// drops such messages.
func DecodeMms(ctx context.Context, dc *DecodeContext, raw map[string]json.RawMessage) (*telephony.Mms, error) {
	d := &mmsDecode{
		mms: telephony.Mms{
			SubID:      telephony.UnknownSubscription,
			Read:       1,
			Seen:       1,
			MessageBox: telephony.MessageBoxAll,
			TextOnly:   1,
		},
	}

	for key, val := range raw {
		setter, known := mmsFields[key]
		if !known {
			skipUnknownField(KindMms, key)
			continue
		}
		if err := setter(ctx, dc, d, val); err != nil {
			return nil, fmt.Errorf("mms field %s: %w", key, err)
		}
	}

	if d.mms.Subject != nil && !d.hasSubjectCs {
		d.mms.SubjectCharset = telephony.CharsetUTF8
	}
	if d.bodyText != nil {
		charset := telephony.CharsetUTF8
		if d.bodyCharset != nil {
			charset = *d.bodyCharset
		}
		d.mms.Body = &telephony.MmsBody{Text: *d.bodyText, Charset: charset}
	}
	if d.hasThread {
		d.mms.ThreadID = resolveThread(ctx, dc, d.recipients)
	}
	return &d.mms, nil
}

// decodeAddresses parses the mms_addresses array. Each element defaults
// to type 0 and the UTF-8 charset; elements without an address string
// are skipped.
func decodeAddresses(raw json.RawMessage) ([]telephony.MmsAddress, error) {
	var elems []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("invalid mms_addresses value: %w", err)
	}

	addrs := make([]telephony.MmsAddress, 0, len(elems))
	for _, elem := range elems {
		addr := telephony.MmsAddress{Charset: telephony.CharsetUTF8}
		for key, val := range elem {
			var err error
			switch key {
			case keyAddrType:
				addr.Type, err = decodeInt(val)
			case keyAddrAddress:
				addr.Address, err = decodeString(val)
			case keyAddrCharset:
				addr.Charset, err = decodeInt(val)
			default:
				skipUnknownField(KindMms, keyMmsAddresses+"."+key)
			}
			if err != nil {
				return nil, fmt.Errorf("mms address field %s: %w", key, err)
			}
		}
		if addr.Address == "" {
			continue
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
