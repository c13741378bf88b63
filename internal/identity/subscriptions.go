// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package identity

import (
	"strings"

	"github.com/tomtom215/telebackup/internal/logging"
	"github.com/tomtom215/telebackup/internal/telephony"
)

// Subscriptions is the bidirectional subscription id <-> phone number map.
// Built once at agent startup; lookups are pure and side-effect free.
type Subscriptions struct {
	phoneBySub map[int64]string
	subByPhone map[string]int64
}

// NewSubscriptions builds the identity maps from the active line
// registrations. Numbers are normalized to E.164; registrations whose
// number cannot be normalized are skipped.
func NewSubscriptions(lines []telephony.LineRegistration) *Subscriptions {
	s := &Subscriptions{
		phoneBySub: make(map[int64]string, len(lines)),
		subByPhone: make(map[string]int64, len(lines)),
	}
	for _, l := range lines {
		phone := NormalizeE164(l.Number, l.CountryISO)
		if phone == "" {
			logging.Warn().Int64("sub_id", l.SubID).Msg("Skipping line registration with unresolvable number")
			continue
		}
		s.phoneBySub[l.SubID] = phone
		s.subByPhone[phone] = l.SubID
	}
	return s
}

// PhoneForSubscription returns the phone number of a subscription, or
// ("", false) when the subscription has no resolvable number.
func (s *Subscriptions) PhoneForSubscription(subID int64) (string, bool) {
	phone, ok := s.phoneBySub[subID]
	return phone, ok
}

// SubscriptionForPhone is the inverse lookup. Callers keep the record's
// subscription reference at telephony.UnknownSubscription on a miss.
func (s *Subscriptions) SubscriptionForPhone(phone string) (int64, bool) {
	sub, ok := s.subByPhone[phone]
	return sub, ok
}

// countryCallingCodes maps lowercased ISO 3166-1 alpha-2 codes to their
// international calling code. Covers the registrations we expect to see;
// unknown countries make a national number unresolvable, which skips the
// registration rather than producing a wrong E.164 form.
var countryCallingCodes = map[string]string{
	"us": "1", "ca": "1", "mx": "52", "br": "55", "ar": "54",
	"gb": "44", "ie": "353", "fr": "33", "de": "49", "it": "39",
	"es": "34", "pt": "351", "nl": "31", "be": "32", "ch": "41",
	"at": "43", "se": "46", "no": "47", "dk": "45", "fi": "358",
	"pl": "48", "cz": "420", "ru": "7", "ua": "380", "tr": "90",
	"in": "91", "cn": "86", "jp": "81", "kr": "82", "tw": "886",
	"hk": "852", "sg": "65", "my": "60", "th": "66", "vn": "84",
	"id": "62", "ph": "63", "au": "61", "nz": "64", "za": "27",
	"ng": "234", "ke": "254", "eg": "20", "il": "972", "sa": "966",
	"ae": "971",
}

// NormalizeE164 converts a raw registered number to canonical E.164 form.
// Returns "" when the number cannot be normalized (non-digit content, no
// calling code for a national number, or implausible length).
func NormalizeE164(number, countryISO string) string {
	number = strings.TrimSpace(number)
	international := strings.HasPrefix(number, "+")

	var digits strings.Builder
	for _, r := range number {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')' || r == '+':
			// separators and the leading plus are dropped
		default:
			return ""
		}
	}
	d := digits.String()

	switch {
	case international:
		// Already carries its calling code.
	case strings.HasPrefix(d, "00"):
		// 00 international prefix.
		d = d[2:]
	default:
		code, ok := countryCallingCodes[strings.ToLower(strings.TrimSpace(countryISO))]
		if !ok {
			return ""
		}
		d = code + strings.TrimPrefix(d, "0")
	}

	// E.164 numbers are at most 15 digits; anything under 4 is noise.
	if len(d) < 4 || len(d) > 15 {
		return ""
	}
	return "+" + d
}
