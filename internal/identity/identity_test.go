// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/telebackup/internal/telephony"
)

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		country string
		want    string
	}{
		{"already international", "+15551234567", "us", "+15551234567"},
		{"national us", "5551234567", "us", "+15551234567"},
		{"national with separators", "(555) 123-4567", "us", "+15551234567"},
		{"international with separators", "+1 555.123.4567", "", "+15551234567"},
		{"double zero prefix", "00495551234", "", "+495551234"},
		{"national leading zero dropped", "0170 1234567", "de", "+491701234567"},
		{"unknown country", "5551234567", "zz", ""},
		{"letters rejected", "555CALLME", "us", ""},
		{"too short", "12", "us", ""},
		{"too long", "+1234567890123456", "", ""},
		{"empty", "", "us", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeE164(tt.number, tt.country); got != tt.want {
				t.Errorf("NormalizeE164(%q, %q) = %q, want %q", tt.number, tt.country, got, tt.want)
			}
		})
	}
}

func TestSubscriptionsBidirectional(t *testing.T) {
	subs := NewSubscriptions([]telephony.LineRegistration{
		{SubID: 1, Number: "5551234567", CountryISO: "us"},
		{SubID: 2, Number: "+447911123456", CountryISO: "gb"},
		{SubID: 3, Number: "not-a-number", CountryISO: "us"},
	})

	phone, ok := subs.PhoneForSubscription(1)
	if !ok || phone != "+15551234567" {
		t.Errorf("PhoneForSubscription(1) = %q, %v", phone, ok)
	}

	sub, ok := subs.SubscriptionForPhone("+447911123456")
	if !ok || sub != 2 {
		t.Errorf("SubscriptionForPhone = %d, %v", sub, ok)
	}

	// The unresolvable registration is skipped entirely.
	if _, ok := subs.PhoneForSubscription(3); ok {
		t.Error("unresolvable line was registered")
	}
	if _, ok := subs.SubscriptionForPhone("+10000000000"); ok {
		t.Error("unknown phone resolved")
	}
}

// fakeThreads implements store.ThreadStore with canned data and call
// counters for memoization checks.
type fakeThreads struct {
	recipientIDs map[int64]string
	addresses    map[int64]string
	idErr        error

	recipientCalls int
	createCalls    int
}

func (f *fakeThreads) RecipientIDs(_ context.Context, threadID int64) (string, error) {
	f.recipientCalls++
	if f.idErr != nil {
		return "", f.idErr
	}
	return f.recipientIDs[threadID], nil
}

func (f *fakeThreads) CanonicalAddress(_ context.Context, id int64) (string, bool, error) {
	addr, ok := f.addresses[id]
	return addr, ok, nil
}

func (f *fakeThreads) GetOrCreateThread(_ context.Context, _ []string) (int64, error) {
	f.createCalls++
	return int64(100 + f.createCalls), nil
}

func TestRecipientsForThread(t *testing.T) {
	threads := &fakeThreads{
		recipientIDs: map[int64]string{7: "1 2 bogus 3"},
		addresses: map[int64]string{
			1: "+15550001111",
			2: "+15550002222",
			// id 3 is unknown
		},
	}
	r := NewThreadResolver(threads)

	got := r.RecipientsForThread(context.Background(), 7)
	want := []string{"+15550001111", "+15550002222"}
	if len(got) != len(want) {
		t.Fatalf("recipients = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("recipients[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Second lookup hits the cache.
	r.RecipientsForThread(context.Background(), 7)
	if threads.recipientCalls != 1 {
		t.Errorf("recipientCalls = %d, want 1", threads.recipientCalls)
	}

	if r.RecipientsForThread(context.Background(), 0) != nil {
		t.Error("thread 0 should yield nil")
	}
}

func TestRecipientsForThreadLookupFailure(t *testing.T) {
	threads := &fakeThreads{idErr: errors.New("db closed")}
	r := NewThreadResolver(threads)

	got := r.RecipientsForThread(context.Background(), 5)
	if len(got) != 0 {
		t.Errorf("recipients = %v, want empty", got)
	}
}

func TestThreadForRecipientsMemoized(t *testing.T) {
	threads := &fakeThreads{}
	r := NewThreadResolver(threads)

	id1, err := r.ThreadForRecipients(context.Background(), []string{"+15550001111", "+15550002222"})
	if err != nil {
		t.Fatal(err)
	}
	// Order and duplicates do not matter for the cache key.
	id2, err := r.ThreadForRecipients(context.Background(), []string{"+15550002222", "+15550001111", "+15550001111"})
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("ids differ: %d vs %d", id1, id2)
	}
	if threads.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", threads.createCalls)
	}

	// A different set misses the cache.
	id3, err := r.ThreadForRecipients(context.Background(), []string{"+15550003333"})
	if err != nil {
		t.Fatal(err)
	}
	if id3 == id1 {
		t.Error("distinct sets share a thread")
	}
	if threads.createCalls != 2 {
		t.Errorf("createCalls = %d, want 2", threads.createCalls)
	}
}
