// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package storetest

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tomtom215/telebackup/internal/store"
	"github.com/tomtom215/telebackup/internal/telephony"
)

// Store is an in-memory implementation of every store interface. Zero
// value is not usable; construct with New. The Fail* fields inject
// errors into the corresponding operations for failure-path tests.
type Store struct {
	mu sync.Mutex

	smsRows   []*telephony.Sms
	nextSmsID int64

	mmsRows    []*telephony.Mms
	nextMmsID  int64
	parts      []*telephony.MmsPart
	nextPartID int64
	addrs      map[int64][]telephony.MmsAddress
	bodies     map[int64]*telephony.MmsBody

	threadRecipients map[int64]string
	canonicalByID    map[int64]string
	canonicalByAddr  map[string]int64
	threadByKey      map[string]int64
	nextThreadID     int64
	nextCanonID      int64

	lines []telephony.LineRegistration

	// BulkInsertCalls counts BulkInsert invocations for batching tests.
	BulkInsertCalls int

	FailExists     error
	FailMmsInsert  error
	FailPartInsert error
	FailAddrInsert error
}

// New creates an empty fake store.
func New() *Store {
	return &Store{
		nextSmsID:        1,
		nextMmsID:        1,
		nextPartID:       1,
		nextThreadID:     1,
		nextCanonID:      1,
		addrs:            make(map[int64][]telephony.MmsAddress),
		bodies:           make(map[int64]*telephony.MmsBody),
		threadRecipients: make(map[int64]string),
		canonicalByID:    make(map[int64]string),
		canonicalByAddr:  make(map[string]int64),
		threadByKey:      make(map[string]int64),
	}
}

// SeedSms adds a short message row, assigning its id.
func (s *Store) SeedSms(sms *telephony.Sms) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sms.ID = s.nextSmsID
	s.nextSmsID++
	s.smsRows = append(s.smsRows, sms)
	return sms.ID
}

// SeedMms adds a multimedia message row, assigning its id. The row's
// Body and Addresses fields seed the side data returned by Body and
// Addresses lookups.
func (s *Store) SeedMms(mms *telephony.Mms) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	mms.ID = s.nextMmsID
	s.nextMmsID++
	s.mmsRows = append(s.mmsRows, mms)
	if mms.Body != nil {
		cp := *mms.Body
		s.bodies[mms.ID] = &cp
	}
	if len(mms.Addresses) > 0 {
		s.addrs[mms.ID] = append([]telephony.MmsAddress(nil), mms.Addresses...)
	}
	return mms.ID
}

// SeedThread registers a thread with the given recipient addresses and
// returns its id. Later GetOrCreateThread calls with the same set find
// it instead of creating a new one.
func (s *Store) SeedThread(recipients []string) int64 {
	id, _ := s.GetOrCreateThread(context.Background(), recipients)
	return id
}

// SeedLine registers an active line.
func (s *Store) SeedLine(l telephony.LineRegistration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, l)
}

// SmsRows returns a snapshot of all short message rows.
func (s *Store) SmsRows() []*telephony.Sms {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*telephony.Sms(nil), s.smsRows...)
}

// MmsRows returns a snapshot of all multimedia message rows.
func (s *Store) MmsRows() []*telephony.Mms {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*telephony.Mms(nil), s.mmsRows...)
}

// PartsOf returns the part rows assigned to the given message.
func (s *Store) PartsOf(mmsID int64) []*telephony.MmsPart {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*telephony.MmsPart
	for _, p := range s.parts {
		if p.MmsID == mmsID {
			out = append(out, p)
		}
	}
	return out
}

type smsCursor struct {
	rows []*telephony.Sms
	i    int
}

func (c *smsCursor) Next() (*telephony.Sms, bool) {
	if c.i >= len(c.rows) {
		return nil, false
	}
	row := c.rows[c.i]
	c.i++
	return row, true
}

func (c *smsCursor) Err() error   { return nil }
func (c *smsCursor) Close() error { return nil }

type mmsCursor struct {
	rows []*telephony.Mms
	i    int
}

func (c *mmsCursor) Next() (*telephony.Mms, bool) {
	if c.i >= len(c.rows) {
		return nil, false
	}
	row := c.rows[c.i]
	c.i++
	return row, true
}

func (c *mmsCursor) Err() error   { return nil }
func (c *mmsCursor) Close() error { return nil }

// QueryByDateAscending implements store.SmsStore.
func (s *Store) QueryByDateAscending(_ context.Context) (store.SmsCursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := append([]*telephony.Sms(nil), s.smsRows...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].ID < rows[j].ID
	})
	return &smsCursor{rows: rows}, nil
}

// Exists implements store.SmsStore.
func (s *Store) Exists(_ context.Context, date int64, body string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailExists != nil {
		return false, s.FailExists
	}
	for _, row := range s.smsRows {
		if row.Date != date {
			continue
		}
		if row.Body != nil && *row.Body == body {
			return true, nil
		}
	}
	return false, nil
}

// BulkInsert implements store.SmsStore.
func (s *Store) BulkInsert(_ context.Context, batch []*telephony.Sms) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BulkInsertCalls++
	for _, sms := range batch {
		sms.ID = s.nextSmsID
		s.nextSmsID++
		s.smsRows = append(s.smsRows, sms)
	}
	return int64(len(batch)), nil
}

// QueryTextOnlyByDateAscending implements store.MmsStore.
func (s *Store) QueryTextOnlyByDateAscending(_ context.Context) (store.MmsCursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []*telephony.Mms
	for _, row := range s.mmsRows {
		if row.TextOnly == 1 {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].ID < rows[j].ID
	})
	return &mmsCursor{rows: rows}, nil
}

// IDsByDate implements store.MmsStore.
func (s *Store) IDsByDate(_ context.Context, date int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for _, row := range s.mmsRows {
		if row.Date == date {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

// Body implements store.MmsStore. Seeded bodies take precedence;
// otherwise the body is assembled from inserted text parts the way the
// sqlite store does.
func (s *Store) Body(_ context.Context, id int64) (*telephony.MmsBody, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bodies[id]; ok {
		cp := *b
		return &cp, nil
	}

	var text strings.Builder
	charset := 0
	found := false
	for _, p := range s.parts {
		if p.MmsID != id || p.ContentType != telephony.ContentTypeText {
			continue
		}
		text.WriteString(p.Text)
		if p.Charset != nil {
			charset = *p.Charset
		}
		found = true
	}
	if !found {
		return nil, nil
	}
	return &telephony.MmsBody{Text: text.String(), Charset: charset}, nil
}

// Addresses implements store.MmsStore.
func (s *Store) Addresses(_ context.Context, id int64) ([]telephony.MmsAddress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []telephony.MmsAddress
	for _, a := range s.addrs[id] {
		if a.Address == "" {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Insert implements store.MmsStore.
func (s *Store) Insert(_ context.Context, mms *telephony.Mms) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailMmsInsert != nil {
		return 0, s.FailMmsInsert
	}
	mms.ID = s.nextMmsID
	s.nextMmsID++
	s.mmsRows = append(s.mmsRows, mms)
	return mms.ID, nil
}

// InsertPart implements store.MmsStore.
func (s *Store) InsertPart(_ context.Context, part *telephony.MmsPart) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPartInsert != nil {
		return 0, s.FailPartInsert
	}
	part.ID = s.nextPartID
	s.nextPartID++
	s.parts = append(s.parts, part)
	return part.ID, nil
}

// ReassignParts implements store.MmsStore.
func (s *Store) ReassignParts(_ context.Context, partIDs []int64, mmsID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[int64]struct{}, len(partIDs))
	for _, id := range partIDs {
		want[id] = struct{}{}
	}
	for _, p := range s.parts {
		if _, ok := want[p.ID]; ok {
			p.MmsID = mmsID
		}
	}
	return nil
}

// InsertAddress implements store.MmsStore.
func (s *Store) InsertAddress(_ context.Context, mmsID int64, addr telephony.MmsAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAddrInsert != nil {
		return s.FailAddrInsert
	}
	s.addrs[mmsID] = append(s.addrs[mmsID], addr)
	return nil
}

// RecipientIDs implements store.ThreadStore.
func (s *Store) RecipientIDs(_ context.Context, threadID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, ok := s.threadRecipients[threadID]
	if !ok {
		return "", store.ErrNotFound
	}
	return ids, nil
}

// CanonicalAddress implements store.ThreadStore.
func (s *Store) CanonicalAddress(_ context.Context, id int64) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr, ok := s.canonicalByID[id]
	return addr, ok, nil
}

// GetOrCreateThread implements store.ThreadStore.
func (s *Store) GetOrCreateThread(_ context.Context, recipients []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(recipients))
	for _, addr := range recipients {
		id, ok := s.canonicalByAddr[addr]
		if !ok {
			id = s.nextCanonID
			s.nextCanonID++
			s.canonicalByAddr[addr] = id
			s.canonicalByID[id] = addr
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fields := make([]string, len(ids))
	for i, id := range ids {
		fields[i] = strconv.FormatInt(id, 10)
	}
	key := strings.Join(fields, " ")

	if threadID, ok := s.threadByKey[key]; ok {
		return threadID, nil
	}
	threadID := s.nextThreadID
	s.nextThreadID++
	s.threadByKey[key] = threadID
	s.threadRecipients[threadID] = key
	return threadID, nil
}

// ActiveLines implements store.LineStore.
func (s *Store) ActiveLines(_ context.Context) ([]telephony.LineRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]telephony.LineRegistration(nil), s.lines...), nil
}
