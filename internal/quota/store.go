// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package quota

import (
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// State is the persisted quota situation as last reported by the remote
// side. BackupBytes and QuotaBytes are the sizes from the exceeded
// notification; ResetAt is the millisecond epoch after which the state
// no longer throttles backups.
type State struct {
	BackupBytes int64 `json:"backup_bytes"`
	QuotaBytes  int64 `json:"quota_bytes"`
	ResetAt     int64 `json:"reset_at"`
}

// Store persists quota state between process runs.
type Store interface {
	// Load returns the stored state, or (nil, nil) when none is stored.
	Load() (*State, error)
	// Save replaces the stored state.
	Save(s *State) error
	// Clear removes the stored state. Clearing an empty store is not an
	// error.
	Clear() error
}

// MemoryStore is an in-process Store for tests and ephemeral runs.
type MemoryStore struct {
	mu    sync.Mutex
	state *State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load() (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	cp := *m.state
	return &cp, nil
}

// Save implements Store.
func (m *MemoryStore) Save(s *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.state = &cp
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}

// quotaStateKey is the single key BadgerStore uses.
var quotaStateKey = []byte("quota:state")

// BadgerStore persists quota state in a Badger keyspace. The store does
// not own the database; the caller opens and closes it.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore wraps an open Badger database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Load implements Store.
func (b *BadgerStore) Load() (*State, error) {
	var state *State
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(quotaStateKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var s State
			if err := json.Unmarshal(val, &s); err != nil {
				return fmt.Errorf("failed to decode quota state: %w", err)
			}
			state = &s
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load quota state: %w", err)
	}
	return state, nil
}

// Save implements Store.
func (b *BadgerStore) Save(s *State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode quota state: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(quotaStateKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to save quota state: %w", err)
	}
	return nil
}

// Clear implements Store.
func (b *BadgerStore) Clear() error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(quotaStateKey)
	})
	if err != nil {
		return fmt.Errorf("failed to clear quota state: %w", err)
	}
	return nil
}
