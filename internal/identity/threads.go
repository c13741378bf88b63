// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package identity

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/tomtom215/telebackup/internal/logging"
	"github.com/tomtom215/telebackup/internal/store"
)

// ThreadResolver resolves thread references to recipient address lists
// and recipient sets to thread references, memoizing both directions for
// the lifetime of one backup or restore pass. Not thread-safe; never
// share a resolver across concurrent passes.
type ThreadResolver struct {
	threads store.ThreadStore

	recipientsByThread map[int64][]string
	threadByRecipients map[string]int64
}

// NewThreadResolver creates a pass-scoped resolver over the given store.
func NewThreadResolver(threads store.ThreadStore) *ThreadResolver {
	return &ThreadResolver{
		threads:            threads,
		recipientsByThread: make(map[int64][]string),
		threadByRecipients: make(map[string]int64),
	}
}

// RecipientsForThread returns the canonical addresses of a thread's
// recipients. A thread reference <= 0 always yields an empty, uncached
// list. Lookup failures degrade to an empty list: recipient ids that fail
// to parse or resolve are skipped, and the (possibly empty) result is
// cached for the rest of the pass.
func (r *ThreadResolver) RecipientsForThread(ctx context.Context, threadID int64) []string {
	if threadID <= 0 {
		return nil
	}
	if cached, ok := r.recipientsByThread[threadID]; ok {
		return cached
	}

	recipients := r.lookupRecipients(ctx, threadID)
	r.recipientsByThread[threadID] = recipients
	return recipients
}

// lookupRecipients performs the uncached two-stage resolution: thread to
// recipient id list, then each id to its canonical address.
func (r *ThreadResolver) lookupRecipients(ctx context.Context, threadID int64) []string {
	ids, err := r.threads.RecipientIDs(ctx, threadID)
	if err != nil {
		logging.Warn().Err(err).Int64("thread_id", threadID).Msg("Failed to resolve thread recipients")
		return []string{}
	}

	recipients := make([]string, 0, 2)
	for _, field := range strings.Fields(ids) {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil || id < 0 {
			logging.Debug().Str("recipient_id", field).Msg("Skipping unparsable recipient id")
			continue
		}
		address, ok, err := r.threads.CanonicalAddress(ctx, id)
		if err != nil {
			logging.Warn().Err(err).Int64("recipient_id", id).Msg("Failed to resolve canonical address")
			continue
		}
		if !ok || address == "" {
			continue
		}
		recipients = append(recipients, address)
	}
	return recipients
}

// ThreadForRecipients returns the thread reference grouping the given
// recipient set, delegating to the store's get-or-create capability on a
// cache miss. The store side effect is not idempotent; the cache makes
// the operation idempotent within one pass. The set is keyed unordered.
func (r *ThreadResolver) ThreadForRecipients(ctx context.Context, recipients []string) (int64, error) {
	key := recipientSetKey(recipients)
	if id, ok := r.threadByRecipients[key]; ok {
		return id, nil
	}

	id, err := r.threads.GetOrCreateThread(ctx, recipients)
	if err != nil {
		return 0, err
	}
	r.threadByRecipients[key] = id
	return id, nil
}

// recipientSetKey builds an order-insensitive, duplicate-insensitive key
// for a recipient set.
func recipientSetKey(recipients []string) string {
	seen := make(map[string]struct{}, len(recipients))
	uniq := make([]string, 0, len(recipients))
	for _, a := range recipients {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		uniq = append(uniq, a)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, "\x1f")
}
