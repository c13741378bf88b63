// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

/*
Package identity maps internal numeric identifiers to externally stable
values and back.

Two resolvers exist with different lifetimes:

  - Subscriptions: subscription id <-> phone number, built once per agent
    lifetime from the active line registrations. Pure lookups, safe for
    concurrent reads.
  - ThreadResolver: thread id <-> recipient address set, backed by the
    abstract thread store with a memoization cache in each direction. A
    resolver is scoped to ONE backup or restore pass, is not thread-safe,
    and is discarded at pass end. The caches are an optimization against
    repeated store round-trips, not a correctness mechanism.
*/
package identity
