// Telebackup - Quota-Bounded SMS/MMS Backup and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/telebackup

package archive

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/telebackup/internal/identity"
	"github.com/tomtom215/telebackup/internal/logging"
)

// DecodeContext carries the pass-scoped resolvers the decode direction
// needs: the reverse phone lookup and the thread get-or-create. One
// context is built per restore pass and discarded afterwards.
type DecodeContext struct {
	Subs    *identity.Subscriptions
	Threads *identity.ThreadResolver
}

// decodeRecipients parses the recipients array value.
func decodeRecipients(raw json.RawMessage) ([]string, error) {
	var recipients []string
	if err := json.Unmarshal(raw, &recipients); err != nil {
		return nil, fmt.Errorf("invalid recipients value: %w", err)
	}
	return recipients, nil
}

// resolveThread maps a decoded recipient set to a thread reference,
// creating the thread on first sight within the pass. Resolution failure
// degrades to thread 0 rather than failing the record.
func resolveThread(ctx context.Context, dc *DecodeContext, recipients []string) int64 {
	id, err := dc.Threads.ThreadForRecipients(ctx, recipients)
	if err != nil {
		logging.Warn().Err(err).Strs("recipients", recipients).Msg("Failed to resolve thread for recipients")
		return 0
	}
	return id
}

// skipUnknownField records a tolerated schema-drift key. Unrecognized
// keys are skipped without error; the schema is forward-compatible.
func skipUnknownField(kind Kind, key string) {
	logging.Debug().Str("kind", string(kind)).Str("key", key).Msg("Skipping unrecognized archive field")
}
