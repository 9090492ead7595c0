// Package sheets defines the port for the optional spreadsheet mirror:
// a one-way audit trail of ledger mutations kept outside the primary
// database.
package sheets

import (
	"context"

	"soyte/internal/core"
)

type (
	// EntryAppender appends one row per ledger mutation. op is the
	// change kind (created, updated, deleted).
	EntryAppender interface {
		AppendEntry(ctx context.Context, userID string, month core.Month, e core.Entry, op string) (rowRef string, err error)
	}
)
