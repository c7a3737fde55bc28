package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for the backup mirror. The worker drives these; the Google adapter
// implements them.
type (
	RowWriter interface {
		// UpsertTransaction writes the transaction to its backup row,
		// replacing an existing row with the same ID.
		UpsertTransaction(ctx context.Context, tx core.Transaction) error
	}

	RowDeleter interface {
		// DeleteTransaction clears the backup row holding the given ID.
		// Deleting an ID with no row is not an error.
		DeleteTransaction(ctx context.Context, id int64) error
	}
)
