// Package store defines the ports the HTTP layer and services depend on.
// Concrete adapters live in internal/storage (SQLite) and store/memory.
package store

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

var ErrNotFound = errors.New("record not found")

type (
	// TransactionStore holds the authoritative transaction list.
	TransactionStore interface {
		// CreateTransaction persists a new record and returns its ID.
		CreateTransaction(ctx context.Context, tx core.Transaction) (int64, error)

		// UpdateTransaction replaces the stored record identified by tx.ID.
		UpdateTransaction(ctx context.Context, tx core.Transaction) error

		// DeleteTransaction removes the record. Implementations may soft
		// delete; deleted records never show up in reads.
		DeleteTransaction(ctx context.Context, id int64) error

		// GetTransaction returns one record or ErrNotFound.
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)

		// ListTransactions returns every record ordered by date descending.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// BudgetStore keeps one spending limit per calendar month.
	BudgetStore interface {
		// BudgetLimit returns the limit for a month key, zero when unset.
		BudgetLimit(ctx context.Context, month string) (core.Money, error)

		// SetBudgetLimit stores or replaces the limit for a month key.
		SetBudgetLimit(ctx context.Context, month string, limit core.Money) error
	}

	// PreferenceStore keeps the user's display preferences.
	PreferenceStore interface {
		Preferences(ctx context.Context) (Preferences, error)
		SavePreferences(ctx context.Context, p Preferences) error
	}
)

// Preferences are presentation-only settings; the aggregation core receives
// the currency symbol as a plain parameter and never reads these directly.
type Preferences struct {
	Theme    string // "light" or "dark"
	Currency string // display symbol, e.g. "₹"
}

// DefaultPreferences mirrors the UI defaults.
func DefaultPreferences() Preferences {
	return Preferences{Theme: "light", Currency: "₹"}
}

// MonthKey formats a year/month pair as the budget storage key, e.g. "2024-01".
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
