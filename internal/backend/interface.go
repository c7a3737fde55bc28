// Package backend selects and wires the persistence layer for the API
// server based on configuration.
package backend

import (
	"fintrack/internal/amqp"
	"fintrack/internal/store"
)

// Stores bundles the three persistence ports every backend provides.
type Stores struct {
	Transactions store.TransactionStore
	Budgets      store.BudgetStore
	Preferences  store.PreferenceStore
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result is a wired backend. Publisher is nil when no broker is
// configured; the server then runs local-only and the reconcile sweep
// picks up pending rows.
type Result struct {
	Stores    Stores
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}
