package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Sync states for the Sheets mirror worker.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
)

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ store.TransactionStore = (*SQLiteRepository)(nil)
	_ store.BudgetStore      = (*SQLiteRepository)(nil)
	_ store.PreferenceStore  = (*SQLiteRepository)(nil)
)

// SyncRecord pairs a transaction with its row version for mirror bookkeeping.
type SyncRecord struct {
	Tx      core.Transaction
	Version int64
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (title, amount_cents, type, category, date, emotion, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.Title, tx.Amount.Cents, string(tx.Type), tx.Category,
		tx.Date.Format(dateLayout), string(tx.Emotion), tx.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"title", tx.Title,
		"amount_cents", tx.Amount.Cents,
		"type", tx.Type,
		"category", tx.Category)

	return id, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET title = ?, amount_cents = ?, type = ?, category = ?, date = ?,
		    emotion = ?, notes = ?, version = version + 1,
		    sync_status = ?, updated_at = datetime('now')
		WHERE id = ? AND deleted_at IS NULL`,
		tx.Title, tx.Amount.Cents, string(tx.Type), tx.Category,
		tx.Date.Format(dateLayout), string(tx.Emotion), tx.Notes,
		SyncPending, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

// DeleteTransaction soft deletes; the row stays around so the mirror worker
// can still resolve delete messages against it.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET deleted_at = datetime('now'), updated_at = datetime('now')
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, amount_cents, type, category, date, emotion, notes
		FROM transactions
		WHERE id = ? AND deleted_at IS NULL`, id)
	return scanTransaction(row)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount_cents, type, category, date, emotion, notes
		FROM transactions
		WHERE deleted_at IS NULL
		ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) BudgetLimit(ctx context.Context, month string) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT limit_cents FROM budgets WHERE month = ?`, month).Scan(&cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Money{}, nil // unset, not an error
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("get budget limit: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func (r *SQLiteRepository) SetBudgetLimit(ctx context.Context, month string, limit core.Money) error {
	// Zero is legal here: it puts the month back in the unset state.
	if limit.Cents < 0 {
		return core.ErrInvalidAmount
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (month, limit_cents) VALUES (?, ?)
		ON CONFLICT(month) DO UPDATE SET
		    limit_cents = excluded.limit_cents,
		    updated_at = datetime('now')`,
		month, limit.Cents)
	if err != nil {
		return fmt.Errorf("set budget limit: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Preferences(ctx context.Context) (store.Preferences, error) {
	var p store.Preferences
	err := r.db.QueryRowContext(ctx,
		`SELECT theme, currency FROM preferences WHERE id = 1`).Scan(&p.Theme, &p.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return store.DefaultPreferences(), nil
	}
	if err != nil {
		return store.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) SavePreferences(ctx context.Context, p store.Preferences) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE preferences
		SET theme = ?, currency = ?, updated_at = datetime('now')
		WHERE id = 1`,
		p.Theme, p.Currency)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// TransactionVersion returns the current row version, including soft-deleted
// rows, so publishers can stamp sync messages.
func (r *SQLiteRepository) TransactionVersion(ctx context.Context, id int64) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx,
		`SELECT version FROM transactions WHERE id = ?`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get transaction version: %w", err)
	}
	return version, nil
}

// ListPendingSync returns up to limit live rows awaiting the Sheets mirror.
func (r *SQLiteRepository) ListPendingSync(ctx context.Context, limit int) ([]SyncRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount_cents, type, category, date, emotion, notes, version
		FROM transactions
		WHERE sync_status = ? AND deleted_at IS NULL
		ORDER BY id
		LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	defer rows.Close()

	var out []SyncRecord
	for rows.Next() {
		var (
			rec     SyncRecord
			dateStr string
			typ     string
			emotion string
		)
		if err := rows.Scan(&rec.Tx.ID, &rec.Tx.Title, &rec.Tx.Amount.Cents, &typ,
			&rec.Tx.Category, &dateStr, &emotion, &rec.Tx.Notes, &rec.Version); err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		rec.Tx.Type = core.TransactionType(typ)
		rec.Tx.Emotion = core.Emotion(emotion)
		rec.Tx.Date, err = parseDate(dateStr)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkSynced records a successful mirror for one row version. A no-op when
// the row was modified again in the meantime: the newer version stays pending.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id, version int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET sync_status = ?
		WHERE id = ? AND version = ?`, SyncDone, id, version)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx      core.Transaction
		dateStr string
		typ     string
		emotion string
	)
	err := row.Scan(&tx.ID, &tx.Title, &tx.Amount.Cents, &typ, &tx.Category,
		&dateStr, &emotion, &tx.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Type = core.TransactionType(typ)
	tx.Emotion = core.Emotion(emotion)
	tx.Date, err = parseDate(dateStr)
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
