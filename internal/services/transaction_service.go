package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
)

// syncPublisher is the slice of the AMQP client the service needs. Nil means
// the deployment runs without a broker and changes are picked up by the
// reconcile sweep instead.
type syncPublisher interface {
	PublishTransactionSync(ctx context.Context, id, version int64) error
	PublishTransactionDelete(ctx context.Context, id int64) error
}

// versionReader is implemented by stores that track row versions for the
// backup mirror. The in-memory store does not.
type versionReader interface {
	TransactionVersion(ctx context.Context, id int64) (int64, error)
}

// TransactionService orchestrates writes across the local store and the
// mirror queue. The local write always wins: publish failures are logged,
// never surfaced, because the reconcile sweep will catch the row later.
type TransactionService struct {
	store     store.TransactionStore
	publisher syncPublisher
}

func NewTransactionService(st store.TransactionStore, publisher syncPublisher) *TransactionService {
	return &TransactionService{
		store:     st,
		publisher: publisher,
	}
}

func (s *TransactionService) CreateTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	fields := applog.NewFields().
		WithComponent(applog.ComponentTransaction).
		WithOperation(applog.OpCreate).
		WithTransaction(id, tx.Title, tx.Amount.Cents, string(tx.Type), tx.Category)
	slog.InfoContext(ctx, "Transaction created", fields.ToSlice()...)

	s.publishSync(ctx, id)
	return id, nil
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.publishSync(ctx, tx.ID)
	return nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message",
				"id", id, "error", err)
		}
	}
	return nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// publishSync stamps the message with the row's current version so the
// worker can drop it when a newer write lands first.
func (s *TransactionService) publishSync(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}

	version := int64(1)
	if vr, ok := s.store.(versionReader); ok {
		v, err := vr.TransactionVersion(ctx, id)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to read transaction version",
				"id", id, "error", err)
			return
		}
		version = v
	}

	if err := s.publisher.PublishTransactionSync(ctx, id, version); err != nil {
		fields := applog.NewFields().
			WithComponent(applog.ComponentTransaction).
			WithOperation(applog.OpMirror).
			WithError(err)
		fields[applog.FieldTransactionID] = id
		fields[applog.FieldVersion] = version
		slog.ErrorContext(ctx, "Failed to publish sync message", fields.ToSlice()...)
	}
}

// Close releases the store and the publisher, collecting both errors.
func (s *TransactionService) Close() error {
	var errs []error

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if closer, ok := s.publisher.(interface{ Close() error }); ok && s.publisher != nil {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
