package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

type fakePublisher struct {
	syncs   []int64
	deletes []int64
	fail    error
}

func (p *fakePublisher) PublishTransactionSync(_ context.Context, id, _ int64) error {
	if p.fail != nil {
		return p.fail
	}
	p.syncs = append(p.syncs, id)
	return nil
}

func (p *fakePublisher) PublishTransactionDelete(_ context.Context, id int64) error {
	if p.fail != nil {
		return p.fail
	}
	p.deletes = append(p.deletes, id)
	return nil
}

func valid() core.Transaction {
	return core.Transaction{
		Title:    "Groceries",
		Amount:   core.Money{Cents: 4500},
		Type:     core.Expense,
		Category: "Food",
		Date:     core.NewDate(2024, 1, 5),
	}
}

func TestCreatePublishesSync(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, valid())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.syncs) != 1 || pub.syncs[0] != id {
		t.Fatalf("syncs=%v, want [%d]", pub.syncs, id)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)

	tx := valid()
	tx.Title = "  "
	if _, err := svc.CreateTransaction(context.Background(), tx); !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if len(pub.syncs) != 0 {
		t.Fatal("invalid transaction must not be published")
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	pub := &fakePublisher{fail: errors.New("broker down")}
	st := memory.New()
	svc := NewTransactionService(st, pub)
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, valid())
	if err != nil {
		t.Fatalf("create must succeed when publishing fails: %v", err)
	}
	if _, err := st.GetTransaction(ctx, id); err != nil {
		t.Fatalf("transaction must be stored locally: %v", err)
	}
}

func TestDeletePublishesDelete(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, valid())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(pub.deletes) != 1 || pub.deletes[0] != id {
		t.Fatalf("deletes=%v, want [%d]", pub.deletes, id)
	}
}

func TestDeleteMissingRow(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)

	err := svc.DeleteTransaction(context.Background(), 404)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.deletes) != 0 {
		t.Fatal("missing row must not publish a delete message")
	}
}

func TestNilPublisherIsLocalOnly(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil)
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, valid())
	if err != nil {
		t.Fatalf("create without publisher: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("delete without publisher: %v", err)
	}
}

func TestUpdatePublishesSync(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, valid())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated := valid()
	updated.ID = id
	updated.Title = "Groceries and snacks"
	if err := svc.UpdateTransaction(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(pub.syncs) != 2 {
		t.Fatalf("syncs=%v, want create and update", pub.syncs)
	}
}
