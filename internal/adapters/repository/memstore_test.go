package repository

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/finno/internal/domain/model"
)

func tx(amount int64, cat model.Category) model.Transaction {
	return model.Transaction{Amount: amount, Category: cat, Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestMemoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if users, txs := store.Count(ctx); users != 0 || txs != 0 {
		t.Fatalf("expected empty store, got %d users %d txs", users, txs)
	}

	if err := store.AddUser(ctx, "u1", []model.Transaction{tx(100, model.CategoryIncome), tx(40, model.CategoryFood)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.AddUser(ctx, "u2", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Transactions(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(got))
	}
	for _, g := range got {
		if g.ID == "" {
			t.Error("expected an assigned id")
		}
	}

	added, err := store.Append(ctx, "u2", tx(10, model.CategoryTransport))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added.ID == "" {
		t.Error("expected appended transaction to get an id")
	}

	if users := store.Users(ctx); len(users) != 2 || users[0] != "u1" || users[1] != "u2" {
		t.Errorf("unexpected user order %v", users)
	}
	if users, txs := store.Count(ctx); users != 2 || txs != 3 {
		t.Errorf("expected 2 users and 3 txs, got %d and %d", users, txs)
	}
	if v := store.Version(ctx); v != 3 {
		t.Errorf("expected version 3, got %d", v)
	}
}

func TestMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.AddUser(ctx, "u1", nil)

	if err := store.AddUser(ctx, "u1", nil); !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser, got %v", err)
	}
	if _, err := store.Append(ctx, "ghost", tx(1, model.CategoryFood)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Transactions(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Append(ctx, "u1", tx(-5, model.CategoryFood)); !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("expected ErrInvalidTransaction for negative amount, got %v", err)
	}
	if _, err := store.Append(ctx, "u1", tx(5, model.Category("pets"))); !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("expected ErrInvalidTransaction for unknown category, got %v", err)
	}
	if err := store.AddUser(ctx, "u2", []model.Transaction{tx(-1, model.CategoryFood)}); !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("expected ErrInvalidTransaction, got %v", err)
	}
	if users, _ := store.Count(ctx); users != 1 {
		t.Errorf("rejected writes must not add users, got %d", users)
	}
}

func TestMemoryStore_CopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	initial := []model.Transaction{tx(100, model.CategoryFood)}
	_ = store.AddUser(ctx, "u1", initial)

	initial[0].Amount = 999
	got, _ := store.Transactions(ctx, "u1")
	if got[0].Amount != 100 {
		t.Errorf("store must copy input, got amount %d", got[0].Amount)
	}

	got[0].Amount = 1
	again, _ := store.Transactions(ctx, "u1")
	if again[0].Amount != 100 {
		t.Errorf("store must return copies, got amount %d", again[0].Amount)
	}

	ids, ledgers, version := store.Population(ctx)
	_, _ = store.Append(ctx, "u1", tx(5, model.CategoryFood))
	if len(ids) != 1 || len(ledgers[0]) != 1 {
		t.Errorf("population must be a point-in-time copy, got %d txs", len(ledgers[0]))
	}
	if store.Version(ctx) <= version {
		t.Error("version must advance after a write")
	}
}

func TestMemoryStore_DeterministicIDs(t *testing.T) {
	ctx := context.Background()
	seed := bytes.Repeat([]byte{7}, 64)

	a := NewMemoryStore(WithIDSource(bytes.NewReader(seed)))
	b := NewMemoryStore(WithIDSource(bytes.NewReader(seed)))
	_ = a.AddUser(ctx, "u", []model.Transaction{tx(1, model.CategoryFood)})
	_ = b.AddUser(ctx, "u", []model.Transaction{tx(1, model.CategoryFood)})

	ta, _ := a.Transactions(ctx, "u")
	tb, _ := b.Transactions(ctx, "u")
	if ta[0].ID != tb[0].ID {
		t.Errorf("expected identical ids, got %s and %s", ta[0].ID, tb[0].ID)
	}

	exhausted := NewMemoryStore(WithIDSource(bytes.NewReader(nil)))
	if err := exhausted.AddUser(ctx, "u", []model.Transaction{tx(1, model.CategoryFood)}); err == nil {
		t.Error("expected an error from an empty id source")
	}
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.AddUser(ctx, "u1", nil)

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if _, err := store.Append(ctx, "u1", tx(1, model.CategoryFood)); err != nil {
					t.Errorf("append failed: %v", err)
				}
				_, _, _ = store.Population(ctx)
			}
		}()
	}
	wg.Wait()

	if _, txs := store.Count(ctx); txs != writers*perWriter {
		t.Errorf("expected %d transactions, got %d", writers*perWriter, txs)
	}
}
