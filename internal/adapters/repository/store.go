// Package repository holds per-user transaction ledgers.
package repository

import (
	"context"

	"github.com/okian/finno/internal/domain/model"
)

// Store provides read/write access to user ledgers. Users keep the order in
// which they were added.
type Store interface {
	// AddUser registers a user with an initial ledger.
	// Returns ErrDuplicateUser if the id is taken.
	AddUser(ctx context.Context, userID string, txs []model.Transaction) error

	// Append validates tx, assigns an ID when it has none and appends it.
	// Returns ErrNotFound for unknown users.
	Append(ctx context.Context, userID string, tx model.Transaction) (model.Transaction, error)

	// Transactions returns a copy of the user's ledger.
	Transactions(ctx context.Context, userID string) ([]model.Transaction, error)

	// Users returns user ids in insertion order.
	Users(ctx context.Context) []string

	// Population returns a consistent copy of every ledger, aligned with the
	// returned ids, and the store version it was taken at.
	Population(ctx context.Context) (ids []string, ledgers [][]model.Transaction, version uint64)

	// Version increases on every write.
	Version(ctx context.Context) uint64

	// Count returns the number of users and transactions held.
	Count(ctx context.Context) (users, transactions int)
}
