package repository

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidTransaction = errors.New("invalid transaction")
)
