package app

import "errors"

// Sentinel errors returned by the engine.
var (
	ErrNotTrained  = errors.New("models not trained yet")
	ErrUnknownUser = errors.New("unknown user")
	ErrNoCohort    = errors.New("not enough users to form cohorts")

	ErrDuplicateTransaction = errors.New("transaction already added")
)
