package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMissingText      = errors.New("no text provided")
	ErrMethodNotAllowed = errors.New("method not allowed")
)
