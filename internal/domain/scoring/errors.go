package scoring

import "errors"

// Sentinel errors for this package.
var (
	ErrModelNotTrained = errors.New("health model not trained")
	ErrEmptyPopulation = errors.New("empty training population")
	ErrLabelMismatch   = errors.New("labels do not match feature rows")
)
