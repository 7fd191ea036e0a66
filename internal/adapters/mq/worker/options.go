// Package worker runs background model retraining.
package worker

import (
	"github.com/okian/finno/pkg/logger"
)

// Option applies a configuration option to the RetrainWorker.
type Option func(*RetrainWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *RetrainWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *RetrainWorker) {
		if l != nil {
			w.logger = l
		}
	}
}
