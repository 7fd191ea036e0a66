package repository

import "io"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithIDSource draws transaction ids from r instead of crypto/rand, which
// makes ids reproducible in tests.
func WithIDSource(r io.Reader) Option {
	return func(s *MemoryStore) {
		if r != nil {
			s.idSource = r
		}
	}
}
