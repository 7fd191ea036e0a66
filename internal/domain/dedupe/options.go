// Package dedupe tracks idempotency keys of client writes.
package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*InMemoryDeduper)

// WithMaxSize sets the maximum number of keys kept in memory. Once full the
// oldest key is forgotten. maxSize <= 0 keeps every key.
func WithMaxSize(maxSize int) Option {
	return func(d *InMemoryDeduper) {
		d.maxSize = maxSize
	}
}
