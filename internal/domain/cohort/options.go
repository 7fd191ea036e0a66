package cohort

const (
	defaultMaxK          = 3
	defaultSeed          = 42
	defaultRestarts      = 10
	defaultMaxIterations = 300
)

// Option applies a configuration option to the clusterer.
type Option func(*clusterer)

// WithMaxK caps the number of cohorts.
func WithMaxK(k int) Option {
	return func(c *clusterer) {
		if k > 0 {
			c.maxK = k
		}
	}
}

// WithSeed fixes the random source used for seeding centroids.
func WithSeed(seed int64) Option {
	return func(c *clusterer) {
		c.seed = seed
	}
}

// WithRestarts sets how many seedings are tried; the lowest inertia wins.
func WithRestarts(n int) Option {
	return func(c *clusterer) {
		if n > 0 {
			c.restarts = n
		}
	}
}

// WithMaxIterations bounds the Lloyd iterations per restart.
func WithMaxIterations(n int) Option {
	return func(c *clusterer) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

type clusterer struct {
	maxK          int
	seed          int64
	restarts      int
	maxIterations int
}
