package simplex

import "github.com/pkg/errors"

// DefaultIterationLimit bounds the number of pivots of a single phase.
const DefaultIterationLimit = 10000

// Logger receives the pivot trace of a solve.
type Logger interface {
	Print(v ...interface{})
}

type noopLogger struct{}

func (noopLogger) Print(v ...interface{}) {}

type config struct {
	logger         Logger
	iterationLimit int
	bland          bool
}

func defaultConfig() config {
	return config{logger: noopLogger{}, iterationLimit: DefaultIterationLimit}
}

// Option configures a Solver.
type Option func(*config) error

// WithLogger traces every base change with a float view of the tableau,
// and the exact tableau after each phase.
// A nil logger disables tracing.
func WithLogger(l Logger) Option {
	return func(c *config) error {
		if l == nil {
			l = noopLogger{}
		}
		c.logger = l
		return nil
	}
}

// WithIterationLimit sets the number of pivots a phase may take before it
// fails with ErrCyclingSuspected.
func WithIterationLimit(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return errors.Errorf("simplex: iteration limit must be positive, got %d", n)
		}
		c.iterationLimit = n
		return nil
	}
}

// WithBlandRule picks the lowest improving column and breaks ratio ties on
// the lowest basic column, which rules out cycling.
func WithBlandRule() Option {
	return func(c *config) error {
		c.bland = true
		return nil
	}
}
