package intersect

import (
	"github.com/kbukum/consensus/logger"
	"github.com/kbukum/consensus/observability"
)

const defaultName = "intersection"

// Option configures a Combinator.
type Option func(*options)

type options struct {
	name           string
	log            *logger.Logger
	metrics        *observability.Metrics
	maxConcurrency int
}

func defaultOptions() options {
	return options{
		name: defaultName,
		log:  logger.Nop(),
	}
}

// WithName sets the name reported by Name, in logs and in metrics.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets the logger used for per-invocation debug and failure lines.
// A nil logger keeps logging disabled.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics records invocation counts, durations and result sizes.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithMaxConcurrency bounds how many sources of one invocation run at the
// same time. Zero or negative means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(o *options) { o.maxConcurrency = n }
}
