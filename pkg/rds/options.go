package rds

import "github.com/bft-labs/rdsparse/pkg/log"

// Option configures a Splitter or a Decoder.
type Option func(*options)

type options struct {
	logger log.Logger
	strict bool
	tokens int
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		tokens: DefaultTokens,
	}
}

// WithLogger sets the logger used to report skipped lines.
// If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStrict makes the splitter abort on the first malformed tagged line
// instead of skipping it.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithTokens sets how many trailing tokens of each row the decoder reads.
// Values below 1 keep the default.
func WithTokens(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.tokens = n
		}
	}
}
