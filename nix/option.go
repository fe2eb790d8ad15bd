package nix

import "github.com/ardnew/nixattr/log"

// DefaultMaxDepth is the default limit on nested sets, lists and prefixes.
const DefaultMaxDepth = 512

// Option configures [Parse] and [ParseReader].
type Option func(options) options

type options struct {
	logger   log.Logger
	filename string
	maxDepth int
}

func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		o = opt(o)
	}

	return o
}

// WithLogger sets the logger used for trace output during parsing.
// The zero [log.Logger] discards everything.
func WithLogger(logger log.Logger) Option {
	return func(o options) options {
		o.logger = logger

		return o
	}
}

// WithMaxDepth sets the nesting limit. Values below 1 disable the limit.
func WithMaxDepth(depth int) Option {
	return func(o options) options {
		o.maxDepth = depth

		return o
	}
}

// WithFilename names the source in [SyntaxError] messages.
func WithFilename(name string) Option {
	return func(o options) options {
		o.filename = name

		return o
	}
}
