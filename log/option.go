package log

import (
	"io"
	"sync"
)

// Option adjusts the configuration of a [Logger] built by [Make],
// [Logger.Wrap] or [Config].
type Option func(config) config

func apply(c config, opts ...Option) config {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// update wraps set as an Option that runs under the config's write lock.
func update(set func(*config)) Option {
	return func(c config) config {
		if c.mutex == nil {
			c.mutex = &sync.RWMutex{}
		} else {
			c.mutex.Lock()
			defer c.mutex.Unlock()
		}

		set(&c)

		return c
	}
}

// WithDefaults resets every setting to its Default constant and writes to w.
func WithDefaults(w io.Writer) Option {
	return update(func(c *config) {
		c.output = orDiscard(w)
		c.formatTime = makeFormatTimeFunc(DefaultTimeLayout)
		c.level = DefaultLevel
		c.format = DefaultFormat
		c.caller = DefaultCaller
		c.pretty = DefaultPretty
	})
}

// WithOutput sends records to w. A nil w discards them.
func WithOutput(w io.Writer) Option {
	return update(func(c *config) { c.output = orDiscard(w) })
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return w
}

// WithLevel drops records below level.
func WithLevel(level Level) Option {
	return update(func(c *config) { c.level = level })
}

// WithFormat selects the record encoding.
func WithFormat(format Format) Option {
	return update(func(c *config) { c.format = format })
}

// WithTimeLayout sets the timestamp layout.
//
// Names of [time] layout constants are matched case-insensitively, ignoring
// punctuation ("RFC3339", "kitchen", "stamp-milli"), and "ms", "us" and "ns"
// select the Stamp layouts. Any other text is a [time.Time.Format] layout.
// An empty layout or "none" drops the timestamp.
func WithTimeLayout(layout string) Option {
	format := makeFormatTimeFunc(layout)

	return update(func(c *config) { c.formatTime = format })
}

// WithCaller adds the source location of each logging call.
func WithCaller(enable bool) Option {
	return update(func(c *config) { c.caller = enable })
}

// WithPretty colorizes output with lipgloss. Text records lose their quoting
// and JSON records are indented.
func WithPretty(enable bool) Option {
	return update(func(c *config) { c.pretty = enable })
}
