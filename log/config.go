package log

import (
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"
)

// FormatTime renders a record timestamp. An empty result drops the time.
type FormatTime func(time.Time) string

// Defaults of a new [Logger] besides [DefaultLevel] and [DefaultFormat].
const (
	DefaultTimeLayout = time.RFC3339
	DefaultCaller     = false
	DefaultPretty     = true
)

// config is the state shared by a [Logger] and its copies. Options mutate it
// under mutex.
type config struct {
	mutex      *sync.RWMutex
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

func makeConfig(w io.Writer, opts ...Option) config {
	c := config{mutex: &sync.RWMutex{}}

	return apply(c, append([]Option{WithDefaults(w)}, opts...)...)
}

// clone returns a copy of c with its own mutex and opts applied.
func (c config) clone(opts ...Option) config {
	c.mutex = &sync.RWMutex{}

	return apply(c, opts...)
}

// handlers constructs the handler for each format, indexed by pretty.
var handlers = map[Format][2]func(io.Writer, *slog.HandlerOptions) slog.Handler{
	FormatJSON: {
		func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewJSONHandler(w, o) },
		newPrettyJSONHandler,
	},
	FormatText: {
		func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, o) },
		newPrettyTextHandler,
	},
}

// handler builds the slog.Handler described by c.
func (c config) handler() slog.Handler {
	ctor, ok := handlers[c.format]
	if !ok {
		return slog.DiscardHandler
	}

	pretty := 0
	if c.pretty {
		pretty = 1
	}

	return ctor[pretty](c.output, &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	})
}

// replaceAttr formats the time with the configured layout, dropping it when
// the layout is empty, and writes levels by name so trace is not shown as
// DEBUG-4.
func (c config) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			text := c.formatTime(t)
			if text == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(text)
		}

	case slog.LevelKey:
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
		}
	}

	return a
}

// layoutAliases lists the names accepted by [WithTimeLayout] for each
// [time] layout constant. Names are compared in lowercase with everything
// but letters and digits removed.
var layoutAliases = []struct {
	layout string
	names  []string
}{
	{"", []string{"none"}},
	{time.RFC3339, []string{"rfc3339"}},
	{time.RFC3339Nano, []string{"rfc3339nano"}},
	{time.RFC822, []string{"rfc822"}},
	{time.RFC822Z, []string{"rfc822z"}},
	{time.RFC850, []string{"rfc850"}},
	{time.ANSIC, []string{"ansic"}},
	{time.UnixDate, []string{"unixdate"}},
	{time.RubyDate, []string{"rubydate"}},
	{time.Kitchen, []string{"kitchen"}},
	{time.Stamp, []string{"stamp"}},
	{time.StampMilli, []string{"stampmilli", "milli", "millis", "ms"}},
	{time.StampMicro, []string{"stampmicro", "micro", "micros", "us"}},
	{time.StampNano, []string{"stampnano", "nano", "nanos", "ns"}},
	{time.DateTime, []string{"datetime"}},
	{time.DateOnly, []string{"dateonly", "date"}},
	{time.TimeOnly, []string{"timeonly", "time"}},
}

// lookupLayout returns the layout named by name, or name itself.
func lookupLayout(name string) string {
	key := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return -1
	}, strings.ToLower(name))

	if key == "" {
		return ""
	}

	for _, a := range layoutAliases {
		if slices.Contains(a.names, key) {
			return a.layout
		}
	}

	return name
}

func makeFormatTimeFunc(layout string) FormatTime {
	layout = lookupLayout(layout)
	if layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
