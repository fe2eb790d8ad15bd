// Package log wraps [log/slog] with a fixed set of levels, functional
// configuration and a lipgloss-styled pretty printer.
//
// A [Logger] is built with [Make] and adjusted with options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Info("document parsed", slog.String("file", path))
//
// Logging methods take [slog.Attr] values only. Each level has a variant
// taking a [context.Context]; the others use [DefaultContextProvider].
//
// [Logger.With] returns a logger that adds attributes to every record, and
// [Logger.Wrap] returns one with options applied on top of the current
// configuration. Both leave the receiver unchanged.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-token and
// per-binding output of the parser. The zero [Logger] discards everything.
//
// # Output
//
// Records are encoded as [FormatJSON] (the default) or [FormatText].
// [WithPretty] prints text records on one colorized line and JSON records as
// an indented block. [WithTimeLayout] accepts the names of the [time] layout
// constants or a literal layout, and "none" drops timestamps.
//
// # Default logger
//
// The package-level functions such as [Info] write to a logger on standard
// error. [Config] reconfigures it and [Default] returns it.
package log
