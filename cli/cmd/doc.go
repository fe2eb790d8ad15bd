// Package cmd implements the nixattr subcommands: get, set, list, dump, repl
// and init.
//
// Commands receive their input file, output streams and the parsed
// [kong.Context] through the [context.Context] passed to Run. See
// [WithSource], [WithStreams] and [WithContext].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file written by init.
	ConfigIdentifier = "config"

	// FileIdentifier is the kong variable identifier containing the default
	// input file.
	FileIdentifier = "file"
)
