// Package cli contains the command line interface for nixattr.
//
// # Usage
//
//	nixattr [-f FILE] get PATH [--format raw|json|yaml]
//	nixattr [-f FILE] [-i] set PATH [VALUE]
//	nixattr [-f FILE] list [--where EXPR] [--format text|json|yaml]
//	nixattr [-f FILE] dump [tree|json|yaml]
//	nixattr [-f FILE] repl
//	nixattr init [--force]
//
// FILE defaults to /etc/nixos/configuration.nix; "-" reads stdin. set prints
// the edited document unless -i is given, in which case the file is replaced
// atomically. The replacement is refused if the file changed after it was
// read.
//
// # Configuration
//
// Flag defaults are read from config.json and config.nix in the user
// configuration directory (e.g. ~/.config/nixattr). The Nix file is an
// attribute set whose bindings are named after flags, either verbatim or with
// hyphens read as path separators:
//
//	{
//	  log.level = "debug";
//	  log-format = "text";
//	}
//
// Run "nixattr init" to write a config.nix holding the current flag values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
// The profiling flags are then:
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/nixattr/pprof)
package cli
