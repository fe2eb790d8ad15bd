// Package profile provides optional runtime profiling for nixattr.
//
// Profiling is built on [github.com/pkg/profile] and is only compiled in
// with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// [Stopper], so callers never need their own build constraints.
//
// # Usage
//
//	p := profile.New(
//		profile.WithMode("cpu"),
//		profile.WithDir(dir),
//		profile.WithQuiet(true),
//	)
//	defer p.Start().Stop()
//
// Profile files are named after their mode (cpu.pprof, mem.pprof, ...) and
// written to the configured directory, which defaults to the pprof directory
// under the user cache directory:
//
//	$XDG_CACHE_HOME/nixattr/pprof   (Linux/Unix)
//	~/Library/Caches/nixattr/pprof  (macOS)
//
// Inspect them with go tool pprof:
//
//	go tool pprof -http=: $XDG_CACHE_HOME/nixattr/pprof/cpu.pprof
//
// The tagged build also imports [net/http/pprof], registering its handlers on
// [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling. It also names the
// default output subdirectory.
const Tag = `pprof`
