// Package profile provides optional runtime profiling for gomeson.
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof -o gomeson .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op, so
// callers never need to check which build they run in.
//
// # Modes
//
// allocs, block, clock, cpu, goroutine, heap, mem, mutex, thread, trace.
// Profiles are written to [Profiler.Path] with names matching the mode
// (cpu.pprof, mem.pprof, ...).
//
// # Command line
//
//	gomeson --pprof-mode cpu setup build
//	gomeson --pprof-mode heap --pprof-dir ./profiles introspect
//
// The default directory is $XDG_CACHE_HOME/gomeson/pprof. Analyze a profile
// with go tool pprof:
//
//	go tool pprof -http=: ~/.cache/gomeson/pprof/cpu.pprof
//
// Interpreting a large project is dominated by compiler probes, which run in
// child processes and do not appear in a CPU profile; use clock mode to see
// the time spent waiting on them.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
