// Package log is the structured logger shared by the interpreter, the host
// runtime and the command line. It wraps [log/slog] with a fixed set of
// levels (adding [LevelTrace] for interpreter internals), attribute-only
// logging methods and a zero value that discards everything.
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelDebug))
//	logger.Named("probe").Debug("compiler found", slog.String("id", "gcc"))
//
// Records are encoded as text or JSON. With [WithPretty], text is styled
// for color terminals and JSON is indented.
//
// The package-level functions write through a process-wide Logger that the
// CLI reconfigures once from its flags:
//
//	log.Config(log.WithLevel(log.ParseLevel("trace")), log.WithCaller(true))
package log
