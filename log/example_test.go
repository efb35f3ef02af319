package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/gomeson/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithTimeLayout("none"),
		log.WithPretty(false),
	)

	logger.Named("interp").Info("setup complete", slog.Int("targets", 3))
	logger.Debug("not written at the default level")
	// Output:
	// level=INFO msg="setup complete" component=interp targets=3
}

func Example_json() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout(""),
		log.WithPretty(false),
	)

	logger.Warn("option deprecated", slog.String("option", "b_lundef"))
	// Output:
	// {"level":"WARN","msg":"option deprecated","option":"b_lundef"}
}
