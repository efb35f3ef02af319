// Package cli contains the command line interface for gomeson.
//
// # Usage
//
//	gomeson [flags] [setup] [builddir] [srcdir]
//	gomeson introspect --where 'kind == "executable"' build
//	gomeson ast meson.build
//	gomeson machine cross/arm.ini
//	gomeson repl
//
// setup is the default command, so "gomeson build" configures the project
// in the working directory into ./build.
//
// # Configuration Loader
//
// Flag defaults are read from the configuration directory:
//
//	$XDG_CONFIG_HOME/gomeson/config       machine file, [gomeson] section
//	$XDG_CONFIG_HOME/gomeson/config.json  flat JSON object
//
// The machine file uses the same syntax as cross files. Keys are flag names,
// with '-' and '_' interchangeable:
//
//	[gomeson]
//	log_level = 'debug'
//	timeout = '1m'
//	define = ['werror=true']
//
// "gomeson init" writes the current flag values in this form. Command-line
// flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//		go build -tags pprof -o gomeson .
//
//	  - --pprof-mode: Enable profiling (see package profile for modes)
//	  - --pprof-dir: Set profile output directory (default:
//	    $XDG_CACHE_HOME/gomeson/pprof)
package cli
