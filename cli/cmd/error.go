package cmd

import "github.com/ardnew/gomeson/lang"

// Command errors. Each wraps its cause and carries the attributes of the
// failed operation for the top-level error log.
var (
	ErrJSONMarshal = lang.NewError("marshal JSON")
	ErrYAMLMarshal = lang.NewError("marshal YAML")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
	ErrOpenSource  = lang.NewError("open source")
	ErrCrossFile   = lang.NewError("read cross file")
	ErrDefine      = lang.NewError("No value specified for option")
	ErrSetup       = lang.NewError("configure project")
	ErrFilter      = lang.NewError("filter build description")
)
