// Package version holds build metadata injected via -ldflags.
package version

var (
	Version   = "0.3.0"
	Commit    = ""
	BuildDate = ""
)
