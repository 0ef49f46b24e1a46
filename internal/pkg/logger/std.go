// Package logger provides the diagnostic logger behind ports.Logger.
// Diagnostics are separate from the audit trail, which is handled by the
// audit package and never routed through here.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
)

// StdLogger writes level-tagged lines with sorted key=value fields. Debug
// and Info stay quiet unless verbose mode is on; Warn and Error always
// emit, since they signal degraded behavior the operator should see.
type StdLogger struct {
	verbose bool
	out     *log.Logger
}

// NewStd creates a StdLogger writing to stderr.
func NewStd(verbose bool) *StdLogger {
	return NewStdTo(verbose, os.Stderr)
}

// NewStdTo creates a StdLogger writing to w.
func NewStdTo(verbose bool, w io.Writer) *StdLogger {
	return &StdLogger{verbose: verbose, out: log.New(w, "kaalsec ", log.LstdFlags)}
}

func (l *StdLogger) Debug(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	l.emit("DEBUG", msg, fields)
}

func (l *StdLogger) Info(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	l.emit("INFO", msg, fields)
}

func (l *StdLogger) Warn(msg string, fields map[string]interface{}) {
	l.emit("WARN", msg, fields)
}

func (l *StdLogger) Error(msg string, err error, fields map[string]interface{}) {
	if err != nil {
		merged := make(map[string]interface{}, len(fields)+1)
		for key, value := range fields {
			merged[key] = value
		}
		merged["error"] = err.Error()
		fields = merged
	}
	l.emit("ERROR", msg, fields)
}

func (l *StdLogger) emit(level, msg string, fields map[string]interface{}) {
	if formatted := formatFields(fields); formatted != "" {
		l.out.Printf("%s %s %s", level, msg, formatted)
		return
	}
	l.out.Printf("%s %s", level, msg)
}

// formatFields renders fields as space-joined key=value pairs in sorted key
// order, so log lines stay stable and greppable.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, fields[key]))
	}
	return strings.Join(pairs, " ")
}
