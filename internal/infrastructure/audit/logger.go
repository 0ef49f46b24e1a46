// Package audit owns the append-only execution trail: a line-delimited JSON
// log per session for programmatic replay, and a Markdown twin for direct
// inspection. The structured log is authoritative; the system never rotates
// or deletes either file.
package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

// FileLogger appends to ~/.kaalsec/logs/session_<date>.jsonl and its
// Markdown twin. Every append holds an exclusive advisory lock on the
// session for the duration of one record write, so concurrent invocations
// in other terminals serialize per append and partial records are never
// observable.
type FileLogger struct {
	dir   string
	index ports.AuditIndex
	log   ports.Logger
}

// NewFileLogger returns a logger rooted at dir (default ~/.kaalsec/logs).
// index may be nil; when set, appends are mirrored there best-effort.
func NewFileLogger(dir string, index ports.AuditIndex, log ports.Logger) *FileLogger {
	if dir == "" {
		dir = filepath.Join(userHome(), ".kaalsec", "logs")
	}
	return &FileLogger{dir: dir, index: index, log: log}
}

// Append implements ports.AuditLogger. The JSONL record and the Markdown
// line are written under the same lock so both artifacts carry the same
// entries in the same order.
func (l *FileLogger) Append(entry domain.LogEntry) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAuditIO, err)
	}

	lock := flock.New(l.lockPath(entry.SessionID))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: lock: %v", domain.ErrAuditIO, err)
	}
	defer lock.Unlock()

	record, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit encode: %w", err)
	}
	if err := appendLine(l.jsonlPath(entry.SessionID), append(record, '\n')); err != nil {
		return fmt.Errorf("%w: append: %v", domain.ErrAuditIO, err)
	}
	if err := l.appendMarkdown(entry); err != nil {
		return fmt.Errorf("%w: trail: %v", domain.ErrAuditIO, err)
	}

	if l.index != nil {
		if err := l.index.Record(entry); err != nil && l.log != nil {
			l.log.Warn("audit index write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// Probe implements ports.AuditLogger: it verifies the session log can be
// opened for append without writing anything. The executor calls this before
// running a command so nothing executes that could escape the trail.
func (l *FileLogger) Probe(sessionID string) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAuditIO, err)
	}
	f, err := os.OpenFile(l.jsonlPath(sessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: probe: %v", domain.ErrAuditIO, err)
	}
	return f.Close()
}

// ReadSession implements ports.AuditLogger. Hand-edited or foreign lines are
// skipped rather than failing the whole read; unknown fields in otherwise
// valid records are ignored by encoding/json, which is what keeps the schema
// additive for consumers.
func (l *FileLogger) ReadSession(sessionID string) ([]domain.LogEntry, error) {
	f, err := os.Open(l.jsonlPath(sessionID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("audit read: %w", err)
	}
	defer f.Close()

	var entries []domain.LogEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry domain.LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit read: %w", err)
	}
	return entries, nil
}

func (l *FileLogger) appendMarkdown(entry domain.LogEntry) error {
	path := l.markdownPath(entry.SessionID)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		header := fmt.Sprintf("# KaalSec Session %s\n\n| Time | Outcome | Command | Exit | Notes |\n| --- | --- | --- | --- | --- |\n", entry.SessionID)
		if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
			return err
		}
	}

	exit := "-"
	if entry.ExitCode != nil {
		exit = fmt.Sprintf("%d", *entry.ExitCode)
	}
	notes := entry.Notes
	if entry.Important {
		notes = strings.TrimSpace("IMPORTANT " + notes)
	}
	line := fmt.Sprintf("| %s | %s | `%s` | %s | %s |\n",
		entry.Timestamp.Format("15:04:05"),
		entry.Outcome,
		escapePipes(entry.DisplayedCommandText),
		exit,
		escapePipes(notes),
	)
	return appendLine(path, []byte(line))
}

func appendLine(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func (l *FileLogger) jsonlPath(sessionID string) string {
	return filepath.Join(l.dir, "session_"+sessionID+".jsonl")
}

func (l *FileLogger) markdownPath(sessionID string) string {
	return filepath.Join(l.dir, "session_"+sessionID+".md")
}

func (l *FileLogger) lockPath(sessionID string) string {
	return filepath.Join(l.dir, "session_"+sessionID+".lock")
}

func escapePipes(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}

func userHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.AuditLogger = (*FileLogger)(nil)
