package audit

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

// SQLiteIndex mirrors audit entries into a SQLite database so the history
// command can search across sessions. The JSONL trail stays authoritative;
// when the database cannot be opened the index degrades to a no-op.
type SQLiteIndex struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteIndex creates (or opens) ~/.kaalsec/history/history.db.
func NewSQLiteIndex(path string) *SQLiteIndex {
	if path == "" {
		path = filepath.Join(userHome(), ".kaalsec", "history", "history.db")
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteIndex{path: path}
	}
	index := &SQLiteIndex{db: db, path: path}
	if err := index.init(); err != nil {
		return &SQLiteIndex{path: path}
	}
	return index
}

func (s *SQLiteIndex) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS executions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		session_id TEXT,
		suggestion_id INTEGER,
		tool TEXT,
		command TEXT,
		displayed_command TEXT,
		outcome TEXT,
		exit_code INTEGER,
		notes TEXT,
		important INTEGER
	);`)
	return err
}

// Record implements ports.AuditIndex.
func (s *SQLiteIndex) Record(entry domain.LogEntry) error {
	if s.db == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var suggestionID, exitCode interface{}
	if entry.SuggestionID != nil {
		suggestionID = *entry.SuggestionID
	}
	if entry.ExitCode != nil {
		exitCode = *entry.ExitCode
	}
	_, err := s.db.Exec(`INSERT INTO executions
		(timestamp, session_id, suggestion_id, tool, command, displayed_command, outcome, exit_code, notes, important)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp.Format(time.RFC3339),
		entry.SessionID,
		suggestionID,
		entry.Tool,
		entry.CommandText,
		entry.DisplayedCommandText,
		string(entry.Outcome),
		exitCode,
		entry.Notes,
		boolToInt(entry.Important),
	)
	return err
}

// Search implements ports.AuditIndex (limit/term optional).
func (s *SQLiteIndex) Search(limit int, term string) ([]domain.LogEntry, error) {
	if s.db == nil {
		return nil, nil
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT timestamp, session_id, suggestion_id, tool, command, displayed_command, outcome, exit_code, notes, important FROM executions")
	var args []interface{}
	if term != "" {
		builder.WriteString(" WHERE command LIKE ? OR notes LIKE ? OR tool LIKE ?")
		pattern := "%" + term + "%"
		args = append(args, pattern, pattern, pattern)
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var entry domain.LogEntry
		var ts, outcome string
		var suggestionID, exitCode sql.NullInt64
		var important int
		if err := rows.Scan(&ts, &entry.SessionID, &suggestionID, &entry.Tool,
			&entry.CommandText, &entry.DisplayedCommandText, &outcome, &exitCode,
			&entry.Notes, &important); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Timestamp = t
		}
		if suggestionID.Valid {
			id := int(suggestionID.Int64)
			entry.SuggestionID = &id
		}
		if exitCode.Valid {
			code := int(exitCode.Int64)
			entry.ExitCode = &code
		}
		entry.Outcome = domain.Outcome(outcome)
		entry.Important = important == 1
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Path returns the database location.
func (s *SQLiteIndex) Path() string {
	return s.path
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.AuditIndex = (*SQLiteIndex)(nil)
