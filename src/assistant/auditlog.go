package assistant

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/collabsql/collabsql/src/genai"
)

// auditCapacity bounds each user's persisted history; oldest entries are
// trimmed first.
const auditCapacity = 100

// AuditEntry is one persisted translation turn.
type AuditEntry struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Query     string       `json:"nl"`
	SQL       string       `json:"sql"`
	APIKey    string       `json:"api_key,omitempty"`
	Usage     *genai.Usage `json:"usage,omitempty"`
	LatencyMS int64        `json:"latency_ms,omitempty"`
}

// AuditLog persists an append-only per-user history of translation turns as
// <dir>/<username>/history.json. Written by the engine, read by nothing in
// the core.
type AuditLog struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
}

// NewAuditLog creates an audit log rooted at dir on the given filesystem.
func NewAuditLog(fs afero.Fs, dir string) *AuditLog {
	return &AuditLog{fs: fs, dir: dir}
}

// Append records one turn for the user, trimming the log to the most recent
// entries.
func (l *AuditLog) Append(username string, entry AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.SQL == "" {
		entry.SQL = "N/A (Non-SQL response)"
	}

	userDir := filepath.Join(l.dir, username)
	if err := l.fs.MkdirAll(userDir, 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	path := filepath.Join(userDir, "history.json")

	var history []AuditEntry
	if data, err := afero.ReadFile(l.fs, path); err == nil {
		// A corrupt log starts over rather than blocking the turn.
		_ = json.Unmarshal(data, &history)
	}

	history = append(history, entry)
	if len(history) > auditCapacity {
		history = history[len(history)-auditCapacity:]
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode audit history: %w", err)
	}
	if err := afero.WriteFile(l.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write audit history: %w", err)
	}
	return nil
}

// Read returns the user's persisted history, oldest first. Missing files
// yield an empty history.
func (l *AuditLog) Read(username string) ([]AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.dir, username, "history.json")
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, nil
	}
	var history []AuditEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to decode audit history: %w", err)
	}
	return history, nil
}
