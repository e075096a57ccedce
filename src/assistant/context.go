package assistant

import (
	"fmt"
	"strings"
	"sync"
)

// historyCapacity bounds the per-user exchange log. Oldest entries are
// discarded first.
const historyCapacity = 10

// Exchange is one completed {query, sql, table} turn kept in a user's
// context.
type Exchange struct {
	Query string `json:"query"`
	SQL   string `json:"sql,omitempty"`
	Table string `json:"table,omitempty"`
}

// ContextStore holds conversational state per user identity. Implementations
// must be safe for concurrent use; the translation engine is the only writer.
type ContextStore interface {
	// ActiveTable returns the table the user's recent interaction refers
	// to, or "" when none is set.
	ActiveTable(username string) string
	// Update records a completed turn. A non-empty table becomes the new
	// active table; an empty table never clears a previously set one.
	Update(username, table, query, sql string)
	// Summarize renders a compact digest of the user's context for
	// inclusion in prompts.
	Summarize(username string) string
	// ClearHistory drops the exchange log but keeps the active table.
	ClearHistory(username string)
	// Clear removes all state for the user.
	Clear(username string)
}

type userContext struct {
	activeTable string
	lastQuery   string
	lastSQL     string
	history     []Exchange
}

// MemoryContextStore is a mutex-guarded in-memory ContextStore. State lives
// for the process lifetime.
type MemoryContextStore struct {
	mu       sync.Mutex
	contexts map[string]*userContext
}

var _ ContextStore = (*MemoryContextStore)(nil)

// NewMemoryContextStore creates an empty context store.
func NewMemoryContextStore() *MemoryContextStore {
	return &MemoryContextStore{contexts: make(map[string]*userContext)}
}

// get lazily creates the user's context. Caller must hold the lock.
func (s *MemoryContextStore) get(username string) *userContext {
	ctx, ok := s.contexts[username]
	if !ok {
		ctx = &userContext{}
		s.contexts[username] = ctx
	}
	return ctx
}

// ActiveTable implements ContextStore.
func (s *MemoryContextStore) ActiveTable(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(username).activeTable
}

// Update implements ContextStore.
func (s *MemoryContextStore) Update(username, table, query, sql string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := s.get(username)
	if table != "" {
		ctx.activeTable = table
	}
	ctx.lastQuery = query
	ctx.lastSQL = sql
	ctx.history = append(ctx.history, Exchange{Query: query, SQL: sql, Table: table})
	if len(ctx.history) > historyCapacity {
		ctx.history = ctx.history[len(ctx.history)-historyCapacity:]
	}
}

// Summarize implements ContextStore.
func (s *MemoryContextStore) Summarize(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := s.get(username)
	var parts []string
	if ctx.activeTable != "" {
		parts = append(parts, fmt.Sprintf("Active table: %s", ctx.activeTable))
	}
	if ctx.lastQuery != "" {
		parts = append(parts, fmt.Sprintf("Last query: %s", ctx.lastQuery))
	}
	if ctx.lastSQL != "" {
		parts = append(parts, fmt.Sprintf("Last SQL: %s", ctx.lastSQL))
	}
	if len(parts) == 0 {
		return "No prior context."
	}
	return strings.Join(parts, "\n")
}

// ClearHistory implements ContextStore.
func (s *MemoryContextStore) ClearHistory(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(username).history = nil
}

// Clear implements ContextStore.
func (s *MemoryContextStore) Clear(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, username)
}

// greetingWords is the fixed set that triggers a fresh-conversation reset.
var greetingWords = map[string]bool{
	"hello":          true,
	"hi":             true,
	"hey":            true,
	"good morning":   true,
	"good afternoon": true,
	"good evening":   true,
}

// IsGreeting reports whether the text is a bare greeting. A greeting clears
// the user's exchange log so stale search terms do not leak into the next
// prompt after a topic change; the active table survives.
func IsGreeting(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.TrimRight(normalized, "!.? ")
	return greetingWords[normalized]
}
