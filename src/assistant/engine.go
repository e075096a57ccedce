package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/collabsql/collabsql/src/dbschema"
	"github.com/collabsql/collabsql/src/genai"
)

const (
	defaultCallTimeout = 30 * time.Second
	// sampleTableLimit caps how many tables get live sample rows in one
	// prompt.
	sampleTableLimit = 5
)

// ProviderFactory builds a provider client for one credential. Called once at
// startup and again after every successful key rotation.
type ProviderFactory func(apiKey string) (genai.Provider, error)

// Options configures an Engine.
type Options struct {
	// Pool holds the provider credentials. An empty pool routes every
	// request to the local fallback matcher.
	Pool *KeyPool
	// NewProvider builds the provider client for the pool's current key.
	NewProvider ProviderFactory
	// FallbackModel is tried once when the primary model is not found.
	FallbackModel string
	// Store holds per-user conversation context. Defaults to a fresh
	// in-memory store.
	Store ContextStore
	// Audit, when set, persists every completed turn.
	Audit *AuditLog
	// CallTimeout bounds each provider call. Defaults to 30s.
	CallTimeout time.Duration
	// SampleRowLimit is how many rows per table ground the prompt.
	SampleRowLimit int
	Logger         *slog.Logger
}

// Engine orchestrates a translation request end to end: prompt construction,
// the provider call with credential rotation and model fallback, response
// parsing, SQL validation with a single feedback retry, and context updates.
// Every failure is converted to an error Result; nothing escapes Translate.
type Engine struct {
	mu          sync.Mutex // guards provider swap during rotation
	provider    genai.Provider
	pool        *KeyPool
	newProvider ProviderFactory

	fallbackModel  string
	store          ContextStore
	matcher        *Matcher
	audit          *AuditLog
	callTimeout    time.Duration
	sampleRowLimit int
	logger         *slog.Logger
}

// NewEngine builds an engine from options. When the pool has credentials the
// provider client is initialized eagerly; a factory error degrades to the
// local fallback rather than failing construction.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "translation_engine")

	e := &Engine{
		pool:           opts.Pool,
		newProvider:    opts.NewProvider,
		fallbackModel:  opts.FallbackModel,
		store:          opts.Store,
		matcher:        NewMatcher(),
		audit:          opts.Audit,
		callTimeout:    opts.CallTimeout,
		sampleRowLimit: opts.SampleRowLimit,
		logger:         logger,
	}
	if e.pool == nil {
		e.pool = NewKeyPool(nil)
	}
	if e.store == nil {
		e.store = NewMemoryContextStore()
	}
	if e.callTimeout <= 0 {
		e.callTimeout = defaultCallTimeout
	}
	if e.sampleRowLimit <= 0 {
		e.sampleRowLimit = dbschema.DefaultSampleLimit
	}

	if key, idx := e.pool.Current(); key != "" && e.newProvider != nil {
		provider, err := e.newProvider(key)
		if err != nil {
			logger.Warn("provider initialization failed, using local fallback",
				"key", MaskKey(key, idx), "error", err)
		} else {
			e.provider = provider
			logger.Info("provider initialized", "key", MaskKey(key, idx), "pool_size", e.pool.Size())
		}
	}
	return e
}

// HasProvider reports whether a hosted provider client is active.
func (e *Engine) HasProvider() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.provider != nil
}

func (e *Engine) currentProvider() genai.Provider {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.provider
}

// rotate advances the key pool and swaps in a client for the new credential.
// Rotation and re-initialization commit together under one lock so two
// concurrent failures cannot both advance the index. Returns false when the
// pool is exhausted.
func (e *Engine) rotate() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.pool.Rotate() {
		return false
	}
	key, idx := e.pool.Current()
	provider, err := e.newProvider(key)
	if err != nil {
		e.logger.Error("provider re-initialization failed after rotation",
			"key", MaskKey(key, idx), "error", err)
		e.provider = nil
		return false
	}
	e.provider = provider
	e.logger.Info("rotated provider credential", "key", MaskKey(key, idx))
	return true
}

// Translate processes one natural-language request and always returns one of
// the four Result variants.
func (e *Engine) Translate(ctx context.Context, req Request) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("translation panicked", "panic", r)
			result = ErrorResult("The assistant hit an internal error. Please try again.", fmt.Sprint(r))
		}
	}()

	logger := e.logger.With("user", req.Username)
	logger.Debug("processing query", "query", req.Query)

	// A bare greeting starts a fresh topic: drop the exchange log so stale
	// search terms stop leaking into prompts. The active table survives.
	if IsGreeting(req.Query) {
		e.store.ClearHistory(req.Username)
	}

	// Explicit selection wins over stored context.
	activeTable := req.SelectedTable
	if activeTable == "" {
		activeTable = e.store.ActiveTable(req.Username)
	}

	provider := e.currentProvider()
	if provider == nil {
		result = e.matcher.Process(req.Query, req.Schema, activeTable)
		e.finish(req, activeTable, result)
		return result
	}

	result = e.translateWithProvider(ctx, provider, req, activeTable)
	e.finish(req, activeTable, result)
	return result
}

func (e *Engine) translateWithProvider(ctx context.Context, provider genai.Provider, req Request, activeTable string) Result {
	logger := e.logger.With("user", req.Username)

	prompt := BuildPrompt(PromptInput{
		Query:          req.Query,
		Schema:         req.Schema,
		ActiveTable:    activeTable,
		History:        req.History,
		ContextSummary: e.store.Summarize(req.Username),
		Samples:        e.sampleRows(ctx, req),
	})

	resp, err := e.callWithRotation(ctx, provider, prompt)
	if err != nil {
		logger.Error("provider exhausted", "error", err)
		return ErrorResult(
			"The AI engine is exhausted: all credentials and models are at their limits. Please try again in a moment.",
			err.Error())
	}

	result, err := ParseResponse(resp.Text)
	if err != nil {
		logger.Warn("unparseable model response", "error", err)
		return ErrorResult("The assistant returned a response I couldn't interpret. Please rephrase your request.", err.Error())
	}
	result.Usage = &resp.Usage
	result.Latency = resp.Latency

	if result.Type != ResultSQL || req.DB == nil {
		return result
	}

	validationErr := dbschema.Validate(ctx, req.DB, result.Query)
	if validationErr == nil {
		return result
	}
	logger.Info("generated SQL failed validation, retrying with feedback",
		"sql", result.Query, "error", validationErr)

	// Exactly one feedback retry; whatever it produces is final.
	retryPrompt := BuildPrompt(PromptInput{
		Query:          req.Query,
		Schema:         req.Schema,
		ActiveTable:    activeTable,
		History:        req.History,
		ContextSummary: e.store.Summarize(req.Username),
		Samples:        e.sampleRows(ctx, req),
		FailedSQL:      result.Query,
		ErrorFeedback:  validationErr.Error(),
	})

	retryResp, err := e.generate(ctx, e.currentProvider(), "", retryPrompt)
	if err != nil {
		return ErrorResult(
			"The generated SQL failed validation and the retry did not succeed.",
			fmt.Sprintf("validation: %v; retry: %v", validationErr, err))
	}
	retryResult, err := ParseResponse(retryResp.Text)
	if err != nil {
		return ErrorResult("The assistant returned a response I couldn't interpret.", err.Error())
	}
	retryResult.Usage = &retryResp.Usage
	retryResult.Latency = retryResp.Latency
	return retryResult
}

// providerResponse augments the raw response with wall-clock latency.
type providerResponse struct {
	genai.GenerateResponse
	Latency time.Duration
}

// generate issues a single provider call under the configured timeout.
func (e *Engine) generate(ctx context.Context, provider genai.Provider, model, prompt string) (*providerResponse, error) {
	if provider == nil {
		return nil, genai.ErrNoProvider
	}
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	start := time.Now()
	resp, err := provider.GenerateContent(callCtx, &genai.GenerateRequest{Model: model, Prompt: prompt})
	if err != nil {
		return nil, err
	}
	return &providerResponse{GenerateResponse: *resp, Latency: time.Since(start)}, nil
}

// callWithRotation runs the bounded attempt loop: rotatable failures advance
// the key pool up to poolSize-1 extra attempts, a missing model falls back to
// the lite model once, and anything else terminates.
func (e *Engine) callWithRotation(ctx context.Context, provider genai.Provider, prompt string) (*providerResponse, error) {
	model := "" // client default
	rotations := 0
	usedFallbackModel := false

	for {
		resp, err := e.generate(ctx, provider, model, prompt)
		if err == nil {
			return resp, nil
		}

		kind := genai.Classify(err)
		switch {
		case kind.Rotatable() && rotations < e.pool.Size()-1:
			if !e.rotate() {
				return nil, err
			}
			rotations++
			provider = e.currentProvider()
			e.logger.Debug("retrying after rotation", "attempt", rotations, "kind", kind.String())

		case kind == genai.KindModelNotFound && !usedFallbackModel && e.fallbackModel != "":
			usedFallbackModel = true
			model = e.fallbackModel
			e.logger.Info("model unavailable, falling back", "fallback_model", model)

		default:
			return nil, err
		}
	}
}

// sampleRows fetches a few live rows per table for prompt grounding. Errors
// are logged and skipped; grounding is best effort.
func (e *Engine) sampleRows(ctx context.Context, req Request) map[string][]map[string]any {
	if req.DB == nil {
		return nil
	}
	samples := make(map[string][]map[string]any)
	for i, table := range req.Schema.Tables {
		if i >= sampleTableLimit {
			break
		}
		rows, err := dbschema.SampleRows(ctx, req.DB, table.Name, e.sampleRowLimit)
		if err != nil {
			e.logger.Debug("sample fetch failed", "table", table.Name, "error", err)
			continue
		}
		if len(rows) > 0 {
			samples[table.Name] = rows
		}
	}
	return samples
}

// finish updates conversation context and the audit log after a completed
// turn.
func (e *Engine) finish(req Request, activeTable string, result Result) {
	table := result.TargetTable
	if table == "" {
		table = activeTable
	}

	// Null-marker SQL is canonicalized back to absent before it reaches
	// stored context.
	sqlText := result.Query
	if IsNullMarker(sqlText) {
		sqlText = ""
	}

	e.store.Update(req.Username, table, req.Query, sqlText)

	if e.audit == nil {
		return
	}
	entry := AuditEntry{
		Query:     req.Query,
		SQL:       sqlText,
		Usage:     result.Usage,
		LatencyMS: result.Latency.Milliseconds(),
	}
	if key, idx := e.pool.Current(); key != "" {
		entry.APIKey = MaskKey(key, idx)
	}
	if err := e.audit.Append(req.Username, entry); err != nil {
		e.logger.Warn("failed to append audit entry", "user", req.Username, "error", err)
	}
}
