package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// minKeyLength filters out truncated or placeholder credentials.
const minKeyLength = 11

// keysFile is the on-disk shape of the credential pool.
type keysFile struct {
	Keys []string `json:"keys"`
}

// LoadKeys reads the credential pool from a keys file, filtering out empty,
// placeholder and short entries and de-duplicating while preserving order.
// When the file yields nothing, a single non-placeholder environment-supplied
// key is used instead. The returned slice may be empty; that is not an error.
func LoadKeys(fs afero.Fs, path, envKey string) ([]string, error) {
	var keys []string

	if path != "" {
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat keys file: %w", err)
		}
		if exists {
			data, err := afero.ReadFile(fs, path)
			if err != nil {
				return nil, fmt.Errorf("failed to read keys file: %w", err)
			}
			var file keysFile
			if err := json.Unmarshal(data, &file); err != nil {
				return nil, fmt.Errorf("failed to parse keys file: %w", err)
			}
			keys = filterKeys(file.Keys)
		}
	}

	if len(keys) == 0 && usableKey(envKey) {
		keys = []string{envKey}
	}
	return keys, nil
}

func usableKey(key string) bool {
	return key != "" &&
		len(key) >= minKeyLength &&
		!strings.Contains(strings.ToUpper(key), "PASTE")
}

func filterKeys(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var keys []string
	for _, k := range raw {
		k = strings.TrimSpace(k)
		if !usableKey(k) || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// KeyPool holds an ordered set of provider credentials and a current index.
// Rotation is circular. All methods are safe for concurrent use.
type KeyPool struct {
	mu    sync.Mutex
	keys  []string
	index int
}

// NewKeyPool creates a pool over the given credentials. The slice is assumed
// already filtered and de-duplicated (see LoadKeys).
func NewKeyPool(keys []string) *KeyPool {
	return &KeyPool{keys: keys}
}

// Size returns the number of credentials in the pool.
func (p *KeyPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Empty reports whether the pool has no credentials.
func (p *KeyPool) Empty() bool {
	return p.Size() == 0
}

// Current returns the active credential and its position. Returns "" when
// the pool is empty.
func (p *KeyPool) Current() (key string, index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return "", 0
	}
	return p.keys[p.index], p.index
}

// Rotate advances the index circularly to the next credential. It returns
// false, leaving the index unchanged, when the pool has at most one entry;
// the pool is then exhausted.
func (p *KeyPool) Rotate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) <= 1 {
		return false
	}
	p.index = (p.index + 1) % len(p.keys)
	return true
}

// MaskKey renders a credential as a loggable identity: position plus a short
// prefix and suffix, never the full secret.
func MaskKey(key string, index int) string {
	if key == "" {
		return "N/A"
	}
	if len(key) <= 10 {
		return fmt.Sprintf("Key #%d", index+1)
	}
	return fmt.Sprintf("Key #%d (%s...%s)", index+1, key[:6], key[len(key)-4:])
}
