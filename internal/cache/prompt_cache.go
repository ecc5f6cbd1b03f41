package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/tributolabs/fiscalgw/internal/extract"
)

// PromptKey uniquely identifies a cached prompt retrieval.
type PromptKey struct {
	Name     string
	ArgsHash string
}

// PromptCache caches prompts/get results. Prompt templates change rarely,
// so serving them from memory avoids an upstream round trip per
// consultation.
type PromptCache struct {
	cache *Cache[PromptKey, extract.Value]
}

// NewPromptCache creates a prompt cache with the given TTL.
func NewPromptCache(maxEntries int, ttl time.Duration) *PromptCache {
	return &PromptCache{cache: New[PromptKey, extract.Value](maxEntries, ttl)}
}

// GetOrLoad returns the cached prompt result or calls loadFn, with
// singleflight across concurrent consultations for the same prompt.
func (pc *PromptCache) GetOrLoad(name string, args map[string]any, loadFn func() (extract.Value, error)) (extract.Value, error) {
	return pc.cache.GetOrLoad(makePromptKey(name, args), loadFn)
}

// Stats returns cache performance counters.
func (pc *PromptCache) Stats() Stats {
	return pc.cache.Snapshot()
}

// makePromptKey hashes the argument object into a fixed-size key.
func makePromptKey(name string, args map[string]any) PromptKey {
	data, _ := json.Marshal(args)
	h := sha256.Sum256(data)
	return PromptKey{Name: name, ArgsHash: hex.EncodeToString(h[:8])}
}
