package services

import (
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/quaero-labs/quaero/internal/core/domain"
	"github.com/quaero-labs/quaero/internal/logger"
)

// wholeCorpusScope is the cache-key sentinel for queries without a
// document scope.
const wholeCorpusScope = "ALL_DOCS"

// CacheKey builds the cache key for a scope and question. The scope is
// the sorted, comma-joined document-id set (or the whole-corpus
// sentinel); the question is normalised raw text. Correction output is
// deliberately not part of the key: the cache is keyed on user intent.
func CacheKey(scope []string, question string) string {
	scopeKey := wholeCorpusScope
	if len(scope) > 0 {
		sorted := make([]string, len(scope))
		copy(sorted, scope)
		sort.Strings(sorted)
		scopeKey = strings.Join(sorted, ",")
	}
	return scopeKey + "|" + NormalizeQuestion(question)
}

// AnswerCache memoises end-to-end answers by (scope, question).
// Entries are immutable once written and never expire within a process
// lifetime. The default is unbounded, preserving the original system's
// behaviour; pass maxEntries > 0 for a bounded LRU instead, which is
// the recommended configuration for long-running processes.
type AnswerCache struct {
	mu      sync.RWMutex
	entries map[string]*domain.Answer
	lru     *lru.Cache[string, *domain.Answer]
}

// NewAnswerCache creates an answer cache. maxEntries <= 0 means
// unbounded.
func NewAnswerCache(maxEntries int) *AnswerCache {
	if maxEntries > 0 {
		// lru.New only fails for a non-positive size.
		cache, _ := lru.New[string, *domain.Answer](maxEntries)
		return &AnswerCache{lru: cache}
	}
	return &AnswerCache{entries: make(map[string]*domain.Answer)}
}

// Get returns the cached answer for the scope and question, if any.
func (c *AnswerCache) Get(scope []string, question string) (*domain.Answer, bool) {
	key := CacheKey(scope, question)
	if c.lru != nil {
		return c.lru.Get(key)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	ans, ok := c.entries[key]
	return ans, ok
}

// Put stores an answer. Entries are immutable: the first writer wins,
// and concurrent identical writes are idempotent.
func (c *AnswerCache) Put(scope []string, question string, answer *domain.Answer) {
	key := CacheKey(scope, question)
	if c.lru != nil {
		if _, ok := c.lru.Get(key); !ok {
			c.lru.Add(key, answer)
		}
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = answer
		logger.Debug("Cached answer for key %q", key)
	}
}

// Len returns the number of cached answers.
func (c *AnswerCache) Len() int {
	if c.lru != nil {
		return c.lru.Len()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
