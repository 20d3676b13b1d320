package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaero-labs/quaero/internal/core/domain"
)

func TestCacheKey(t *testing.T) {
	t.Run("scope order does not matter", func(t *testing.T) {
		assert.Equal(t,
			CacheKey([]string{"b", "a"}, "q"),
			CacheKey([]string{"a", "b"}, "q"))
	})

	t.Run("empty scope uses whole-corpus sentinel", func(t *testing.T) {
		assert.Equal(t, "ALL_DOCS|q", CacheKey(nil, "q"))
	})

	t.Run("question is normalised", func(t *testing.T) {
		assert.Equal(t,
			CacheKey(nil, "  What IS revenue?  "),
			CacheKey(nil, "what is revenue?"))
	})

	t.Run("different scopes differ", func(t *testing.T) {
		assert.NotEqual(t, CacheKey([]string{"a"}, "q"), CacheKey([]string{"b"}, "q"))
	})
}

func TestAnswerCacheRoundTrip(t *testing.T) {
	cache := NewAnswerCache(0)
	answer := &domain.Answer{Text: "Paris"}

	_, ok := cache.Get(nil, "capital?")
	require.False(t, ok)

	cache.Put(nil, "capital?", answer)

	got, ok := cache.Get(nil, "Capital?  ")
	require.True(t, ok)
	assert.Same(t, answer, got)
	assert.Equal(t, 1, cache.Len())
}

func TestAnswerCacheFirstWriterWins(t *testing.T) {
	cache := NewAnswerCache(0)
	first := &domain.Answer{Text: "first"}
	second := &domain.Answer{Text: "second"}

	cache.Put(nil, "q", first)
	cache.Put(nil, "q", second)

	got, ok := cache.Get(nil, "q")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestAnswerCacheBounded(t *testing.T) {
	cache := NewAnswerCache(2)
	for i := 0; i < 3; i++ {
		cache.Put(nil, fmt.Sprintf("q%d", i), &domain.Answer{Text: fmt.Sprintf("a%d", i)})
	}

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get(nil, "q0")
	assert.False(t, ok)
	_, ok = cache.Get(nil, "q2")
	assert.True(t, ok)
}
