package tokenizer

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of distinct texts a Cached tokenizer remembers.
const DefaultCacheSize = 4096

// Cached memoizes another tokenizer. Index updates tokenize both the old and
// the new value, so the old value is usually a cache hit.
//
// Returned slices are shared between callers and must not be modified.
type Cached struct {
	inner Tokenizer
	cache *lru.Cache[string, []Token]
}

// NewCached wraps inner with an LRU cache of the given size.
func NewCached(inner Tokenizer, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []Token](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer cache: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

func (c *Cached) Name() string { return c.inner.Name() }

func (c *Cached) Tokenize(text string) []Token {
	if tokens, ok := c.cache.Get(text); ok {
		return tokens
	}
	tokens := c.inner.Tokenize(text)
	c.cache.Add(text, tokens)
	return tokens
}

// Len returns the number of cached texts.
func (c *Cached) Len() int {
	return c.cache.Len()
}
