// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognizer

import (
	"context"
	"crypto/sha256"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of distinct texts remembered
const DefaultCacheSize = 256

// Cached memoizes another recognizer. The least recently used text is
// evicted once the cache holds size entries. Failures are not cached.
type Cached struct {
	next  Recognizer
	cache *lru.Cache[[sha256.Size]byte, []Entity]
}

// NewCached wraps next with a bounded LRU cache
func NewCached(next Recognizer, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[[sha256.Size]byte, []Entity](size)
	if err != nil {
		return nil, fmt.Errorf("error creating recognizer cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// Name returns the wrapped recognizer name
func (c *Cached) Name() string {
	return c.next.Name()
}

// Recognize returns cached entities for text or asks the wrapped recognizer
func (c *Cached) Recognize(ctx context.Context, text string) ([]Entity, error) {
	key := sha256.Sum256([]byte(text))
	if entities, ok := c.cache.Get(key); ok {
		return append([]Entity(nil), entities...), nil
	}

	entities, err := c.next.Recognize(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, append([]Entity(nil), entities...))
	return entities, nil
}

// Len returns the number of cached texts
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Purge empties the cache
func (c *Cached) Purge() {
	c.cache.Purge()
}
