// Package cache provides the bounded recency caches the bot uses to
// avoid nagging the moderators about the same URL run after run.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Recency is a bounded set of URLs ordered by how recently each was
// touched. Inserting past capacity silently drops the least recently
// touched entry.
type Recency struct {
	entries *lru.Cache[string, struct{}]
}

// New returns an empty cache holding at most capacity keys.
func New(capacity int) (*Recency, error) {
	entries, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, err
	}
	return &Recency{entries: entries}, nil
}

// Seen reports whether key is present and, if so, moves it to the
// most-recently-used position.
func (r *Recency) Seen(key string) bool {
	_, ok := r.entries.Get(key)
	return ok
}

// Contains reports presence without updating recency.
func (r *Recency) Contains(key string) bool {
	return r.entries.Contains(key)
}

// Touch marks key present and most-recently-used, evicting the oldest
// entry if the cache is full.
func (r *Recency) Touch(key string) {
	r.entries.Add(key, struct{}{})
}

// Keys returns all keys, most-recently-used first. This is the order
// the persisted file uses.
func (r *Recency) Keys() []string {
	oldest := r.entries.Keys()
	keys := make([]string, 0, len(oldest))
	for i := len(oldest) - 1; i >= 0; i-- {
		keys = append(keys, oldest[i])
	}
	return keys
}

// Len returns the number of cached keys.
func (r *Recency) Len() int {
	return r.entries.Len()
}
