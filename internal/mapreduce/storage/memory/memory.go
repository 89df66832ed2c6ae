// Package memory is the default shuffle storage: a mutex-guarded map.
// Suitable whenever one reducer's partition of the key space fits in
// process memory.
package memory

import (
	"context"
	"sync"
)

type itemKey struct {
	bucket string
	key    string
}

// Storage is an in-memory shuffle buffer. Safe for concurrent use.
type Storage struct {
	mu   sync.RWMutex
	data map[itemKey][]string
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{data: make(map[itemKey][]string, 1024)}
}

// Append adds vals to the list stored under (bucket, key).
func (st *Storage) Append(_ context.Context, bucket, key string, vals []string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	ik := itemKey{bucket: bucket, key: key}
	st.data[ik] = append(st.data[ik], vals...)
	return nil
}

// Keys lists every key that has values in bucket.
func (st *Storage) Keys(_ context.Context, bucket string) ([]string, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var keys []string
	for ik := range st.data {
		if ik.bucket == bucket {
			keys = append(keys, ik.key)
		}
	}
	return keys, nil
}

// Get returns the values stored under (bucket, key).
func (st *Storage) Get(_ context.Context, bucket, key string) ([]string, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return st.data[itemKey{bucket: bucket, key: key}], nil
}
