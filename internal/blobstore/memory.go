package blobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store for tests. Objects live in per-bucket
// maps guarded by a single mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte

	// FailPut, when set, is consulted before every PutJSON and lets tests
	// inject write failures for specific keys.
	FailPut func(bucket, key string) error

	// FailCopy, when set, is consulted before every CopyPrefix.
	FailCopy func(srcBucket, dstBucket, prefix string) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: map[string]map[string][]byte{}}
}

func (m *MemoryStore) GetJSON(ctx context.Context, bucket, key string, v interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.buckets[bucket][key]
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(obj, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (m *MemoryStore) PutJSON(ctx context.Context, bucket, key string, v interface{}) error {
	if m.FailPut != nil {
		if err := m.FailPut(bucket, key); err != nil {
			return err
		}
	}
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", bucket, key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.buckets[bucket] == nil {
		m.buckets[bucket] = map[string][]byte{}
	}
	m.buckets[bucket][key] = body
	return nil
}

func (m *MemoryStore) CopyPrefix(ctx context.Context, srcBucket, dstBucket, prefix string) error {
	if m.FailCopy != nil {
		if err := m.FailCopy(srcBucket, dstBucket, prefix); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, obj := range m.buckets[srcBucket] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if m.buckets[dstBucket] == nil {
			m.buckets[dstBucket] = map[string][]byte{}
		}
		m.buckets[dstBucket][key] = append([]byte(nil), obj...)
	}
	return nil
}

// PutRaw seeds an object without JSON encoding; test setup helper.
func (m *MemoryStore) PutRaw(bucket, key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.buckets[bucket] == nil {
		m.buckets[bucket] = map[string][]byte{}
	}
	m.buckets[bucket][key] = append([]byte(nil), body...)
}

// GetRaw returns the stored bytes for bucket/key, and false when absent.
func (m *MemoryStore) GetRaw(bucket, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.buckets[bucket][key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), obj...), true
}

// Keys returns every key in bucket that starts with prefix.
func (m *MemoryStore) Keys(bucket, prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for key := range m.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}
