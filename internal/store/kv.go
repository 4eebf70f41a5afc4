// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package store

import "sync"

// KV is the abstract persistent key-value contract the stores are backed
// by. Implementations must be safe for concurrent use.
//
// The entity store, outbox, and device registry keep their working set in
// memory and write through to a KV so that state survives restarts. Buckets
// partition the keyspace per store.
type KV interface {
	Put(bucket, key string, value []byte) error
	Get(bucket, key string) ([]byte, bool, error)
	Delete(bucket, key string) error
	ForEach(bucket string, fn func(key string, value []byte) error) error
	Close() error
}

// Bucket names shared by the KV-backed stores.
const (
	bucketEntities   = "entities"
	bucketOperations = "operations"
	bucketDevices    = "devices"
	bucketMeta       = "meta"
)

// memoryKV is the in-memory KV used in tests and when no bolt path is
// configured. State is lost on restart.
type memoryKV struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

// NewMemoryKV returns an empty in-memory KV.
func NewMemoryKV() KV {
	return &memoryKV{buckets: make(map[string]map[string][]byte)}
}

func (m *memoryKV) Put(bucket, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[bucket]
	if !ok {
		b = make(map[string][]byte)
		m.buckets[bucket] = b
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	b[key] = cp

	return nil
}

func (m *memoryKV) Get(bucket, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.buckets[bucket]
	if !ok {
		return nil, false, nil
	}

	value, ok := b[key]
	if !ok {
		return nil, false, nil
	}

	cp := make([]byte, len(value))
	copy(cp, value)

	return cp, true, nil
}

func (m *memoryKV) Delete(bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.buckets[bucket]; ok {
		delete(b, key)
	}

	return nil
}

func (m *memoryKV) ForEach(bucket string, fn func(key string, value []byte) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for key, value := range m.buckets[bucket] {
		if err := fn(key, value); err != nil {
			return err
		}
	}

	return nil
}

func (m *memoryKV) Close() error { return nil }
