// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package store

import (
	"fmt"
	"strconv"
	"sync"
)

// Counter is a KV-persisted monotonic counter. Used for the offline package
// export version, which must keep increasing across restarts.
type Counter struct {
	kv  KV
	key string

	mu sync.Mutex
	n  int64
}

// NewCounter constructs a Counter persisted under key in the meta bucket,
// resuming from its last persisted value.
func NewCounter(kv KV, key string) (*Counter, error) {
	c := &Counter{kv: kv, key: key}

	raw, found, err := kv.Get(bucketMeta, key)
	if err != nil {
		return nil, fmt.Errorf("load counter %s: %w", key, err)
	}
	if found {
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: counter %s: %w", ErrDecodingRecord, key, err)
		}
		c.n = n
	}

	return c, nil
}

// Next increments the counter, persists it, and returns the new value.
func (c *Counter) Next() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.n + 1
	if err := c.kv.Put(bucketMeta, c.key, []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, fmt.Errorf("persist counter %s: %w", c.key, err)
	}
	c.n = next

	return next, nil
}
