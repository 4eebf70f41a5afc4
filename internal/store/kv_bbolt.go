// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package store

import (
	"fmt"

	"go.etcd.io/bbolt"
)

var boltBuckets = []string{bucketEntities, bucketOperations, bucketDevices, bucketMeta}

// boltKV is the bbolt-backed implementation of [KV].
type boltKV struct {
	db *bbolt.DB
}

// NewBoltKV opens (or creates) the bbolt database at dbPath and ensures all
// engine buckets exist.
func NewBoltKV(dbPath string) (KV, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpeningDatabase, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range boltBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpeningDatabase, err)
	}

	return &boltKV{db: db}, nil
}

func (s *boltKV) Put(bucket, key string, value []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("unknown bucket %s", bucket)
		}
		return b.Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWritingRecord, err)
	}

	return nil
}

func (s *boltKV) Get(bucket, key string) ([]byte, bool, error) {
	var value []byte
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value = make([]byte, len(v))
			copy(value, v)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrReadingRecord, err)
	}

	return value, found, nil
}

func (s *boltKV) Delete(bucket, key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWritingRecord, err)
	}

	return nil
}

func (s *boltKV) ForEach(bucket string, fn func(key string, value []byte) error) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			return fn(string(k), v)
		})
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadingRecord, err)
	}

	return nil
}

func (s *boltKV) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
