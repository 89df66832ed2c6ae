// Package bolt is the disk-backed shuffle storage, for jobs whose
// shuffled values exceed process memory. Value lists are JSON-encoded
// per key inside a bbolt bucket per reducer.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"
)

// Storage is a bbolt-backed shuffle buffer.
type Storage struct {
	db *bbolt.DB
}

// New opens (or creates) the shuffle database at path.
func New(path string) (*Storage, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 30 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}
	return &Storage{db: db}, nil
}

// Append adds vals to the list stored under key in bucket.
func (s *Storage) Append(_ context.Context, bucket, key string, vals []string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		buck, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}

		existing, err := decode(buck.Get([]byte(key)))
		if err != nil {
			return err
		}

		data, err := json.Marshal(append(existing, vals...))
		if err != nil {
			return err
		}
		return buck.Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("bolt: append %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Keys lists every key in bucket.
func (s *Storage) Keys(_ context.Context, bucket string) ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		buck := tx.Bucket([]byte(bucket))
		if buck == nil {
			return nil
		}
		c := buck.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: keys %s: %w", bucket, err)
	}
	return keys, nil
}

// Get returns the values stored under key in bucket.
func (s *Storage) Get(_ context.Context, bucket, key string) ([]string, error) {
	var vals []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		buck := tx.Bucket([]byte(bucket))
		if buck == nil {
			return nil
		}
		var derr error
		vals, derr = decode(buck.Get([]byte(key)))
		return derr
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: get %s/%s: %w", bucket, key, err)
	}
	return vals, nil
}

// Close releases the database file.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Destroy closes the database and removes the scratch file.
func (s *Storage) Destroy() error {
	path := s.db.Path()
	if err := s.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

func decode(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var vals []string
	if err := json.Unmarshal(data, &vals); err != nil {
		return nil, err
	}
	return vals, nil
}
