// Package store provides the client's local persistence: an opaque
// key-value store backed by bbolt, plus the typed auth-data slot on top
// of it.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("threadly")

// KV is a small key-value store. Get and Set are atomic at key granularity;
// readers never observe a torn value.
type KV struct {
	db *bolt.DB
}

// Open opens (or creates) the store file at path.
func Open(path string) (*KV, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &KV{db: db}, nil
}

// Get returns the value for key and whether it was present.
func (s *KV) Get(key string) (string, bool, error) {
	var value string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(key))
		if raw != nil {
			value = string(raw)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, found, nil
}

// Set stores value under key.
func (s *KV) Set(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *KV) Delete(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Preference reads one slot of the opaque app-preferences space.
func (s *KV) Preference(name string) (string, bool, error) {
	return s.Get(prefKey(name))
}

// SetPreference writes one slot of the opaque app-preferences space.
func (s *KV) SetPreference(name, value string) error {
	return s.Set(prefKey(name), value)
}

// Close closes the underlying database.
func (s *KV) Close() error {
	return s.db.Close()
}

func prefKey(name string) string { return "pref:" + name }
