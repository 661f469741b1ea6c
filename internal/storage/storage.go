// ABOUTME: Main storage implementation for esgos dashboard data
// ABOUTME: Stores JSON documents in a prefix-keyed KV (charm in production, memory in tests)
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/harper/esgos/internal/charm"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// KV is the key-value surface storage needs. Get returns nil data for a missing key.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	ListKeys(prefix string) ([]string, error)
}

// Storage manages all persistent dashboard data
type Storage struct {
	kv KV
	mu sync.Mutex // Serializes read-modify-write cycles
}

// NewStorage opens charm-backed storage with the given config (nil for defaults)
func NewStorage(cfg *charm.Config) (*Storage, error) {
	client, err := charm.GetClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm storage: %w", err)
	}
	return New(client), nil
}

// NewStorageInMemory creates storage backed by a process-local map
func NewStorageInMemory() *Storage {
	return New(NewMemoryKV())
}

// New wraps an existing KV
func New(kv KV) *Storage {
	return &Storage{kv: kv}
}

// KV returns the underlying key-value store
func (s *Storage) KV() KV {
	return s.kv
}

// Close closes the underlying KV if it supports closing
func (s *Storage) Close() error {
	if c, ok := s.kv.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Storage) putJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.kv.Set(key, data)
}

// getJSON decodes key into dest, returning ErrNotFound when absent
func (s *Storage) getJSON(key string, dest any) error {
	data, err := s.kv.Get(key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if data == nil {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *Storage) exists(key string) (bool, error) {
	data, err := s.kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data != nil, nil
}

func (s *Storage) remove(key string) error {
	ok, err := s.exists(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return s.kv.Delete(key)
}

// listJSON decodes every value under prefix
func listJSON[T any](s *Storage, prefix string) ([]T, error) {
	keys, err := s.kv.ListKeys(prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	items := make([]T, 0, len(keys))
	for _, key := range keys {
		var item T
		if err := s.getJSON(key, &item); err != nil {
			// Deleted between ListKeys and Get
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
