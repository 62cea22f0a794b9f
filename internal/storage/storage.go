// Package storage holds uploaded résumé files in object storage.
package storage

import (
	"context"
	"errors"
	"io"
	"sync"
)

// DefaultMaxObjectBytes caps how much of an object is read into memory.
const DefaultMaxObjectBytes = 10 << 20

// ErrNotFound is returned when an object key does not exist.
var ErrNotFound = errors.New("object not found")

// Object is a downloaded file.
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// ObjectStore reads and writes résumé files by key.
type ObjectStore interface {
	Get(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

var (
	_ ObjectStore = (*MinIO)(nil)
	_ ObjectStore = (*Memory)(nil)
)

// Memory is an in-process ObjectStore for tests and single-node runs.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]Object)}
}

// Get returns a copy of the object under key.
func (m *Memory) Get(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	obj.Data = append([]byte(nil), obj.Data...)
	return &obj, nil
}

// Put stores the reader's content under key.
func (m *Memory) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Key: key, ContentType: contentType, Data: data}
	return nil
}
