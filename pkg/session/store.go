// Package session keeps browser-session state for the viewer server and
// guards routes behind a prototype login token.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is a string key-value store with an explicit lifecycle: Init
// reads persisted state once at startup and Clear drops everything on
// logout or expiry.
type Store interface {
	Init() error
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

func (m *MemoryStore) Init() error { return nil }

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string]string{}
	return nil
}

// FileStore persists every change to a YAML file.
type FileStore struct {
	path string
	mem  *MemoryStore
}

// NewFileStore returns a store backed by path. Call Init before use.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, mem: NewMemoryStore()}
}

// Init loads the file. A missing file starts an empty session.
func (f *FileStore) Init() error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse session file: %w", err)
	}
	f.mem.mu.Lock()
	f.mem.data = values
	f.mem.mu.Unlock()
	return nil
}

func (f *FileStore) Get(key string) (string, bool) {
	return f.mem.Get(key)
}

func (f *FileStore) Set(key, value string) error {
	_ = f.mem.Set(key, value)
	return f.save()
}

func (f *FileStore) Delete(key string) error {
	_ = f.mem.Delete(key)
	return f.save()
}

// Clear empties the session and removes the file.
func (f *FileStore) Clear() error {
	_ = f.mem.Clear()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (f *FileStore) save() error {
	f.mem.mu.RLock()
	data, err := yaml.Marshal(f.mem.data)
	f.mem.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}
