// Package session keeps small per-user values, such as the signed-in email,
// between screens and between runs.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// KeyLoggedInEmail holds the email of the signed-in member.
const KeyLoggedInEmail = "loggedInUserEmail"

const defaultSessionPath = "~/.local/state/coregym/session.toml"

// Store is a string key-value store.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// Ensure implementations satisfy Store at compile time.
var (
	_ Store = (*Memory)(nil)
	_ Store = (*File)(nil)
)

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// File is a Store persisted as a TOML table. Every write rewrites the file.
type File struct {
	path string

	mu     sync.RWMutex
	values map[string]string
}

// DefaultPath returns the default session file path.
func DefaultPath() string {
	return defaultSessionPath
}

// Open loads the session file at path, creating an empty store when the
// file does not exist. An empty path uses DefaultPath.
func Open(path string) (*File, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	f := &File{path: resolved, values: make(map[string]string)}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := toml.Unmarshal(bytes, &f.values); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return f, nil
}

// Path returns the resolved file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return f.saveLocked()
}

func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		return nil
	}
	delete(f.values, key)
	return f.saveLocked()
}

func (f *File) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	bytes, err := toml.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(f.path, bytes, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// SignedInEmail returns the stored member email, if any.
func SignedInEmail(s Store) (string, bool) {
	if s == nil {
		return "", false
	}
	email, ok := s.Get(KeyLoggedInEmail)
	if !ok || strings.TrimSpace(email) == "" {
		return "", false
	}
	return email, true
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultSessionPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
