package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Manager owns a directory of artifacts addressed by key. A file at
// <dir>/<key><ext> means the artifact exists.
type Manager struct {
	dir   string
	ext   string
	known map[string]bool
	mu    sync.RWMutex
}

// NewManager creates dir if needed and indexes the artifacts already in it
func NewManager(dir, ext string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	m := &Manager{
		dir:   dir,
		ext:   ext,
		known: make(map[string]bool),
	}
	if err := m.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}
	return m, nil
}

func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasSuffix(name, m.ext) {
			m.known[strings.TrimSuffix(name, m.ext)] = true
		}
	}
	return nil
}

// Path returns where the artifact for key lives
func (m *Manager) Path(key string) string {
	return filepath.Join(m.dir, key+m.ext)
}

// Filename returns the base file name of the artifact for key
func (m *Manager) Filename(key string) string {
	return key + m.ext
}

// Exists reports whether the artifact for key is on disk. Files removed
// behind the manager's back are noticed.
func (m *Manager) Exists(key string) bool {
	if _, err := os.Stat(m.Path(key)); err != nil {
		m.mu.Lock()
		delete(m.known, key)
		m.mu.Unlock()
		return false
	}

	m.mu.Lock()
	m.known[key] = true
	m.mu.Unlock()
	return true
}

// Save writes the artifact for key atomically. write receives a temporary
// path in the same directory; the file is renamed into place only if write
// succeeds.
func (m *Manager) Save(key string, write func(tmpPath string) error) error {
	tmp, err := os.CreateTemp(m.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := write(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	if err := os.Rename(tmpPath, m.Path(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.known[key] = true
	m.mu.Unlock()
	return nil
}

// Dir returns the artifact directory
func (m *Manager) Dir() string {
	return m.dir
}

// Count returns the number of artifacts known to exist
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.known)
}
