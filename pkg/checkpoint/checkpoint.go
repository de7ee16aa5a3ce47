package checkpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	errs "pokedex/pkg/errors"
	"pokedex/pkg/logger"
	"pokedex/pkg/storage"
)

// CurrentVersion is the checkpoint format written by Save
const CurrentVersion = 1

// Checkpoint is the durable state of a partially built dataset
type Checkpoint struct {
	Version int    `json:"version"`
	Variant string `json:"variant,omitempty"`
	// LastID is the high-water mark: every id up to it has been processed
	LastID int `json:"last_id"`
	// Pokedex is the accumulator state, a JSON list for either variant
	Pokedex   json.RawMessage `json:"pokedex"`
	Records   int             `json:"records"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Manager handles checkpoint operations for a single file
type Manager struct {
	path   string
	logger logger.Logger
}

// NewManager creates a checkpoint manager for path
func NewManager(path string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Manager{path: path, logger: log}
}

// Path returns the checkpoint file location
func (m *Manager) Path() string {
	return m.path
}

// Load reads and validates the checkpoint. It returns nil, nil when no
// checkpoint exists and an ErrorTypeCheckpoint error when the file is
// unreadable or malformed.
func (m *Manager) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.New(errs.ErrorTypeCheckpoint, 0, "failed to read checkpoint %s: %v", m.path, err)
	}

	cp, err := Decode(data)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeCheckpoint, 0, "checkpoint %s is corrupt: %v", m.path, err)
	}

	m.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"path":       m.path,
		"last_id":    cp.LastID,
		"variant":    cp.Variant,
		"updated_at": cp.UpdatedAt,
	})
	return cp, nil
}

// Decode parses and validates a checkpoint document. Documents written
// before versioning, holding only last_id and pokedex, are accepted.
func Decode(data []byte) (*Checkpoint, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	for _, key := range []string{"last_id", "pokedex"} {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("missing %q", key)
		}
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("invalid checkpoint: %w", err)
	}
	if cp.LastID < 0 {
		return nil, fmt.Errorf("negative last_id %d", cp.LastID)
	}
	if cp.Version > CurrentVersion {
		return nil, fmt.Errorf("unsupported version %d", cp.Version)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(cp.Pokedex), []byte("[")) {
		return nil, fmt.Errorf("pokedex must be a list")
	}
	return &cp, nil
}

// Save stamps and writes the checkpoint atomically, replacing any previous one
func (m *Manager) Save(cp *Checkpoint) error {
	now := time.Now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	cp.Version = CurrentVersion

	if err := storage.WriteJSON(m.path, cp); err != nil {
		return errs.New(errs.ErrorTypeCheckpoint, 0, "failed to save checkpoint: %v", err)
	}

	m.logger.DebugWithFields("Checkpoint written", map[string]interface{}{
		"path":    m.path,
		"last_id": cp.LastID,
	})
	return nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	m.logger.DebugWithFields("Checkpoint deleted", map[string]interface{}{"path": m.path})
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Info returns a summary of the checkpoint, or nil when there is none
func (m *Manager) Info() (map[string]interface{}, error) {
	cp, err := m.Load()
	if err != nil || cp == nil {
		return nil, err
	}

	variant := cp.Variant
	if variant == "" {
		variant = "flat"
	}
	info := map[string]interface{}{
		"path":    m.path,
		"variant": variant,
		"last_id": cp.LastID,
		"records": cp.Records,
	}
	if !cp.UpdatedAt.IsZero() {
		info["created_at"] = cp.CreatedAt
		info["updated_at"] = cp.UpdatedAt
		info["age"] = time.Since(cp.UpdatedAt).Round(time.Second)
	}
	return info, nil
}
