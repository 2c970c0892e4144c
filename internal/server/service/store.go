package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ghosthack3r/wintune/internal/shared/types"
	"github.com/ghosthack3r/wintune/internal/shared/utils"
)

// SnapshotStore persists the single pre-apply snapshot. There is exactly one
// slot: every save replaces the previous snapshot wholesale.
type SnapshotStore struct {
	path string
	mu   sync.Mutex
}

// NewSnapshotStore creates a store backed by the given file path
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Save writes the snapshot atomically, replacing any previous one
func (s *SnapshotStore) Save(snap *types.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := utils.EnsureDir(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := utils.AtomicWriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load reads the stored snapshot back
func (s *SnapshotStore) Load() (*types.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap types.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrSnapshotCorrupt, err)
	}
	if snap.Entries == nil {
		return nil, fmt.Errorf("%w: no entries", types.ErrSnapshotCorrupt)
	}
	return &snap, nil
}

// Exists reports whether a snapshot is stored
func (s *SnapshotStore) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return utils.FileExists(s.path)
}
