package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrSnapshotNotFound identifies a Load for a session with no persisted
// snapshot. SessionMemory treats it as empty initial state.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Store persists raw session snapshots keyed by session id. Implementations
// must make Save atomic per key; there is no cross-process lock, so a single
// writer per key is an implicit contract.
type Store interface {
	Save(ctx context.Context, sessionID string, snapshot []byte) error
	Load(ctx context.Context, sessionID string) ([]byte, error)
}

// FileStore persists snapshots as one JSON file per session under a root
// directory. Writes go through a temp file followed by rename so readers never
// observe a partial snapshot.
type FileStore struct {
	dir string
}

// NewFileStore creates a Store rooted at dir. The directory is created on the
// first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}

// Save writes the snapshot with an atomic rewrite of the session file.
func (s *FileStore) Save(_ context.Context, sessionID string, snapshot []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(snapshot); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path(sessionID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load reads the session's snapshot file, mapping a missing file to
// ErrSnapshotNotFound.
func (s *FileStore) Load(_ context.Context, sessionID string) ([]byte, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, sessionID)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}
