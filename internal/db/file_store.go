package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/soaringjerry/clima/internal/models"
	"github.com/soaringjerry/clima/internal/services"
)

// FileStore keeps the snapshot as the same pretty JSON document the export
// endpoint produces. Writes go to a temp file that is renamed into place.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var (
	_ services.SnapshotStore  = (*FileStore)(nil)
	_ services.SnapshotBackup = (*FileStore)(nil)
)

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("snapshot file path is required")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Path() string { return s.path }

// Load treats a missing file as an empty snapshot.
func (s *FileStore) Load(ctx context.Context) ([]models.StoredResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.StoredResponse{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return services.UnmarshalSnapshot(data)
}

func (s *FileStore) Save(ctx context.Context, snapshot []models.StoredResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := services.MarshalSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Backup renames the current file to <path>.corrupt, or to a timestamped
// name when an earlier backup already exists.
func (s *FileStore) Backup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	target := s.path + ".corrupt"
	if _, err := os.Stat(target); err == nil {
		target = fmt.Sprintf("%s.corrupt.%d", s.path, time.Now().UnixNano())
	}
	if err := os.Rename(s.path, target); err != nil {
		return "", fmt.Errorf("back up snapshot: %w", err)
	}
	return target, nil
}
