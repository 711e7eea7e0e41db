package saves

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pixil98/go-quest/internal/storage"
)

// FileStore persists each save under its own JSON file in dir. Writes go
// through a temp-file rename so an interrupted process leaves either the
// previous or the next value, never a partial record.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("creating save directory %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	path, err := s.filePath(key)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading save %q: %w", key, err)
	}
	return data, true, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	path, err := s.filePath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := storage.AtomicWrite(path, value, 0644); err != nil {
		return fmt.Errorf("writing save %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	path, err := s.filePath(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing save %q: %w", key, err)
	}
	return nil
}

// filePath maps a key to its file inside the store directory. Keys are
// restricted to the asset id character class so a key can never name a
// path outside the directory.
func (s *FileStore) filePath(key string) (string, error) {
	if !storage.ValidIdentifier(key) {
		return "", fmt.Errorf("invalid save key %q", key)
	}
	return filepath.Join(s.dir, fmt.Sprintf("%s.json", key)), nil
}
