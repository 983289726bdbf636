package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/7eVeNcO/semtk/pkg/errors"
)

// FileStore keeps each record in <dir>/<id>.json.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file store. If dir is empty, it defaults to
// ~/.config/semtk/store/.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "semtk", "store")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) Put(ctx context.Context, r *Record) error {
	if err := r.validate(); err != nil {
		return err
	}
	data, err := r.encode()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(r.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write record file: %w", err)
	}
	if err := os.Rename(tmp, s.path(r.ID)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write record file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read record file: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", id, err)
	}
	return &r, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateRecordID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return notFound(id)
		}
		return fmt.Errorf("remove record file: %w", err)
	}
	return nil
}

// List skips files that cannot be parsed.
func (s *FileStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	recs := []Record{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		r.Data = nil
		recs = append(recs, r)
	}
	sortRecords(recs)
	return recs, nil
}

func (s *FileStore) Close() error { return nil }

// Dir returns the directory holding the record files.
func (s *FileStore) Dir() string {
	return s.dir
}

var _ Store = (*FileStore)(nil)
