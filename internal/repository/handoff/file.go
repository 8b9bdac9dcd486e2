package handoff

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/alarm-chat/internal/config"
	"github.com/oshokin/alarm-chat/internal/domain/alarm"
)

// FileRepository keeps each key in its own JSON file under a directory.
type FileRepository struct {
	// dir is the directory holding the files.
	dir string
	// mu serialises access to the directory.
	mu sync.Mutex
}

// NewFileRepository creates a repository rooted at dir.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{
		dir: filepath.Clean(dir),
	}
}

// Save writes the record under key, replacing any previous one.
func (r *FileRepository) Save(_ context.Context, key string, record *alarm.Record) error {
	data, err := encode(record)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err = os.MkdirAll(r.dir, config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create hand-off directory: %w", err)
	}

	if err = os.WriteFile(r.path(key), data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write hand-off file: %w", err)
	}

	return nil
}

// Load reads the record stored under key.
func (r *FileRepository) Load(_ context.Context, key string) (*alarm.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read hand-off file: %w", err)
	}

	return decode(data)
}

// path maps a key to a file name that cannot escape dir.
func (r *FileRepository) path(key string) string {
	return filepath.Join(r.dir, url.PathEscape(key)+".json")
}
