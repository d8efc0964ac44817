package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/lensline/internal/service"
)

const fileScheme = "file://"

// FileStore keeps payloads as files under a single directory.
type FileStore struct {
	dir string
}

var _ service.BlobStore = (*FileStore)(nil)

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve blob directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FileStore{dir: abs}, nil
}

// Dir returns the directory holding the payloads.
func (f *FileStore) Dir() string {
	return f.dir
}

// Put writes data to a new file and returns its file:// reference.
func (f *FileStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(f.dir, objectName(name, contentType))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return fileScheme + path, nil
}

// Owns reports whether ref points into this store's directory.
func (f *FileStore) Owns(ref string) bool {
	_, ok := f.path(ref)
	return ok
}

// Release removes the payload behind ref. Releasing twice is not an error.
func (f *FileStore) Release(_ context.Context, ref string) error {
	path, ok := f.path(ref)
	if !ok {
		return fmt.Errorf("blob %q is not owned by %s", ref, f.dir)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove blob: %w", err)
	}
	return nil
}

// Open reads the payload behind ref.
func (f *FileStore) Open(ref string) ([]byte, error) {
	path, ok := f.path(ref)
	if !ok {
		return nil, fmt.Errorf("blob %q is not owned by %s", ref, f.dir)
	}
	return os.ReadFile(path) //nolint:gosec // path is confined to the store directory
}

func (f *FileStore) path(ref string) (string, bool) {
	rest, ok := strings.CutPrefix(ref, fileScheme)
	if !ok {
		return "", false
	}
	path := filepath.Clean(rest)
	if filepath.Dir(path) != f.dir {
		return "", false
	}
	return path, true
}
