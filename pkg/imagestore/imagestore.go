package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded event images and returns the reference recorded on
// the event document. Serving the stored files is out of scope here.
type Store interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
}

// DiskStore writes images under a local directory, referenced as
// "/uploads/<generated name>".
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(_ context.Context, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return "/uploads/" + name, nil
}
