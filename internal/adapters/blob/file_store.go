// Package blob stores binary artifacts on the local filesystem under
// path-like keys, mirroring the key scheme the rest of the system
// treats as the blob-store contract: uploads/<linkId>/<ts>_<name>,
// agreements/<linkId>/signature.png, debit_agreements/<linkId>/signature.png.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type FileStore struct {
	root      string
	publicURL string
}

// NewFileStore roots the store at dir and prefixes public URLs with
// publicBase (no trailing slash required).
func NewFileStore(dir, publicBase string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FileStore{root: dir, publicURL: strings.TrimRight(publicBase, "/")}, nil
}

func (s *FileStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *FileStore) Put(_ context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (s *FileStore) DeletePrefix(_ context.Context, prefix string) error {
	p, err := s.path(prefix)
	if err != nil {
		return err
	}
	return os.RemoveAll(p)
}

func (s *FileStore) PublicURL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}
