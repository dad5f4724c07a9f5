// Package repository provides the asset store implementations: template and
// image bytes served from a local directory or from Supabase storage.
package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docforge/internal/domain"
)

// FilesystemAssetStore serves assets from a directory tree. References are
// resolved relative to the root; references escaping the root are rejected.
type FilesystemAssetStore struct {
	root   string
	logger domain.Logger
}

func NewFilesystemAssetStore(root string, logger domain.Logger) *FilesystemAssetStore {
	return &FilesystemAssetStore{
		root:   root,
		logger: logger,
	}
}

func (s *FilesystemAssetStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(filepath.FromSlash(ref))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("reference escapes asset root")
	}
	path := filepath.Join(s.root, clean)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading asset: %w", err)
	}
	s.logger.Debug("asset fetched", "ref", ref, "bytes", len(data))
	return data, nil
}
