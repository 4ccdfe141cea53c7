package service

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	// Register a decoder for every upload format isImageFile accepts.
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"manga-translator/internal/domain"
)

// LocalImageStore implements domain.ImageStore on the local filesystem,
// rooted at the configured data directory. All repository-visible paths are
// relative to that root.
type LocalImageStore struct {
	root string
}

var _ domain.ImageStore = (*LocalImageStore)(nil)

// NewLocalImageStore creates the store and its root directory.
func NewLocalImageStore(root string) (*LocalImageStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &LocalImageStore{root: root}, nil
}

// AbsPath resolves a store-relative path to an absolute one.
func (s *LocalImageStore) AbsPath(relPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relPath))
}

// Load opens and decodes a page image.
func (s *LocalImageStore) Load(relPath string) (image.Image, error) {
	f, err := os.Open(s.AbsPath(relPath))
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", relPath, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", relPath, err)
	}
	return img, nil
}

// Save encodes img to relPath, choosing the codec from the extension.
// Unknown extensions fall back to PNG.
func (s *LocalImageStore) Save(relPath string, img image.Image) error {
	abs := s.AbsPath(relPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", relPath, err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return fmt.Errorf("create %s: %w", relPath, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(abs)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", relPath, err)
	}
	return nil
}

// SaveBytes writes raw file content (extracted archive entries).
func (s *LocalImageStore) SaveBytes(relPath string, data []byte) error {
	abs := s.AbsPath(relPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", relPath, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", relPath, err)
	}
	return nil
}

// Remove deletes one file; missing files are not an error.
func (s *LocalImageStore) Remove(relPath string) error {
	err := os.Remove(s.AbsPath(relPath))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveAll deletes a directory tree under the root.
func (s *LocalImageStore) RemoveAll(relDir string) error {
	return os.RemoveAll(s.AbsPath(relDir))
}
