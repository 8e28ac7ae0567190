package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixfeed/pixfeed/models"
)

// MediaStore persists uploaded binary content under a root directory,
// organized by media kind. Stored paths are relative to the root and use
// forward slashes, e.g. "photos/3f2a....jpg".
type MediaStore struct {
	root string
	log  *zap.SugaredLogger
}

// NewMediaStore creates a store rooted at dir.
func NewMediaStore(dir string, log *zap.SugaredLogger) *MediaStore {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &MediaStore{root: dir, log: log}
}

// Root returns the store's root directory.
func (s *MediaStore) Root() string {
	return s.root
}

// Store copies src to a freshly generated unique filename in the subfolder
// for kind, creating directories as needed. Concurrent first-use is safe:
// an already existing directory is success, not failure. Any I/O failure is
// reported wrapped in ErrStorage and leaves no partial file behind.
func (s *MediaStore) Store(src io.Reader, originalName string, kind models.MediaType) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext

	sub := "photos"
	if kind == models.MediaVideo {
		sub = "videos"
	}
	dir := filepath.Join(s.root, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrStorage, dir, err)
	}

	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrStorage, dst, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("%w: write %s: %v", ErrStorage, dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("%w: close %s: %v", ErrStorage, dst, err)
	}

	rel := path.Join(sub, name)
	s.log.Debugw("media stored", "path", rel, "kind", kind)
	return rel, nil
}

// Resolve maps a stored relative path back to an absolute filesystem path,
// rejecting anything that escapes the store root. The file must exist.
func (s *MediaStore) Resolve(rel string) (string, error) {
	// Normalize against traversal before joining with the root.
	clean := path.Clean("/" + strings.ReplaceAll(rel, "\\", "/"))
	full := filepath.Join(s.root, filepath.FromSlash(clean))

	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	fullAbs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if fullAbs != rootAbs && !strings.HasPrefix(fullAbs, rootAbs+string(os.PathSeparator)) {
		return "", os.ErrNotExist
	}

	info, err := os.Stat(fullAbs)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", os.ErrNotExist
	}
	return fullAbs, nil
}

// Remove deletes a stored file by its relative path. Missing files are not
// an error.
func (s *MediaStore) Remove(rel string) error {
	full, err := s.Resolve(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.Remove(full)
}
