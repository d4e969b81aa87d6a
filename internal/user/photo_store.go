package user

import (
	"context"
	"fmt"
	"io"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"libraryapi/internal/validate"
)

// LocalPhotoStore writes photos below a base directory as
// users/<user id>/<ulid>-<sanitized name>.
type LocalPhotoStore struct {
	baseDir string
}

func NewLocalPhotoStore(baseDir string) *LocalPhotoStore {
	return &LocalPhotoStore{baseDir: baseDir}
}

// Save returns the path relative to the base directory.
func (s *LocalPhotoStore) Save(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := filepath.Join("users", validate.Filename(userID), ulid.Make().String()+"-"+validate.Filename(filename))
	full := filepath.Join(s.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(full)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Remove deletes a path returned by Save. Paths outside the base directory
// are refused.
func (s *LocalPhotoStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("photo path %q escapes the upload dir", path)
	}
	if err := os.Remove(filepath.Join(s.baseDir, rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
