package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores uploaded files and generated documents below one base
// directory. Paths handed out are relative with forward slashes so they can
// be persisted and served directly.
type Local struct {
	baseDir string
}

func NewLocal(baseDir string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{baseDir: baseDir}, nil
}

func (l *Local) BaseDir() string {
	return l.baseDir
}

// NewFilename builds a collision-free filename for an upload, keeping the
// original extension.
func (l *Local) NewFilename(prefix, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s_%s%s", prefix, uuid.NewString(), ext)
}

// AbsPath resolves a relative path below the base directory, creating the
// parent directory on the way.
func (l *Local) AbsPath(relPath string) (string, error) {
	abs := filepath.Join(l.baseDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create dir for %s: %w", relPath, err)
	}
	return abs, nil
}

func (l *Local) Save(subdir, filename string, data []byte) (string, error) {
	rel := subdir + "/" + filename
	abs, err := l.AbsPath(rel)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", rel, err)
	}
	return rel, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (l *Local) Remove(relPath string) error {
	abs := filepath.Join(l.baseDir, filepath.FromSlash(relPath))
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
