package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore writes objects under baseDir, bucketed by day, and serves them
// under staticBase.
type LocalStore struct {
	baseDir    string
	staticBase string
	now        func() time.Time
}

func NewLocalStore(baseDir, staticBase string) *LocalStore {
	return &LocalStore{
		baseDir:    baseDir,
		staticBase: strings.TrimRight(staticBase, "/"),
		now:        time.Now,
	}
}

func (s *LocalStore) Put(ctx context.Context, key, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key = filepath.Base(key)
	if key == "." || key == string(filepath.Separator) {
		return "", fmt.Errorf("invalid object key")
	}

	now := s.now()
	relDir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	absDir := filepath.Join(s.baseDir, filepath.FromSlash(relDir))
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	absPath := filepath.Join(absDir, key)
	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.staticBase + "/" + path.Join(relDir, key), nil
}
