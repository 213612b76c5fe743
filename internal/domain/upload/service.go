package upload

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"equiplend/internal/access"
	"equiplend/internal/domain"
	"equiplend/internal/pkg/apperr"
	"equiplend/internal/storage"

	"github.com/google/uuid"
)

const MaxFileSize = 5 * 1024 * 1024 // 5 MB

// AllowedMimeTypes maps accepted sniffed types to the extension they are
// stored with.
var AllowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Result struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Service validates equipment images and forwards them to object storage.
// The body is spooled to a temp file that is removed on every path.
type Service struct {
	store   storage.ObjectStore
	tempDir string
}

// NewService creates upload service. An empty tempDir uses os.TempDir.
func NewService(store storage.ObjectStore, tempDir string) *Service {
	return &Service{store: store, tempDir: tempDir}
}

func (s *Service) Upload(ctx context.Context, actor domain.Actor, src io.Reader, declaredSize int64) (*Result, error) {
	if !access.CanPerform(actor.Role, access.OpUploadImage) {
		return nil, domain.ErrForbidden
	}
	if declaredSize == 0 {
		return nil, ErrEmptyFile
	}
	if declaredSize > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	tmp, err := os.CreateTemp(s.tempDir, "equiplend-upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	// the declared size comes from the client, count the bytes ourselves
	n, err := io.Copy(tmp, io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to spool upload: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyFile
	}
	if n > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	contentType, err := sniff(tmp)
	if err != nil {
		return nil, err
	}
	ext, ok := AllowedMimeTypes[contentType]
	if !ok {
		return nil, ErrInvalidMimeType
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind temp file: %w", err)
	}
	key := uuid.NewString() + ext
	url, err := s.store.Put(ctx, key, contentType, tmp)
	if err != nil {
		return nil, apperr.Upstream("object storage", err)
	}

	log.Printf("image_uploaded actor_id=%d key=%s size=%d content_type=%s", actor.ID, key, n, contentType)
	return &Result{URL: url, Key: key, ContentType: contentType, Size: n}, nil
}

func sniff(f *os.File) (string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind temp file: %w", err)
	}
	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read temp file: %w", err)
	}
	mimeType := http.DetectContentType(buf[:n])
	return strings.TrimSpace(strings.Split(mimeType, ";")[0]), nil
}
