package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"equiplend/internal/domain"
	"equiplend/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	err         error
	key         string
	contentType string
	body        []byte
}

func (s *recordingStore) Put(_ context.Context, key, contentType string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.key, s.contentType, s.body = key, contentType, b
	return "https://cdn.example.com/" + key, nil
}

var (
	admin = domain.Actor{ID: 1, Role: domain.RoleAdmin}
	png   = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
)

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files must be removed")
}

func TestUpload_StoresSniffedImage(t *testing.T) {
	dir := t.TempDir()
	store := &recordingStore{}
	svc := NewService(store, dir)

	res, err := svc.Upload(context.Background(), admin, bytes.NewReader(png), int64(len(png)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.ContentType)
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+res.Key, res.URL)
	assert.Equal(t, png, store.body)
	assertNoTempFiles(t, dir)
}

func TestUpload_AcceptsGIF(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(&recordingStore{}, dir)
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")

	res, err := svc.Upload(context.Background(), admin, bytes.NewReader(gif), int64(len(gif)))
	require.NoError(t, err)
	assert.Equal(t, "image/gif", res.ContentType)
	assertNoTempFiles(t, dir)
}

func TestUpload_RejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	store := &recordingStore{}
	svc := NewService(store, dir)
	body := []byte("just some text, not a picture")

	_, err := svc.Upload(context.Background(), admin, bytes.NewReader(body), int64(len(body)))
	require.ErrorIs(t, err, ErrInvalidMimeType)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, store.key)
	assertNoTempFiles(t, dir)
}

func TestUpload_RejectsOversize(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(&recordingStore{}, dir)

	_, err := svc.Upload(context.Background(), admin, bytes.NewReader(png), MaxFileSize+1)
	require.ErrorIs(t, err, ErrFileTooLarge)

	// a client that under-declares is caught while spooling
	big := append(append([]byte{}, png...), bytes.Repeat([]byte{1}, MaxFileSize)...)
	_, err = svc.Upload(context.Background(), admin, bytes.NewReader(big), 10)
	require.ErrorIs(t, err, ErrFileTooLarge)
	assertNoTempFiles(t, dir)
}

func TestUpload_EmptyFile(t *testing.T) {
	svc := NewService(&recordingStore{}, t.TempDir())
	_, err := svc.Upload(context.Background(), admin, bytes.NewReader(nil), 0)
	require.ErrorIs(t, err, ErrEmptyFile)
}

func TestUpload_StoreFailureIsUpstream(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(&recordingStore{err: errors.New("bucket unreachable")}, dir)

	_, err := svc.Upload(context.Background(), admin, bytes.NewReader(png), int64(len(png)))
	require.ErrorIs(t, err, apperr.ErrUpstream)
	assert.Contains(t, err.Error(), "bucket unreachable")
	assertNoTempFiles(t, dir)
}

func TestUpload_RequiresAdmin(t *testing.T) {
	svc := NewService(&recordingStore{}, t.TempDir())
	for _, role := range []domain.UserRole{domain.RoleUser, domain.RoleModerator} {
		_, err := svc.Upload(context.Background(), domain.Actor{ID: 2, Role: role}, bytes.NewReader(png), int64(len(png)))
		require.ErrorIs(t, err, domain.ErrForbidden)
	}
}
