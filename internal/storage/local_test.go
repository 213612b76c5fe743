package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePut(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir, "/static/uploads/")
	s.now = func() time.Time { return time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC) }

	url, err := s.Put(context.Background(), "abc.png", "image/png", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/2026/03/07/abc.png", url)

	b, err := os.ReadFile(filepath.Join(dir, "2026", "03", "07", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(b))
}

func TestLocalStorePut_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir, "/static")

	url, err := s.Put(context.Background(), "../../etc/passwd", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "/passwd"))
	matches, err := filepath.Glob(filepath.Join(dir, "*", "*", "*", "passwd"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestDrivePublicURL(t *testing.T) {
	assert.Equal(t, "https://drive.google.com/uc?id=F1", DrivePublicURL("F1"))
}
