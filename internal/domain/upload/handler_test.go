package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"equiplend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T, store *recordingStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("/api", testutil.FakeAuth())
	RegisterRoutes(protected, NewHandler(NewService(store, t.TempDir())))
	return r
}

func multipartRequest(t *testing.T, field string, content []byte, role string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, "photo.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-image", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Test-User-ID", "1")
	req.Header.Set("X-Test-Role", role)
	return req
}

func TestUploadImageEndpoint(t *testing.T) {
	store := &recordingStore{}
	r := setupTestRouter(t, store)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, multipartRequest(t, "file", png, "ADMIN"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var res Result
	testutil.Decode(t, rr, &res)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, store.key, res.Key)
}

func TestUploadImageEndpoint_Errors(t *testing.T) {
	r := setupTestRouter(t, &recordingStore{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, multipartRequest(t, "file", png, "USER"))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, multipartRequest(t, "other", png, "ADMIN"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, multipartRequest(t, "file", []byte("%PDF-1.4 not an image"), "ADMIN"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", testutil.Decode(t, rr, nil).Code)
}
