package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"equiplend/internal/domain"
	"equiplend/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// FakeAuth stands in for JWTAuth: X-Test-User-ID and X-Test-Role become the
// caller. Requests without the id header are rejected with 401.
func FakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Test-User-ID")
		id, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil {
			response.CustomError(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			c.Abort()
			return
		}
		c.Set("user_id", id)
		c.Set("role", c.GetHeader("X-Test-Role"))
		c.Next()
	}
}

// As authenticates a test request as u. A nil user sends no credentials.
func As(u *domain.User) func(*http.Request) {
	return func(req *http.Request) {
		if u == nil {
			return
		}
		req.Header.Set("X-Test-User-ID", strconv.FormatInt(u.ID, 10))
		req.Header.Set("X-Test-Role", string(u.Role))
	}
}

// DoJSON serves one JSON request against h.
func DoJSON(h http.Handler, method, path string, body any, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// Envelope is the decoded response body.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Error   string          `json:"error"`
}

// Decode parses the envelope and, when dst is non-nil, its data.
func Decode(t testing.TB, rr *httptest.ResponseRecorder, dst any) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rr.Body.String())
	}
	if dst != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decode data: %v body=%s", err, rr.Body.String())
		}
	}
	return env
}
