package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"equiplend/internal/pkg/apperr"
	"equiplend/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID propagates X-Request-ID, generating one when the client sent none.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestID(c)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// ErrorLogger recovers panics into a 500 envelope and logs every 5xx
// response. 409s are logged too: they are how lost lifecycle races surface.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				logFailure(c, "panic", start, fmt.Sprint(recovered), debug.Stack())
				response.Error(c, fmt.Errorf("%w: panic: %v", apperr.ErrInternal, recovered))
				c.Abort()
				return
			}

			status := c.Writer.Status()
			switch {
			case status >= http.StatusInternalServerError:
				logFailure(c, "server_error", start, errorsOf(c), nil)
			case status == http.StatusConflict:
				logFailure(c, "conflict", start, errorsOf(c), nil)
			}
		}()

		c.Next()
	}
}

func errorsOf(c *gin.Context) string {
	if len(c.Errors) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(c.Errors))
	for _, e := range c.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func logFailure(c *gin.Context, kind string, start time.Time, message string, stack []byte) {
	line := fmt.Sprintf(
		"request_%s status=%d method=%s path=%s query=%q user_id=%d role=%s request_id=%s latency=%s error=%q",
		kind,
		c.Writer.Status(),
		c.Request.Method,
		c.Request.URL.Path,
		c.Request.URL.RawQuery,
		c.GetInt64("user_id"),
		c.GetString("role"),
		requestID(c),
		time.Since(start),
		message,
	)
	if len(stack) > 0 {
		line += "\n" + string(stack)
	}
	log.Print(line)
}

func requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}
