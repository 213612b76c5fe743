package response

import (
	"errors"
	"log"
	"net/http"

	"equiplend/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	Success(c, http.StatusCreated, data)
}

// CustomError writes the error envelope with an explicit code.
func CustomError(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"code":    code,
		"error":   message,
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"code":    code,
		"error":   message,
		"details": details,
	})
}

// Error maps err onto the apperr taxonomy and writes it.
// Unexpected errors are logged and hidden behind a generic message.
func Error(c *gin.Context, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		log.Printf("request_failed method=%s path=%s user_id=%d error=%q",
			c.Request.Method, c.Request.URL.Path, c.GetInt64("user_id"), err.Error())
		msg = "internal server error"
	}
	if status == http.StatusBadGateway {
		_ = c.Error(err)
		log.Printf("upstream_failed method=%s path=%s error=%q", c.Request.Method, c.Request.URL.Path, err.Error())
	}
	CustomError(c, status, apperr.Code(err), msg)
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Response is the envelope every endpoint writes.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}
