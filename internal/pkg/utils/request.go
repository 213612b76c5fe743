package utils

import (
	"net/http"
	"strconv"
	"strings"

	"equiplend/internal/pkg/apperr"
	"equiplend/internal/pkg/response"
	"equiplend/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Page is the pagination window parsed from ?page=&limit=.
type Page struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// ParsePage reads 1-based page and limit, clamping limit to MaxLimit.
// Garbage values fall back to the defaults.
func ParsePage(c *gin.Context) Page {
	page := 1
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	limit := DefaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// ParseID reads a positive int64 path parameter, writing 400 on failure.
func ParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.CustomError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}

// BindJSON decodes the body into v and runs struct validation, writing 400
// on failure.
func BindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return false
	}
	if fields := validator.Validate(v); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed: "+validator.Summary(fields), fields)
		return false
	}
	return true
}

// QueryBool reads an optional boolean query parameter. An absent value is
// false; a malformed one writes 400 and returns ok=false.
func QueryBool(c *gin.Context, name string) (value bool, ok bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return false, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		response.Error(c, apperr.Validation("%s must be a boolean", name))
		return false, false
	}
	return b, true
}
