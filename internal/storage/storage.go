// Package storage puts equipment images somewhere a browser can fetch them.
package storage

import (
	"context"
	"io"
)

// ObjectStore stores one object and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}
