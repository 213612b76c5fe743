package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_MatchesKindAndItself(t *testing.T) {
	errQty := New(ErrConflict, "insufficient available quantity")

	wrapped := fmt.Errorf("approve request 7: %w", errQty)

	assert.ErrorIs(t, wrapped, errQty)
	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, "insufficient available quantity", errQty.Error())
}

func TestUpstream_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("store image", cause)

	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store image: connection refused", err.Error())
	assert.Nil(t, Upstream("noop", nil))
}

func TestCode(t *testing.T) {
	cases := map[error]string{
		Validation("bad %s", "input"):        "VALIDATION_ERROR",
		ErrAuthentication:                    "UNAUTHORIZED",
		New(ErrAuthorization, "nope"):        "FORBIDDEN",
		New(ErrNotFound, "missing"):          "NOT_FOUND",
		ErrConflict:                          "CONFLICT",
		Upstream("x", errors.New("y")):       "UPSTREAM_ERROR",
		errors.New("boom"):                   "INTERNAL_ERROR",
		fmt.Errorf("%w: panic", ErrInternal): "INTERNAL_ERROR",
	}
	for err, want := range cases {
		assert.Equal(t, want, Code(err), err.Error())
	}
}
