package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(newError(KindNotFound, "missing")))
	assert.Equal(t, KindVersionConflict, KindOf(fmt.Errorf("wrapped: %w", newError(KindVersionConflict, "stale"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsNotFound(newError(KindNotFound, "x")))
	assert.True(t, IsAlreadyExists(newError(KindAlreadyExists, "x")))
	assert.True(t, IsVersionConflict(newError(KindVersionConflict, "x")))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsVersionConflict(newError(KindNotFound, "x")))
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := internalError(cause, "load config param %q", "theme")

	assert.Equal(t, `INTERNAL: load config param "theme": connection refused`, err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "NOT_FOUND: gone", newError(KindNotFound, "gone").Error())
}

func TestCursor_RoundTrip(t *testing.T) {
	token := EncodeCursor("0b6d7c3e-1f7a-4c55-9c0e-6a6e8f0f2b11")
	assert.NotContains(t, token, "0b6d7c3e")

	id, err := DecodeCursor(token)
	assert.NoError(t, err)
	assert.Equal(t, "0b6d7c3e-1f7a-4c55-9c0e-6a6e8f0f2b11", id)

	_, err = DecodeCursor("%%%")
	assert.Error(t, err)
	_, err = DecodeCursor("")
	assert.Error(t, err)
}
