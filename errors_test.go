package side

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := wrapError(ErrorNotFound, ErrNotFound, "callback not attached to %s:%s", "prov", "name")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyExists))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("boom")
	err := wrapError(ErrorInvalid, cause, "attaching")
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "invalid")
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "finalized", ErrorFinalized.String())
	assert.Equal(t, "unknown", ErrorKind(255).String())
}
