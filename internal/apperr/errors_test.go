package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpersWrapSentinels(t *testing.T) {
	err := NotFound("project %s", "abc")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "not found: project abc", err.Error())

	assert.True(t, errors.Is(Validation("empty name"), ErrValidation))
	assert.True(t, errors.Is(Decode("bad magic"), ErrDecode))
}

func TestExecutionKeepsCause(t *testing.T) {
	cause := errors.New("engine exploded")
	err := Execution(cause)

	assert.True(t, errors.Is(err, ErrExecution))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, ErrExecution, Execution(nil))
}

func TestKind(t *testing.T) {
	assert.Equal(t, ErrNotFound, Kind(NotFound("x")))
	assert.Equal(t, ErrDecode, Kind(Decode("x")))
	assert.Nil(t, Kind(errors.New("plain")))
	assert.Nil(t, Kind(nil))
}
