package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitErrorMessage(t *testing.T) {
	err := NewExitError(ExitCommandError, "bad flags")
	assert.Equal(t, "bad flags", err.Error())

	wrapped := WrapExitError(ExitFailure, "pipeline failed", errors.New("load: no such file"))
	assert.Equal(t, "pipeline failed: load: no such file", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "load: no such file")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))

	// Wrapped ExitErrors still carry their code.
	inner := WrapExitError(ExitCommandError, "config", errors.New("yaml"))
	assert.Equal(t, ExitCommandError, GetExitCode(inner))
}
