package prompt

import (
	"errors"
	"fmt"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
)

func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort("8080"))
	assert.NoError(t, ValidatePort("1"))
	assert.NoError(t, ValidatePort("65535"))
	assert.Error(t, ValidatePort("0"))
	assert.Error(t, ValidatePort("65536"))
	assert.Error(t, ValidatePort("http"))
}

func TestIsAborted(t *testing.T) {
	assert.True(t, IsAborted(promptui.ErrInterrupt))
	assert.True(t, IsAborted(promptui.ErrAbort))
	assert.True(t, IsAborted(fmt.Errorf("init: %w", ErrAborted)))
	assert.False(t, IsAborted(errors.New("boom")))
	assert.False(t, IsAborted(nil))
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, wrapError(nil))
	assert.ErrorIs(t, wrapError(promptui.ErrInterrupt), ErrAborted)

	other := errors.New("tty closed")
	assert.Equal(t, other, wrapError(other))
}
