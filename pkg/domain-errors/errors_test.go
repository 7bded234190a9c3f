package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct coded error", func(t *testing.T) {
		err := New(CodeValidation, "form part is required")
		assert.True(t, HasCode(err, CodeValidation))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("wrapped coded error", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeNotFound, "missing"))
		assert.True(t, HasCode(err, CodeNotFound))
		assert.Equal(t, CodeNotFound, CodeOf(err))
	})

	t.Run("plain error defaults to internal", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})
}

func TestWrapUnwraps(t *testing.T) {
	root := errors.New("disk full")
	err := Wrap(root, CodeInternal, "failed to stage documents")

	assert.ErrorIs(t, err, root)
	assert.Equal(t, "failed to stage documents: disk full", err.Error())
}
