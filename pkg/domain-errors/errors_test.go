package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	t.Run("new error carries its code", func(t *testing.T) {
		err := New(CodeForbidden, "caller is not the patient")
		assert.True(t, HasCode(err, CodeForbidden))
		assert.False(t, HasCode(err, CodeNotFound))
		assert.Equal(t, "caller is not the patient", err.Error())
	})

	t.Run("wrapped cause stays reachable", func(t *testing.T) {
		cause := errors.New("db down")
		err := Wrap(cause, CodeInternal, "failed to load claim")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.Contains(t, err.Error(), "db down")
	})

	t.Run("classification survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeInvalidState, "claim already endorsed"))
		assert.True(t, Is(err, CodeInvalidState))
	})

	t.Run("unclassified errors read as internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}
