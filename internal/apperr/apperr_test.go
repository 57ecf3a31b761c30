package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(New(KindNotFound, "gone")))
	assert.Equal(t, KindConflict, KindOf(New(KindConflict, "taken")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")), "unknown errors default to internal")
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(KindPolicyViolation, "too late")
	wrapped := fmt.Errorf("cancel booking: %w", inner)

	assert.True(t, IsKind(wrapped, KindPolicyViolation))
	assert.False(t, IsKind(wrapped, KindConflict))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindConflict, "slot taken", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "slot taken")
	assert.Contains(t, err.Error(), "boom")
}

func TestNewf(t *testing.T) {
	err := Newf(KindInvalidInput, "invalid date %q", "junk")
	assert.True(t, IsKind(err, KindInvalidInput))
	assert.Contains(t, err.Error(), `"junk"`)
}
