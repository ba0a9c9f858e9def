package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(NotFound, "campaign %q does not exist", "c1")
	assert.Equal(t, NotFound, KindOf(err))
	assert.True(t, Is(err, NotFound))
	assert.False(t, Is(err, AlreadyExists))

	assert.Equal(t, Internal, KindOf(errors.New("boom")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(Internal, cause, "failed to reach custody")

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection reset")

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, Internal, KindOf(wrapped))
}
