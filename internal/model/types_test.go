package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvelope(t *testing.T) {
	t.Parallel()
	ok := Success(map[string]any{"key": "ABC-1"})
	assert.False(t, ok.Failed())
	assert.Equal(t, KindSuccess, ok.Kind)
	assert.Equal(t, map[string]any{"key": "ABC-1"}, ok.Payload)
	assert.Empty(t, ok.Message)

	bad := Failure("Issue key is required")
	assert.True(t, bad.Failed())
	assert.Equal(t, KindError, bad.Kind)
	assert.Nil(t, bad.Payload)
	assert.Equal(t, "Issue key is required", bad.Message)
}

func TestSuccess_NilPayloadIsStillSuccess(t *testing.T) {
	t.Parallel()
	assert.False(t, Success(nil).Failed())
}
