package progress

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAllTrue(t *testing.T) {
	assert.False(t, allTrue(nil))
	assert.False(t, allTrue(map[string]bool{"a": true, "b": false}))
	assert.True(t, allTrue(map[string]bool{"a": true, "b": true}))
}

func TestAllTrueUUID(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	assert.False(t, allTrueUUID(nil))
	assert.False(t, allTrueUUID(map[uuid.UUID]bool{a: true, b: false}))
	assert.True(t, allTrueUUID(map[uuid.UUID]bool{a: true, b: true}))
}
