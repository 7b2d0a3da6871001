package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordRoundTrip(t *testing.T) {
	h := HashPassword("password123")
	assert.NotEqual(t, "password123", h)
	assert.True(t, CheckPassword("password123", h))
	assert.False(t, CheckPassword("password124", h))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
