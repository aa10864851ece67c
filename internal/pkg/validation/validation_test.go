package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPassword(t *testing.T) {
	assert.True(t, IsValidPassword("admin1234"))
	assert.False(t, IsValidPassword("short1"))
	assert.False(t, IsValidPassword("lettersonly"))
	assert.False(t, IsValidPassword("12345678"))
}

func TestIsValidUsername(t *testing.T) {
	assert.True(t, IsValidUsername("senior"))
	assert.True(t, IsValidUsername("kim.agent-01"))
	assert.False(t, IsValidUsername("ab"))
	assert.False(t, IsValidUsername("Admin"))
	assert.False(t, IsValidUsername("관리자"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("admin@example.com"))
	assert.False(t, IsValidEmail("admin@"))
}
