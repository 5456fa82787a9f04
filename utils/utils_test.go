package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHash(t *testing.T) {
	BcryptCost = bcrypt.MinCost

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("battery staple", hash))
}

func TestIsValidEmail(t *testing.T) {
	tests := map[string]bool{
		"alice@example.com":         true,
		"a.b+tag@sub.example.org":   true,
		"":                          false,
		"alice":                     false,
		"alice@localhost":           false,
		"Alice <alice@example.com>": false,
		"alice@@example.com":        false,
	}
	for email, want := range tests {
		assert.Equal(t, want, IsValidEmail(email), email)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}
