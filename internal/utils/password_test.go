package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Str0ng#Pass": true,
		"short#1A":    true,
		"Sh0rt#A":     false,
		"alllower#1":  false,
		"ALLUPPER#1":  false,
		"NoDigits#!":  false,
		"NoSymbol12A": false,
		"Has Space#1": false,
	}
	for pw, want := range cases {
		assert.Equal(t, want, IsStrongPassword(pw), pw)
	}
}

func TestHashPassword(t *testing.T) {
	PasswordHashCost = 4
	defer func() { PasswordHashCost = 14 }()

	hash, err := HashPassword("Str0ng#Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng#Pass", hash)
	assert.True(t, CheckPasswordHash("Str0ng#Pass", hash))
	assert.False(t, CheckPasswordHash("str0ng#Pass", hash))
}

func TestRandomHelpers(t *testing.T) {
	code := RandomNumericString(6)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^\d{6}$`, code)

	a, b := RandomToken(64), RandomToken(64)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)

	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
}
