package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSignupToken(t *testing.T) {
	token, err := NewSignupToken()
	require.NoError(t, err)

	assert.Len(t, token, SignupTokenLength)
	for _, r := range token {
		assert.True(t, strings.ContainsRune(signupTokenAlphabet, r), "unexpected character %q", r)
	}
}

func TestNewSignupTokenAvoidsAmbiguousCharacters(t *testing.T) {
	for _, forbidden := range "0O1lIo" {
		assert.False(t, strings.ContainsRune(signupTokenAlphabet, forbidden))
	}
}

func TestNewOpaqueToken(t *testing.T) {
	token, err := NewOpaqueToken()
	require.NoError(t, err)
	assert.Len(t, token, 40)

	other, err := NewOpaqueToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
