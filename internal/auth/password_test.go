package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Correct-Horse-9", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	match, err := VerifyPassword("Correct-Horse-9", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("Correct-Horse-9", nil)
	require.NoError(t, err)
	h2, err := HashPassword("Correct-Horse-9", nil)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestHashPasswordCustomParams(t *testing.T) {
	// Small parameters keep the test fast
	params := NewParams(8*1024, 1, 1)
	hash, err := HashPassword("Correct-Horse-9", params)
	require.NoError(t, err)

	match, err := VerifyPassword("Correct-Horse-9", hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, bad := range []string{
		"",
		"not-a-hash",
		"$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA",
	} {
		_, err := VerifyPassword("anything", bad)
		assert.Error(t, err, "hash %q", bad)
	}
}
