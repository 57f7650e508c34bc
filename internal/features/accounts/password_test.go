package accounts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("сложный-пароль-123")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	require.True(t, VerifyPassword("сложный-пароль-123", hash))
	require.False(t, VerifyPassword("другой-пароль", hash))
}

func TestHashIsSalted(t *testing.T) {
	h1, err := HashPassword("пароль")
	require.NoError(t, err)
	h2, err := HashPassword("пароль")
	require.NoError(t, err)
	// Одинаковые пароли дают разные хеши из-за случайной соли
	require.NotEqual(t, h1, h2)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	require.False(t, VerifyPassword("пароль", ""))
	require.False(t, VerifyPassword("пароль", "не-хеш-вовсе"))
	require.False(t, VerifyPassword("пароль", "$argon2id$v=19$обрезанный"))
}
