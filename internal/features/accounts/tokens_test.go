package accounts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenIssueAndParse(t *testing.T) {
	tm := NewTokenManager("тестовый-секрет", time.Hour)

	token, err := tm.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := tm.Parse(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("тестовый-секрет", -time.Minute)

	token, err := tm.Issue(42)
	require.NoError(t, err)

	_, err = tm.Parse(token)
	require.Error(t, err)
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("секрет-один", time.Hour)
	other := NewTokenManager("секрет-два", time.Hour)

	token, err := tm.Issue(42)
	require.NoError(t, err)

	_, err = other.Parse(token)
	require.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	tm := NewTokenManager("тестовый-секрет", time.Hour)

	_, err := tm.Parse("совсем.не.токен")
	require.Error(t, err)
}
