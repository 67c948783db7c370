package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Sup3r-Secret!")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifyPassword("Sup3r-Secret!", hash))
	require.ErrorIs(t, VerifyPassword("wrong", hash), ErrPasswordMismatch)
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	t.Parallel()

	require.Error(t, VerifyPassword("x", "not-a-hash"))
	require.Error(t, VerifyPassword("x", "$argon2i$v=19$m=1,t=1,p=1$AA$AA"))
}
