package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHS256RoundTrip(t *testing.T) {
	t.Parallel()

	signer := NewHS256Signer("top-secret", "lettre-platform")
	verifier, err := NewHS256Verifier("top-secret", "lettre-platform")
	require.NoError(t, err)

	raw, err := signer.Sign("member-1", "fam-1", []string{"team:write"}, time.Minute)
	require.NoError(t, err)

	claims, err := verifier.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "member-1", claims.Subject)
	require.Equal(t, "fam-1", claims.FamilyID)
	require.True(t, claims.HasScope("team:write"))
	require.False(t, claims.HasScope("team:read"))
	require.NoError(t, claims.ValidateExpiry())
}

func TestHS256VerifierRejections(t *testing.T) {
	t.Parallel()

	signer := NewHS256Signer("top-secret", "lettre-platform")
	verifier, err := NewHS256Verifier("top-secret", "lettre-platform")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewHS256Signer("other-secret", "lettre-platform")
		raw, err := other.Sign("member-1", "fam-1", nil, time.Minute)
		require.NoError(t, err)

		_, err = verifier.Verify(raw)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewHS256Signer("top-secret", "someone-else")
		raw, err := other.Sign("member-1", "fam-1", nil, time.Minute)
		require.NoError(t, err)

		_, err = verifier.Verify(raw)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		raw, err := signer.Sign("member-1", "fam-1", nil, -time.Minute)
		require.NoError(t, err)

		_, err = verifier.Verify(raw)
		require.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify("not.a.token")
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("empty secret refused", func(t *testing.T) {
		_, err := NewHS256Verifier("", "iss")
		require.Error(t, err)
	})
}
