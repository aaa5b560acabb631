package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123"

func TestPasswords(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, CheckPassword(hash, "hunter22"))
	assert.ErrorIs(t, CheckPassword(hash, "hunter23"), ErrInvalidCredentials)
	assert.ErrorIs(t, CheckPassword("not-a-hash", "hunter22"), ErrInvalidCredentials)
}

func TestTokensRoundTrip(t *testing.T) {
	t.Parallel()

	clk := clockwork.NewFakeClockAt(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	tokens, err := NewTokens(secret, time.Hour, clk)
	require.NoError(t, err)

	raw, issued, err := tokens.Issue(42)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)

	s, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), s.UserID)
	assert.Equal(t, issued.TokenID, s.TokenID)
	assert.True(t, issued.ExpiresAt.Equal(s.ExpiresAt))

	_, again, err := tokens.Issue(42)
	require.NoError(t, err)
	assert.NotEqual(t, issued.TokenID, again.TokenID)

	clk.Advance(time.Hour + time.Second)
	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	clk := clockwork.NewFakeClock()
	tokens, err := NewTokens(secret, time.Hour, clk)
	require.NoError(t, err)
	other, err := NewTokens("another-secret-0000", time.Hour, clk)
	require.NoError(t, err)

	forged, _, err := other.Issue(1)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1", Issuer: issuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(clk.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"empty":      "",
		"garbage":    "not.a.token",
		"forged":     forged,
		"alg none":   none,
		"no subject": noSubject,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := tokens.Verify(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewTokensValidation(t *testing.T) {
	t.Parallel()

	_, err := NewTokens("", time.Hour, nil)
	assert.Error(t, err)
	_, err = NewTokens(secret, 0, nil)
	assert.Error(t, err)
}
