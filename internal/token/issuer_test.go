package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	issuer, err := NewIssuer("test-jwt-secret", time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Issue(42, "alice@example.com")
	require.NoError(t, err)

	userID, email, err := issuer.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, "alice@example.com", email)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer, err := NewIssuer("secret-a", time.Hour)
	require.NoError(t, err)
	other, err := NewIssuer("secret-b", time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Issue(1, "a@example.com")
	require.NoError(t, err)

	_, _, err = other.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	issuer, err := NewIssuer("test-jwt-secret", -time.Minute)
	require.NoError(t, err)

	signed, err := issuer.Issue(1, "a@example.com")
	require.NoError(t, err)

	_, _, err = issuer.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	issuer, err := NewIssuer("test-jwt-secret", time.Hour)
	require.NoError(t, err)

	_, _, err = issuer.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	_, err := NewIssuer("", time.Hour)
	assert.Error(t, err)
}
