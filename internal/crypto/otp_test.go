package crypto

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOtp(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	secret, token, err := GenerateOtp(now)
	require.NoError(t, err)

	raw, err := hex.DecodeString(secret)
	require.NoError(t, err)
	assert.Len(t, raw, OtpSecretLen)
	assert.Len(t, token, 6)

	assert.True(t, VerifyOtp(secret, token, now))
}

func TestVerifyOtpWithinWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	secret, token, err := GenerateOtp(now)
	require.NoError(t, err)

	// Anywhere inside the same step, and one adjacent step either way.
	assert.True(t, VerifyOtp(secret, token, now.Add(30*time.Second)))
	assert.True(t, VerifyOtp(secret, token, now.Add(OtpStep)))
	assert.True(t, VerifyOtp(secret, token, now.Add(-OtpStep)))
}

func TestVerifyOtpExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	secret, token, err := GenerateOtp(now)
	require.NoError(t, err)

	assert.False(t, VerifyOtp(secret, token, now.Add(2*OtpStep+time.Second)))
	assert.False(t, VerifyOtp(secret, token, now.Add(time.Hour)))
}

func TestVerifyOtpWrongSecret(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	_, token, err := GenerateOtp(now)
	require.NoError(t, err)

	other, _, err := GenerateOtp(now)
	require.NoError(t, err)

	assert.False(t, VerifyOtp(other, token, now))
	assert.False(t, VerifyOtp("not hex", token, now))
}

func TestOtpTokenRecompute(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	secret, token, err := GenerateOtp(now)
	require.NoError(t, err)

	// The verifying side recomputes from the stored secret alone.
	recomputed, err := OtpToken(secret, now)
	require.NoError(t, err)
	assert.Equal(t, token, recomputed)
}
