package crypto

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// OTP parameters. The 180s step is deliberately coarse so a code that sat in
// an email inbox for a couple of minutes still verifies.
const (
	OtpSecretLen = 20
	OtpStep      = 180 * time.Second
	otpDigits    = otp.DigitsSix
)

var totpOpts = totp.ValidateOpts{
	Period:    uint(OtpStep / time.Second),
	Skew:      1,
	Digits:    otpDigits,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateOtp creates a fresh challenge secret and the code for the current
// time window. The secret is returned hex-encoded for storage on the user
// row.
func GenerateOtp(now time.Time) (secretHex, token string, err error) {
	raw := make([]byte, OtpSecretLen)
	if _, err = rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate otp secret: %w", err)
	}

	secretHex = hex.EncodeToString(raw)
	token, err = OtpToken(secretHex, now)
	if err != nil {
		return "", "", err
	}
	return secretHex, token, nil
}

// OtpToken derives the code for the time window containing now.
func OtpToken(secretHex string, now time.Time) (string, error) {
	raw, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("decode otp secret: %w", err)
	}

	token, err := totp.GenerateCodeCustom(base32.StdEncoding.EncodeToString(raw), now, totpOpts)
	if err != nil {
		return "", fmt.Errorf("generate otp token: %w", err)
	}
	return token, nil
}

// VerifyOtp checks token against the stored secret for the window containing
// now, tolerating one adjacent step in either direction.
func VerifyOtp(secretHex, token string, now time.Time) bool {
	raw, err := hex.DecodeString(secretHex)
	if err != nil {
		return false
	}

	ok, err := totp.ValidateCustom(token, base32.StdEncoding.EncodeToString(raw), now, totpOpts)
	return err == nil && ok
}
