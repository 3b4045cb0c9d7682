package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSigner(t *testing.T) *Signer {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewSigner(priv)
}

func testRoster(docID string) []Participant {
	return []Participant{
		{ID: 1, DocumentID: docID, UserID: 10},
		{ID: 2, DocumentID: docID, UserID: 11},
	}
}

func TestSignerSignVerify(t *testing.T) {
	s := testSigner(t)
	roster := testRoster("doc-1")

	sig, err := s.Sign(roster)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]+$`), sig)

	assert.NoError(t, s.Verify(roster, sig))
}

func TestSignerDeterministic(t *testing.T) {
	s := testSigner(t)
	roster := testRoster("doc-1")

	sig1, err := s.Sign(roster)
	require.NoError(t, err)
	sig2, err := s.Sign(roster)
	require.NoError(t, err)

	// PKCS#1 v1.5 signing is deterministic, which is what makes
	// recompute-and-compare verification possible.
	assert.Equal(t, sig1, sig2)
}

func TestSignerRosterSensitivity(t *testing.T) {
	s := testSigner(t)
	roster := testRoster("doc-1")

	sig, err := s.Sign(roster)
	require.NoError(t, err)

	added := append(append([]Participant{}, roster...), Participant{ID: 3, DocumentID: "doc-1", UserID: 12})
	assert.ErrorIs(t, s.Verify(added, sig), ErrBadSignature)

	removed := roster[:1]
	assert.ErrorIs(t, s.Verify(removed, sig), ErrBadSignature)

	reordered := []Participant{roster[1], roster[0]}
	assert.ErrorIs(t, s.Verify(reordered, sig), ErrBadSignature)

	// Re-signing the changed roster repairs verification.
	resigned, err := s.Sign(added)
	require.NoError(t, err)
	assert.NoError(t, s.Verify(added, resigned))
}

func TestSignerEmptyRoster(t *testing.T) {
	s := testSigner(t)

	sig, err := s.Sign(nil)
	require.NoError(t, err)
	assert.NoError(t, s.Verify(nil, sig))
	assert.NoError(t, s.Verify([]Participant{}, sig))
}

func TestNewSignerFromPEM(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pkcs1 := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	})
	s, err := NewSignerFromPEM(pkcs1)
	require.NoError(t, err)

	sig, err := s.Sign(testRoster("doc-1"))
	require.NoError(t, err)
	assert.NoError(t, s.Verify(testRoster("doc-1"), sig))

	pkcs8Bytes, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	pkcs8 := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8Bytes})
	_, err = NewSignerFromPEM(pkcs8)
	assert.NoError(t, err)

	_, err = NewSignerFromPEM([]byte("not a key"))
	assert.ErrorIs(t, err, ErrBadPrivateKey)
}
