package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
)

var (
	ErrBadPrivateKey = errors.New("signing key is not a valid RSA private key")
	ErrBadSignature  = errors.New("invalid roster signature")
)

// Participant is one entry of the signing roster. Field order matters: the
// canonical payload is the JSON encoding of the participant slice, and any
// change to field order or roster order produces a different signature.
type Participant struct {
	ID         uint   `json:"id"`
	DocumentID string `json:"documentId"`
	UserID     uint   `json:"userId"`
}

// Signer produces and checks RSA-SHA256 signatures over a document's signing
// roster. The private key is loaded once at startup and never mutated.
type Signer struct {
	priv *rsa.PrivateKey
}

func NewSigner(priv *rsa.PrivateKey) *Signer {
	return &Signer{priv: priv}
}

// NewSignerFromPEM parses PKCS#1 or PKCS#8 encoded RSA key material.
func NewSignerFromPEM(pemBytes []byte) (*Signer, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrBadPrivateKey
	}

	if priv, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return &Signer{priv: priv}, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrBadPrivateKey
	}
	return &Signer{priv: priv}, nil
}

// canonicalPayload serializes the roster deterministically. Callers must
// pass participants in storage order (share row id ascending).
func canonicalPayload(participants []Participant) ([]byte, error) {
	if participants == nil {
		participants = []Participant{}
	}
	return json.Marshal(participants)
}

// Sign returns the hex-encoded signature over the canonical roster payload.
func (s *Signer) Sign(participants []Participant) (string, error) {
	payload, err := canonicalPayload(participants)
	if err != nil {
		return "", err
	}

	digest := sha256.Sum256(payload)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.priv, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign roster: %w", err)
	}
	return hex.EncodeToString(sig), nil
}

// Verify recomputes the signature for the given roster and compares it to
// signatureHex. It returns ErrBadSignature on mismatch, so a roster that
// changed since signing is always rejected.
func (s *Signer) Verify(participants []Participant, signatureHex string) error {
	expected, err := s.Sign(participants)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signatureHex)) != 1 {
		return ErrBadSignature
	}
	return nil
}
