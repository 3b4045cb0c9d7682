package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for the at-rest file key. The salt is fixed so the same
// operator secret always derives the same key; changing either makes every
// stored document unreadable.
const (
	kdfSalt = "salt"
	kdfN    = 16384
	kdfR    = 8
	kdfP    = 1
	keyLen  = 32
	ivLen   = 16
)

var ErrBadIV = errors.New("initialization vector must be 16 bytes")

// Box encrypts and decrypts document bytes at rest with AES-256-CTR. The key
// is derived once at startup and is read-only afterwards, so a single Box is
// safe for concurrent use. CTR provides no authentication; integrity is
// layered on top with a CRC tag at the custody level.
type Box struct {
	key []byte
}

// NewBox derives the process-wide file key from the operator secret.
func NewBox(secret string) (*Box, error) {
	if secret == "" {
		return nil, errors.New("encryption secret must not be empty")
	}
	key, err := scrypt.Key([]byte(secret), []byte(kdfSalt), kdfN, kdfR, kdfP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("derive file key: %w", err)
	}
	return &Box{key: key}, nil
}

// Encrypt returns the ciphertext together with the fresh random IV used for
// it. The IV must be persisted next to the ciphertext: without it the data
// is unrecoverable.
func (b *Box) Encrypt(plaintext []byte) (ciphertext, iv []byte, err error) {
	iv = make([]byte, ivLen)
	if _, err = rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("generate iv: %w", err)
	}

	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, nil, err
	}

	ciphertext = make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, plaintext)
	return ciphertext, iv, nil
}

// Decrypt reverses Encrypt for the given IV. A wrong IV or tampered
// ciphertext still yields bytes; callers detect that through the CRC tag.
func (b *Box) Decrypt(ciphertext, iv []byte) ([]byte, error) {
	if len(iv) != ivLen {
		return nil, ErrBadIV
	}

	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}

// DecryptHexIV is Decrypt with the IV in the hex form it is stored in.
func (b *Box) DecryptHexIV(ciphertext []byte, ivHex string) ([]byte, error) {
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, fmt.Errorf("decode iv: %w", err)
	}
	return b.Decrypt(ciphertext, iv)
}
