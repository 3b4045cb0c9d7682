package crypto

import (
	"errors"
	"fmt"
	"os"
)

// Material bundles the process-wide key state: the derived file key inside
// Box and the roster signing key inside Signer. It is built once at startup
// and read-only afterwards; a missing secret or key aborts startup instead
// of degrading silently.
type Material struct {
	Box    *Box
	Signer *Signer
}

func LoadMaterial(encryptionSecret, signingKeyPath string) (*Material, error) {
	if signingKeyPath == "" {
		return nil, errors.New("signing key path must be configured")
	}

	box, err := NewBox(encryptionSecret)
	if err != nil {
		return nil, err
	}

	pemBytes, err := os.ReadFile(signingKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read signing key: %w", err)
	}
	signer, err := NewSignerFromPEM(pemBytes)
	if err != nil {
		return nil, err
	}

	return &Material{Box: box, Signer: signer}, nil
}
