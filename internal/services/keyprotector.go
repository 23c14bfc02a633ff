package services

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/losol/eventuras-idp/utils"
)

// ErrKeyMaterialUnavailable means a sealed private key could not be
// recovered. Callers must fail the operation, generating a replacement
// key would silently invalidate every token signed with the old one.
var ErrKeyMaterialUnavailable = errors.New("key material unavailable")

// KeyProtector seals private signing keys with AES-256-GCM under the
// process master key before they touch the database.
type KeyProtector interface {
	Seal(plaintext []byte) ([]byte, error)
	Unseal(sealed []byte) ([]byte, error)
}

type keyProtector struct {
	aead cipher.AEAD
}

func NewKeyProtector(masterKey []byte) (KeyProtector, error) {
	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating gcm: %w", err)
	}

	return &keyProtector{
		aead: aead,
	}, nil
}

func (p *keyProtector) Seal(plaintext []byte) ([]byte, error) {
	nonce := utils.GetSecureRandomBytes(p.aead.NonceSize())
	return p.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (p *keyProtector) Unseal(sealed []byte) ([]byte, error) {
	nonceSize := p.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("sealed key too short: %w", ErrKeyMaterialUnavailable)
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := p.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("opening sealed key: %w", ErrKeyMaterialUnavailable)
	}

	return plaintext, nil
}
