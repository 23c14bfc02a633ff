package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/losol/eventuras-idp/internal/config"

	vault "github.com/hashicorp/vault/api"
)

const masterKeyLength = 32

// MasterKeySource yields the key encryption key that seals tenant
// signing keys at rest. It is read once at startup, a failure here is
// fatal for the process.
type MasterKeySource interface {
	MasterKey(ctx context.Context) ([]byte, error)
}

func NewMasterKeySource() (MasterKeySource, error) {
	switch config.C.KeyStore.MasterKey.Source {
	case config.MasterKeySourceEnv:
		return &envMasterKeySource{}, nil

	case config.MasterKeySourceVault:
		return newVaultMasterKeySource()

	default:
		return nil, fmt.Errorf("unsupported master key source: %s", config.C.KeyStore.MasterKey.Source)
	}
}

type envMasterKeySource struct {
}

func (s *envMasterKeySource) MasterKey(_ context.Context) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(config.C.KeyStore.MasterKey.Env.Key)
	if err != nil {
		return nil, fmt.Errorf("decoding master key: %w", err)
	}

	if len(key) != masterKeyLength {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", masterKeyLength, len(key))
	}

	return key, nil
}

type vaultMasterKeySource struct {
	client *vault.Client
}

func newVaultMasterKeySource() (MasterKeySource, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = config.C.KeyStore.MasterKey.Vault.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("creating vault client: %w", err)
	}

	client.SetToken(config.C.KeyStore.MasterKey.Vault.Token)

	return &vaultMasterKeySource{
		client: client,
	}, nil
}

func (s *vaultMasterKeySource) MasterKey(ctx context.Context) ([]byte, error) {
	vaultConfig := config.C.KeyStore.MasterKey.Vault

	secret, err := s.client.KVv2(vaultConfig.Mount).Get(ctx, vaultConfig.Path)
	if err != nil {
		return nil, fmt.Errorf("reading master key from vault: %w", err)
	}

	field, ok := secret.Data[vaultConfig.Field]
	if !ok {
		return nil, fmt.Errorf("vault secret is missing field %q", vaultConfig.Field)
	}

	encoded, ok := field.(string)
	if !ok {
		return nil, fmt.Errorf("vault field %q is not a string", vaultConfig.Field)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding master key: %w", err)
	}

	if len(key) != masterKeyLength {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", masterKeyLength, len(key))
	}

	return key, nil
}
