package services

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/losol/eventuras-idp/internal/caching"
	"github.com/losol/eventuras-idp/internal/clock"
	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/metrics"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

const rsaKeyBits = 2048

type Ed25519JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	X   string `json:"x"`
}

type RS256JWK struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Jwks is the public key set of one tenant. EarliestExpiry is the
// closest grace key expiry, callers use it to bound response caching.
type Jwks struct {
	Keys           []any `json:"keys"`
	earliestExpiry *time.Time
}

func NewJwks(keys []any, earliestExpiry *time.Time) Jwks {
	return Jwks{
		Keys:           keys,
		earliestExpiry: earliestExpiry,
	}
}

func (j Jwks) EarliestExpiry() *time.Time {
	return j.earliestExpiry
}

// KeyPair is a decrypted signing key pair. It only lives on the stack
// of the signing call.
type KeyPair struct {
	kid        string
	algorithm  config.SigningAlgorithm
	publicKey  any
	privateKey any
}

func NewKeyPair(kid string, algorithm config.SigningAlgorithm, publicKey any, privateKey any) KeyPair {
	return KeyPair{
		kid:        kid,
		algorithm:  algorithm,
		publicKey:  publicKey,
		privateKey: privateKey,
	}
}

func (k *KeyPair) Kid() string {
	return k.kid
}

func (k *KeyPair) Algorithm() config.SigningAlgorithm {
	return k.algorithm
}

func (k *KeyPair) PublicKey() any {
	return k.publicKey
}

func (k *KeyPair) PrivateKey() any {
	return k.privateKey
}

func (k *KeyPair) PrivateKeyBytes() []byte {
	switch k.algorithm {
	case config.SigningAlgorithmEdDSA:
		return k.privateKey.(ed25519.PrivateKey)

	case config.SigningAlgorithmRS256:
		return x509.MarshalPKCS1PrivateKey(k.privateKey.(*rsa.PrivateKey))

	default:
		panic(fmt.Sprintf("not implemented for algorithm: %s", k.algorithm))
	}
}

func (k *KeyPair) PublicKeyBytes() []byte {
	publicKeyBytes, err := x509.MarshalPKIXPublicKey(k.publicKey)
	if err != nil {
		panic(fmt.Errorf("marshaling public key: %w", err))
	}
	return publicKeyBytes
}

func generateKeyPair(algorithm config.SigningAlgorithm) (KeyPair, error) {
	kid := uuid.NewString()

	switch algorithm {
	case config.SigningAlgorithmEdDSA:
		publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return KeyPair{}, fmt.Errorf("generating ed25519 key: %w", err)
		}
		return NewKeyPair(kid, algorithm, publicKey, privateKey), nil

	case config.SigningAlgorithmRS256:
		privateKey, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
		if err != nil {
			return KeyPair{}, fmt.Errorf("generating rsa key: %w", err)
		}
		return NewKeyPair(kid, algorithm, &privateKey.PublicKey, privateKey), nil

	default:
		return KeyPair{}, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}
}

func importPrivateKey(privateKeyBytes []byte, algorithm config.SigningAlgorithm) (any, error) {
	switch algorithm {
	case config.SigningAlgorithmEdDSA:
		if len(privateKeyBytes) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("unexpected ed25519 private key length: %d", len(privateKeyBytes))
		}
		return ed25519.PrivateKey(privateKeyBytes), nil

	case config.SigningAlgorithmRS256:
		privateKey, err := x509.ParsePKCS1PrivateKey(privateKeyBytes)
		if err != nil {
			return nil, fmt.Errorf("parsing rsa private key: %w", err)
		}
		return privateKey, nil

	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}
}

func importPublicKey(publicKeyBytes []byte) (any, error) {
	publicKey, err := x509.ParsePKIXPublicKey(publicKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	return publicKey, nil
}

func trimLeadingZeros(b []byte) []byte {
	for i := 0; i < len(b); i++ {
		if b[i] != 0 {
			return b[i:]
		}
	}
	return []byte{0}
}

func jwkForKey(kid string, algorithm config.SigningAlgorithm, publicKey any) (any, error) {
	switch algorithm {
	case config.SigningAlgorithmEdDSA:
		edPublicKey, ok := publicKey.(ed25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("expected ed25519 public key for kid %s", kid)
		}
		return Ed25519JWK{
			Kty: "OKP",
			Crv: "Ed25519",
			Alg: "EdDSA",
			Use: "sig",
			Kid: kid,
			X:   base64.RawURLEncoding.EncodeToString(edPublicKey),
		}, nil

	case config.SigningAlgorithmRS256:
		rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("expected rsa public key for kid %s", kid)
		}

		eBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(eBytes, uint64(rsaPublicKey.E))

		// JWK requires the minimal big-endian representation
		eBytes = trimLeadingZeros(eBytes)

		return RS256JWK{
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			Kid: kid,
			N:   base64.RawURLEncoding.EncodeToString(rsaPublicKey.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(eBytes),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}
}

// jwksCacheTtl bounds how long a published key set is served without a
// database read. Rotation can happen on another instance (the elected
// leader's job or an admin call on a different replica), so a cached
// set must expire on its own; local rotation still invalidates eagerly.
const jwksCacheTtl = time.Minute

type jwksCacheEntry struct {
	jwks    Jwks
	staleAt time.Time
}

type JwksCache caching.Cache[uuid.UUID, jwksCacheEntry]

//go:generate mockgen -destination=./mocks/key_service.go -package=mocks github.com/losol/eventuras-idp/internal/services KeyService
type KeyService interface {
	// EnsureKey generates the initial active key for a tenant if it
	// has none yet.
	EnsureKey(ctx context.Context, tenantId uuid.UUID, algorithm config.SigningAlgorithm) error
	// ActiveSigningKey unseals the tenant's active private key for one
	// signing call.
	ActiveSigningKey(ctx context.Context, tenantId uuid.UUID) (KeyPair, error)
	// VerificationKey returns the public key for a kid if that key is
	// active or still inside its grace window.
	VerificationKey(ctx context.Context, tenantId uuid.UUID, kid string) (any, config.SigningAlgorithm, error)
	PublicJwks(ctx context.Context, tenantId uuid.UUID) (Jwks, error)
	Rotate(ctx context.Context, tenantId uuid.UUID) (string, error)
}

type keyService struct {
	protector KeyProtector
	jwksCache JwksCache
}

func NewKeyService(protector KeyProtector) KeyService {
	return &keyService{
		protector: protector,
		jwksCache: caching.NewMemoryCache[uuid.UUID, jwksCacheEntry](),
	}
}

func (s *keyService) EnsureKey(ctx context.Context, tenantId uuid.UUID, algorithm config.SigningAlgorithm) error {
	scope := middlewares.GetScope(ctx)
	signingKeyRepository := ioc.GetDependency[repositories.SigningKeyRepository](scope)
	clockService := ioc.GetDependency[clock.Service](scope)

	filter := repositories.NewSigningKeyFilter().
		TenantId(tenantId).
		Status(repositories.KeyStatusActive)
	existing, err := signingKeyRepository.First(ctx, filter)
	if err != nil {
		return fmt.Errorf("getting active signing key: %w", err)
	}
	if existing != nil {
		return nil
	}

	_, err = s.generateAndInsert(ctx, tenantId, algorithm, clockService.Now())
	if err != nil {
		return err
	}

	s.jwksCache.Remove(tenantId)
	return nil
}

func (s *keyService) generateAndInsert(ctx context.Context, tenantId uuid.UUID, algorithm config.SigningAlgorithm, now time.Time) (*repositories.SigningKey, error) {
	scope := middlewares.GetScope(ctx)
	signingKeyRepository := ioc.GetDependency[repositories.SigningKeyRepository](scope)

	keyPair, err := generateKeyPair(algorithm)
	if err != nil {
		return nil, fmt.Errorf("generating key pair: %w", err)
	}

	sealedPrivateKey, err := s.protector.Seal(keyPair.PrivateKeyBytes())
	if err != nil {
		return nil, fmt.Errorf("sealing private key: %w", err)
	}

	signingKey := repositories.NewSigningKey(
		tenantId,
		keyPair.Kid(),
		algorithm,
		now,
		sealedPrivateKey,
		keyPair.PublicKeyBytes(),
	)

	err = signingKeyRepository.Insert(ctx, signingKey)
	if err != nil {
		return nil, fmt.Errorf("inserting signing key: %w", err)
	}

	return signingKey, nil
}

func (s *keyService) ActiveSigningKey(ctx context.Context, tenantId uuid.UUID) (KeyPair, error) {
	scope := middlewares.GetScope(ctx)
	signingKeyRepository := ioc.GetDependency[repositories.SigningKeyRepository](scope)

	filter := repositories.NewSigningKeyFilter().
		TenantId(tenantId).
		Status(repositories.KeyStatusActive)
	signingKey, err := signingKeyRepository.Single(ctx, filter)
	if err != nil {
		return KeyPair{}, fmt.Errorf("getting active signing key: %w", err)
	}

	return s.unsealKeyPair(signingKey)
}

func (s *keyService) unsealKeyPair(signingKey *repositories.SigningKey) (KeyPair, error) {
	privateKeyBytes, err := s.protector.Unseal(signingKey.EncryptedPrivateKey())
	if err != nil {
		return KeyPair{}, fmt.Errorf("unsealing key %s: %w", signingKey.Kid(), err)
	}

	privateKey, err := importPrivateKey(privateKeyBytes, signingKey.Algorithm())
	if err != nil {
		return KeyPair{}, fmt.Errorf("importing key %s: %w", signingKey.Kid(), ErrKeyMaterialUnavailable)
	}

	publicKey, err := importPublicKey(signingKey.PublicKey())
	if err != nil {
		return KeyPair{}, fmt.Errorf("importing public key %s: %w", signingKey.Kid(), ErrKeyMaterialUnavailable)
	}

	return NewKeyPair(signingKey.Kid(), signingKey.Algorithm(), publicKey, privateKey), nil
}

func (s *keyService) VerificationKey(ctx context.Context, tenantId uuid.UUID, kid string) (any, config.SigningAlgorithm, error) {
	scope := middlewares.GetScope(ctx)
	signingKeyRepository := ioc.GetDependency[repositories.SigningKeyRepository](scope)
	clockService := ioc.GetDependency[clock.Service](scope)

	filter := repositories.NewSigningKeyFilter().
		TenantId(tenantId).
		Kid(kid).
		UnexpiredAt(clockService.Now())
	signingKey, err := signingKeyRepository.First(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("getting signing key: %w", err)
	}
	if signingKey == nil {
		return nil, "", utils.ErrSigningKeyNotFound
	}

	publicKey, err := importPublicKey(signingKey.PublicKey())
	if err != nil {
		return nil, "", fmt.Errorf("importing public key %s: %w", kid, ErrKeyMaterialUnavailable)
	}

	return publicKey, signingKey.Algorithm(), nil
}

func (s *keyService) PublicJwks(ctx context.Context, tenantId uuid.UUID) (Jwks, error) {
	scope := middlewares.GetScope(ctx)
	clockService := ioc.GetDependency[clock.Service](scope)
	now := clockService.Now()

	cached, ok := s.jwksCache.TryGet(tenantId)
	if ok && now.Before(cached.staleAt) {
		return cached.jwks, nil
	}

	signingKeyRepository := ioc.GetDependency[repositories.SigningKeyRepository](scope)

	filter := repositories.NewSigningKeyFilter().
		TenantId(tenantId).
		UnexpiredAt(now)
	signingKeys, err := signingKeyRepository.List(ctx, filter)
	if err != nil {
		return Jwks{}, fmt.Errorf("listing signing keys: %w", err)
	}

	jwks := Jwks{
		Keys: make([]any, 0, len(signingKeys)),
	}

	for _, signingKey := range signingKeys {
		publicKey, err := importPublicKey(signingKey.PublicKey())
		if err != nil {
			return Jwks{}, fmt.Errorf("importing public key %s: %w", signingKey.Kid(), err)
		}

		jwk, err := jwkForKey(signingKey.Kid(), signingKey.Algorithm(), publicKey)
		if err != nil {
			return Jwks{}, err
		}
		jwks.Keys = append(jwks.Keys, jwk)

		expiresAt := signingKey.ExpiresAt()
		if expiresAt != nil && (jwks.earliestExpiry == nil || expiresAt.Before(*jwks.earliestExpiry)) {
			jwks.earliestExpiry = expiresAt
		}
	}

	// cache no longer than the earliest expiry so a key never outlives
	// its grace window in the published set
	staleAt := now.Add(jwksCacheTtl)
	if jwks.earliestExpiry != nil && jwks.earliestExpiry.Before(staleAt) {
		staleAt = *jwks.earliestExpiry
	}

	s.jwksCache.Put(tenantId, jwksCacheEntry{jwks: jwks, staleAt: staleAt})
	return jwks, nil
}

// Rotate activates a fresh key and demotes the previous active key into
// its grace window. The demotion is guarded by the key row version so
// two concurrent rotations cannot both succeed.
func (s *keyService) Rotate(ctx context.Context, tenantId uuid.UUID) (string, error) {
	scope := middlewares.GetScope(ctx)
	signingKeyRepository := ioc.GetDependency[repositories.SigningKeyRepository](scope)
	clockService := ioc.GetDependency[clock.Service](scope)

	now := clockService.Now()

	activeFilter := repositories.NewSigningKeyFilter().
		TenantId(tenantId).
		Status(repositories.KeyStatusActive)
	activeKey, err := signingKeyRepository.Single(ctx, activeFilter)
	if err != nil {
		return "", fmt.Errorf("getting active signing key: %w", err)
	}

	activeKey.Demote(now.Add(config.C.KeyStore.Grace()))
	err = signingKeyRepository.Update(ctx, activeKey)
	if err != nil {
		return "", fmt.Errorf("demoting signing key: %w", err)
	}

	newKey, err := s.generateAndInsert(ctx, tenantId, activeKey.Algorithm(), now)
	if err != nil {
		return "", err
	}

	err = s.pruneExpired(ctx, tenantId, now)
	if err != nil {
		return "", err
	}

	s.jwksCache.Remove(tenantId)
	metrics.KeyRotations.Inc()

	return newKey.Kid(), nil
}

func (s *keyService) pruneExpired(ctx context.Context, tenantId uuid.UUID, now time.Time) error {
	scope := middlewares.GetScope(ctx)
	signingKeyRepository := ioc.GetDependency[repositories.SigningKeyRepository](scope)

	graceFilter := repositories.NewSigningKeyFilter().
		TenantId(tenantId).
		Status(repositories.KeyStatusGrace)
	graceKeys, err := signingKeyRepository.List(ctx, graceFilter)
	if err != nil {
		return fmt.Errorf("listing grace keys: %w", err)
	}

	for _, graceKey := range graceKeys {
		expiresAt := graceKey.ExpiresAt()
		if expiresAt == nil || expiresAt.After(now) {
			continue
		}

		err = signingKeyRepository.Delete(ctx, graceKey)
		if err != nil {
			return fmt.Errorf("pruning signing key %s: %w", graceKey.Kid(), err)
		}
	}

	return nil
}
