package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/losol/eventuras-idp/internal/clock"
	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/logging"
	"github.com/losol/eventuras-idp/internal/metrics"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrTenantInactive = fmt.Errorf("tenant inactive: %w", utils.ErrHttpConflict)

// ErrTokenVerificationFailed wraps every expected verification failure.
// Callers get an error value, never a panic, and the reason is logged
// without the token itself.
var ErrTokenVerificationFailed = fmt.Errorf("token verification failed: %w", utils.ErrHttpUnauthorized)

// VerifiedToken is the claim set of a successfully verified access
// token.
type VerifiedToken struct {
	TenantId  uuid.UUID
	Issuer    string
	Subject   uuid.UUID
	ClientId  string
	Scopes    []string
	Kid       string
	ExpiresAt time.Time
}

//go:generate mockgen -destination=./mocks/token_service.go -package=mocks github.com/losol/eventuras-idp/internal/services TokenService
type TokenService interface {
	Issue(ctx context.Context, tenantId uuid.UUID, subject uuid.UUID, clientId string, scopes []string, ttl time.Duration) (string, error)
	Verify(ctx context.Context, token string) (*VerifiedToken, error)
}

type tokenService struct {
	keyService KeyService
}

func NewTokenService(keyService KeyService) TokenService {
	return &tokenService{
		keyService: keyService,
	}
}

func getJwtSigningMethod(algorithm config.SigningAlgorithm) (jwt.SigningMethod, error) {
	switch algorithm {
	case config.SigningAlgorithmEdDSA:
		return jwt.SigningMethodEdDSA, nil

	case config.SigningAlgorithmRS256:
		return jwt.SigningMethodRS256, nil

	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}
}

func (s *tokenService) Issue(ctx context.Context, tenantId uuid.UUID, subject uuid.UUID, clientId string, scopes []string, ttl time.Duration) (string, error) {
	scope := middlewares.GetScope(ctx)
	tenantRepository := ioc.GetDependency[repositories.TenantRepository](scope)
	clockService := ioc.GetDependency[clock.Service](scope)

	tenantFilter := repositories.NewTenantFilter().Id(tenantId)
	tenant, err := tenantRepository.Single(ctx, tenantFilter)
	if err != nil {
		return "", fmt.Errorf("getting tenant: %w", err)
	}
	if !tenant.Active() {
		return "", ErrTenantInactive
	}

	keyPair, err := s.keyService.ActiveSigningKey(ctx, tenantId)
	if err != nil {
		return "", fmt.Errorf("getting signing key: %w", err)
	}

	jwtSigningMethod, err := getJwtSigningMethod(keyPair.Algorithm())
	if err != nil {
		return "", err
	}

	now := clockService.Now()
	claims := jwt.MapClaims{
		"iss":       tenant.IssuerUrl(),
		"sub":       subject.String(),
		"client_id": clientId,
		"scope":     strings.Join(scopes, " "),
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
		"jti":       uuid.NewString(),
	}

	accessToken := jwt.NewWithClaims(jwtSigningMethod, claims)
	accessToken.Header["kid"] = keyPair.Kid()
	accessToken.Header["typ"] = "at+jwt" // RFC 9068

	signed, err := accessToken.SignedString(keyPair.PrivateKey())
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	metrics.TokensIssued.Inc()
	return signed, nil
}

func (s *tokenService) Verify(ctx context.Context, tokenString string) (*VerifiedToken, error) {
	scope := middlewares.GetScope(ctx)
	tenantRepository := ioc.GetDependency[repositories.TenantRepository](scope)
	clockService := ioc.GetDependency[clock.Service](scope)

	var verified VerifiedToken

	keyFunc := func(token *jwt.Token) (any, error) {
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return nil, fmt.Errorf("invalid claims")
		}

		issuer, err := claims.GetIssuer()
		if err != nil || issuer == "" {
			return nil, fmt.Errorf("missing issuer")
		}

		kidClaim, ok := token.Header["kid"]
		if !ok {
			return nil, fmt.Errorf("missing kid header")
		}

		kid, ok := kidClaim.(string)
		if !ok {
			return nil, fmt.Errorf("expected kid header to be a string")
		}

		tenantFilter := repositories.NewTenantFilter().IssuerUrl(issuer)
		tenant, err := tenantRepository.First(ctx, tenantFilter)
		if err != nil {
			return nil, fmt.Errorf("getting tenant: %w", err)
		}
		if tenant == nil {
			return nil, fmt.Errorf("unknown issuer")
		}

		publicKey, algorithm, err := s.keyService.VerificationKey(ctx, tenant.Id(), kid)
		if err != nil {
			return nil, fmt.Errorf("getting verification key: %w", err)
		}

		if token.Method.Alg() != string(algorithm) {
			return nil, fmt.Errorf("algorithm mismatch")
		}

		verified.TenantId = tenant.Id()
		verified.Issuer = issuer
		verified.Kid = kid

		return publicKey, nil
	}

	token, err := jwt.Parse(
		tokenString,
		keyFunc,
		jwt.WithValidMethods(utils.MapSlice(config.SupportedSigningAlgorithms, func(a config.SigningAlgorithm) string {
			return string(a)
		})),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(clockService.Now),
	)
	if err != nil {
		return nil, s.fail(fmt.Errorf("parsing token: %w", err))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, s.fail(fmt.Errorf("invalid claims"))
	}

	subjectClaim, err := claims.GetSubject()
	if err != nil || subjectClaim == "" {
		return nil, s.fail(fmt.Errorf("missing subject"))
	}

	subject, err := uuid.Parse(subjectClaim)
	if err != nil {
		return nil, s.fail(fmt.Errorf("parsing subject: %w", err))
	}

	clientIdClaim, ok := claims["client_id"]
	if !ok {
		return nil, s.fail(fmt.Errorf("missing client_id claim"))
	}

	clientId, ok := clientIdClaim.(string)
	if !ok || clientId == "" {
		return nil, s.fail(fmt.Errorf("expected client_id claim to be a non-empty string"))
	}

	expiresAt, err := claims.GetExpirationTime()
	if err != nil {
		return nil, s.fail(fmt.Errorf("getting expiry: %w", err))
	}

	verified.Subject = subject
	verified.ClientId = clientId
	verified.Scopes = parseScopeClaim(claims)
	verified.ExpiresAt = expiresAt.Time

	metrics.TokenVerifications.WithLabelValues("ok").Inc()
	return &verified, nil
}

// fail logs the reason at warn level. The token never appears in the
// log output.
func (s *tokenService) fail(reason error) error {
	logging.Logger.Warnf("token verification failed: %v", reason)
	metrics.TokenVerifications.WithLabelValues("failed").Inc()
	return fmt.Errorf("%w: %w", ErrTokenVerificationFailed, reason)
}

func parseScopeClaim(claims jwt.MapClaims) []string {
	scopeClaim, ok := claims["scope"]
	if !ok {
		return nil
	}

	scopeString, ok := scopeClaim.(string)
	if !ok || scopeString == "" {
		return nil
	}

	return strings.Split(scopeString, " ")
}
