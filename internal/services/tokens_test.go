package services

import (
	"context"
	"testing"
	"time"

	"github.com/losol/eventuras-idp/internal/clock"
	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/logging"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/internal/repositories/mocks"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type TokenServiceSuite struct {
	suite.Suite
}

func TestTokenServiceSuite(t *testing.T) {
	logging.Init()
	suite.Run(t, new(TokenServiceSuite))
}

type tokenServiceFixture struct {
	ctx          context.Context
	tokenService TokenService
	keyService   KeyService
	tenant       *repositories.Tenant
	signingKey   *repositories.SigningKey
	keyPair      KeyPair
	setTime      clock.TimeSetterFn
}

func (s *TokenServiceSuite) createFixture(algorithm config.SigningAlgorithm, tenantActive bool) *tokenServiceFixture {
	ctrl := gomock.NewController(s.T())

	now := time.Now()

	tenant := repositories.NewTenant(
		uuid.New(),
		"https://auth.example.com",
		"auth.example.com",
		repositories.EnvironmentProduction,
	)
	tenant.Mock(now)
	if !tenantActive {
		tenant.SetActive(false)
	}

	protector, err := NewKeyProtector(utils.GetSecureRandomBytes(32))
	s.Require().NoError(err)

	keyPair, err := generateKeyPair(algorithm)
	s.Require().NoError(err)

	sealed, err := protector.Seal(keyPair.PrivateKeyBytes())
	s.Require().NoError(err)

	signingKey := repositories.NewSigningKey(
		tenant.Id(),
		keyPair.Kid(),
		algorithm,
		now,
		sealed,
		keyPair.PublicKeyBytes(),
	)
	signingKey.Mock(now)

	tenantRepository := mocks.NewMockTenantRepository(ctrl)
	tenantRepository.EXPECT().
		Single(gomock.Any(), gomock.Cond(func(f repositories.TenantFilter) bool {
			return f.GetId() == tenant.Id()
		})).
		Return(tenant, nil).
		AnyTimes()
	tenantRepository.EXPECT().
		First(gomock.Any(), gomock.Cond(func(f repositories.TenantFilter) bool {
			return f.GetIssuerUrl() == tenant.IssuerUrl()
		})).
		Return(tenant, nil).
		AnyTimes()
	tenantRepository.EXPECT().
		First(gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	signingKeyRepository := mocks.NewMockSigningKeyRepository(ctrl)
	signingKeyRepository.EXPECT().
		Single(gomock.Any(), gomock.Cond(func(f repositories.SigningKeyFilter) bool {
			return f.GetTenantId() == tenant.Id() && f.GetStatus() == repositories.KeyStatusActive
		})).
		Return(signingKey, nil).
		AnyTimes()
	signingKeyRepository.EXPECT().
		First(gomock.Any(), gomock.Cond(func(f repositories.SigningKeyFilter) bool {
			return f.GetTenantId() == tenant.Id() && f.GetKid() == signingKey.Kid()
		})).
		Return(signingKey, nil).
		AnyTimes()
	signingKeyRepository.EXPECT().
		First(gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	clockService, setTime := clock.NewMockServiceNow()

	dc := ioc.NewDependencyCollection()
	ioc.RegisterTransient(dc, func(_ *ioc.DependencyProvider) repositories.TenantRepository {
		return tenantRepository
	})
	ioc.RegisterTransient(dc, func(_ *ioc.DependencyProvider) repositories.SigningKeyRepository {
		return signingKeyRepository
	})
	ioc.RegisterTransient(dc, func(_ *ioc.DependencyProvider) clock.Service {
		return clockService
	})

	scope := dc.BuildProvider()
	s.T().Cleanup(func() {
		utils.PanicOnError(scope.Close, "closing scope")
	})

	keyService := NewKeyService(protector)

	return &tokenServiceFixture{
		ctx:          middlewares.ContextWithScope(s.T().Context(), scope),
		tokenService: NewTokenService(keyService),
		keyService:   keyService,
		tenant:       tenant,
		signingKey:   signingKey,
		keyPair:      keyPair,
		setTime:      setTime,
	}
}

func (s *TokenServiceSuite) TestIssueVerifyRoundTrip() {
	for _, algorithm := range config.SupportedSigningAlgorithms {
		s.Run(string(algorithm), func() {
			// arrange
			fixture := s.createFixture(algorithm, true)
			subject := uuid.New()

			// act
			token, err := fixture.tokenService.Issue(fixture.ctx, fixture.tenant.Id(), subject, "eventuras-web", []string{"openid", "profile"}, time.Minute*15)
			s.Require().NoError(err)

			verified, err := fixture.tokenService.Verify(fixture.ctx, token)

			// assert
			s.Require().NoError(err)
			s.Equal(fixture.tenant.Id(), verified.TenantId)
			s.Equal(fixture.tenant.IssuerUrl(), verified.Issuer)
			s.Equal(subject, verified.Subject)
			s.Equal("eventuras-web", verified.ClientId)
			s.Equal([]string{"openid", "profile"}, verified.Scopes)
			s.Equal(fixture.keyPair.Kid(), verified.Kid)
		})
	}
}

func (s *TokenServiceSuite) TestIssueRefusesInactiveTenant() {
	// arrange
	fixture := s.createFixture(config.SigningAlgorithmEdDSA, false)

	// act
	_, err := fixture.tokenService.Issue(fixture.ctx, fixture.tenant.Id(), uuid.New(), "eventuras-web", nil, time.Minute)

	// assert
	s.Require().ErrorIs(err, ErrTenantInactive)
}

func (s *TokenServiceSuite) TestVerifyEmptyScopeMeansNoScopes() {
	// arrange
	fixture := s.createFixture(config.SigningAlgorithmEdDSA, true)

	token, err := fixture.tokenService.Issue(fixture.ctx, fixture.tenant.Id(), uuid.New(), "eventuras-web", nil, time.Minute*15)
	s.Require().NoError(err)

	// act
	verified, err := fixture.tokenService.Verify(fixture.ctx, token)

	// assert
	s.Require().NoError(err)
	s.Empty(verified.Scopes)
}

func (s *TokenServiceSuite) TestVerifyRejectsExpiredToken() {
	// arrange
	fixture := s.createFixture(config.SigningAlgorithmEdDSA, true)

	token, err := fixture.tokenService.Issue(fixture.ctx, fixture.tenant.Id(), uuid.New(), "eventuras-web", nil, time.Minute)
	s.Require().NoError(err)

	fixture.setTime(time.Now().Add(time.Hour))

	// act
	_, err = fixture.tokenService.Verify(fixture.ctx, token)

	// assert
	s.Require().ErrorIs(err, ErrTokenVerificationFailed)
}

func (s *TokenServiceSuite) TestVerifyRejectsUnknownKid() {
	// arrange
	fixture := s.createFixture(config.SigningAlgorithmEdDSA, true)
	otherFixture := s.createFixture(config.SigningAlgorithmEdDSA, true)

	token, err := fixture.tokenService.Issue(fixture.ctx, fixture.tenant.Id(), uuid.New(), "eventuras-web", nil, time.Minute)
	s.Require().NoError(err)

	// the other fixture shares the issuer url but has no key with the
	// signing kid
	_, err = otherFixture.tokenService.Verify(otherFixture.ctx, token)

	// assert
	s.Require().ErrorIs(err, ErrTokenVerificationFailed)
}

func (s *TokenServiceSuite) TestVerifyRejectsTamperedToken() {
	// arrange
	fixture := s.createFixture(config.SigningAlgorithmEdDSA, true)

	token, err := fixture.tokenService.Issue(fixture.ctx, fixture.tenant.Id(), uuid.New(), "eventuras-web", nil, time.Minute)
	s.Require().NoError(err)

	tampered := token[:len(token)-4] + "AAAA"

	// act
	_, err = fixture.tokenService.Verify(fixture.ctx, tampered)

	// assert
	s.Require().ErrorIs(err, ErrTokenVerificationFailed)
}

func (s *TokenServiceSuite) TestVerifyAcceptsGraceKeySignature() {
	// arrange
	fixture := s.createFixture(config.SigningAlgorithmEdDSA, true)

	token, err := fixture.tokenService.Issue(fixture.ctx, fixture.tenant.Id(), uuid.New(), "eventuras-web", nil, time.Minute*15)
	s.Require().NoError(err)

	// the key that signed the token is demoted but still inside its
	// grace window
	fixture.signingKey.Demote(time.Now().Add(time.Hour * 24))

	// act
	verified, err := fixture.tokenService.Verify(fixture.ctx, token)

	// assert
	s.Require().NoError(err)
	s.Equal(fixture.keyPair.Kid(), verified.Kid)
}
