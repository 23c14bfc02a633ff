package jobs

import (
	"testing"
	"time"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/internal/repositories/mocks"
	serviceMocks "github.com/losol/eventuras-idp/internal/services/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type KeyRotationJobSuite struct {
	suite.Suite
}

func TestKeyRotationJobSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(KeyRotationJobSuite))
}

func (s *KeyRotationJobSuite) testTenant(now time.Time) *repositories.Tenant {
	tenant := repositories.NewTenant(uuid.New(), "https://id.example.test", "id.example.test", repositories.EnvironmentProduction)
	tenant.Mock(now)
	return tenant
}

func (s *KeyRotationJobSuite) TestRotatesKeyOlderThanInterval() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	now := time.Now()
	interval := 30 * 24 * time.Hour
	tenant := s.testTenant(now)

	oldKey := repositories.NewSigningKey(tenant.Id(), "kid-1", config.SigningAlgorithmEdDSA, now.Add(-interval-time.Hour), nil, nil)
	oldKey.Mock(now)

	signingKeyRepository := mocks.NewMockSigningKeyRepository(ctrl)
	signingKeyRepository.EXPECT().
		First(gomock.Any(), gomock.Cond(func(x repositories.SigningKeyFilter) bool {
			return x.GetTenantId() == tenant.Id() && x.GetStatus() == repositories.KeyStatusActive
		})).
		Return(oldKey, nil)

	keyService := serviceMocks.NewMockKeyService(ctrl)
	keyService.EXPECT().
		Rotate(gomock.Any(), tenant.Id()).
		Return("kid-2", nil)

	// act
	err := rotateTenantKeyIfDue(s.T().Context(), signingKeyRepository, keyService, tenant, now, interval)

	// assert
	s.Require().NoError(err)
}

func (s *KeyRotationJobSuite) TestLeavesFreshKeyAlone() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	now := time.Now()
	interval := 30 * 24 * time.Hour
	tenant := s.testTenant(now)

	freshKey := repositories.NewSigningKey(tenant.Id(), "kid-1", config.SigningAlgorithmEdDSA, now.Add(-time.Hour), nil, nil)
	freshKey.Mock(now)

	signingKeyRepository := mocks.NewMockSigningKeyRepository(ctrl)
	signingKeyRepository.EXPECT().
		First(gomock.Any(), gomock.Any()).
		Return(freshKey, nil)

	keyService := serviceMocks.NewMockKeyService(ctrl)

	// act
	err := rotateTenantKeyIfDue(s.T().Context(), signingKeyRepository, keyService, tenant, now, interval)

	// assert
	s.Require().NoError(err)
}

func (s *KeyRotationJobSuite) TestProvisionsMissingKey() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	now := time.Now()
	tenant := s.testTenant(now)
	tenant.SetSigningAlgorithm(config.SigningAlgorithmRS256)

	signingKeyRepository := mocks.NewMockSigningKeyRepository(ctrl)
	signingKeyRepository.EXPECT().
		First(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	keyService := serviceMocks.NewMockKeyService(ctrl)
	keyService.EXPECT().
		EnsureKey(gomock.Any(), tenant.Id(), config.SigningAlgorithmRS256).
		Return(nil)

	// act
	err := rotateTenantKeyIfDue(s.T().Context(), signingKeyRepository, keyService, tenant, now, 30*24*time.Hour)

	// assert
	s.Require().NoError(err)
}
