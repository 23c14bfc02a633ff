package services

import (
	"context"
	"testing"
	"time"

	"github.com/losol/eventuras-idp/internal/clock"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/internal/repositories/mocks"
	"github.com/losol/eventuras-idp/internal/services/keyValue"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SessionServiceSuite struct {
	suite.Suite
}

func TestSessionServiceSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(SessionServiceSuite))
}

func (s *SessionServiceSuite) createContext(sessionRepository repositories.SessionRepository) context.Context {
	clockService, _ := clock.NewMockServiceNow()
	return s.createContextWithClock(sessionRepository, clockService)
}

func (s *SessionServiceSuite) createContextWithClock(sessionRepository repositories.SessionRepository, clockService clock.Service) context.Context {
	dc := ioc.NewDependencyCollection()

	ioc.RegisterTransient(dc, func(_ *ioc.DependencyProvider) clock.Service {
		return clockService
	})

	kvStore := keyValue.NewMemoryStore()
	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) keyValue.Store {
		return kvStore
	})

	if sessionRepository != nil {
		ioc.RegisterTransient(dc, func(_ *ioc.DependencyProvider) repositories.SessionRepository {
			return sessionRepository
		})
	}

	scope := dc.BuildProvider()
	s.T().Cleanup(func() {
		utils.PanicOnError(scope.Close, "closing scope")
	})

	return middlewares.ContextWithScope(s.T().Context(), scope)
}

func (s *SessionServiceSuite) TestNewSessionStoresHashedSecretOnly() {
	// arrange
	ctrl := gomock.NewController(s.T())

	var inserted *repositories.Session
	sessionRepository := mocks.NewMockSessionRepository(ctrl)
	sessionRepository.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, session *repositories.Session) error {
			session.Mock(time.Now())
			inserted = session
			return nil
		})

	ctx := s.createContext(sessionRepository)
	sessionService := NewSessionService()

	tenantId := uuid.New()
	subject := uuid.New()

	// act
	token, err := sessionService.NewSession(ctx, tenantId, subject)

	// assert
	s.Require().NoError(err)
	s.Require().NotNil(inserted)
	s.Equal(tenantId, inserted.TenantId())
	s.Equal(subject, inserted.Subject())
	s.NotEqual(token.Secret(), inserted.HashedSecret())
	s.True(utils.CheapCompareHash(token.Secret(), inserted.HashedSecret()))
}

func (s *SessionServiceSuite) TestGetSessionUsesCacheAfterFirstLoad() {
	// arrange
	ctrl := gomock.NewController(s.T())

	tenantId := uuid.New()
	subject := uuid.New()

	dbSession := repositories.NewSession(tenantId, subject, utils.CheapHash("secret"), time.Now().Add(time.Hour))
	dbSession.Mock(time.Now())

	sessionRepository := mocks.NewMockSessionRepository(ctrl)
	sessionRepository.EXPECT().
		First(gomock.Any(), gomock.Any()).
		Return(dbSession, nil).
		Times(1)

	ctx := s.createContext(sessionRepository)
	sessionService := NewSessionService()

	// act
	first, err := sessionService.GetSession(ctx, tenantId, dbSession.Id())
	s.Require().NoError(err)

	second, err := sessionService.GetSession(ctx, tenantId, dbSession.Id())
	s.Require().NoError(err)

	// assert
	s.Equal(subject, first.Subject())
	s.Equal(subject, second.Subject())
}

func (s *SessionServiceSuite) TestGetSessionExpiredEntryRejectedFromCache() {
	// arrange
	ctrl := gomock.NewController(s.T())

	now := time.Now()
	tenantId := uuid.New()
	subject := uuid.New()

	dbSession := repositories.NewSession(tenantId, subject, utils.CheapHash("secret"), now.Add(time.Second*30))
	dbSession.Mock(now)

	sessionRepository := mocks.NewMockSessionRepository(ctrl)
	sessionRepository.EXPECT().
		First(gomock.Any(), gomock.Any()).
		Return(dbSession, nil).
		Times(1)

	clockService, setTime := clock.NewMockServiceNow()
	setTime(now)
	ctx := s.createContextWithClock(sessionRepository, clockService)
	sessionService := NewSessionService()

	first, err := sessionService.GetSession(ctx, tenantId, dbSession.Id())
	s.Require().NoError(err)
	s.Require().NotNil(first)

	// act
	setTime(now.Add(time.Minute))
	second, err := sessionService.GetSession(ctx, tenantId, dbSession.Id())

	// assert
	s.Require().NoError(err)
	s.Nil(second)
}

func (s *SessionServiceSuite) TestGetSessionUnknownId() {
	// arrange
	ctrl := gomock.NewController(s.T())

	sessionRepository := mocks.NewMockSessionRepository(ctrl)
	sessionRepository.EXPECT().
		First(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	ctx := s.createContext(sessionRepository)
	sessionService := NewSessionService()

	// act
	session, err := sessionService.GetSession(ctx, uuid.New(), uuid.New())

	// assert
	s.Require().NoError(err)
	s.Nil(session)
}

func (s *SessionServiceSuite) TestDeleteSessionRefusesForeignTenant() {
	// arrange
	ctrl := gomock.NewController(s.T())

	dbSession := repositories.NewSession(uuid.New(), uuid.New(), utils.CheapHash("secret"), time.Now().Add(time.Hour))
	dbSession.Mock(time.Now())

	sessionRepository := mocks.NewMockSessionRepository(ctrl)
	sessionRepository.EXPECT().
		First(gomock.Any(), gomock.Any()).
		Return(dbSession, nil)

	ctx := s.createContext(sessionRepository)
	sessionService := NewSessionService()

	// act
	err := sessionService.DeleteSession(ctx, uuid.New(), dbSession.Id())

	// assert
	s.Require().Error(err)
}
