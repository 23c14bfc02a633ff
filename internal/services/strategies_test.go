package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/losol/eventuras-idp/internal/clock"
	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/logging"
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

type SessionBridgeSuite struct {
	suite.Suite
}

func TestSessionBridgeSuite(t *testing.T) {
	logging.Init()
	suite.Run(t, new(SessionBridgeSuite))
}

func (s *SessionBridgeSuite) createContext() context.Context {
	ctrl := gomock.NewController(s.T())

	sessionRepository := mocks.NewMockSessionRepository(ctrl)
	sessionRepository.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, session *repositories.Session) error {
			session.Mock(time.Now())
			return nil
		}).
		AnyTimes()

	dc := ioc.NewDependencyCollection()

	clockService, _ := clock.NewMockServiceNow()
	ioc.RegisterTransient(dc, func(_ *ioc.DependencyProvider) clock.Service {
		return clockService
	})

	kvStore := keyValue.NewMemoryStore()
	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) keyValue.Store {
		return kvStore
	})

	ioc.RegisterTransient(dc, func(_ *ioc.DependencyProvider) repositories.SessionRepository {
		return sessionRepository
	})

	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) middlewares.SessionService {
		return NewSessionService()
	})

	scope := dc.BuildProvider()
	s.T().Cleanup(func() {
		utils.PanicOnError(scope.Close, "closing scope")
	})

	return middlewares.ContextWithScope(s.T().Context(), scope)
}

func (s *SessionBridgeSuite) newBridge() SessionBridge {
	config.C.Auth.SessionStrategies = []string{StrategyVerifiedToken, StrategyHandoffCookie}

	bridge, err := NewSessionBridge()
	s.Require().NoError(err)
	return bridge
}

func testTenant() middlewares.CurrentTenant {
	return middlewares.CurrentTenant{
		Id:        uuid.New(),
		IssuerUrl: "https://auth.example.com",
		HostAlias: "auth.example.com",
	}
}

func (s *SessionBridgeSuite) TestVerifiedTokenStrategyAccepts() {
	// arrange
	ctx := s.createContext()
	bridge := s.newBridge()
	tenant := testTenant()
	subject := uuid.New()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/callback", nil).WithContext(ctx)

	// act
	establishedSubject, err := bridge.Establish(w, r, tenant, Assertion{
		VerifiedToken: &VerifiedToken{
			TenantId: tenant.Id,
			Subject:  subject,
		},
	})

	// assert
	s.Require().NoError(err)
	s.Equal(subject, establishedSubject)

	cookies := w.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(middlewares.SessionCookieName, cookies[0].Name)
	s.NotEmpty(cookies[0].Value)
}

func (s *SessionBridgeSuite) TestVerifiedTokenStrategyRejectsForeignTenant() {
	// arrange
	ctx := s.createContext()
	bridge := s.newBridge()
	tenant := testTenant()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/callback", nil).WithContext(ctx)

	// act
	_, err := bridge.Establish(w, r, tenant, Assertion{
		VerifiedToken: &VerifiedToken{
			TenantId: uuid.New(),
			Subject:  uuid.New(),
		},
	})

	// assert
	s.Require().ErrorIs(err, ErrSessionStrategyRejected)
	s.Empty(w.Result().Cookies())
}

func (s *SessionBridgeSuite) TestHandoffCookieStrategyIsSingleUse() {
	// arrange
	ctx := s.createContext()
	bridge := s.newBridge()
	tenant := testTenant()
	subject := uuid.New()

	handoffToken, err := bridge.BeginHandoff(ctx, tenant, subject)
	s.Require().NoError(err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/callback", nil).WithContext(ctx)

	// act
	establishedSubject, err := bridge.Establish(w, r, tenant, Assertion{
		HandoffToken: handoffToken,
	})
	s.Require().NoError(err)
	s.Equal(subject, establishedSubject)

	// a replay of the same handoff token is rejected
	_, err = bridge.Establish(httptest.NewRecorder(), r, tenant, Assertion{
		HandoffToken: handoffToken,
	})

	// assert
	s.Require().ErrorIs(err, ErrSessionStrategyRejected)
}

func (s *SessionBridgeSuite) TestAllStrategiesRejectEmptyAssertion() {
	// arrange
	ctx := s.createContext()
	bridge := s.newBridge()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/callback", nil).WithContext(ctx)

	// act
	_, err := bridge.Establish(w, r, testTenant(), Assertion{})

	// assert
	s.Require().ErrorIs(err, ErrSessionStrategyRejected)
}

func (s *SessionBridgeSuite) TestUnknownStrategyNameFailsConstruction() {
	// arrange
	config.C.Auth.SessionStrategies = []string{"password"}

	// act
	_, err := NewSessionBridge()

	// assert
	s.Require().Error(err)
}
