package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/services"
	serviceMocks "github.com/losol/eventuras-idp/internal/services/mocks"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/oauth2"
)

func testTenant() *middlewares.CurrentTenant {
	return &middlewares.CurrentTenant{
		Id:               uuid.New(),
		OrganizationId:   uuid.New(),
		IssuerUrl:        "https://id.example.org",
		HostAlias:        "id.example.org",
		Environment:      "production",
		SigningAlgorithm: config.SigningAlgorithmEdDSA,
	}
}

func newFlowContext(t *testing.T, tenant *middlewares.CurrentTenant, register func(dc *ioc.DependencyCollection)) context.Context {
	t.Helper()

	config.C.Auth.ReturnToPrefix = "/admin"
	config.C.Auth.DefaultReturnTo = "/admin"
	config.C.Auth.ErrorRedirect = "/login/error"
	config.C.Auth.TransitTtlSeconds = 600

	dc := ioc.NewDependencyCollection()
	if register != nil {
		register(dc)
	}

	scope := dc.BuildProvider()
	t.Cleanup(func() {
		utils.PanicOnError(scope.Close, "closing scope")
	})

	ctx := middlewares.ContextWithScope(t.Context(), scope)
	return middlewares.ContextWithTenant(ctx, tenant)
}

func cookieByName(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestSanitizeReturnTo(t *testing.T) {
	config.C.Auth.ReturnToPrefix = "/admin"
	config.C.Auth.DefaultReturnTo = "/admin"

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty falls back", "", "/admin"},
		{"allowed path kept", "/admin/events/42", "/admin/events/42"},
		{"absolute url rejected", "https://evil.example.org/", "/admin"},
		{"protocol relative rejected", "//evil.example.org", "/admin"},
		{"outside prefix rejected", "/other", "/admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeReturnTo(tt.input))
		})
	}
}

func TestBeginLoginFlowSetsTransitCookiesAndRedirects(t *testing.T) {
	// arrange
	ctrl := gomock.NewController(t)

	transitState := services.TransitState{
		State:        "state-value",
		CodeVerifier: "verifier-value",
		ReturnTo:     "/admin/events",
	}

	transitService := serviceMocks.NewMockTransitService(ctrl)
	transitService.EXPECT().Begin(gomock.Any(), "/admin/events").Return(transitState, nil)

	upstreamService := serviceMocks.NewMockUpstreamService(ctrl)
	upstreamService.EXPECT().
		AuthCodeUrl(gomock.Any(), "state-value", "verifier-value").
		Return("https://upstream.example.org/authorize?state=state-value")

	tenant := testTenant()
	ctx := newFlowContext(t, tenant, func(dc *ioc.DependencyCollection) {
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.TransitService {
			return transitService
		})
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.UpstreamService {
			return upstreamService
		})
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/login?returnTo=/admin/events", nil).WithContext(ctx)

	// act
	BeginLoginFlow(w, r)

	// assert
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://upstream.example.org/authorize?state=state-value", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	stateCookie := cookieByName(t, cookies, services.TransitStateCookieName)
	assert.Equal(t, "state-value", stateCookie.Value)
	assert.True(t, stateCookie.HttpOnly)
	assert.Equal(t, 600, stateCookie.MaxAge)
	assert.Equal(t, "verifier-value", cookieByName(t, cookies, services.TransitVerifierCookieName).Value)
	assert.Equal(t, "/admin/events", cookieByName(t, cookies, services.TransitReturnToCookieName).Value)
}

func TestAuthCallbackStateMismatch(t *testing.T) {
	// arrange
	ctx := newFlowContext(t, testTenant(), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/callback?state=other&code=abc", nil).WithContext(ctx)
	r.AddCookie(&http.Cookie{Name: services.TransitStateCookieName, Value: "state-value"})

	// act
	AuthCallback(w, r)

	// assert
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/error", w.Header().Get("Location"))
}

func TestAuthCallbackMissingStateCookie(t *testing.T) {
	// arrange
	ctx := newFlowContext(t, testTenant(), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/callback?state=state-value&code=abc", nil).WithContext(ctx)

	// act
	AuthCallback(w, r)

	// assert
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/error", w.Header().Get("Location"))
}

func TestAuthCallbackReplayedStateRejected(t *testing.T) {
	// arrange
	ctrl := gomock.NewController(t)

	transitService := serviceMocks.NewMockTransitService(ctrl)
	transitService.EXPECT().
		Consume(gomock.Any(), "state-value").
		Return(services.TransitState{}, services.ErrTransitStateNotFound)

	ctx := newFlowContext(t, testTenant(), func(dc *ioc.DependencyCollection) {
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.TransitService {
			return transitService
		})
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/callback?state=state-value&code=abc", nil).WithContext(ctx)
	r.AddCookie(&http.Cookie{Name: services.TransitStateCookieName, Value: "state-value"})

	// act
	AuthCallback(w, r)

	// assert
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/error", w.Header().Get("Location"))
}

func TestAuthCallbackHappyPath(t *testing.T) {
	// arrange
	ctrl := gomock.NewController(t)

	tenant := testTenant()
	subject := uuid.New()

	transitState := services.TransitState{
		State:        "state-value",
		CodeVerifier: "verifier-value",
		ReturnTo:     "/admin/events",
	}

	transitService := serviceMocks.NewMockTransitService(ctrl)
	transitService.EXPECT().Consume(gomock.Any(), "state-value").Return(transitState, nil)

	upstreamService := serviceMocks.NewMockUpstreamService(ctrl)
	upstreamService.EXPECT().
		Exchange(gomock.Any(), gomock.Any(), "auth-code", "verifier-value").
		Return(&oauth2.Token{AccessToken: "access-token"}, nil)

	verifiedToken := &services.VerifiedToken{
		TenantId: tenant.Id,
		Issuer:   tenant.IssuerUrl,
		Subject:  subject,
	}
	tokenService := serviceMocks.NewMockTokenService(ctrl)
	tokenService.EXPECT().Verify(gomock.Any(), "access-token").Return(verifiedToken, nil)

	bridge := serviceMocks.NewMockSessionBridge(ctrl)
	bridge.EXPECT().
		Establish(gomock.Any(), gomock.Any(), *tenant, gomock.Cond(func(x services.Assertion) bool {
			return x.VerifiedToken == verifiedToken
		})).
		Return(subject, nil)

	ctx := newFlowContext(t, tenant, func(dc *ioc.DependencyCollection) {
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.TransitService {
			return transitService
		})
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.UpstreamService {
			return upstreamService
		})
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.TokenService {
			return tokenService
		})
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.SessionBridge {
			return bridge
		})
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/callback?state=state-value&code=auth-code", nil).WithContext(ctx)
	r.AddCookie(&http.Cookie{Name: services.TransitStateCookieName, Value: "state-value"})
	r.AddCookie(&http.Cookie{Name: services.TransitVerifierCookieName, Value: "verifier-value"})
	r.AddCookie(&http.Cookie{Name: services.TransitReturnToCookieName, Value: "/admin/events"})

	// act
	AuthCallback(w, r)

	// assert
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/events", w.Header().Get("Location"))

	// transit cookies are cleared regardless of outcome
	stateCookie := cookieByName(t, w.Result().Cookies(), services.TransitStateCookieName)
	assert.Empty(t, stateCookie.Value)
	assert.Negative(t, stateCookie.MaxAge)
}

func TestAuthCallbackClearsHandoffCookieOnSuccess(t *testing.T) {
	// arrange
	ctrl := gomock.NewController(t)

	tenant := testTenant()
	subject := uuid.New()

	transitState := services.TransitState{
		State:        "state-value",
		CodeVerifier: "verifier-value",
	}

	transitService := serviceMocks.NewMockTransitService(ctrl)
	transitService.EXPECT().Consume(gomock.Any(), "state-value").Return(transitState, nil)

	upstreamService := serviceMocks.NewMockUpstreamService(ctrl)
	upstreamService.EXPECT().
		Exchange(gomock.Any(), gomock.Any(), "auth-code", "verifier-value").
		Return(&oauth2.Token{AccessToken: "access-token"}, nil)

	verifiedToken := &services.VerifiedToken{
		TenantId: tenant.Id,
		Issuer:   tenant.IssuerUrl,
		Subject:  subject,
	}
	tokenService := serviceMocks.NewMockTokenService(ctrl)
	tokenService.EXPECT().Verify(gomock.Any(), "access-token").Return(verifiedToken, nil)

	bridge := serviceMocks.NewMockSessionBridge(ctrl)
	bridge.EXPECT().
		Establish(gomock.Any(), gomock.Any(), *tenant, gomock.Cond(func(x services.Assertion) bool {
			return x.HandoffToken == "handoff-token"
		})).
		Return(subject, nil)

	ctx := newFlowContext(t, tenant, func(dc *ioc.DependencyCollection) {
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.TransitService {
			return transitService
		})
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.UpstreamService {
			return upstreamService
		})
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.TokenService {
			return tokenService
		})
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.SessionBridge {
			return bridge
		})
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/callback?state=state-value&code=auth-code", nil).WithContext(ctx)
	r.AddCookie(&http.Cookie{Name: services.TransitStateCookieName, Value: "state-value"})
	r.AddCookie(&http.Cookie{Name: services.HandoffCookieName, Value: "handoff-token"})

	// act
	AuthCallback(w, r)

	// assert
	require.Equal(t, http.StatusFound, w.Code)

	// the pre-session handoff cookie is deleted once the session exists
	handoffCookie := cookieByName(t, w.Result().Cookies(), services.HandoffCookieName)
	assert.Empty(t, handoffCookie.Value)
	assert.Negative(t, handoffCookie.MaxAge)
}

func TestAuthCallbackExchangeFailure(t *testing.T) {
	// arrange
	ctrl := gomock.NewController(t)

	transitState := services.TransitState{
		State:        "state-value",
		CodeVerifier: "verifier-value",
	}

	transitService := serviceMocks.NewMockTransitService(ctrl)
	transitService.EXPECT().Consume(gomock.Any(), "state-value").Return(transitState, nil)

	upstreamService := serviceMocks.NewMockUpstreamService(ctrl)
	upstreamService.EXPECT().
		Exchange(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, assert.AnError)

	ctx := newFlowContext(t, testTenant(), func(dc *ioc.DependencyCollection) {
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.TransitService {
			return transitService
		})
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) services.UpstreamService {
			return upstreamService
		})
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/callback?state=state-value&code=auth-code", nil).WithContext(ctx)
	r.AddCookie(&http.Cookie{Name: services.TransitStateCookieName, Value: "state-value"})

	// act
	AuthCallback(w, r)

	// assert
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/error", w.Header().Get("Location"))
}
