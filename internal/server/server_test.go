package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(string) bool { return true }

type recordingTenantService struct {
	resolveHostCalls int
}

func (s *recordingTenantService) ResolveHost(_ context.Context, _ string) (*middlewares.CurrentTenant, error) {
	s.resolveHostCalls++
	return nil, utils.ErrTenantNotFound
}

func (s *recordingTenantService) ResolveIssuer(_ context.Context, _ string) (*middlewares.CurrentTenant, error) {
	return nil, utils.ErrTenantNotFound
}

func newTestRouter(t *testing.T, limiter middlewares.RateLimiter, tenantService middlewares.TenantService) http.Handler {
	dc := ioc.NewDependencyCollection()

	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) middlewares.RateLimiter {
		return limiter
	})
	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) middlewares.TenantService {
		return tenantService
	})

	dp := dc.BuildProvider()
	t.Cleanup(func() {
		utils.PanicOnError(dp.Close, "closing provider")
	})

	return newRouter(dp, config.ServerConfig{})
}

func TestFlowEndpointDeniedBeforeTenantLookup(t *testing.T) {
	t.Parallel()

	// arrange
	tenantService := &recordingTenantService{}
	router := newTestRouter(t, denyAllLimiter{}, tenantService)

	r := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	r.Host = "id.example.test"
	w := httptest.NewRecorder()

	// act
	router.ServeHTTP(w, r)

	// assert
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Zero(t, tenantService.resolveHostCalls)
}

func TestFlowEndpointResolvesTenantWhenAdmitted(t *testing.T) {
	t.Parallel()

	// arrange
	tenantService := &recordingTenantService{}
	router := newTestRouter(t, allowAllLimiter{}, tenantService)

	r := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	r.Host = "id.example.test"
	w := httptest.NewRecorder()

	// act
	router.ServeHTTP(w, r)

	// assert
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, tenantService.resolveHostCalls)
}
