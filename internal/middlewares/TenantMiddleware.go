package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// CurrentTenant is the read-only view of the tenant a request was
// resolved to. It carries everything the handlers need without giving
// them a mutable repository model.
type CurrentTenant struct {
	Id               uuid.UUID
	OrganizationId   uuid.UUID
	IssuerUrl        string
	HostAlias        string
	Environment      string
	SigningAlgorithm config.SigningAlgorithm
}

// TenantService resolves a request host to an active tenant.
// Lookups are exact-match only; a missing tenant must surface as
// utils.ErrTenantNotFound so the middleware can fail closed.
type TenantService interface {
	ResolveHost(ctx context.Context, host string) (*CurrentTenant, error)
	ResolveIssuer(ctx context.Context, issuer string) (*CurrentTenant, error)
}

type currentTenantCtxKeyType string

const currentTenantCtxKey currentTenantCtxKeyType = "currentTenant"

// TenantMiddleware resolves the Host header to a tenant and stores it in
// the request context. Requests for unknown hosts are denied, never
// served from a default tenant.
func TenantMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			scope := GetScope(ctx)

			host := stripPort(r.Host)
			if host == "" {
				http.Error(w, "missing host header", http.StatusBadRequest)
				return
			}

			tenantService := ioc.GetDependency[TenantService](scope)
			tenant, err := tenantService.ResolveHost(ctx, host)
			switch {
			case errors.Is(err, utils.ErrTenantNotFound):
				http.Error(w, "unknown tenant", http.StatusNotFound)
				return

			case err != nil:
				utils.HandleHttpError(w, fmt.Errorf("resolving tenant: %w", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithTenant(ctx, tenant)))
		})
	}
}

func stripPort(host string) string {
	if !strings.Contains(host, ":") {
		return host
	}

	h, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	return h
}

func ContextWithTenant(ctx context.Context, tenant *CurrentTenant) context.Context {
	return context.WithValue(ctx, currentTenantCtxKey, tenant)
}

var ErrMissingTenantInContext = errors.New("no tenant in context")

func GetTenant(ctx context.Context) (*CurrentTenant, error) {
	value, ok := ctx.Value(currentTenantCtxKey).(*CurrentTenant)
	if !ok || value == nil {
		return nil, ErrMissingTenantInContext
	}

	return value, nil
}
