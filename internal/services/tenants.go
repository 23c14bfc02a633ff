package services

import (
	"context"
	"fmt"

	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"

	"github.com/The127/ioc"
)

type tenantService struct {
}

// NewTenantService resolves request hosts and token issuers to tenants.
// Resolution fails closed, an unknown or inactive host serves nothing.
func NewTenantService() middlewares.TenantService {
	return &tenantService{}
}

func (s *tenantService) ResolveHost(ctx context.Context, host string) (*middlewares.CurrentTenant, error) {
	filter := repositories.NewTenantFilter().
		HostAlias(host).
		OnlyActive()
	return s.resolve(ctx, filter)
}

func (s *tenantService) ResolveIssuer(ctx context.Context, issuerUrl string) (*middlewares.CurrentTenant, error) {
	filter := repositories.NewTenantFilter().
		IssuerUrl(issuerUrl).
		OnlyActive()
	return s.resolve(ctx, filter)
}

func (s *tenantService) resolve(ctx context.Context, filter repositories.TenantFilter) (*middlewares.CurrentTenant, error) {
	scope := middlewares.GetScope(ctx)
	tenantRepository := ioc.GetDependency[repositories.TenantRepository](scope)

	tenant, err := tenantRepository.Single(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("resolving tenant: %w", err)
	}

	return &middlewares.CurrentTenant{
		Id:               tenant.Id(),
		OrganizationId:   tenant.OrganizationId(),
		IssuerUrl:        tenant.IssuerUrl(),
		HostAlias:        tenant.HostAlias(),
		Environment:      string(tenant.Environment()),
		SigningAlgorithm: tenant.SigningAlgorithm(),
	}, nil
}
