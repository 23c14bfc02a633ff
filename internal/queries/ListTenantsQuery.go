package queries

import (
	"context"
	"fmt"

	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

type ListTenants struct {
	OrganizationSlug string
}

func (a ListTenants) LogRequest() bool {
	return true
}

func (a ListTenants) GetRequestName() string {
	return "ListTenants"
}

type ListTenantsResponseItem struct {
	Id          uuid.UUID
	IssuerUrl   string
	HostAlias   string
	Environment repositories.Environment
	IsPrimary   bool
	Active      bool
}

type ListTenantsResponse struct {
	Items []ListTenantsResponseItem
}

func HandleListTenants(ctx context.Context, query ListTenants) (*ListTenantsResponse, error) {
	scope := middlewares.GetScope(ctx)

	tenantFilter := repositories.NewTenantFilter()

	if query.OrganizationSlug != "" {
		organizationRepository := ioc.GetDependency[repositories.OrganizationRepository](scope)
		organizationFilter := repositories.NewOrganizationFilter().Slug(query.OrganizationSlug)
		organization, err := organizationRepository.Single(ctx, organizationFilter)
		if err != nil {
			return nil, fmt.Errorf("getting organization: %w", err)
		}

		tenantFilter = tenantFilter.OrganizationId(organization.Id())
	}

	tenantRepository := ioc.GetDependency[repositories.TenantRepository](scope)
	tenants, err := tenantRepository.List(ctx, tenantFilter)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}

	items := make([]ListTenantsResponseItem, 0, len(tenants))
	for _, tenant := range tenants {
		items = append(items, ListTenantsResponseItem{
			Id:          tenant.Id(),
			IssuerUrl:   tenant.IssuerUrl(),
			HostAlias:   tenant.HostAlias(),
			Environment: tenant.Environment(),
			IsPrimary:   tenant.IsPrimary(),
			Active:      tenant.Active(),
		})
	}

	return &ListTenantsResponse{
		Items: items,
	}, nil
}
