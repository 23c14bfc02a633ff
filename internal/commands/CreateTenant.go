package commands

import (
	"context"
	"fmt"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/internal/services"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

type CreateTenant struct {
	OrganizationSlug string
	IssuerUrl        string
	HostAlias        string
	Environment      repositories.Environment
	IsPrimary        bool
	SigningAlgorithm config.SigningAlgorithm
}

func (a CreateTenant) LogRequest() bool {
	return true
}

func (a CreateTenant) GetRequestName() string {
	return "CreateTenant"
}

type CreateTenantResponse struct {
	Id uuid.UUID
}

// HandleCreateTenant checks issuer url and host alias uniqueness before
// inserting so a clash surfaces as a conflict instead of a raw unique
// index violation. The database indexes remain the final authority.
func HandleCreateTenant(ctx context.Context, command CreateTenant) (*CreateTenantResponse, error) {
	scope := middlewares.GetScope(ctx)

	organizationRepository := ioc.GetDependency[repositories.OrganizationRepository](scope)
	organizationFilter := repositories.NewOrganizationFilter().Slug(command.OrganizationSlug)
	organization, err := organizationRepository.Single(ctx, organizationFilter)
	if err != nil {
		return nil, fmt.Errorf("getting organization: %w", err)
	}

	tenantRepository := ioc.GetDependency[repositories.TenantRepository](scope)

	issuerFilter := repositories.NewTenantFilter().IssuerUrl(command.IssuerUrl)
	existing, err := tenantRepository.First(ctx, issuerFilter)
	if err != nil {
		return nil, fmt.Errorf("checking issuer url: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("issuer url %q already taken: %w", command.IssuerUrl, utils.ErrHttpConflict)
	}

	hostFilter := repositories.NewTenantFilter().HostAlias(command.HostAlias)
	existing, err = tenantRepository.First(ctx, hostFilter)
	if err != nil {
		return nil, fmt.Errorf("checking host alias: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("host alias %q already taken: %w", command.HostAlias, utils.ErrHttpConflict)
	}

	if command.IsPrimary {
		primaryFilter := repositories.NewTenantFilter().
			OrganizationId(organization.Id()).
			IsPrimary(true)
		primary, err := tenantRepository.First(ctx, primaryFilter)
		if err != nil {
			return nil, fmt.Errorf("checking primary tenant: %w", err)
		}
		if primary != nil {
			return nil, fmt.Errorf("organization %q already has a primary tenant: %w", command.OrganizationSlug, utils.ErrHttpConflict)
		}
	}

	tenant := repositories.NewTenant(organization.Id(), command.IssuerUrl, command.HostAlias, command.Environment)
	if command.IsPrimary {
		tenant.SetIsPrimary(true)
	}
	if command.SigningAlgorithm != "" {
		tenant.SetSigningAlgorithm(command.SigningAlgorithm)
	}

	err = tenantRepository.Insert(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant: %w", err)
	}

	keyService := ioc.GetDependency[services.KeyService](scope)
	err = keyService.EnsureKey(ctx, tenant.Id(), tenant.SigningAlgorithm())
	if err != nil {
		return nil, fmt.Errorf("ensuring signing key: %w", err)
	}

	return &CreateTenantResponse{
		Id: tenant.Id(),
	}, nil
}
