package commands

import (
	"context"
	"fmt"

	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

type DeactivateTenant struct {
	TenantId uuid.UUID
}

func (a DeactivateTenant) LogRequest() bool {
	return true
}

func (a DeactivateTenant) GetRequestName() string {
	return "DeactivateTenant"
}

type DeactivateTenantResponse struct {
}

// HandleDeactivateTenant stops issuance and flow initiation for a tenant.
// Published keys stay served so already issued tokens verify until expiry.
func HandleDeactivateTenant(ctx context.Context, command DeactivateTenant) (*DeactivateTenantResponse, error) {
	scope := middlewares.GetScope(ctx)

	tenantRepository := ioc.GetDependency[repositories.TenantRepository](scope)
	tenantFilter := repositories.NewTenantFilter().Id(command.TenantId)
	tenant, err := tenantRepository.Single(ctx, tenantFilter)
	if err != nil {
		return nil, fmt.Errorf("getting tenant: %w", err)
	}

	if !tenant.Active() {
		return &DeactivateTenantResponse{}, nil
	}

	tenant.SetActive(false)
	err = tenantRepository.Update(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("updating tenant: %w", err)
	}

	return &DeactivateTenantResponse{}, nil
}
