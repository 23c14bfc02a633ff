package commands

import (
	"context"
	"fmt"

	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/internal/services"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

type RotateTenantKey struct {
	TenantId uuid.UUID
}

func (a RotateTenantKey) LogRequest() bool {
	return true
}

func (a RotateTenantKey) GetRequestName() string {
	return "RotateTenantKey"
}

type RotateTenantKeyResponse struct {
	Kid string
}

func HandleRotateTenantKey(ctx context.Context, command RotateTenantKey) (*RotateTenantKeyResponse, error) {
	scope := middlewares.GetScope(ctx)

	tenantRepository := ioc.GetDependency[repositories.TenantRepository](scope)
	tenantFilter := repositories.NewTenantFilter().Id(command.TenantId)
	tenant, err := tenantRepository.Single(ctx, tenantFilter)
	if err != nil {
		return nil, fmt.Errorf("getting tenant: %w", err)
	}

	keyService := ioc.GetDependency[services.KeyService](scope)
	kid, err := keyService.Rotate(ctx, tenant.Id())
	if err != nil {
		return nil, fmt.Errorf("rotating signing key: %w", err)
	}

	return &RotateTenantKeyResponse{
		Kid: kid,
	}, nil
}
