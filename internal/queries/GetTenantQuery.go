package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

type GetTenant struct {
	TenantId uuid.UUID
}

func (a GetTenant) LogRequest() bool {
	return true
}

func (a GetTenant) GetRequestName() string {
	return "GetTenant"
}

type GetTenantResponse struct {
	Id               uuid.UUID
	OrganizationId   uuid.UUID
	IssuerUrl        string
	HostAlias        string
	Environment      repositories.Environment
	IsPrimary        bool
	Active           bool
	SigningAlgorithm config.SigningAlgorithm
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func HandleGetTenant(ctx context.Context, query GetTenant) (*GetTenantResponse, error) {
	scope := middlewares.GetScope(ctx)

	tenantRepository := ioc.GetDependency[repositories.TenantRepository](scope)
	tenantFilter := repositories.NewTenantFilter().Id(query.TenantId)
	tenant, err := tenantRepository.Single(ctx, tenantFilter)
	if err != nil {
		return nil, fmt.Errorf("getting tenant: %w", err)
	}

	return &GetTenantResponse{
		Id:               tenant.Id(),
		OrganizationId:   tenant.OrganizationId(),
		IssuerUrl:        tenant.IssuerUrl(),
		HostAlias:        tenant.HostAlias(),
		Environment:      tenant.Environment(),
		IsPrimary:        tenant.IsPrimary(),
		Active:           tenant.Active(),
		SigningAlgorithm: tenant.SigningAlgorithm(),
		CreatedAt:        tenant.AuditCreatedAt(),
		UpdatedAt:        tenant.AuditUpdatedAt(),
	}, nil
}
