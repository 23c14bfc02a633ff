package queries

import (
	"context"
	"fmt"

	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"

	"github.com/The127/ioc"
)

type AnyOrganizationExists struct{}

// Only used during initial bootstrap.

type AnyOrganizationExistsResult struct {
	Found bool
}

func HandleAnyOrganizationExists(ctx context.Context, _ AnyOrganizationExists) (*AnyOrganizationExistsResult, error) {
	scope := middlewares.GetScope(ctx)

	organizationRepository := ioc.GetDependency[repositories.OrganizationRepository](scope)
	organization, err := organizationRepository.First(ctx, repositories.NewOrganizationFilter())
	if err != nil {
		return nil, fmt.Errorf("searching organizations: %w", err)
	}

	return &AnyOrganizationExistsResult{
		Found: organization != nil,
	}, nil
}
