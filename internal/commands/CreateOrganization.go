package commands

import (
	"context"
	"fmt"

	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

type CreateOrganization struct {
	Slug        string
	DisplayName string
}

func (a CreateOrganization) LogRequest() bool {
	return true
}

func (a CreateOrganization) GetRequestName() string {
	return "CreateOrganization"
}

type CreateOrganizationResponse struct {
	Id uuid.UUID
}

func HandleCreateOrganization(ctx context.Context, command CreateOrganization) (*CreateOrganizationResponse, error) {
	scope := middlewares.GetScope(ctx)

	organizationRepository := ioc.GetDependency[repositories.OrganizationRepository](scope)
	organizationFilter := repositories.NewOrganizationFilter().Slug(command.Slug)
	existing, err := organizationRepository.First(ctx, organizationFilter)
	if err != nil {
		return nil, fmt.Errorf("checking organization slug: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("organization slug %q already taken: %w", command.Slug, utils.ErrHttpConflict)
	}

	organization := repositories.NewOrganization(command.Slug, command.DisplayName)
	err = organizationRepository.Insert(ctx, organization)
	if err != nil {
		return nil, fmt.Errorf("inserting organization: %w", err)
	}

	return &CreateOrganizationResponse{
		Id: organization.Id(),
	}, nil
}
