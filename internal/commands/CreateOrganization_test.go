package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/internal/repositories/mocks"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CreateOrganizationCommandSuite struct {
	suite.Suite
}

func TestCreateOrganizationCommandSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(CreateOrganizationCommandSuite))
}

func (s *CreateOrganizationCommandSuite) createContext(
	organizationRepository repositories.OrganizationRepository,
) context.Context {
	dc := ioc.NewDependencyCollection()

	if organizationRepository != nil {
		ioc.RegisterTransient(dc, func(_ *ioc.DependencyProvider) repositories.OrganizationRepository {
			return organizationRepository
		})
	}

	scope := dc.BuildProvider()
	s.T().Cleanup(func() {
		utils.PanicOnError(scope.Close, "closing scope")
	})

	return middlewares.ContextWithScope(s.T().Context(), scope)
}

func (s *CreateOrganizationCommandSuite) TestHappyPath() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	organizationRepository := mocks.NewMockOrganizationRepository(ctrl)
	organizationRepository.EXPECT().First(gomock.Any(), gomock.Cond(func(x repositories.OrganizationFilter) bool {
		return x.GetSlug() == "losol"
	})).Return(nil, nil)
	organizationRepository.EXPECT().Insert(gomock.Any(), gomock.Cond(func(x *repositories.Organization) bool {
		return x.Slug() == "losol" &&
			x.DisplayName() == "Losol AS"
	})).
		Return(nil)

	ctx := s.createContext(organizationRepository)
	cmd := CreateOrganization{
		Slug:        "losol",
		DisplayName: "Losol AS",
	}

	// act
	resp, err := HandleCreateOrganization(ctx, cmd)

	// assert
	s.Require().NoError(err)
	s.NotNil(resp)
}

func (s *CreateOrganizationCommandSuite) TestSlugTaken() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	existing := repositories.NewOrganization("losol", "Losol AS")
	organizationRepository := mocks.NewMockOrganizationRepository(ctrl)
	organizationRepository.EXPECT().First(gomock.Any(), gomock.Any()).Return(existing, nil)

	ctx := s.createContext(organizationRepository)
	cmd := CreateOrganization{
		Slug:        "losol",
		DisplayName: "Losol AS",
	}

	// act
	resp, err := HandleCreateOrganization(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, utils.ErrHttpConflict)
	s.Nil(resp)
}

func (s *CreateOrganizationCommandSuite) TestInsertError() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	organizationRepository := mocks.NewMockOrganizationRepository(ctrl)
	organizationRepository.EXPECT().First(gomock.Any(), gomock.Any()).Return(nil, nil)
	organizationRepository.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("error"))

	ctx := s.createContext(organizationRepository)
	cmd := CreateOrganization{}

	// act
	resp, err := HandleCreateOrganization(ctx, cmd)

	// assert
	s.Require().Error(err)
	s.Nil(resp)
}
