package setup

import (
	"github.com/losol/eventuras-idp/internal/behaviours"
	"github.com/losol/eventuras-idp/internal/commands"
	"github.com/losol/eventuras-idp/internal/queries"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"
)

func Mediator(dc *ioc.DependencyCollection) {
	m := mediatr.NewMediator()

	mediatr.RegisterHandler(m, queries.HandleAnyOrganizationExists)
	mediatr.RegisterHandler(m, commands.HandleCreateOrganization)

	mediatr.RegisterHandler(m, commands.HandleCreateTenant)
	mediatr.RegisterHandler(m, commands.HandleRotateTenantKey)
	mediatr.RegisterHandler(m, commands.HandleDeactivateTenant)
	mediatr.RegisterHandler(m, queries.HandleGetTenant)
	mediatr.RegisterHandler(m, queries.HandleListTenants)

	mediatr.RegisterBehaviour(m, behaviours.RequestLoggingBehaviour)

	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) mediatr.Mediator {
		return m
	})
}
