package setup

import (
	"database/sql"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/database"
	"github.com/losol/eventuras-idp/internal/repositories"

	"github.com/The127/ioc"
)

func Repositories(dc *ioc.DependencyCollection, pc config.PostgresConfig) {
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) *sql.DB {
		return database.ConnectToDatabase(pc)
	})

	ioc.RegisterScoped(dc, func(dp *ioc.DependencyProvider) database.DbService {
		return database.NewDbService(dp)
	})
	ioc.RegisterCloseHandler(dc, func(dbService database.DbService) error {
		return dbService.Close()
	})

	ioc.RegisterScoped(dc, func(dp *ioc.DependencyProvider) repositories.OrganizationRepository {
		return repositories.NewOrganizationRepository()
	})
	// The tenant repository cache spans requests, so its lifetime is the
	// process, not the scope.
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) repositories.TenantRepository {
		return repositories.NewTenantRepository()
	})
	ioc.RegisterScoped(dc, func(dp *ioc.DependencyProvider) repositories.SigningKeyRepository {
		return repositories.NewSigningKeyRepository()
	})
	ioc.RegisterScoped(dc, func(dp *ioc.DependencyProvider) repositories.SessionRepository {
		return repositories.NewSessionRepository()
	})
}
