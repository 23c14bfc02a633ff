package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/losol/eventuras-idp/internal/commands"
	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/database"
	"github.com/losol/eventuras-idp/internal/jobs"
	"github.com/losol/eventuras-idp/internal/logging"
	"github.com/losol/eventuras-idp/internal/metrics"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/queries"
	"github.com/losol/eventuras-idp/internal/quorum"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/internal/retry"
	"github.com/losol/eventuras-idp/internal/server"
	"github.com/losol/eventuras-idp/internal/setup"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"

	"github.com/huandu/go-sqlbuilder"
)

func main() {
	config.Init()

	sqlbuilder.DefaultFlavor = sqlbuilder.PostgreSQL

	logging.Init()
	metrics.Init()

	retry.FiveTimes(func() error {
		return database.Migrate(config.C.Database.Postgres)
	}, "failed to migrate database")

	dc := ioc.NewDependencyCollection()

	setup.Clock(dc)
	setup.Caching(dc, config.C.Cache.Mode)
	if err := setup.Services(context.Background(), dc); err != nil {
		logging.Logger.Fatalf("failed to set up services: %v", err)
	}
	setup.Repositories(dc, config.C.Database.Postgres)
	setup.Mediator(dc)
	dp := dc.BuildProvider()

	initApplication(dp)

	startBackgroundJobs(dp)

	server.Serve(dp, config.C.Server)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

// startBackgroundJobs runs the scheduled jobs on the elected leader so
// a multi instance deployment rotates each key exactly once.
func startBackgroundJobs(dp *ioc.DependencyProvider) {
	var runner *jobs.Runner
	leaderElection := quorum.NewLeaderElection(config.C.LeaderElection, func(isLeader bool) {
		if isLeader {
			logging.Logger.Info("starting job runner")
			runner = jobs.NewRunner(jobs.WithOnError(func(jobName string, err error) {
				logging.Logger.Errorf("job %s failed: %v", jobName, err)
			}))

			runner.Add(
				"signing_key_rotation",
				time.Hour,
				jobs.KeyRotationJob(),
				jobs.WithImmediateStart(),
			)

			runner.Start(middlewares.ContextWithScope(context.Background(), dp))
		} else {
			logging.Logger.Info("stopping job runner")
			if runner != nil {
				runner.Stop()
			}
		}
	})

	err := leaderElection.Start(middlewares.ContextWithScope(context.Background(), dp))
	if err != nil {
		panic(fmt.Errorf("failed to start leader election: %w", err))
	}
}

// initApplication creates the initial organization and its tenants on a
// fresh database so the first deploy is usable without manual API calls.
func initApplication(dp *ioc.DependencyProvider) {
	scope := dp.NewScope()
	defer utils.PanicOnError(scope.Close, "failed to close bootstrap scope")

	ctx := middlewares.ContextWithScope(context.Background(), scope)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	existsResult, err := mediatr.Send[*queries.AnyOrganizationExistsResult](ctx, m, queries.AnyOrganizationExists{})
	if err != nil {
		logging.Logger.Fatalf("failed to query if any organizations exist: %v", err)
	}

	if existsResult.Found {
		return
	}

	initial := config.C.InitialOrganization
	if initial.Slug == "" {
		logging.Logger.Warn("no initial organization configured, skipping bootstrap")
		return
	}

	logging.Logger.Infof("creating initial organization %q", initial.Slug)
	_, err = mediatr.Send[*commands.CreateOrganizationResponse](ctx, m, commands.CreateOrganization{
		Slug:        initial.Slug,
		DisplayName: initial.DisplayName,
	})
	if err != nil {
		logging.Logger.Fatalf("failed to create initial organization: %v", err)
	}

	for _, tenantConfig := range initial.Tenants {
		environment, err := repositories.ParseEnvironment(tenantConfig.Environment)
		if err != nil {
			logging.Logger.Fatalf("invalid environment for initial tenant %q: %v", tenantConfig.IssuerUrl, err)
		}

		logging.Logger.Infof("creating initial tenant %q", tenantConfig.IssuerUrl)
		_, err = mediatr.Send[*commands.CreateTenantResponse](ctx, m, commands.CreateTenant{
			OrganizationSlug: initial.Slug,
			IssuerUrl:        tenantConfig.IssuerUrl,
			HostAlias:        tenantConfig.HostAlias,
			Environment:      environment,
			IsPrimary:        tenantConfig.Primary,
			SigningAlgorithm: tenantConfig.SigningAlgorithm,
		})
		if err != nil {
			logging.Logger.Fatalf("failed to create initial tenant %q: %v", tenantConfig.IssuerUrl, err)
		}
	}
}
