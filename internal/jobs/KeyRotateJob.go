package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/losol/eventuras-idp/internal/clock"
	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/logging"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/internal/services"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"
)

// KeyRotationJob walks all active tenants and replaces signing keys
// older than the configured rotation interval. A tenant without an
// active key gets one, so a key deleted out of band heals itself on
// the next run.
func KeyRotationJob() JobFn {
	return func(ctx context.Context) error {
		scope := middlewares.GetScope(ctx).NewScope()
		defer utils.PanicOnError(scope.Close, "failed to close job scope")
		ctx = middlewares.ContextWithScope(ctx, scope)

		tenantRepository := ioc.GetDependency[repositories.TenantRepository](scope)
		tenants, err := tenantRepository.List(ctx, repositories.NewTenantFilter().OnlyActive())
		if err != nil {
			return fmt.Errorf("listing tenants: %w", err)
		}

		signingKeyRepository := ioc.GetDependency[repositories.SigningKeyRepository](scope)
		keyService := ioc.GetDependency[services.KeyService](scope)
		clockService := ioc.GetDependency[clock.Service](scope)

		now := clockService.Now()
		interval := config.C.KeyStore.RotationInterval()

		// one failing tenant must not block rotation for the rest
		var errs []error
		for _, tenant := range tenants {
			err = rotateTenantKeyIfDue(ctx, signingKeyRepository, keyService, tenant, now, interval)
			if err != nil {
				logging.Logger.Warnf("rotating signing key for tenant %s: %v", tenant.Id(), err)
				errs = append(errs, fmt.Errorf("tenant %s: %w", tenant.Id(), err))
			}
		}

		return errors.Join(errs...)
	}
}

func rotateTenantKeyIfDue(
	ctx context.Context,
	signingKeyRepository repositories.SigningKeyRepository,
	keyService services.KeyService,
	tenant *repositories.Tenant,
	now time.Time,
	interval time.Duration,
) error {
	filter := repositories.NewSigningKeyFilter().
		TenantId(tenant.Id()).
		Status(repositories.KeyStatusActive)
	activeKey, err := signingKeyRepository.First(ctx, filter)
	if err != nil {
		return fmt.Errorf("loading active signing key: %w", err)
	}

	if activeKey == nil {
		return keyService.EnsureKey(ctx, tenant.Id(), tenant.SigningAlgorithm())
	}

	if now.Sub(activeKey.ActivatesAt()) < interval {
		return nil
	}

	_, err = keyService.Rotate(ctx, tenant.Id())
	return err
}
