package setup

import (
	"context"
	"fmt"

	"github.com/losol/eventuras-idp/internal/clock"
	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/services"
	"github.com/losol/eventuras-idp/internal/services/keyValue"

	"github.com/The127/ioc"
)

func Clock(dc *ioc.DependencyCollection) {
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) clock.Service {
		return clock.NewClockService()
	})
}

func Caching(dc *ioc.DependencyCollection, mode config.CacheMode) {
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) keyValue.Store {
		switch mode {
		case config.CacheModeMemory:
			return keyValue.NewMemoryStore()

		case config.CacheModeRedis:
			return keyValue.NewRedisStore()

		default:
			panic("cache mode missing or not supported")
		}
	})
}

// Services wires the domain services. The master key is fetched once at
// startup so a broken key source fails the boot instead of the first
// signing request.
func Services(ctx context.Context, dc *ioc.DependencyCollection) error {
	masterKeySource, err := services.NewMasterKeySource()
	if err != nil {
		return fmt.Errorf("creating master key source: %w", err)
	}

	masterKey, err := masterKeySource.MasterKey(ctx)
	if err != nil {
		return fmt.Errorf("fetching master key: %w", err)
	}

	protector, err := services.NewKeyProtector(masterKey)
	if err != nil {
		return fmt.Errorf("creating key protector: %w", err)
	}

	keyService := services.NewKeyService(protector)
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) services.KeyService {
		return keyService
	})

	sessionBridge, err := services.NewSessionBridge()
	if err != nil {
		return fmt.Errorf("creating session bridge: %w", err)
	}
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) services.SessionBridge {
		return sessionBridge
	})

	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) services.TokenService {
		return services.NewTokenService(ioc.GetDependency[services.KeyService](dp))
	})
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) services.TransitService {
		return services.NewTransitService()
	})
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) services.UpstreamService {
		return services.NewUpstreamService()
	})
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) middlewares.SessionService {
		return services.NewSessionService()
	})
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) middlewares.TenantService {
		return services.NewTenantService()
	})
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) middlewares.RateLimiter {
		return services.NewRateLimiter()
	})

	return nil
}
