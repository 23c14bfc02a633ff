package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/losol/eventuras-idp/internal/clock"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/services"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"
)

const jwksDefaultMaxAge = time.Hour

type JwksResponseDto struct {
	Keys []any `json:"keys"`
}

// WellKnownJwks returns the public key set of the tenant the request
// host resolved to. The Cache-Control max-age never outlives the
// earliest key expiry so clients refresh in time to pick up rotations.
func WellKnownJwks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenant, err := middlewares.GetTenant(ctx)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	scope := middlewares.GetScope(ctx)
	keyService := ioc.GetDependency[services.KeyService](scope)

	jwks, err := keyService.PublicJwks(ctx, tenant.Id)
	if err != nil {
		utils.HandleHttpError(w, fmt.Errorf("getting jwks: %w", err))
		return
	}

	maxAge := jwksDefaultMaxAge
	if expiry := jwks.EarliestExpiry(); expiry != nil {
		clockService := ioc.GetDependency[clock.Service](scope)
		remaining := expiry.Sub(clockService.Now())
		if remaining < maxAge {
			maxAge = max(remaining, 0)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
	w.WriteHeader(http.StatusOK)

	err = json.NewEncoder(w).Encode(JwksResponseDto{
		Keys: jwks.Keys,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}
