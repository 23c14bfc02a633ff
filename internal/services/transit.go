package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/services/keyValue"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"golang.org/x/oauth2"
)

const (
	TransitStateCookieName    = "oauth_state"
	TransitVerifierCookieName = "oauth_code_verifier"
	TransitReturnToCookieName = "returnTo"
)

const transitKeyPrefix = "transit"

var ErrTransitStateNotFound = fmt.Errorf("transit state: %w", utils.ErrHttpUnauthorized)

// TransitState carries one login attempt between the redirect to the
// upstream provider and the callback.
type TransitState struct {
	State        string `json:"state"`
	CodeVerifier string `json:"codeVerifier"`
	ReturnTo     string `json:"returnTo"`
}

//go:generate mockgen -destination=./mocks/transit_service.go -package=mocks github.com/losol/eventuras-idp/internal/services TransitService
type TransitService interface {
	// Begin creates a transit record with a fresh state and PKCE
	// verifier and stores it for the transit TTL.
	Begin(ctx context.Context, returnTo string) (TransitState, error)
	// Consume removes and returns the record in one step. A second
	// consume of the same state fails, replayed callbacks are rejected
	// even when the browser kept its cookies.
	Consume(ctx context.Context, state string) (TransitState, error)
}

type transitService struct {
}

func NewTransitService() TransitService {
	return &transitService{}
}

func transitKey(state string) string {
	return fmt.Sprintf("%s:%s", transitKeyPrefix, state)
}

func (s *transitService) Begin(ctx context.Context, returnTo string) (TransitState, error) {
	scope := middlewares.GetScope(ctx)
	kvStore := ioc.GetDependency[keyValue.Store](scope)

	transit := TransitState{
		State:        oauth2.GenerateVerifier(),
		CodeVerifier: oauth2.GenerateVerifier(),
		ReturnTo:     returnTo,
	}

	payload, err := json.Marshal(transit)
	if err != nil {
		return TransitState{}, fmt.Errorf("marshaling transit state: %w", err)
	}

	err = kvStore.Set(ctx, transitKey(transit.State), string(payload), keyValue.WithExpiration(config.C.Auth.TransitTtl()))
	if err != nil {
		return TransitState{}, fmt.Errorf("storing transit state: %w", err)
	}

	return transit, nil
}

func (s *transitService) Consume(ctx context.Context, state string) (TransitState, error) {
	scope := middlewares.GetScope(ctx)
	kvStore := ioc.GetDependency[keyValue.Store](scope)

	payload, err := kvStore.GetDelete(ctx, transitKey(state))
	switch {
	case errors.Is(err, keyValue.ErrNotFound):
		return TransitState{}, ErrTransitStateNotFound

	case err != nil:
		return TransitState{}, fmt.Errorf("getting transit state: %w", err)
	}

	var transit TransitState
	err = json.Unmarshal([]byte(payload), &transit)
	if err != nil {
		return TransitState{}, fmt.Errorf("unmarshaling transit state: %w", err)
	}

	return transit, nil
}
