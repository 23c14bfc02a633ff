package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/middlewares"

	"golang.org/x/oauth2"
)

//go:generate mockgen -destination=./mocks/upstream_service.go -package=mocks github.com/losol/eventuras-idp/internal/services UpstreamService
type UpstreamService interface {
	// AuthCodeUrl builds the upstream authorize redirect with the S256
	// challenge derived from the transit verifier.
	AuthCodeUrl(tenant middlewares.CurrentTenant, state string, codeVerifier string) string
	// Exchange swaps the authorization code for tokens. One attempt
	// with a hard timeout, a flaky upstream fails the login instead of
	// stalling it.
	Exchange(ctx context.Context, tenant middlewares.CurrentTenant, code string, codeVerifier string) (*oauth2.Token, error)
}

type upstreamService struct {
}

func NewUpstreamService() UpstreamService {
	return &upstreamService{}
}

func oauthConfig(tenant middlewares.CurrentTenant) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.C.Auth.Upstream.ClientId,
		ClientSecret: config.C.Auth.Upstream.ClientSecret,
		Scopes:       config.C.Auth.Upstream.Scopes,
		RedirectURL:  fmt.Sprintf("%s/auth/callback", strings.TrimRight(tenant.IssuerUrl, "/")),
		Endpoint: oauth2.Endpoint{
			AuthURL:  config.C.Auth.Upstream.AuthorizeUrl,
			TokenURL: config.C.Auth.Upstream.TokenUrl,
		},
	}
}

func (s *upstreamService) AuthCodeUrl(tenant middlewares.CurrentTenant, state string, codeVerifier string) string {
	return oauthConfig(tenant).AuthCodeURL(state, oauth2.S256ChallengeOption(codeVerifier))
}

func (s *upstreamService) Exchange(ctx context.Context, tenant middlewares.CurrentTenant, code string, codeVerifier string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, config.C.Auth.Upstream.Timeout())
	defer cancel()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Timeout: config.C.Auth.Upstream.Timeout(),
	})

	token, err := oauthConfig(tenant).Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	return token, nil
}
