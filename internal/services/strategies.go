package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/logging"
	"github.com/losol/eventuras-idp/internal/metrics"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/services/keyValue"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

const (
	StrategyVerifiedToken = "verified-token"
	StrategyHandoffCookie = "handoff-cookie"

	// HandoffCookieName carries the short lived pre-session token set
	// by an external identity callback.
	HandoffCookieName = "eventuras_handoff"

	handoffKeyPrefix = "handoff"
)

var ErrSessionStrategyRejected = fmt.Errorf("no session strategy accepted the assertion: %w", utils.ErrHttpUnauthorized)

// errStrategyNotApplicable moves evaluation on to the next strategy in
// the configured order.
var errStrategyNotApplicable = errors.New("strategy not applicable")

// Assertion is the evidence a login attempt presents to the session
// bridge.
type Assertion struct {
	// VerifiedToken is set when the callback already verified an
	// access token issued by this service.
	VerifiedToken *VerifiedToken
	// HandoffToken is the raw value of the handoff cookie, if present.
	HandoffToken string
}

// Strategy decides whether an assertion proves a subject.
type Strategy interface {
	Name() string
	Authenticate(ctx context.Context, tenant middlewares.CurrentTenant, assertion Assertion) (uuid.UUID, error)
}

type verifiedTokenStrategy struct {
}

func (s *verifiedTokenStrategy) Name() string {
	return StrategyVerifiedToken
}

func (s *verifiedTokenStrategy) Authenticate(_ context.Context, tenant middlewares.CurrentTenant, assertion Assertion) (uuid.UUID, error) {
	if assertion.VerifiedToken == nil {
		return uuid.Nil, errStrategyNotApplicable
	}

	if assertion.VerifiedToken.TenantId != tenant.Id {
		return uuid.Nil, fmt.Errorf("token was issued for another tenant: %w", errStrategyNotApplicable)
	}

	return assertion.VerifiedToken.Subject, nil
}

type handoffCookieStrategy struct {
}

func (s *handoffCookieStrategy) Name() string {
	return StrategyHandoffCookie
}

func (s *handoffCookieStrategy) Authenticate(ctx context.Context, tenant middlewares.CurrentTenant, assertion Assertion) (uuid.UUID, error) {
	if assertion.HandoffToken == "" {
		return uuid.Nil, errStrategyNotApplicable
	}

	scope := middlewares.GetScope(ctx)
	kvStore := ioc.GetDependency[keyValue.Store](scope)

	subjectValue, err := kvStore.GetDelete(ctx, handoffKey(tenant.Id, assertion.HandoffToken))
	switch {
	case errors.Is(err, keyValue.ErrNotFound):
		return uuid.Nil, fmt.Errorf("handoff token unknown or already used: %w", errStrategyNotApplicable)

	case err != nil:
		return uuid.Nil, fmt.Errorf("getting handoff token: %w", err)
	}

	subject, err := uuid.Parse(subjectValue)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing handoff subject: %w", err)
	}

	return subject, nil
}

func handoffKey(tenantId uuid.UUID, token string) string {
	return fmt.Sprintf("%s:%s:%s", handoffKeyPrefix, tenantId, utils.CheapHash(token))
}

//go:generate mockgen -destination=./mocks/session_bridge.go -package=mocks github.com/losol/eventuras-idp/internal/services SessionBridge
type SessionBridge interface {
	// Establish runs the configured strategies in order and creates a
	// session for the first accepted subject.
	Establish(w http.ResponseWriter, r *http.Request, tenant middlewares.CurrentTenant, assertion Assertion) (uuid.UUID, error)
	// BeginHandoff stores a single use handoff token an external
	// identity callback can hand to the browser.
	BeginHandoff(ctx context.Context, tenant middlewares.CurrentTenant, subject uuid.UUID) (string, error)
}

type sessionBridge struct {
	strategies []Strategy
}

func NewSessionBridge() (SessionBridge, error) {
	strategies := make([]Strategy, 0, len(config.C.Auth.SessionStrategies))
	for _, name := range config.C.Auth.SessionStrategies {
		switch name {
		case StrategyVerifiedToken:
			strategies = append(strategies, &verifiedTokenStrategy{})

		case StrategyHandoffCookie:
			strategies = append(strategies, &handoffCookieStrategy{})

		default:
			return nil, fmt.Errorf("unknown session strategy: %s", name)
		}
	}

	return &sessionBridge{
		strategies: strategies,
	}, nil
}

func (b *sessionBridge) Establish(w http.ResponseWriter, r *http.Request, tenant middlewares.CurrentTenant, assertion Assertion) (uuid.UUID, error) {
	ctx := r.Context()

	for _, strategy := range b.strategies {
		subject, err := strategy.Authenticate(ctx, tenant, assertion)
		switch {
		case errors.Is(err, errStrategyNotApplicable):
			logging.Logger.Debugf("session strategy %s rejected the assertion: %v", strategy.Name(), err)
			continue

		case err != nil:
			return uuid.Nil, fmt.Errorf("running session strategy %s: %w", strategy.Name(), err)
		}

		err = middlewares.CreateSession(w, r, tenant.Id, subject)
		if err != nil {
			return uuid.Nil, fmt.Errorf("creating session: %w", err)
		}

		metrics.SessionsEstablished.Inc()
		return subject, nil
	}

	return uuid.Nil, ErrSessionStrategyRejected
}

func (b *sessionBridge) BeginHandoff(ctx context.Context, tenant middlewares.CurrentTenant, subject uuid.UUID) (string, error) {
	scope := middlewares.GetScope(ctx)
	kvStore := ioc.GetDependency[keyValue.Store](scope)

	token := base64.RawURLEncoding.EncodeToString(utils.GetSecureRandomBytes(32))

	err := kvStore.Set(ctx, handoffKey(tenant.Id, token), subject.String(), keyValue.WithExpiration(config.C.Auth.TransitTtl()))
	if err != nil {
		return "", fmt.Errorf("storing handoff token: %w", err)
	}

	return token, nil
}
