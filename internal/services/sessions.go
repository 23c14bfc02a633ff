package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/losol/eventuras-idp/internal/clock"
	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/internal/services/keyValue"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

const sessionCacheTtl = time.Minute * 15

type sessionService struct {
}

type sessionCacheValue struct {
	Subject      uuid.UUID `json:"subject"`
	HashedSecret string    `json:"hashedSecret"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func NewSessionService() middlewares.SessionService {
	return &sessionService{}
}

func (s *sessionService) NewSession(ctx context.Context, tenantId uuid.UUID, subject uuid.UUID) (*utils.SplitToken, error) {
	scope := middlewares.GetScope(ctx)

	clockService := ioc.GetDependency[clock.Service](scope)
	now := clockService.Now()

	secret := base64.RawURLEncoding.EncodeToString(utils.GetSecureRandomBytes(32))

	sessionRepository := ioc.GetDependency[repositories.SessionRepository](scope)
	session := repositories.NewSession(tenantId, subject, utils.CheapHash(secret), now.Add(config.C.Auth.SessionTtl()))
	err := sessionRepository.Insert(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}

	sessionToken := utils.NewSplitToken(session.Id().String(), secret)
	return &sessionToken, nil
}

func (s *sessionService) GetSession(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) (*middlewares.Session, error) {
	scope := middlewares.GetScope(ctx)
	kvStore := ioc.GetDependency[keyValue.Store](scope)

	clockService := ioc.GetDependency[clock.Service](scope)
	now := clockService.Now()

	cacheKey := getSessionCacheKey(tenantId, id)

	sessionValue, err := kvStore.Get(ctx, cacheKey)
	switch {
	case errors.Is(err, keyValue.ErrNotFound):
		dbSession, err := s.loadSessionFromDatabase(ctx, tenantId, id, now)
		if err != nil {
			return nil, fmt.Errorf("loading session from db: %w", err)
		}

		if dbSession == nil {
			return nil, nil
		}

		cacheValue := sessionCacheValue{
			Subject:      dbSession.Subject(),
			HashedSecret: dbSession.HashedSecret(),
			ExpiresAt:    dbSession.ExpiresAt(),
		}

		valueBytes, err := json.Marshal(cacheValue)
		if err != nil {
			return nil, fmt.Errorf("marshalling session: %w", err)
		}

		// a cached entry must never outlive the session it mirrors
		cacheTtl := sessionCacheTtl
		if remaining := dbSession.ExpiresAt().Sub(now); remaining < cacheTtl {
			cacheTtl = remaining
		}

		err = kvStore.Set(ctx, cacheKey, string(valueBytes), keyValue.WithExpiration(cacheTtl))
		if err != nil {
			return nil, fmt.Errorf("storing session in kv: %w", err)
		}

		return middlewares.NewSession(
			dbSession.Subject(),
			dbSession.HashedSecret(),
		), nil

	case err != nil:
		return nil, fmt.Errorf("getting session from cache: %w", err)
	}

	cacheValue := sessionCacheValue{}
	err = json.NewDecoder(bytes.NewBuffer([]byte(sessionValue))).
		Decode(&cacheValue)
	if err != nil {
		return nil, fmt.Errorf("decoding session from cache: %w", err)
	}

	if !now.Before(cacheValue.ExpiresAt) {
		return nil, nil
	}

	return middlewares.NewSession(
		cacheValue.Subject,
		cacheValue.HashedSecret,
	), nil
}

func (s *sessionService) DeleteSession(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) error {
	scope := middlewares.GetScope(ctx)

	sessionRepository := ioc.GetDependency[repositories.SessionRepository](scope)
	sessionFilter := repositories.NewSessionFilter().Id(id)
	dbSession, err := sessionRepository.First(ctx, sessionFilter)
	if err != nil {
		return fmt.Errorf("getting session from db: %w", err)
	}
	if dbSession == nil {
		return nil
	}

	if dbSession.TenantId() != tenantId {
		return fmt.Errorf("session does not belong to tenant")
	}

	kvStore := ioc.GetDependency[keyValue.Store](scope)

	cacheKey := getSessionCacheKey(tenantId, id)
	err = kvStore.Delete(ctx, cacheKey)
	if err != nil {
		return fmt.Errorf("deleting session from kv: %w", err)
	}

	err = sessionRepository.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	return nil
}

func (s *sessionService) loadSessionFromDatabase(ctx context.Context, tenantId uuid.UUID, id uuid.UUID, now time.Time) (*repositories.Session, error) {
	scope := middlewares.GetScope(ctx)

	sessionRepository := ioc.GetDependency[repositories.SessionRepository](scope)
	sessionFilter := repositories.NewSessionFilter().
		TenantId(tenantId).
		Id(id).
		UnexpiredAt(now)
	dbSession, err := sessionRepository.First(ctx, sessionFilter)
	if err != nil {
		return nil, fmt.Errorf("getting session from db: %w", err)
	}

	return dbSession, nil
}

func getSessionCacheKey(tenantId uuid.UUID, sessionId uuid.UUID) string {
	return fmt.Sprintf("session:%s:%s", tenantId, sessionId)
}
