package middlewares

import (
	"context"

	"github.com/losol/eventuras-idp/utils"

	"github.com/google/uuid"
)

type Session struct {
	subject      uuid.UUID
	hashedSecret string
}

func NewSession(subject uuid.UUID, hashedSecret string) *Session {
	return &Session{
		subject:      subject,
		hashedSecret: hashedSecret,
	}
}

func (s *Session) Subject() uuid.UUID {
	return s.subject
}

func (s *Session) HashedSecret() string {
	return s.hashedSecret
}

type SessionService interface {
	NewSession(ctx context.Context, tenantId uuid.UUID, subject uuid.UUID) (*utils.SplitToken, error)
	GetSession(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) (*Session, error)
	DeleteSession(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) error
}
