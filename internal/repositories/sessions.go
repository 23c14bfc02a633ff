package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/losol/eventuras-idp/internal/database"
	"github.com/losol/eventuras-idp/internal/logging"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
)

// Session is the server side of a browser session. Only the sha256 of
// the cookie secret is stored.
type Session struct {
	ModelBase

	tenantId     uuid.UUID
	subject      uuid.UUID
	hashedSecret string
	expiresAt    time.Time
}

func NewSession(tenantId uuid.UUID, subject uuid.UUID, hashedSecret string, expiresAt time.Time) *Session {
	return &Session{
		ModelBase:    NewModelBase(),
		tenantId:     tenantId,
		subject:      subject,
		hashedSecret: hashedSecret,
		expiresAt:    expiresAt,
	}
}

func (m *Session) getScanPointers() []any {
	return []any{
		&m.id,
		&m.auditCreatedAt,
		&m.auditUpdatedAt,
		&m.version,
		&m.tenantId,
		&m.subject,
		&m.hashedSecret,
		&m.expiresAt,
	}
}

func (m *Session) TenantId() uuid.UUID {
	return m.tenantId
}

func (m *Session) Subject() uuid.UUID {
	return m.subject
}

func (m *Session) HashedSecret() string {
	return m.hashedSecret
}

func (m *Session) ExpiresAt() time.Time {
	return m.expiresAt
}

type SessionFilter struct {
	id          *uuid.UUID
	tenantId    *uuid.UUID
	subject     *uuid.UUID
	unexpiredAt *time.Time
}

func NewSessionFilter() SessionFilter {
	return SessionFilter{}
}

func (f SessionFilter) Clone() SessionFilter {
	return f
}

func (f SessionFilter) Id(id uuid.UUID) SessionFilter {
	filter := f.Clone()
	filter.id = &id
	return filter
}

func (f SessionFilter) GetId() uuid.UUID {
	return utils.ZeroIfNil(f.id)
}

func (f SessionFilter) TenantId(tenantId uuid.UUID) SessionFilter {
	filter := f.Clone()
	filter.tenantId = &tenantId
	return filter
}

func (f SessionFilter) GetTenantId() uuid.UUID {
	return utils.ZeroIfNil(f.tenantId)
}

func (f SessionFilter) Subject(subject uuid.UUID) SessionFilter {
	filter := f.Clone()
	filter.subject = &subject
	return filter
}

func (f SessionFilter) UnexpiredAt(now time.Time) SessionFilter {
	filter := f.Clone()
	filter.unexpiredAt = &now
	return filter
}

//go:generate mockgen -destination=./mocks/session_repository.go -package=mocks github.com/losol/eventuras-idp/internal/repositories SessionRepository
type SessionRepository interface {
	First(ctx context.Context, filter SessionFilter) (*Session, error)
	Insert(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct{}

func NewSessionRepository() SessionRepository {
	return &sessionRepository{}
}

func (r *sessionRepository) selectQuery(filter SessionFilter) *sqlbuilder.SelectBuilder {
	s := sqlbuilder.Select(
		"id",
		"audit_created_at",
		"audit_updated_at",
		"version",
		"tenant_id",
		"subject",
		"hashed_secret",
		"expires_at",
	).From("sessions")

	if filter.id != nil {
		s.Where(s.Equal("id", filter.id))
	}

	if filter.tenantId != nil {
		s.Where(s.Equal("tenant_id", filter.tenantId))
	}

	if filter.subject != nil {
		s.Where(s.Equal("subject", filter.subject))
	}

	if filter.unexpiredAt != nil {
		s.Where(s.GreaterThan("expires_at", filter.unexpiredAt))
	}

	return s
}

func (r *sessionRepository) First(ctx context.Context, filter SessionFilter) (*Session, error) {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return nil, fmt.Errorf("failed to open tx: %w", err)
	}

	s := r.selectQuery(filter)
	s.Limit(1)

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	session := Session{
		ModelBase: NewModelBase(),
	}
	err = row.Scan(session.getScanPointers()...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil

	case err != nil:
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) Insert(ctx context.Context, session *Session) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.InsertInto("sessions").
		Cols(
			"tenant_id",
			"subject",
			"hashed_secret",
			"expires_at",
		).
		Values(
			session.tenantId,
			session.subject,
			session.hashedSecret,
			session.expiresAt,
		).Returning("id", "audit_created_at", "audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(&session.id, &session.auditCreatedAt, &session.auditUpdatedAt, &session.version)
	if err != nil {
		return fmt.Errorf("scanning row: %w", err)
	}

	session.ClearChanges()
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.DeleteFrom("sessions")
	s.Where(s.Equal("id", id))

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	return nil
}

// DeleteExpired removes sessions past their expiry and reports how many
// rows went away.
func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return 0, fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.DeleteFrom("sessions")
	s.Where(s.LessEqualThan("expires_at", now))

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}

	return result.RowsAffected()
}
