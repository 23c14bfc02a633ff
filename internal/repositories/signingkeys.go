package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/database"
	"github.com/losol/eventuras-idp/internal/logging"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
)

// KeyStatus has the following constants: KeyStatusActive, KeyStatusGrace
type KeyStatus string

const (
	// KeyStatusActive keys sign new tokens and appear in the JWKS.
	KeyStatusActive KeyStatus = "active"
	// KeyStatusGrace keys no longer sign but still verify and stay in
	// the JWKS until expires_at passes.
	KeyStatusGrace KeyStatus = "grace"
)

// SigningKey holds one tenant key pair. The private key bytes are
// sealed by the key protector and never stored in the clear.
type SigningKey struct {
	ModelBase

	tenantId  uuid.UUID
	kid       string
	algorithm config.SigningAlgorithm
	status    KeyStatus

	activatesAt time.Time
	expiresAt   *time.Time

	encryptedPrivateKey []byte
	publicKey           []byte
}

func NewSigningKey(
	tenantId uuid.UUID,
	kid string,
	algorithm config.SigningAlgorithm,
	activatesAt time.Time,
	encryptedPrivateKey []byte,
	publicKey []byte,
) *SigningKey {
	return &SigningKey{
		ModelBase:           NewModelBase(),
		tenantId:            tenantId,
		kid:                 kid,
		algorithm:           algorithm,
		status:              KeyStatusActive,
		activatesAt:         activatesAt,
		encryptedPrivateKey: encryptedPrivateKey,
		publicKey:           publicKey,
	}
}

func (m *SigningKey) getScanPointers() []any {
	return []any{
		&m.id,
		&m.auditCreatedAt,
		&m.auditUpdatedAt,
		&m.version,
		&m.tenantId,
		&m.kid,
		&m.algorithm,
		&m.status,
		&m.activatesAt,
		&m.expiresAt,
		&m.encryptedPrivateKey,
		&m.publicKey,
	}
}

func (m *SigningKey) TenantId() uuid.UUID {
	return m.tenantId
}

func (m *SigningKey) Kid() string {
	return m.kid
}

func (m *SigningKey) Algorithm() config.SigningAlgorithm {
	return m.algorithm
}

func (m *SigningKey) Status() KeyStatus {
	return m.status
}

func (m *SigningKey) ActivatesAt() time.Time {
	return m.activatesAt
}

func (m *SigningKey) ExpiresAt() *time.Time {
	return m.expiresAt
}

func (m *SigningKey) EncryptedPrivateKey() []byte {
	return m.encryptedPrivateKey
}

func (m *SigningKey) PublicKey() []byte {
	return m.publicKey
}

// Demote moves an active key into its grace window. Verification keeps
// working until expiresAt, signing stops immediately.
func (m *SigningKey) Demote(expiresAt time.Time) {
	m.status = KeyStatusGrace
	m.TrackChange("status", KeyStatusGrace)
	m.expiresAt = &expiresAt
	m.TrackChange("expires_at", expiresAt)
}

type SigningKeyFilter struct {
	id        *uuid.UUID
	tenantId  *uuid.UUID
	kid       *string
	status    *KeyStatus
	unexpired *time.Time
}

func NewSigningKeyFilter() SigningKeyFilter {
	return SigningKeyFilter{}
}

func (f SigningKeyFilter) Clone() SigningKeyFilter {
	return f
}

func (f SigningKeyFilter) Id(id uuid.UUID) SigningKeyFilter {
	filter := f.Clone()
	filter.id = &id
	return filter
}

func (f SigningKeyFilter) GetId() uuid.UUID {
	return utils.ZeroIfNil(f.id)
}

func (f SigningKeyFilter) TenantId(tenantId uuid.UUID) SigningKeyFilter {
	filter := f.Clone()
	filter.tenantId = &tenantId
	return filter
}

func (f SigningKeyFilter) GetTenantId() uuid.UUID {
	return utils.ZeroIfNil(f.tenantId)
}

func (f SigningKeyFilter) Kid(kid string) SigningKeyFilter {
	filter := f.Clone()
	filter.kid = &kid
	return filter
}

func (f SigningKeyFilter) HasKid() bool {
	return f.kid != nil
}

func (f SigningKeyFilter) GetKid() string {
	return utils.ZeroIfNil(f.kid)
}

func (f SigningKeyFilter) Status(status KeyStatus) SigningKeyFilter {
	filter := f.Clone()
	filter.status = &status
	return filter
}

func (f SigningKeyFilter) HasStatus() bool {
	return f.status != nil
}

func (f SigningKeyFilter) GetStatus() KeyStatus {
	return utils.ZeroIfNil(f.status)
}

// UnexpiredAt keeps keys whose grace window has not passed at the given
// moment. Keys without an expiry always match.
func (f SigningKeyFilter) UnexpiredAt(now time.Time) SigningKeyFilter {
	filter := f.Clone()
	filter.unexpired = &now
	return filter
}

//go:generate mockgen -destination=./mocks/signing_key_repository.go -package=mocks github.com/losol/eventuras-idp/internal/repositories SigningKeyRepository
type SigningKeyRepository interface {
	Single(ctx context.Context, filter SigningKeyFilter) (*SigningKey, error)
	First(ctx context.Context, filter SigningKeyFilter) (*SigningKey, error)
	List(ctx context.Context, filter SigningKeyFilter) ([]*SigningKey, error)
	Insert(ctx context.Context, signingKey *SigningKey) error
	Update(ctx context.Context, signingKey *SigningKey) error
	Delete(ctx context.Context, signingKey *SigningKey) error
}

type signingKeyRepository struct{}

func NewSigningKeyRepository() SigningKeyRepository {
	return &signingKeyRepository{}
}

func (r *signingKeyRepository) selectQuery(filter SigningKeyFilter) *sqlbuilder.SelectBuilder {
	s := sqlbuilder.Select(
		"id",
		"audit_created_at",
		"audit_updated_at",
		"version",
		"tenant_id",
		"kid",
		"algorithm",
		"status",
		"activates_at",
		"expires_at",
		"encrypted_private_key",
		"public_key",
	).From("signing_keys")

	if filter.id != nil {
		s.Where(s.Equal("id", filter.id))
	}

	if filter.tenantId != nil {
		s.Where(s.Equal("tenant_id", filter.tenantId))
	}

	if filter.kid != nil {
		s.Where(s.Equal("kid", filter.kid))
	}

	if filter.status != nil {
		s.Where(s.Equal("status", filter.status))
	}

	if filter.unexpired != nil {
		s.Where(s.Or(
			s.IsNull("expires_at"),
			s.GreaterThan("expires_at", filter.unexpired),
		))
	}

	return s
}

func (r *signingKeyRepository) Single(ctx context.Context, filter SigningKeyFilter) (*SigningKey, error) {
	signingKey, err := r.First(ctx, filter)
	if err != nil {
		return nil, err
	}
	if signingKey == nil {
		return nil, utils.ErrSigningKeyNotFound
	}
	return signingKey, nil
}

func (r *signingKeyRepository) First(ctx context.Context, filter SigningKeyFilter) (*SigningKey, error) {
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

	signingKey := SigningKey{
		ModelBase: NewModelBase(),
	}
	err = row.Scan(signingKey.getScanPointers()...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil

	case err != nil:
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	return &signingKey, nil
}

func (r *signingKeyRepository) List(ctx context.Context, filter SigningKeyFilter) ([]*SigningKey, error) {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return nil, fmt.Errorf("failed to open tx: %w", err)
	}

	s := r.selectQuery(filter)
	s.OrderBy("activates_at").Desc()

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying signing keys: %w", err)
	}
	defer utils.PanicOnError(rows.Close, "failed to close rows")

	var signingKeys []*SigningKey
	for rows.Next() {
		signingKey := SigningKey{
			ModelBase: NewModelBase(),
		}
		err = rows.Scan(signingKey.getScanPointers()...)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		signingKeys = append(signingKeys, &signingKey)
	}

	return signingKeys, rows.Err()
}

func (r *signingKeyRepository) Insert(ctx context.Context, signingKey *SigningKey) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.InsertInto("signing_keys").
		Cols(
			"tenant_id",
			"kid",
			"algorithm",
			"status",
			"activates_at",
			"expires_at",
			"encrypted_private_key",
			"public_key",
		).
		Values(
			signingKey.tenantId,
			signingKey.kid,
			signingKey.algorithm,
			signingKey.status,
			signingKey.activatesAt,
			signingKey.expiresAt,
			signingKey.encryptedPrivateKey,
			signingKey.publicKey,
		).Returning("id", "audit_created_at", "audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(&signingKey.id, &signingKey.auditCreatedAt, &signingKey.auditUpdatedAt, &signingKey.version)
	if err != nil {
		return fmt.Errorf("scanning row: %w", err)
	}

	signingKey.ClearChanges()
	return nil
}

func (r *signingKeyRepository) Update(ctx context.Context, signingKey *SigningKey) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.Update("signing_keys")
	for fieldName, value := range signingKey.Changes() {
		s.SetMore(s.Assign(fieldName, value))
	}
	s.SetMore("audit_updated_at = now()")
	s.SetMore(s.Assign("version", signingKey.version+1))

	s.Where(s.Equal("id", signingKey.id))
	s.Where(s.Equal("version", signingKey.version))
	s.Returning("audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(&signingKey.auditUpdatedAt, &signingKey.version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("updating signing key: %w", ErrVersionMismatch)
	case err != nil:
		return fmt.Errorf("scanning row: %w", err)
	}

	signingKey.ClearChanges()
	return nil
}

func (r *signingKeyRepository) Delete(ctx context.Context, signingKey *SigningKey) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.DeleteFrom("signing_keys")
	s.Where(s.Equal("id", signingKey.id))

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting signing key: %w", err)
	}

	return nil
}
