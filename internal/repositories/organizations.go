package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/losol/eventuras-idp/internal/database"
	"github.com/losol/eventuras-idp/internal/logging"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
)

// Organization owns tenants. Organizations are deactivated, never hard
// deleted, while tenants still reference them.
type Organization struct {
	ModelBase

	slug        string
	displayName string
	active      bool
}

func NewOrganization(slug string, displayName string) *Organization {
	return &Organization{
		ModelBase:   NewModelBase(),
		slug:        slug,
		displayName: displayName,
		active:      true,
	}
}

func (m *Organization) getScanPointers() []any {
	return []any{
		&m.id,
		&m.auditCreatedAt,
		&m.auditUpdatedAt,
		&m.version,
		&m.slug,
		&m.displayName,
		&m.active,
	}
}

func (m *Organization) Slug() string {
	return m.slug
}

func (m *Organization) DisplayName() string {
	return m.displayName
}

func (m *Organization) SetDisplayName(displayName string) {
	m.displayName = displayName
	m.TrackChange("display_name", displayName)
}

func (m *Organization) Active() bool {
	return m.active
}

func (m *Organization) SetActive(active bool) {
	m.active = active
	m.TrackChange("active", active)
}

type OrganizationFilter struct {
	id   *uuid.UUID
	slug *string
}

func NewOrganizationFilter() OrganizationFilter {
	return OrganizationFilter{}
}

func (f OrganizationFilter) Clone() OrganizationFilter {
	return f
}

func (f OrganizationFilter) Id(id uuid.UUID) OrganizationFilter {
	filter := f.Clone()
	filter.id = &id
	return filter
}

func (f OrganizationFilter) HasId() bool {
	return f.id != nil
}

func (f OrganizationFilter) GetId() uuid.UUID {
	return utils.ZeroIfNil(f.id)
}

func (f OrganizationFilter) Slug(slug string) OrganizationFilter {
	filter := f.Clone()
	filter.slug = &slug
	return filter
}

func (f OrganizationFilter) HasSlug() bool {
	return f.slug != nil
}

func (f OrganizationFilter) GetSlug() string {
	return utils.ZeroIfNil(f.slug)
}

//go:generate mockgen -destination=./mocks/organization_repository.go -package=mocks github.com/losol/eventuras-idp/internal/repositories OrganizationRepository
type OrganizationRepository interface {
	Single(ctx context.Context, filter OrganizationFilter) (*Organization, error)
	First(ctx context.Context, filter OrganizationFilter) (*Organization, error)
	Insert(ctx context.Context, organization *Organization) error
	Update(ctx context.Context, organization *Organization) error
}

type organizationRepository struct {
}

func NewOrganizationRepository() OrganizationRepository {
	return &organizationRepository{}
}

func (r *organizationRepository) selectQuery(filter OrganizationFilter) *sqlbuilder.SelectBuilder {
	s := sqlbuilder.Select(
		"id",
		"audit_created_at",
		"audit_updated_at",
		"version",
		"slug",
		"display_name",
		"active",
	).From("organizations")

	if filter.id != nil {
		s.Where(s.Equal("id", filter.id))
	}

	if filter.slug != nil {
		s.Where(s.Equal("slug", filter.slug))
	}

	return s
}

func (r *organizationRepository) Single(ctx context.Context, filter OrganizationFilter) (*Organization, error) {
	result, err := r.First(ctx, filter)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, utils.ErrOrganizationNotFound
	}

	return result, nil
}

func (r *organizationRepository) First(ctx context.Context, filter OrganizationFilter) (*Organization, error) {
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

	organization := Organization{
		ModelBase: NewModelBase(),
	}
	err = row.Scan(organization.getScanPointers()...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil

	case err != nil:
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	return &organization, nil
}

func (r *organizationRepository) Insert(ctx context.Context, organization *Organization) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.InsertInto("organizations").
		Cols(
			"slug",
			"display_name",
			"active",
		).
		Values(
			organization.slug,
			organization.displayName,
			organization.active,
		).Returning("id", "audit_created_at", "audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(&organization.id, &organization.auditCreatedAt, &organization.auditUpdatedAt, &organization.version)
	if err != nil {
		return fmt.Errorf("scanning row: %w", err)
	}

	organization.ClearChanges()
	return nil
}

func (r *organizationRepository) Update(ctx context.Context, organization *Organization) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.Update("organizations")
	for fieldName, value := range organization.Changes() {
		s.SetMore(s.Assign(fieldName, value))
	}
	s.SetMore("audit_updated_at = now()")
	s.SetMore(s.Assign("version", organization.version+1))

	s.Where(s.Equal("id", organization.id))
	s.Where(s.Equal("version", organization.version))
	s.Returning("audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(&organization.auditUpdatedAt, &organization.version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("updating organization: %w", ErrVersionMismatch)
	case err != nil:
		return fmt.Errorf("scanning row: %w", err)
	}

	organization.ClearChanges()
	return nil
}
