package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/losol/eventuras-idp/internal/caching"
	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/database"
	"github.com/losol/eventuras-idp/internal/logging"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
)

// Environment has the following constants: EnvironmentProduction,
// EnvironmentStaging, EnvironmentDevelopment
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentStaging     Environment = "staging"
	EnvironmentDevelopment Environment = "development"
)

func ParseEnvironment(value string) (Environment, error) {
	switch Environment(value) {
	case EnvironmentProduction, EnvironmentStaging, EnvironmentDevelopment:
		return Environment(value), nil
	default:
		return "", fmt.Errorf("unknown environment %q: %w", value, utils.ErrHttpBadRequest)
	}
}

// ErrDuplicateTenantMatch means the unique indexes on issuer url or host
// alias were violated out of band. That is a configuration error, never
// an ambiguity to resolve by picking one.
var ErrDuplicateTenantMatch = errors.New("duplicate tenant match")

// Tenant is the unit of issuer identity. Every signed token's iss claim
// must equal exactly one tenant's issuer url.
type Tenant struct {
	ModelBase

	organizationId uuid.UUID
	issuerUrl      string
	hostAlias      string
	environment    Environment
	isPrimary      bool
	active         bool

	signingAlgorithm config.SigningAlgorithm
}

func NewTenant(organizationId uuid.UUID, issuerUrl string, hostAlias string, environment Environment) *Tenant {
	return &Tenant{
		ModelBase:        NewModelBase(),
		organizationId:   organizationId,
		issuerUrl:        issuerUrl,
		hostAlias:        hostAlias,
		environment:      environment,
		active:           true,
		signingAlgorithm: config.SigningAlgorithmEdDSA,
	}
}

func (m *Tenant) getScanPointers() []any {
	return []any{
		&m.id,
		&m.auditCreatedAt,
		&m.auditUpdatedAt,
		&m.version,
		&m.organizationId,
		&m.issuerUrl,
		&m.hostAlias,
		&m.environment,
		&m.isPrimary,
		&m.active,
		&m.signingAlgorithm,
	}
}

func (m *Tenant) OrganizationId() uuid.UUID {
	return m.organizationId
}

func (m *Tenant) IssuerUrl() string {
	return m.issuerUrl
}

func (m *Tenant) HostAlias() string {
	return m.hostAlias
}

func (m *Tenant) Environment() Environment {
	return m.environment
}

func (m *Tenant) IsPrimary() bool {
	return m.isPrimary
}

func (m *Tenant) SetIsPrimary(isPrimary bool) {
	m.isPrimary = isPrimary
	m.TrackChange("is_primary", isPrimary)
}

func (m *Tenant) Active() bool {
	return m.active
}

func (m *Tenant) SetActive(active bool) {
	m.active = active
	m.TrackChange("active", active)
}

func (m *Tenant) SigningAlgorithm() config.SigningAlgorithm {
	return m.signingAlgorithm
}

func (m *Tenant) SetSigningAlgorithm(signingAlgorithm config.SigningAlgorithm) {
	m.signingAlgorithm = signingAlgorithm
	m.TrackChange("signing_algorithm", signingAlgorithm)
}

type TenantFilter struct {
	id             *uuid.UUID
	organizationId *uuid.UUID
	issuerUrl      *string
	hostAlias      *string
	isPrimary      *bool
	onlyActive     bool
}

type tenantFilterCacheKey struct {
	id             uuid.UUID
	organizationId uuid.UUID
	issuerUrl      string
	hostAlias      string
	isPrimary      bool
	onlyActive     bool
}

func NewTenantFilter() TenantFilter {
	return TenantFilter{}
}

func (f TenantFilter) getCacheKey() tenantFilterCacheKey {
	return tenantFilterCacheKey{
		id:             utils.ZeroIfNil(f.id),
		organizationId: utils.ZeroIfNil(f.organizationId),
		issuerUrl:      utils.ZeroIfNil(f.issuerUrl),
		hostAlias:      utils.ZeroIfNil(f.hostAlias),
		isPrimary:      utils.ZeroIfNil(f.isPrimary),
		onlyActive:     f.onlyActive,
	}
}

func (f TenantFilter) Clone() TenantFilter {
	return f
}

func (f TenantFilter) Id(id uuid.UUID) TenantFilter {
	filter := f.Clone()
	filter.id = &id
	return filter
}

func (f TenantFilter) HasId() bool {
	return f.id != nil
}

func (f TenantFilter) GetId() uuid.UUID {
	return utils.ZeroIfNil(f.id)
}

func (f TenantFilter) OrganizationId(organizationId uuid.UUID) TenantFilter {
	filter := f.Clone()
	filter.organizationId = &organizationId
	return filter
}

func (f TenantFilter) HasOrganizationId() bool {
	return f.organizationId != nil
}

func (f TenantFilter) GetOrganizationId() uuid.UUID {
	return utils.ZeroIfNil(f.organizationId)
}

func (f TenantFilter) IssuerUrl(issuerUrl string) TenantFilter {
	filter := f.Clone()
	filter.issuerUrl = &issuerUrl
	return filter
}

func (f TenantFilter) HasIssuerUrl() bool {
	return f.issuerUrl != nil
}

func (f TenantFilter) GetIssuerUrl() string {
	return utils.ZeroIfNil(f.issuerUrl)
}

func (f TenantFilter) HostAlias(hostAlias string) TenantFilter {
	filter := f.Clone()
	filter.hostAlias = &hostAlias
	return filter
}

func (f TenantFilter) HasHostAlias() bool {
	return f.hostAlias != nil
}

func (f TenantFilter) GetHostAlias() string {
	return utils.ZeroIfNil(f.hostAlias)
}

func (f TenantFilter) IsPrimary(isPrimary bool) TenantFilter {
	filter := f.Clone()
	filter.isPrimary = &isPrimary
	return filter
}

func (f TenantFilter) GetIsPrimary() bool {
	return utils.ZeroIfNil(f.isPrimary)
}

func (f TenantFilter) OnlyActive() TenantFilter {
	filter := f.Clone()
	filter.onlyActive = true
	return filter
}

func (f TenantFilter) GetOnlyActive() bool {
	return f.onlyActive
}

//go:generate mockgen -destination=./mocks/tenant_repository.go -package=mocks github.com/losol/eventuras-idp/internal/repositories TenantRepository
type TenantRepository interface {
	Single(ctx context.Context, filter TenantFilter) (*Tenant, error)
	First(ctx context.Context, filter TenantFilter) (*Tenant, error)
	List(ctx context.Context, filter TenantFilter) ([]*Tenant, error)
	Insert(ctx context.Context, tenant *Tenant) error
	Update(ctx context.Context, tenant *Tenant) error
}

type tenantCache caching.Cache[tenantFilterCacheKey, *Tenant]

type tenantRepository struct {
	cache tenantCache
}

func NewTenantRepository() TenantRepository {
	return &tenantRepository{
		cache: caching.NewMemoryCache[tenantFilterCacheKey, *Tenant](),
	}
}

func (r *tenantRepository) selectQuery(filter TenantFilter) *sqlbuilder.SelectBuilder {
	s := sqlbuilder.Select(
		"id",
		"audit_created_at",
		"audit_updated_at",
		"version",
		"organization_id",
		"issuer_url",
		"host_alias",
		"environment",
		"is_primary",
		"active",
		"signing_algorithm",
	).From("tenants")

	if filter.id != nil {
		s.Where(s.Equal("id", filter.id))
	}

	if filter.organizationId != nil {
		s.Where(s.Equal("organization_id", filter.organizationId))
	}

	if filter.issuerUrl != nil {
		s.Where(s.Equal("issuer_url", filter.issuerUrl))
	}

	if filter.hostAlias != nil {
		s.Where(s.Equal("host_alias", filter.hostAlias))
	}

	if filter.isPrimary != nil {
		s.Where(s.Equal("is_primary", filter.isPrimary))
	}

	if filter.onlyActive {
		s.Where(s.Equal("active", true))
	}

	return s
}

// Single returns exactly one matching tenant. Two matches mean the
// uniqueness invariant was broken and the lookup fails closed with
// ErrDuplicateTenantMatch instead of picking either row.
func (r *tenantRepository) Single(ctx context.Context, filter TenantFilter) (*Tenant, error) {
	tenants, err := r.list(ctx, filter, 2)
	if err != nil {
		return nil, err
	}

	switch len(tenants) {
	case 0:
		return nil, utils.ErrTenantNotFound

	case 1:
		return tenants[0], nil

	default:
		return nil, ErrDuplicateTenantMatch
	}
}

func (r *tenantRepository) First(ctx context.Context, filter TenantFilter) (*Tenant, error) {
	cacheKey := filter.getCacheKey()
	cachedValue, ok := r.cache.TryGet(cacheKey)
	if ok {
		logging.Logger.Debug("cache hit for tenant")
		return cachedValue, nil
	}

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

	tenant := Tenant{
		ModelBase: NewModelBase(),
	}
	err = row.Scan(tenant.getScanPointers()...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil

	case err != nil:
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	result := &tenant
	r.cache.Put(cacheKey, result)

	return result, nil
}

func (r *tenantRepository) List(ctx context.Context, filter TenantFilter) ([]*Tenant, error) {
	return r.list(ctx, filter, 0)
}

func (r *tenantRepository) list(ctx context.Context, filter TenantFilter, limit int) ([]*Tenant, error) {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return nil, fmt.Errorf("failed to open tx: %w", err)
	}

	s := r.selectQuery(filter)
	if limit > 0 {
		s.Limit(limit)
	}

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tenants: %w", err)
	}
	defer utils.PanicOnError(rows.Close, "failed to close rows")

	var tenants []*Tenant
	for rows.Next() {
		tenant := Tenant{
			ModelBase: NewModelBase(),
		}
		err = rows.Scan(tenant.getScanPointers()...)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		tenants = append(tenants, &tenant)
	}

	return tenants, rows.Err()
}

func (r *tenantRepository) Insert(ctx context.Context, tenant *Tenant) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.InsertInto("tenants").
		Cols(
			"organization_id",
			"issuer_url",
			"host_alias",
			"environment",
			"is_primary",
			"active",
			"signing_algorithm",
		).
		Values(
			tenant.organizationId,
			tenant.issuerUrl,
			tenant.hostAlias,
			tenant.environment,
			tenant.isPrimary,
			tenant.active,
			tenant.signingAlgorithm,
		).Returning("id", "audit_created_at", "audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(&tenant.id, &tenant.auditCreatedAt, &tenant.auditUpdatedAt, &tenant.version)
	if err != nil {
		return fmt.Errorf("scanning row: %w", err)
	}

	r.cache.Clear()
	tenant.ClearChanges()
	return nil
}

func (r *tenantRepository) Update(ctx context.Context, tenant *Tenant) error {
	scope := middlewares.GetScope(ctx)
	dbService := ioc.GetDependency[database.DbService](scope)

	tx, err := dbService.GetTx()
	if err != nil {
		return fmt.Errorf("failed to open tx: %w", err)
	}

	s := sqlbuilder.Update("tenants")
	for fieldName, value := range tenant.Changes() {
		s.SetMore(s.Assign(fieldName, value))
	}
	s.SetMore("audit_updated_at = now()")
	s.SetMore(s.Assign("version", tenant.version+1))

	s.Where(s.Equal("id", tenant.id))
	s.Where(s.Equal("version", tenant.version))
	s.Returning("audit_updated_at", "version")

	query, args := s.Build()
	logging.Logger.Debug("executing sql: ", query)
	row := tx.QueryRowContext(ctx, query, args...)

	err = row.Scan(&tenant.auditUpdatedAt, &tenant.version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("updating tenant: %w", ErrVersionMismatch)
	case err != nil:
		return fmt.Errorf("scanning row: %w", err)
	}

	r.cache.Clear()
	tenant.ClearChanges()
	return nil
}
