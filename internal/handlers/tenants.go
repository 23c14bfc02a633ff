package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/losol/eventuras-idp/internal/commands"
	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/queries"
	"github.com/losol/eventuras-idp/internal/repositories"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type CreateTenantRequestDto struct {
	OrganizationSlug string `json:"organizationSlug" validate:"required,min=1,max=255"`
	IssuerUrl        string `json:"issuerUrl" validate:"required,url"`
	HostAlias        string `json:"hostAlias" validate:"required,hostname"`
	Environment      string `json:"environment" validate:"required"`
	IsPrimary        bool   `json:"isPrimary"`
	SigningAlgorithm string `json:"signingAlgorithm"`
}

type CreateTenantResponseDto struct {
	Id uuid.UUID `json:"id"`
}

// CreateTenant creates a new tenant including its first signing key.
func CreateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var dto CreateTenantRequestDto
	err := json.NewDecoder(r.Body).Decode(&dto)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	err = utils.ValidateDto(dto)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	environment, err := repositories.ParseEnvironment(dto.Environment)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	signingAlgorithm := config.SigningAlgorithm(dto.SigningAlgorithm)
	if signingAlgorithm != "" && !config.IsSupportedSigningAlgorithm(signingAlgorithm) {
		utils.HandleHttpError(w, fmt.Errorf("unsupported signing algorithm %q: %w", dto.SigningAlgorithm, utils.ErrHttpBadRequest))
		return
	}

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*commands.CreateTenantResponse](ctx, m, commands.CreateTenant{
		OrganizationSlug: dto.OrganizationSlug,
		IssuerUrl:        dto.IssuerUrl,
		HostAlias:        dto.HostAlias,
		Environment:      environment,
		IsPrimary:        dto.IsPrimary,
		SigningAlgorithm: signingAlgorithm,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	err = json.NewEncoder(w).Encode(CreateTenantResponseDto{
		Id: response.Id,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}

type GetTenantResponseDto struct {
	Id               uuid.UUID `json:"id"`
	OrganizationId   uuid.UUID `json:"organizationId"`
	IssuerUrl        string    `json:"issuerUrl"`
	HostAlias        string    `json:"hostAlias"`
	Environment      string    `json:"environment"`
	IsPrimary        bool      `json:"isPrimary"`
	Active           bool      `json:"active"`
	SigningAlgorithm string    `json:"signingAlgorithm"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// GetTenant returns a single tenant by id.
func GetTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantId, err := parseTenantId(r)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*queries.GetTenantResponse](ctx, m, queries.GetTenant{
		TenantId: tenantId,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err = json.NewEncoder(w).Encode(GetTenantResponseDto{
		Id:               response.Id,
		OrganizationId:   response.OrganizationId,
		IssuerUrl:        response.IssuerUrl,
		HostAlias:        response.HostAlias,
		Environment:      string(response.Environment),
		IsPrimary:        response.IsPrimary,
		Active:           response.Active,
		SigningAlgorithm: string(response.SigningAlgorithm),
		CreatedAt:        response.CreatedAt,
		UpdatedAt:        response.UpdatedAt,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}

type ListTenantsResponseItemDto struct {
	Id          uuid.UUID `json:"id"`
	IssuerUrl   string    `json:"issuerUrl"`
	HostAlias   string    `json:"hostAlias"`
	Environment string    `json:"environment"`
	IsPrimary   bool      `json:"isPrimary"`
	Active      bool      `json:"active"`
}

type ListTenantsResponseDto struct {
	Items []ListTenantsResponseItemDto `json:"items"`
}

// ListTenants lists tenants, optionally filtered by organization slug.
func ListTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*queries.ListTenantsResponse](ctx, m, queries.ListTenants{
		OrganizationSlug: r.URL.Query().Get("organization"),
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	items := make([]ListTenantsResponseItemDto, 0, len(response.Items))
	for _, item := range response.Items {
		items = append(items, ListTenantsResponseItemDto{
			Id:          item.Id,
			IssuerUrl:   item.IssuerUrl,
			HostAlias:   item.HostAlias,
			Environment: string(item.Environment),
			IsPrimary:   item.IsPrimary,
			Active:      item.Active,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err = json.NewEncoder(w).Encode(ListTenantsResponseDto{
		Items: items,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}

type RotateTenantKeyResponseDto struct {
	Kid string `json:"kid"`
}

// RotateTenantKey triggers a signing key rotation for a tenant.
func RotateTenantKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantId, err := parseTenantId(r)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*commands.RotateTenantKeyResponse](ctx, m, commands.RotateTenantKey{
		TenantId: tenantId,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err = json.NewEncoder(w).Encode(RotateTenantKeyResponseDto{
		Kid: response.Kid,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}

// DeactivateTenant deactivates a tenant. Issued tokens keep verifying
// until they expire, new flows and issuance stop immediately.
func DeactivateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantId, err := parseTenantId(r)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	_, err = mediatr.Send[*commands.DeactivateTenantResponse](ctx, m, commands.DeactivateTenant{
		TenantId: tenantId,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseTenantId(r *http.Request) (uuid.UUID, error) {
	vars := mux.Vars(r)

	tenantId, err := uuid.Parse(vars["tenantId"])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid tenant id: %w", utils.ErrHttpBadRequest)
	}

	return tenantId, nil
}
