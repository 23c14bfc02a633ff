package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/losol/eventuras-idp/internal/commands"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"

	"github.com/google/uuid"
)

type CreateOrganizationRequestDto struct {
	Slug        string `json:"slug" validate:"required,min=1,max=255"`
	DisplayName string `json:"displayName" validate:"required,min=1,max=255"`
}

type CreateOrganizationResponseDto struct {
	Id uuid.UUID `json:"id"`
}

// CreateOrganization creates a new organization.
func CreateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var dto CreateOrganizationRequestDto
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

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*commands.CreateOrganizationResponse](ctx, m, commands.CreateOrganization{
		Slug:        dto.Slug,
		DisplayName: dto.DisplayName,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	err = json.NewEncoder(w).Encode(CreateOrganizationResponseDto{
		Id: response.Id,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}
