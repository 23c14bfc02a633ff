package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/losol/eventuras-idp/internal/commands"
	"github.com/losol/eventuras-idp/internal/repositories"
	repoMocks "github.com/losol/eventuras-idp/internal/repositories/mocks"
	"github.com/losol/eventuras-idp/internal/services"
	serviceMocks "github.com/losol/eventuras-idp/internal/services/mocks"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCreateTenantRejectsInvalidBody(t *testing.T) {
	// arrange
	ctx := newFlowContext(t, testTenant(), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/tenants", strings.NewReader(`{"issuerUrl":"not a url"}`)).WithContext(ctx)

	// act
	CreateTenant(w, r)

	// assert
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTenantRejectsUnknownEnvironment(t *testing.T) {
	// arrange
	ctx := newFlowContext(t, testTenant(), nil)

	body := `{"organizationSlug":"losol","issuerUrl":"https://id.example.org","hostAlias":"id.example.org","environment":"qa"}`

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/tenants", strings.NewReader(body)).WithContext(ctx)

	// act
	CreateTenant(w, r)

	// assert
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTenantRejectsInvalidId(t *testing.T) {
	// arrange
	ctx := newFlowContext(t, testTenant(), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/tenants/not-a-uuid", nil).WithContext(ctx)
	r = mux.SetURLVars(r, map[string]string{"tenantId": "not-a-uuid"})

	// act
	GetTenant(w, r)

	// assert
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRotateTenantKeyReturnsNewKid(t *testing.T) {
	// arrange
	ctrl := gomock.NewController(t)

	tenant := repositories.NewTenant(uuid.New(), "https://id.example.org", "id.example.org", repositories.EnvironmentProduction)
	tenant.Mock(time.Now())

	tenantRepository := repoMocks.NewMockTenantRepository(ctrl)
	tenantRepository.EXPECT().Single(gomock.Any(), gomock.Any()).Return(tenant, nil)

	newKid := uuid.NewString()
	keyService := serviceMocks.NewMockKeyService(ctrl)
	keyService.EXPECT().Rotate(gomock.Any(), tenant.Id()).Return(newKid, nil)

	m := mediatr.NewMediator()
	mediatr.RegisterHandler(m, commands.HandleRotateTenantKey)

	ctx := newFlowContext(t, testTenant(), func(dc *ioc.DependencyCollection) {
		ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) mediatr.Mediator {
			return m
		})
		ioc.RegisterTransient(dc, func(_ *ioc.DependencyProvider) repositories.TenantRepository {
			return tenantRepository
		})
		ioc.RegisterTransient(dc, func(_ *ioc.DependencyProvider) services.KeyService {
			return keyService
		})
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/tenants/"+tenant.Id().String()+"/rotate-key", nil).WithContext(ctx)
	r = mux.SetURLVars(r, map[string]string{"tenantId": tenant.Id().String()})

	// act
	RotateTenantKey(w, r)

	// assert
	require.Equal(t, http.StatusOK, w.Code)

	var dto RotateTenantKeyResponseDto
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	assert.Equal(t, newKid, dto.Kid)
}
