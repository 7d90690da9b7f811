package services

import (
	"context"
	"strings"
	"time"

	"mandirdaan/internal/common"
	"mandirdaan/internal/models"
	"mandirdaan/internal/repositories"

	"github.com/google/uuid"
)

type TenantService interface {
	// Register creates a mandir and, when credentials are supplied, its
	// first admin in the same transaction.
	Register(ctx context.Context, req models.RegisterTenantRequest) (*models.RegisterTenantResult, error)
	List(ctx context.Context) ([]models.TenantSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	now        func() time.Time
}

func NewTenantService(tenantRepo repositories.TenantRepository) TenantService {
	return &tenantService{tenantRepo: tenantRepo, now: time.Now}
}

func (s *tenantService) Register(ctx context.Context, req models.RegisterTenantRequest) (*models.RegisterTenantResult, error) {
	name := strings.TrimSpace(req.DisplayName())
	phone := strings.TrimSpace(req.ContactPhone())
	if missing := common.MissingFields(map[string]string{"name": name, "phone": phone}, "name", "phone"); len(missing) > 0 {
		return nil, common.NewValidationError("Mandir Name and Phone are required", missing...)
	}

	now := s.now()
	tenant := &models.Tenant{
		ID:            uuid.New(),
		Name:          name,
		PhoneNumber:   phone,
		Email:         common.StringPtr(common.SafeString(req.Email)),
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Address:       strings.TrimSpace(req.Address),
		CreatedAt:     now,
	}

	if !req.WantsAdmin() {
		if err := s.tenantRepo.Create(ctx, tenant); err != nil {
			return nil, err
		}
		return &models.RegisterTenantResult{Tenant: tenant}, nil
	}

	adminName := strings.TrimSpace(req.AdminName)
	if adminName == "" {
		adminName = tenant.ContactPerson
	}
	if adminName == "" {
		adminName = req.Username
	}
	admin, err := newUser(tenant.ID, models.CreateUserRequest{
		Username: req.Username,
		Password: req.Password,
		Name:     adminName,
		Role:     models.RoleAdmin,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := s.tenantRepo.CreateWithAdmin(ctx, tenant, admin); err != nil {
		return nil, err
	}
	return &models.RegisterTenantResult{Tenant: tenant, Admin: admin}, nil
}

func (s *tenantService) List(ctx context.Context) ([]models.TenantSummary, error) {
	return s.tenantRepo.List(ctx)
}

func (s *tenantService) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}
