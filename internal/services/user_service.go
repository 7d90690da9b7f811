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

type UserService interface {
	// Create adds a user to the acting admin's own tenant.
	Create(ctx context.Context, tenantID uuid.UUID, req models.CreateUserRequest) (*models.User, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error)
	Get(ctx context.Context, tenantID, userID uuid.UUID) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	now      func() time.Time
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo, now: time.Now}
}

// newUser validates the input and hashes the password.
func newUser(tenantID uuid.UUID, req models.CreateUserRequest, now time.Time) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)

	if missing := common.MissingFields(map[string]string{
		"username": req.Username,
		"password": req.Password,
		"name":     req.Name,
	}, "username", "password", "name"); len(missing) > 0 {
		return nil, common.NewValidationError("All fields are required", missing...)
	}
	if len(req.Password) < minPasswordLength {
		return nil, common.NewValidationError("Password must be at least 6 characters", "password")
	}
	if req.Role == "" {
		req.Role = models.RoleStaff
	}
	if !req.Role.IsValid() {
		return nil, common.NewValidationError("Role must be admin or staff", "role")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         req.Role,
		CreatedAt:    now,
	}, nil
}

func (s *userService) Create(ctx context.Context, tenantID uuid.UUID, req models.CreateUserRequest) (*models.User, error) {
	user, err := newUser(tenantID, req, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error) {
	return s.userRepo.List(ctx, tenantID)
}

func (s *userService) Get(ctx context.Context, tenantID, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, tenantID, userID)
}
