package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"mandirdaan/internal/caching"
	"mandirdaan/internal/common"
	"mandirdaan/internal/models"
	"mandirdaan/internal/repositories"
	"mandirdaan/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenTTL           = 24 * time.Hour
	tokenIssuer        = "mandirdaan"
	loginAttemptLimit  = 10
	loginAttemptWindow = 15 * time.Minute
	minPasswordLength  = 6
)

// AuthService issues and validates access tokens.
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*models.Claims, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	cacheSvc  caching.CacheService
	jwtSecret []byte
	logger    *logger.Logger
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo repositories.UserRepository, cacheSvc caching.CacheService, jwtSecret string, log *logger.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		cacheSvc:  cacheSvc,
		jwtSecret: []byte(jwtSecret),
		logger:    log,
		now:       time.Now,
	}
}

func invalidCredentials() error {
	return common.NewError(common.ErrInvalidCredentials, "Invalid credentials")
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummy burns the same bcrypt work as a real check so an unknown
// username takes as long to reject as a wrong password.
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("mandirdaan-dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	// Usernames are stored trimmed.
	req.Username = strings.TrimSpace(req.Username)
	if missing := common.MissingFields(map[string]string{
		"tenantId": req.Tenant(),
		"username": req.Username,
		"password": req.Password,
	}, "tenantId", "username", "password"); len(missing) > 0 {
		return nil, common.NewValidationError("Mandir, username and password are required", missing...)
	}

	tenantID, err := uuid.Parse(req.Tenant())
	if err != nil {
		compareDummy(req.Password)
		return nil, invalidCredentials()
	}

	limitKey := fmt.Sprintf("login:%s:%s", tenantID, strings.ToLower(req.Username))
	limited, err := s.cacheSvc.IsRateLimited(ctx, limitKey, loginAttemptLimit, loginAttemptWindow)
	if err != nil {
		s.logger.Warn("login rate limit check failed", zap.Error(err))
	} else if limited {
		return nil, common.NewError(common.ErrRateLimited, "Too many login attempts, try again later")
	}

	user, err := s.userRepo.GetByUsername(ctx, tenantID, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			compareDummy(req.Password)
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalidCredentials()
	}

	if err := s.cacheSvc.ResetRateLimit(ctx, limitKey); err != nil {
		s.logger.Warn("failed to reset login rate limit", zap.Error(err))
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(TokenTTL.Seconds()),
		User:      user.Profile(),
	}, nil
}

func (s *authService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := models.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		TenantID: user.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

func (s *authService) ValidateToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, common.NewError(common.ErrUnauthenticated, "Invalid or expired token")
	}
	if claims.UserID == uuid.Nil || claims.TenantID == uuid.Nil {
		return nil, common.NewError(common.ErrUnauthenticated, "Invalid or expired token")
	}
	return claims, nil
}
