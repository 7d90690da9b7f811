package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mandirdaan/internal/caching"
	"mandirdaan/internal/common"
	"mandirdaan/internal/models"
	"mandirdaan/internal/repositories"
	"mandirdaan/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const summaryCacheTTL = 5 * time.Minute

// maxAmount is the first value the amount column (NUMERIC(14, 2)) cannot hold.
const maxAmount = 1e12

// ListDonationsQuery carries the raw query string filters.
type ListDonationsQuery struct {
	Status    string
	Type      string
	StartDate string
	EndDate   string
}

type DonationService interface {
	Record(ctx context.Context, claims *models.Claims, req models.CreateDonationRequest) (*models.Donation, error)
	List(ctx context.Context, tenantID uuid.UUID, query ListDonationsQuery) ([]*models.Donation, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Donation, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.PaymentStatus) (*models.Donation, error)
	Summarize(ctx context.Context, tenantID uuid.UUID) (*models.DonationSummary, error)
}

type donationService struct {
	donationRepo repositories.DonationRepository
	cacheSvc     caching.CacheService
	logger       *logger.Logger
	now          func() time.Time
}

func NewDonationService(donationRepo repositories.DonationRepository, cacheSvc caching.CacheService, log *logger.Logger) DonationService {
	return &donationService{
		donationRepo: donationRepo,
		cacheSvc:     cacheSvc,
		logger:       log,
		now:          time.Now,
	}
}

func (s *donationService) Record(ctx context.Context, claims *models.Claims, req models.CreateDonationRequest) (*models.Donation, error) {
	values := map[string]string{
		"donorName":     strings.TrimSpace(req.DonorName),
		"address":       req.Address,
		"phoneNumber":   strings.TrimSpace(req.PhoneNumber),
		"donationType":  string(req.DonationType),
		"paymentStatus": string(req.PaymentStatus),
	}
	if req.Amount != nil {
		values["amount"] = "set"
	}
	if missing := common.MissingFields(values,
		"donorName", "address", "phoneNumber", "amount", "donationType", "paymentStatus"); len(missing) > 0 {
		return nil, common.NewValidationError("All fields are required", missing...)
	}
	if *req.Amount < 0 {
		return nil, common.NewValidationError("Amount must not be negative", "amount")
	}
	if *req.Amount >= maxAmount {
		return nil, common.NewValidationError("Amount is too large", "amount")
	}
	if decimalPlaces(*req.Amount) > 2 {
		return nil, common.NewValidationError("Amount must have at most 2 decimal places", "amount")
	}
	if !req.DonationType.IsValid() {
		return nil, common.NewValidationError("Invalid donation type", "donationType")
	}
	if !req.PaymentStatus.IsValid() {
		return nil, common.NewValidationError("Valid payment status is required", "paymentStatus")
	}

	now := s.now()
	donationDate := now
	if strings.TrimSpace(req.DonationDate) != "" {
		parsed, err := common.ParseDate(req.DonationDate, "donationDate")
		if err != nil {
			return nil, err
		}
		donationDate = parsed
	}

	creatorID := claims.UserID
	donation := &models.Donation{
		ID:            uuid.New(),
		TenantID:      claims.TenantID,
		CreatedByID:   &creatorID,
		DonorName:     values["donorName"],
		Address:       req.Address,
		PhoneNumber:   values["phoneNumber"],
		Amount:        *req.Amount,
		DonationDate:  donationDate,
		DonationType:  req.DonationType,
		PaymentStatus: req.PaymentStatus,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return nil, fmt.Errorf("record donation: %w", err)
	}
	s.invalidate(ctx, claims.TenantID)

	// Re-read so the response carries the same creator view as Get.
	stored, err := s.donationRepo.GetByID(ctx, claims.TenantID, donation.ID)
	if err != nil {
		return nil, fmt.Errorf("load recorded donation: %w", err)
	}
	return stored, nil
}

func (s *donationService) List(ctx context.Context, tenantID uuid.UUID, query ListDonationsQuery) ([]*models.Donation, error) {
	var filter models.DonationFilter

	if query.Status != "" {
		status := models.PaymentStatus(query.Status)
		if !status.IsValid() {
			return nil, common.NewValidationError("Invalid payment status filter", "status")
		}
		filter.Status = &status
	}
	if query.Type != "" {
		donationType := models.DonationType(query.Type)
		if !donationType.IsValid() {
			return nil, common.NewValidationError("Invalid donation type filter", "type")
		}
		filter.Type = &donationType
	}
	if query.StartDate != "" {
		start, err := common.ParseDate(query.StartDate, "startDate")
		if err != nil {
			return nil, err
		}
		filter.StartDate = &start
	}
	if query.EndDate != "" {
		end, err := common.ParseDate(query.EndDate, "endDate")
		if err != nil {
			return nil, err
		}
		// A bare date covers the whole day.
		if common.IsDateOnly(query.EndDate) {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		filter.EndDate = &end
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, common.NewValidationError("startDate must not be after endDate", "startDate", "endDate")
	}

	return s.donationRepo.List(ctx, tenantID, filter)
}

func (s *donationService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Donation, error) {
	return s.donationRepo.GetByID(ctx, tenantID, id)
}

func (s *donationService) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.PaymentStatus) (*models.Donation, error) {
	if !status.IsValid() {
		return nil, common.NewValidationError("Valid payment status is required", "paymentStatus")
	}

	if err := s.donationRepo.UpdateStatus(ctx, tenantID, id, status, s.now()); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)

	return s.donationRepo.GetByID(ctx, tenantID, id)
}

func (s *donationService) Summarize(ctx context.Context, tenantID uuid.UUID) (*models.DonationSummary, error) {
	cached, err := s.cacheSvc.GetTenantSummary(ctx, tenantID)
	if err != nil {
		s.logger.Warn("summary cache read failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
	} else if cached != nil {
		return cached, nil
	}

	summary, err := s.donationRepo.Summary(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("summarize donations: %w", err)
	}

	if err := s.cacheSvc.SetTenantSummary(ctx, tenantID, summary, summaryCacheTTL); err != nil {
		s.logger.Warn("summary cache write failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
	}
	return summary, nil
}

func (s *donationService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if err := s.cacheSvc.InvalidateTenant(ctx, tenantID); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
	}
}

// decimalPlaces counts the digits after the point in the shortest form that
// round-trips v.
func decimalPlaces(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}
