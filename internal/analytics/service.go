package analytics

import (
	"context"
	"fmt"
	"time"

	"mandirdaan/internal/caching"
	"mandirdaan/internal/models"
	"mandirdaan/internal/repositories"
	"mandirdaan/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const breakdownCacheTTL = 5 * time.Minute

// AnalyticsService computes and caches per-category donation totals.
type AnalyticsService struct {
	donationRepo repositories.DonationRepository
	cacheService caching.CacheService
	logger       *logger.Logger
}

func NewAnalyticsService(donationRepo repositories.DonationRepository, cacheService caching.CacheService, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		donationRepo: donationRepo,
		cacheService: cacheService,
		logger:       log,
	}
}

// ByType returns one entry per donation category, in display order,
// including categories with no donations yet.
func (a *AnalyticsService) ByType(ctx context.Context, tenantID uuid.UUID) ([]models.TypeBreakdown, error) {
	cached, err := a.cacheService.GetTypeBreakdown(ctx, tenantID)
	if err != nil {
		a.logger.Warn("breakdown cache read failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
	} else if cached != nil {
		return cached, nil
	}

	rows, err := a.donationRepo.SummaryByType(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("donation breakdown: %w", err)
	}
	breakdown := fillCategories(rows)

	if err := a.cacheService.SetTypeBreakdown(ctx, tenantID, breakdown, breakdownCacheTTL); err != nil {
		a.logger.Warn("breakdown cache write failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
	}
	return breakdown, nil
}

// Refresh drops the tenant's cached figures and recomputes the breakdown.
func (a *AnalyticsService) Refresh(ctx context.Context, tenantID uuid.UUID) ([]models.TypeBreakdown, error) {
	if err := a.cacheService.InvalidateTenant(ctx, tenantID); err != nil {
		a.logger.Warn("breakdown cache invalidation failed", zap.Error(err), zap.String("tenant_id", tenantID.String()))
	}
	return a.ByType(ctx, tenantID)
}

func fillCategories(rows []models.TypeBreakdown) []models.TypeBreakdown {
	byType := make(map[models.DonationType]models.TypeBreakdown, len(rows))
	for _, r := range rows {
		byType[r.DonationType] = r
	}

	out := make([]models.TypeBreakdown, 0, len(models.AllDonationTypes))
	for _, t := range models.AllDonationTypes {
		row, ok := byType[t]
		if !ok {
			row = models.TypeBreakdown{DonationType: t}
		}
		out = append(out, row)
	}
	return out
}
