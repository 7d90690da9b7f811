package jobs

import (
	"context"
	"time"

	"mandirdaan/internal/models"
	"mandirdaan/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantLister lists every registered mandir.
type TenantLister interface {
	List(ctx context.Context) ([]models.TenantSummary, error)
}

// BreakdownRefresher recomputes one tenant's cached category breakdown.
type BreakdownRefresher interface {
	Refresh(ctx context.Context, tenantID uuid.UUID) ([]models.TypeBreakdown, error)
}

type AnalyticsRefreshService struct {
	tenants   TenantLister
	analytics BreakdownRefresher
	logger    *logger.Logger
}

type AnalyticsRefreshResult struct {
	TenantsProcessed int       `json:"tenantsProcessed"`
	TenantsFailed    int       `json:"tenantsFailed"`
	LastRefreshAt    time.Time `json:"lastRefreshAt"`
}

func NewAnalyticsRefreshService(tenants TenantLister, analytics BreakdownRefresher, log *logger.Logger) *AnalyticsRefreshService {
	return &AnalyticsRefreshService{
		tenants:   tenants,
		analytics: analytics,
		logger:    log,
	}
}

// RefreshAllTenants warms the breakdown cache for every mandir. A failure for
// one tenant does not stop the others.
func (a *AnalyticsRefreshService) RefreshAllTenants(ctx context.Context) (*AnalyticsRefreshResult, error) {
	tenants, err := a.tenants.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &AnalyticsRefreshResult{}
	for _, t := range tenants {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := a.analytics.Refresh(ctx, t.ID); err != nil {
			result.TenantsFailed++
			a.logger.Error("failed to refresh donation breakdown", err, zap.String("tenant_id", t.ID.String()))
			continue
		}
		result.TenantsProcessed++
	}
	result.LastRefreshAt = time.Now()

	a.logger.Info("donation breakdown refresh finished",
		zap.Int("tenants", result.TenantsProcessed),
		zap.Int("failed", result.TenantsFailed),
	)
	return result, nil
}
