package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mandirdaan/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService fronts per-tenant aggregates and login throttling. A miss is
// reported as (nil, nil).
type CacheService interface {
	GetTenantSummary(ctx context.Context, tenantID uuid.UUID) (*models.DonationSummary, error)
	SetTenantSummary(ctx context.Context, tenantID uuid.UUID, summary *models.DonationSummary, ttl time.Duration) error

	GetTypeBreakdown(ctx context.Context, tenantID uuid.UUID) ([]models.TypeBreakdown, error)
	SetTypeBreakdown(ctx context.Context, tenantID uuid.UUID, breakdown []models.TypeBreakdown, ttl time.Duration) error

	// InvalidateTenant drops every aggregate cached for the tenant.
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	ResetRateLimit(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

const keyPrefix = "mandirdaan"

func summaryKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("%s:summary:%s", keyPrefix, tenantID)
}

func typeBreakdownKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("%s:bytype:%s", keyPrefix, tenantID)
}

func rateLimitKey(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCacheService{client: client}
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetTenantSummary(ctx context.Context, tenantID uuid.UUID) (*models.DonationSummary, error) {
	var summary models.DonationSummary
	found, err := r.getJSON(ctx, summaryKey(tenantID), &summary)
	if err != nil || !found {
		return nil, err
	}
	return &summary, nil
}

func (r *redisCacheService) SetTenantSummary(ctx context.Context, tenantID uuid.UUID, summary *models.DonationSummary, ttl time.Duration) error {
	return r.setJSON(ctx, summaryKey(tenantID), summary, ttl)
}

func (r *redisCacheService) GetTypeBreakdown(ctx context.Context, tenantID uuid.UUID) ([]models.TypeBreakdown, error) {
	var breakdown []models.TypeBreakdown
	found, err := r.getJSON(ctx, typeBreakdownKey(tenantID), &breakdown)
	if err != nil || !found {
		return nil, err
	}
	return breakdown, nil
}

func (r *redisCacheService) SetTypeBreakdown(ctx context.Context, tenantID uuid.UUID, breakdown []models.TypeBreakdown, ttl time.Duration) error {
	return r.setJSON(ctx, typeBreakdownKey(tenantID), breakdown, ttl)
}

func (r *redisCacheService) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	return r.client.Del(ctx, summaryKey(tenantID), typeBreakdownKey(tenantID)).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := rateLimitKey(key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return false, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) ResetRateLimit(ctx context.Context, key string) error {
	return r.client.Del(ctx, rateLimitKey(key)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// noopCacheService is used when no redis address is configured: every read
// misses and nothing is throttled.
type noopCacheService struct{}

func NewNoopCacheService() CacheService {
	return noopCacheService{}
}

func (noopCacheService) GetTenantSummary(context.Context, uuid.UUID) (*models.DonationSummary, error) {
	return nil, nil
}

func (noopCacheService) SetTenantSummary(context.Context, uuid.UUID, *models.DonationSummary, time.Duration) error {
	return nil
}

func (noopCacheService) GetTypeBreakdown(context.Context, uuid.UUID) ([]models.TypeBreakdown, error) {
	return nil, nil
}

func (noopCacheService) SetTypeBreakdown(context.Context, uuid.UUID, []models.TypeBreakdown, time.Duration) error {
	return nil
}

func (noopCacheService) InvalidateTenant(context.Context, uuid.UUID) error { return nil }

func (noopCacheService) IsRateLimited(context.Context, string, int, time.Duration) (bool, error) {
	return false, nil
}

func (noopCacheService) ResetRateLimit(context.Context, string) error { return nil }

func (noopCacheService) Ping(context.Context) error { return nil }
