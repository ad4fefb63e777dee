package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-request-api/internal/models"
	appErrors "github.com/noah-isme/uni-request-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:stats"

type statsRepository interface {
	CountUsersByRole(ctx context.Context) (map[models.UserRole]int, error)
	CountRequestsByStatus(ctx context.Context, requestType models.RequestType) (map[models.RequestStatus]int, error)
}

// DashboardService aggregates counts for the admin dashboard, with a
// short-lived cache in front of the grouped queries.
type DashboardService struct {
	repo   statsRepository
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(repo statsRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Stats returns the aggregated dashboard payload.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var cached models.DashboardStats
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	usersByRole, err := s.repo.CountUsersByRole(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}

	requestsByType := make(map[models.RequestType]map[models.RequestStatus]int, 3)
	for _, requestType := range []models.RequestType{models.TypeAddSeat, models.TypeOpenCourse, models.TypeGeneralPetition} {
		counts, err := s.repo.CountRequestsByStatus(ctx, requestType)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count requests")
		}
		requestsByType[requestType] = counts
	}

	stats := &models.DashboardStats{
		UsersByRole:    usersByRole,
		RequestsByType: requestsByType,
		GeneratedAt:    time.Now().UTC(),
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.ttl); err != nil {
		s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
	}

	return stats, nil
}

// Invalidate drops the cached payload, forcing a recount on next read.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
