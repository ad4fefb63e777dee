package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-request-api/internal/models"
	appErrors "github.com/noah-isme/uni-request-api/pkg/errors"
)

type statsRepoMock struct {
	usersCalls    int
	requestsCalls int
}

func (m *statsRepoMock) CountUsersByRole(ctx context.Context) (map[models.UserRole]int, error) {
	m.usersCalls++
	return map[models.UserRole]int{models.RoleStudent: 40, models.RoleAdmin: 1}, nil
}

func (m *statsRepoMock) CountRequestsByStatus(ctx context.Context, requestType models.RequestType) (map[models.RequestStatus]int, error) {
	m.requestsCalls++
	return map[models.RequestStatus]int{models.StatusSubmitted: 3}, nil
}

type memoryCacheRepo struct {
	store map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{store: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	m.store = make(map[string][]byte)
	return nil
}

func TestDashboardStatsCountsEveryRequestType(t *testing.T) {
	repo := &statsRepoMock{}
	svc := NewDashboardService(repo, nil, time.Minute, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 40, stats.UsersByRole[models.RoleStudent])
	assert.Len(t, stats.RequestsByType, 3)
	assert.Equal(t, 3, stats.RequestsByType[models.TypeAddSeat][models.StatusSubmitted])
	assert.Equal(t, 3, repo.requestsCalls)
	assert.False(t, stats.GeneratedAt.IsZero())
}

func TestDashboardStatsServedFromCache(t *testing.T) {
	repo := &statsRepoMock{}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewDashboardService(repo, cache, time.Minute, nil)

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	_, err = svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.usersCalls)
	assert.Equal(t, 3, repo.requestsCalls)
}

func TestDashboardInvalidateForcesRecount(t *testing.T) {
	repo := &statsRepoMock{}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewDashboardService(repo, cache, time.Minute, nil)

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)

	svc.Invalidate(context.Background())

	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.usersCalls)
}
