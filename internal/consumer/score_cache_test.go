package consumer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthpulse-engine/internal/consumer"
	"healthpulse-engine/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleScore() *models.HealthScore {
	return &models.HealthScore{
		ID:           "score-1",
		PatientID:    "patient-1",
		OverallScore: 73,
		VitalScore:   60,
		SymptomScore: 90,
		MentalScore:  70,
		Trend:        models.TrendStable,
		RiskLevel:    models.SeverityMedium,
		AutoAlerts:   []string{},
		CalculatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestScoreCache_LatestScoreRoundTrip(t *testing.T) {
	cache := consumer.NewScoreCache(newFakeKVStore(), time.Minute, time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := cache.GetLatestScore(ctx, "patient-1")
	assert.True(t, errors.Is(err, consumer.ErrCacheMiss))

	require.NoError(t, cache.SetLatestScore(ctx, sampleScore()))

	got, err := cache.GetLatestScore(ctx, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, sampleScore(), got)
}

func TestScoreCache_LatestScoreExpires(t *testing.T) {
	cache := consumer.NewScoreCache(newFakeKVStore(), 20*time.Millisecond, time.Minute, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, cache.SetLatestScore(ctx, sampleScore()))
	time.Sleep(40 * time.Millisecond)

	_, err := cache.GetLatestScore(ctx, "patient-1")
	assert.True(t, errors.Is(err, consumer.ErrCacheMiss))
}

func acquire(t *testing.T, cache *consumer.ScoreCache, patientID string) string {
	t.Helper()
	token, err := cache.AcquireScoringLock(context.Background(), patientID)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return token
}

func TestScoreCache_ScoringLock(t *testing.T) {
	cache := consumer.NewScoreCache(newFakeKVStore(), time.Minute, time.Minute, zap.NewNop())
	ctx := context.Background()

	token := acquire(t, cache, "patient-1")
	_, err := cache.AcquireScoringLock(ctx, "patient-1")
	assert.True(t, errors.Is(err, consumer.ErrScoringInProgress))

	// 不同患者互不影响
	acquire(t, cache, "patient-2")

	require.NoError(t, cache.ReleaseScoringLock(ctx, "patient-1", token))
	acquire(t, cache, "patient-1")
}

func TestScoreCache_ReleaseWithWrongToken(t *testing.T) {
	cache := consumer.NewScoreCache(newFakeKVStore(), time.Minute, time.Minute, zap.NewNop())
	ctx := context.Background()

	acquire(t, cache, "patient-1")
	require.NoError(t, cache.ReleaseScoringLock(ctx, "patient-1", "other-token"))

	_, err := cache.AcquireScoringLock(ctx, "patient-1")
	assert.True(t, errors.Is(err, consumer.ErrScoringInProgress))
}

func TestScoreCache_ScoringLockTTL(t *testing.T) {
	cache := consumer.NewScoreCache(newFakeKVStore(), time.Minute, 20*time.Millisecond, zap.NewNop())

	acquire(t, cache, "patient-1")
	time.Sleep(40 * time.Millisecond)
	acquire(t, cache, "patient-1")
}

func TestScoreCache_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := consumer.NewScoreCache(consumer.NewRedisKVStore(client), 5*time.Minute, 30*time.Second, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, cache.SetLatestScore(ctx, sampleScore()))
	assert.True(t, mr.Exists("healthpulse:score:latest:patient-1"))
	assert.Equal(t, 5*time.Minute, mr.TTL("healthpulse:score:latest:patient-1"))

	got, err := cache.GetLatestScore(ctx, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, 73, got.OverallScore)

	_, err = cache.GetLatestScore(ctx, "patient-2")
	assert.True(t, errors.Is(err, consumer.ErrCacheMiss))

	token := acquire(t, cache, "patient-1")
	_, err = cache.AcquireScoringLock(ctx, "patient-1")
	assert.True(t, errors.Is(err, consumer.ErrScoringInProgress))

	require.NoError(t, cache.ReleaseScoringLock(ctx, "patient-1", token))
	assert.False(t, mr.Exists("healthpulse:score:lock:patient-1"))
}

func TestScoreCache_ExpiredLockNotReleasedByPreviousHolder(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := consumer.NewScoreCache(consumer.NewRedisKVStore(client), time.Minute, time.Second, zap.NewNop())
	ctx := context.Background()

	first := acquire(t, cache, "patient-1")
	mr.FastForward(2 * time.Second)

	second := acquire(t, cache, "patient-1")
	assert.NotEqual(t, first, second)

	// 第一个持有者超时后释放，不能删除第二个持有者的锁
	require.NoError(t, cache.ReleaseScoringLock(ctx, "patient-1", first))
	assert.True(t, mr.Exists("healthpulse:score:lock:patient-1"))

	_, err := cache.AcquireScoringLock(ctx, "patient-1")
	assert.True(t, errors.Is(err, consumer.ErrScoringInProgress))

	require.NoError(t, cache.ReleaseScoringLock(ctx, "patient-1", second))
	assert.False(t, mr.Exists("healthpulse:score:lock:patient-1"))
}
