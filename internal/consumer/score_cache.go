package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"healthpulse-engine/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrScoringInProgress 同一患者的评分正在进行
var ErrScoringInProgress = errors.New("health score calculation already in progress")

const (
	latestScoreKeyPrefix = "healthpulse:score:latest:"
	scoringLockKeyPrefix = "healthpulse:score:lock:"
)

// ScoreCache 最新评分缓存与按患者的评分锁
type ScoreCache struct {
	kv      KVStore
	ttl     time.Duration
	lockTTL time.Duration
	logger  *zap.Logger
}

// NewScoreCache 创建评分缓存
func NewScoreCache(kv KVStore, ttl, lockTTL time.Duration, logger *zap.Logger) *ScoreCache {
	return &ScoreCache{
		kv:      kv,
		ttl:     ttl,
		lockTTL: lockTTL,
		logger:  logger,
	}
}

// GetLatestScore 读取缓存的最新评分，未命中返回 ErrCacheMiss
func (c *ScoreCache) GetLatestScore(ctx context.Context, patientID string) (*models.HealthScore, error) {
	raw, err := c.kv.Get(ctx, latestScoreKeyPrefix+patientID)
	if err != nil {
		return nil, err
	}

	var score models.HealthScore
	if err := json.Unmarshal([]byte(raw), &score); err != nil {
		return nil, fmt.Errorf("failed to decode cached score: %w", err)
	}
	return &score, nil
}

// SetLatestScore 缓存最新评分
func (c *ScoreCache) SetLatestScore(ctx context.Context, score *models.HealthScore) error {
	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to encode score: %w", err)
	}

	if err := c.kv.Set(ctx, latestScoreKeyPrefix+score.PatientID, string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to cache score: %w", err)
	}

	c.logger.Debug("Latest score cached",
		zap.String("patient_id", score.PatientID),
		zap.String("score_id", score.ID),
		zap.Duration("ttl", c.ttl),
	)
	return nil
}

// AcquireScoringLock 获取患者评分锁，返回释放时使用的 token；锁已被持有时返回 ErrScoringInProgress
// 锁带 TTL，进程崩溃后自动释放
func (c *ScoreCache) AcquireScoringLock(ctx context.Context, patientID string) (string, error) {
	token := uuid.New().String()
	ok, err := c.kv.SetNX(ctx, scoringLockKeyPrefix+patientID, token, c.lockTTL)
	if err != nil {
		return "", fmt.Errorf("failed to acquire scoring lock: %w", err)
	}
	if !ok {
		return "", ErrScoringInProgress
	}
	return token, nil
}

// ReleaseScoringLock 释放患者评分锁；锁已过期并被其他调用方持有时不删除
func (c *ScoreCache) ReleaseScoringLock(ctx context.Context, patientID, token string) error {
	released, err := c.kv.DelIfValue(ctx, scoringLockKeyPrefix+patientID, token)
	if err != nil {
		return fmt.Errorf("failed to release scoring lock: %w", err)
	}
	if !released {
		c.logger.Warn("Scoring lock expired before release",
			zap.String("patient_id", patientID),
			zap.Duration("lock_ttl", c.lockTTL),
		)
	}
	return nil
}
