package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rediscommon "healthpulse-engine/common/redis"
	"healthpulse-engine/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ScoreRefresher 重新计算并持久化患者评分
type ScoreRefresher interface {
	RefreshHealthScore(ctx context.Context, patientID string) (*models.HealthScore, error)
}

// ReadingConsumer 读数事件消费者：每条新读数触发一次评分刷新
type ReadingConsumer struct {
	redisClient  *redis.Client
	refresher    ScoreRefresher
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
	block        time.Duration
}

// NewReadingConsumer 创建读数事件消费者
func NewReadingConsumer(
	redisClient *redis.Client,
	refresher ScoreRefresher,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
	block time.Duration,
) *ReadingConsumer {
	return &ReadingConsumer{
		redisClient:  redisClient,
		refresher:    refresher,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
		block:        block,
	}
}

// Start 启动消费循环，直到 ctx 取消
func (c *ReadingConsumer) Start(ctx context.Context) error {
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Reading consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	// 消费事件（带指数退避）
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.consumeEvents(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error("Failed to consume reading events",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				backoffDuration = time.Second
			}
		}
	}
}

// consumeEvents 读取一批消息并逐条处理；处理失败的消息不确认
func (c *ReadingConsumer) consumeEvents(ctx context.Context) error {
	messages, err := rediscommon.ReadFromStream(
		ctx,
		c.redisClient,
		c.stream,
		c.groupName,
		c.consumerName,
		c.batchSize,
		c.block,
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		if err := c.processEvent(ctx, msg); err != nil {
			c.logger.Error("Failed to process reading event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		if err := rediscommon.Ack(ctx, c.redisClient, c.stream, c.groupName, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// processEvent 处理单个读数事件
func (c *ReadingConsumer) processEvent(ctx context.Context, msg rediscommon.StreamMessage) error {
	event, err := parseReadingEvent(msg)
	if err != nil {
		return fmt.Errorf("failed to parse event: %w", err)
	}

	switch event.EventType {
	case EventVitalLogged, EventSymptomLogged, EventMoodLogged:
		score, err := c.refresher.RefreshHealthScore(ctx, event.PatientID)
		if errors.Is(err, ErrScoringInProgress) {
			// 持锁方正在刷新同一患者，直接确认
			c.logger.Info("Score refresh already in progress, event acknowledged",
				zap.String("event_type", event.EventType),
				zap.String("patient_id", event.PatientID),
				zap.String("record_id", event.RecordID),
			)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to refresh score for patient %s: %w", event.PatientID, err)
		}

		c.logger.Info("Health score refreshed from reading event",
			zap.String("event_type", event.EventType),
			zap.String("patient_id", event.PatientID),
			zap.String("record_id", event.RecordID),
			zap.Int("overall_score", score.OverallScore),
		)

	default:
		c.logger.Warn("Unknown event type",
			zap.String("event_type", event.EventType),
		)
	}

	return nil
}

// parseReadingEvent 优先解析 data 字段中的 JSON，否则直接读取字段
func parseReadingEvent(msg rediscommon.StreamMessage) (*ReadingEvent, error) {
	if dataStr, ok := msg.Values["data"].(string); ok {
		var event ReadingEvent
		if err := json.Unmarshal([]byte(dataStr), &event); err == nil && event.EventType != "" {
			if event.PatientID == "" {
				return nil, fmt.Errorf("invalid event: missing patient_id")
			}
			return &event, nil
		}
	}

	event := &ReadingEvent{}
	if eventType, ok := msg.Values["event_type"].(string); ok {
		event.EventType = eventType
	}
	if patientID, ok := msg.Values["patient_id"].(string); ok {
		event.PatientID = patientID
	}
	if recordID, ok := msg.Values["record_id"].(string); ok {
		event.RecordID = recordID
	}

	if event.EventType == "" || event.PatientID == "" {
		return nil, fmt.Errorf("invalid event: missing event_type or patient_id")
	}
	return event, nil
}
