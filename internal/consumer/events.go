package consumer

import (
	"context"
	"fmt"
	"time"

	rediscommon "healthpulse-engine/common/redis"

	"github.com/go-redis/redis/v8"
)

// 读数事件类型
const (
	EventVitalLogged   = "vital.logged"
	EventSymptomLogged = "symptom.logged"
	EventMoodLogged    = "mood.logged"
)

// ReadingEvent 新读数写入后发布到 Redis Streams 的事件
type ReadingEvent struct {
	EventType string `json:"event_type"`
	PatientID string `json:"patient_id"`
	RecordID  string `json:"record_id"`
	Timestamp int64  `json:"timestamp"`
}

// ReadingPublisher 读数事件发布者
type ReadingPublisher struct {
	client *redis.Client
	stream string
}

// NewReadingPublisher 创建读数事件发布者
func NewReadingPublisher(client *redis.Client, stream string) *ReadingPublisher {
	return &ReadingPublisher{client: client, stream: stream}
}

// Publish 发布一条读数事件，返回消息 ID
func (p *ReadingPublisher) Publish(ctx context.Context, eventType, patientID, recordID string) (string, error) {
	event := ReadingEvent{
		EventType: eventType,
		PatientID: patientID,
		RecordID:  recordID,
		Timestamp: time.Now().Unix(),
	}

	id, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, event)
	if err != nil {
		return "", fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return id, nil
}
