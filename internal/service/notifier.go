package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"healthpulse-engine/internal/models"

	"go.uber.org/zap"
)

// Notifier 推送评分更新与异常告警
type Notifier interface {
	NotifyScore(ctx context.Context, score *models.HealthScore) error
	NotifyAlert(ctx context.Context, alert models.AnomalyAlert) error
}

// Publisher MQTT 发布接口（common/mqtt.Client 实现）
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	IsConnected() bool
}

// ErrNotifierDisconnected broker 连接断开（客户端自动重连期间）
var ErrNotifierDisconnected = errors.New("mqtt client is not connected")

// MQTTNotifier 通过 MQTT 推送
// 评分推送到患者主题（retained），告警推送到医护人员主题
type MQTTNotifier struct {
	publisher      Publisher
	qos            byte
	scoreTopicFmt  string
	alertsTopicFmt string
	logger         *zap.Logger
}

// NewMQTTNotifier 创建 MQTT 推送器，主题格式包含一个 %s（患者或医护人员 ID）
func NewMQTTNotifier(publisher Publisher, qos byte, scoreTopicFmt, alertsTopicFmt string, logger *zap.Logger) *MQTTNotifier {
	return &MQTTNotifier{
		publisher:      publisher,
		qos:            qos,
		scoreTopicFmt:  scoreTopicFmt,
		alertsTopicFmt: alertsTopicFmt,
		logger:         logger,
	}
}

func (n *MQTTNotifier) NotifyScore(ctx context.Context, score *models.HealthScore) error {
	if !n.publisher.IsConnected() {
		return ErrNotifierDisconnected
	}

	payload, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to encode score: %w", err)
	}

	topic := fmt.Sprintf(n.scoreTopicFmt, score.PatientID)
	if err := n.publisher.Publish(topic, n.qos, true, payload); err != nil {
		return err
	}

	n.logger.Debug("Score published",
		zap.String("topic", topic),
		zap.String("score_id", score.ID),
	)
	return nil
}

func (n *MQTTNotifier) NotifyAlert(ctx context.Context, alert models.AnomalyAlert) error {
	if !n.publisher.IsConnected() {
		return ErrNotifierDisconnected
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	topic := fmt.Sprintf(n.alertsTopicFmt, alert.ProviderID)
	if err := n.publisher.Publish(topic, n.qos, false, payload); err != nil {
		return err
	}

	n.logger.Debug("Alert published",
		zap.String("topic", topic),
		zap.String("alert_id", alert.ID),
		zap.String("anomaly_type", string(alert.AnomalyType)),
	)
	return nil
}

// NopNotifier 未配置 MQTT 时使用
type NopNotifier struct{}

func (NopNotifier) NotifyScore(ctx context.Context, score *models.HealthScore) error { return nil }

func (NopNotifier) NotifyAlert(ctx context.Context, alert models.AnomalyAlert) error { return nil }
