package service

import (
	"context"
	"errors"
	"fmt"

	"healthpulse-engine/internal/assistant"
	"healthpulse-engine/internal/consumer"
	"healthpulse-engine/internal/evaluator"
	"healthpulse-engine/internal/models"
	"healthpulse-engine/internal/repository"

	"go.uber.org/zap"
)

var (
	// ErrScoringInProgress 同一患者的评分正在进行
	ErrScoringInProgress = consumer.ErrScoringInProgress
	// ErrNotFound 记录不存在
	ErrNotFound = repository.ErrNotFound
)

// EventPublisher 读数事件发布接口（consumer.ReadingPublisher 实现）
type EventPublisher interface {
	Publish(ctx context.Context, eventType, patientID, recordID string) (string, error)
}

// HealthService 健康评分服务（整合记录库、评分引擎、缓存与推送）
type HealthService struct {
	store     *repository.RecordStore
	evaluator *evaluator.Evaluator
	cache     *consumer.ScoreCache
	notifier  Notifier
	events    EventPublisher
	assistant *assistant.Client
	logger    *zap.Logger
}

// NewHealthService 创建健康评分服务
func NewHealthService(
	store *repository.RecordStore,
	cache *consumer.ScoreCache,
	notifier Notifier,
	events EventPublisher,
	assistantClient *assistant.Client,
	logger *zap.Logger,
) *HealthService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &HealthService{
		store:     store,
		evaluator: evaluator.NewEvaluator(store, logger),
		cache:     cache,
		notifier:  notifier,
		events:    events,
		assistant: assistantClient,
		logger:    logger,
	}
}

// ============================================
// 读数录入
// ============================================

// TriageSymptom 症状分诊（不落库）
func (s *HealthService) TriageSymptom(description string) models.SymptomTriageResult {
	return evaluator.TriageSymptom(description)
}

// RecordVital 写入生命体征读数，必要时向医护人员发出告警
func (s *HealthService) RecordVital(ctx context.Context, v *models.VitalReading) ([]models.AnomalyAlert, error) {
	if err := s.store.Vitals.CreateVital(ctx, v); err != nil {
		return nil, err
	}

	alerts := s.raiseAlerts(ctx, v.PatientID, evaluator.EvaluateVitalAlert(*v))
	s.publishEvent(ctx, consumer.EventVitalLogged, v.PatientID, v.ID)
	return alerts, nil
}

// RecordSymptom 分诊后写入症状报告
func (s *HealthService) RecordSymptom(ctx context.Context, r *models.SymptomReport) (*models.SymptomTriageResult, []models.AnomalyAlert, error) {
	triage := evaluator.TriageSymptom(r.Description)
	r.ApplyTriage(triage)

	if err := s.store.Symptoms.CreateSymptom(ctx, r); err != nil {
		return nil, nil, err
	}

	alerts := s.raiseAlerts(ctx, r.PatientID, evaluator.EvaluateSymptomAlert(*r))
	s.publishEvent(ctx, consumer.EventSymptomLogged, r.PatientID, r.ID)
	return &triage, alerts, nil
}

// RecordMood 写入情绪打卡
func (s *HealthService) RecordMood(ctx context.Context, m *models.MoodCheckIn) ([]models.AnomalyAlert, error) {
	if err := s.store.Moods.CreateMood(ctx, m); err != nil {
		return nil, err
	}

	alerts := s.raiseAlerts(ctx, m.PatientID, evaluator.EvaluateMoodAlert(*m))
	s.publishEvent(ctx, consumer.EventMoodLogged, m.PatientID, m.ID)
	return alerts, nil
}

// raiseAlerts 为负责该患者的每个医护人员写入并推送告警
// 读数已经落库，告警失败只记录日志
func (s *HealthService) raiseAlerts(ctx context.Context, patientID string, candidate *evaluator.AlertCandidate) []models.AnomalyAlert {
	if candidate == nil {
		return nil
	}

	providerIDs, err := s.store.Providers.ProvidersForPatient(ctx, patientID)
	if err != nil {
		s.logger.Error("Failed to load providers for alert",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
		return nil
	}
	if len(providerIDs) == 0 {
		s.logger.Debug("No providers assigned, alert skipped",
			zap.String("patient_id", patientID),
			zap.String("anomaly_type", string(candidate.AnomalyType)),
		)
		return nil
	}

	patient, err := s.store.Providers.PatientRef(ctx, patientID)
	if err != nil {
		s.logger.Error("Failed to load patient for alert",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
		return nil
	}

	alerts := evaluator.NewAlertBuilder(*patient).BuildAlerts(candidate, providerIDs)
	if err := s.store.Alerts.CreateAlerts(ctx, alerts); err != nil {
		s.logger.Error("Failed to store alerts",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
		return nil
	}

	for _, alert := range alerts {
		if err := s.notifier.NotifyAlert(ctx, alert); err != nil {
			s.logger.Warn("Failed to notify provider",
				zap.String("provider_id", alert.ProviderID),
				zap.String("alert_id", alert.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Anomaly alerts raised",
		zap.String("patient_id", patientID),
		zap.String("anomaly_type", string(candidate.AnomalyType)),
		zap.String("severity", string(candidate.Severity)),
		zap.Int("provider_count", len(alerts)),
	)
	return alerts
}

func (s *HealthService) publishEvent(ctx context.Context, eventType, patientID, recordID string) {
	if s.events == nil {
		return
	}
	if _, err := s.events.Publish(ctx, eventType, patientID, recordID); err != nil {
		s.logger.Warn("Failed to publish reading event",
			zap.String("event_type", eventType),
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
	}
}

// ============================================
// 评分与关联
// ============================================

// CalculateHealthScore 计算评分（不落库）
func (s *HealthService) CalculateHealthScore(ctx context.Context, patientID string) (*models.HealthScore, error) {
	return s.evaluator.CalculateHealthScore(ctx, patientID)
}

// DetectHealthCorrelations 检测关联（不落库）
func (s *HealthService) DetectHealthCorrelations(ctx context.Context, patientID string) ([]models.HealthCorrelation, error) {
	return s.evaluator.DetectHealthCorrelations(ctx, patientID)
}

// RefreshHealthScore 计算评分与关联并落库、缓存、推送
// 同一患者同时只有一个刷新在进行，其余返回 ErrScoringInProgress
func (s *HealthService) RefreshHealthScore(ctx context.Context, patientID string) (*models.HealthScore, error) {
	score, _, err := s.refresh(ctx, patientID)
	return score, err
}

func (s *HealthService) refresh(ctx context.Context, patientID string) (*models.HealthScore, []models.HealthCorrelation, error) {
	token, err := s.cache.AcquireScoringLock(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err := s.cache.ReleaseScoringLock(context.Background(), patientID, token); err != nil {
			s.logger.Warn("Failed to release scoring lock",
				zap.String("patient_id", patientID),
				zap.Error(err),
			)
		}
	}()

	score, err := s.evaluator.CalculateHealthScore(ctx, patientID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to calculate health score: %w", err)
	}
	correlations, err := s.evaluator.DetectHealthCorrelations(ctx, patientID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to detect correlations: %w", err)
	}

	// 评分与关联同一事务写入，关联整体替换
	if err := s.store.SaveScoreWithCorrelations(ctx, score, correlations); err != nil {
		return nil, nil, err
	}

	if err := s.cache.SetLatestScore(ctx, score); err != nil {
		s.logger.Warn("Failed to cache score",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
	}
	if err := s.notifier.NotifyScore(ctx, score); err != nil {
		s.logger.Warn("Failed to notify score",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
	}

	s.logger.Info("Health score refreshed",
		zap.String("patient_id", patientID),
		zap.String("score_id", score.ID),
		zap.Int("overall_score", score.OverallScore),
		zap.String("risk_level", string(score.RiskLevel)),
		zap.Int("correlation_count", len(correlations)),
	)
	return score, correlations, nil
}

// HealthOverview 刷新评分并返回评分、关联与最近 30 次评分（升序）
// 评分正在被其他请求刷新时返回最近一次结果
func (s *HealthService) HealthOverview(ctx context.Context, patientID string) (*models.HealthOverview, error) {
	var overview *models.HealthOverview

	score, correlations, err := s.refresh(ctx, patientID)
	switch {
	case errors.Is(err, ErrScoringInProgress):
		if overview, err = s.LatestPersistedScore(ctx, patientID); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		overview = &models.HealthOverview{Score: score, Correlations: correlations}
	}

	history, err := s.store.Scores.ListHealthScores(ctx, patientID, models.Descending, repository.OverviewTrendLimit)
	if err != nil {
		return nil, err
	}

	overview.Trend = make([]models.ScorePoint, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		overview.Trend = append(overview.Trend, models.ScorePoint{
			CalculatedAt: history[i].CalculatedAt,
			OverallScore: history[i].OverallScore,
		})
	}
	return overview, nil
}

// LatestPersistedScore 最近一次评分（优先缓存）与最近 10 条关联；无评分时 Score 为 nil
func (s *HealthService) LatestPersistedScore(ctx context.Context, patientID string) (*models.HealthOverview, error) {
	score, err := s.cache.GetLatestScore(ctx, patientID)
	if err != nil {
		if !errors.Is(err, consumer.ErrCacheMiss) {
			s.logger.Warn("Failed to read cached score",
				zap.String("patient_id", patientID),
				zap.Error(err),
			)
		}
		if score, err = s.store.Scores.LatestHealthScore(ctx, patientID); err != nil {
			return nil, err
		}
	}

	overview := &models.HealthOverview{Score: score, Correlations: []models.HealthCorrelation{}}
	if score == nil {
		return overview, nil
	}

	correlations, err := s.store.Correlations.ListRecentCorrelations(ctx, patientID, repository.RecentCorrelationCap)
	if err != nil {
		return nil, err
	}
	overview.Correlations = correlations
	return overview, nil
}

// ============================================
// 医护人员
// ============================================

// ProviderAlerts 医护人员的告警列表
func (s *HealthService) ProviderAlerts(ctx context.Context, providerID string, acknowledged bool) ([]models.AnomalyAlert, error) {
	return s.store.Alerts.ListAlertsForProvider(ctx, providerID, acknowledged)
}

// AcknowledgeAlert 确认告警；不存在或不属于该医护人员时返回 ErrNotFound
func (s *HealthService) AcknowledgeAlert(ctx context.Context, alertID, providerID string) (*models.AnomalyAlert, error) {
	return s.store.Alerts.AcknowledgeAlert(ctx, alertID, providerID)
}

// ProviderPatients 分配给医护人员的患者
func (s *HealthService) ProviderPatients(ctx context.Context, providerID string) ([]models.PatientRef, error) {
	return s.store.Providers.PatientsForProvider(ctx, providerID)
}

// AssignPatient 将患者分配给医护人员
func (s *HealthService) AssignPatient(ctx context.Context, providerID, patientID string) error {
	return s.store.Providers.AssignPatient(ctx, providerID, patientID)
}

// ============================================
// AI 助手
// ============================================

// Chat 带患者上下文的助手对话，始终返回可展示的文本
func (s *HealthService) Chat(ctx context.Context, patientID, message string) string {
	pc := assistant.PatientContext{}

	if patient, err := s.store.Providers.PatientRef(ctx, patientID); err == nil {
		pc.FirstName = patient.FirstName
	}
	if v, err := s.store.Vitals.LatestVital(ctx, patientID); err == nil {
		pc.LatestVital = v
	}
	if sym, err := s.store.Symptoms.LatestSymptom(ctx, patientID); err == nil {
		pc.LatestSymptom = sym
	}
	if score, err := s.cache.GetLatestScore(ctx, patientID); err == nil {
		pc.LatestScore = score
	}

	return s.assistant.Chat(ctx, message, pc)
}
