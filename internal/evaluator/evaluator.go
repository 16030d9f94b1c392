package evaluator

import (
	"context"
	"fmt"
	"time"

	"healthpulse-engine/internal/models"

	"go.uber.org/zap"
)

// RecordStore 评分引擎依赖的只读记录库
// 最新记录不存在时返回 (nil, nil)
type RecordStore interface {
	LatestVital(ctx context.Context, patientID string) (*models.VitalReading, error)
	LatestSymptom(ctx context.Context, patientID string) (*models.SymptomReport, error)
	LatestMood(ctx context.Context, patientID string) (*models.MoodCheckIn, error)
	VitalHistory(ctx context.Context, patientID string, order models.SortOrder) ([]models.VitalReading, error)
	SymptomHistory(ctx context.Context, patientID string, order models.SortOrder) ([]models.SymptomReport, error)
	MoodHistory(ctx context.Context, patientID string, order models.SortOrder) ([]models.MoodCheckIn, error)
	ScoreHistory(ctx context.Context, patientID string, order models.SortOrder) ([]models.HealthScore, error)
}

// Evaluator 评分引擎：读取记录后调用纯函数计算，本身不持有状态、不写库
type Evaluator struct {
	store  RecordStore
	logger *zap.Logger
	now    func() time.Time
}

// NewEvaluator 创建评分引擎
func NewEvaluator(store RecordStore, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CalculateHealthScore 读取最新记录与历史评分并计算综合评分
// 结果需要由调用方立即持久化
func (e *Evaluator) CalculateHealthScore(ctx context.Context, patientID string) (*models.HealthScore, error) {
	in := ScoreInput{PatientID: patientID, Now: e.now()}

	var err error
	if in.LatestVital, err = e.store.LatestVital(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to get latest vital: %w", err)
	}
	if in.LatestSymptom, err = e.store.LatestSymptom(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to get latest symptom: %w", err)
	}
	if in.LatestMood, err = e.store.LatestMood(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to get latest mood: %w", err)
	}
	if in.History, err = e.store.ScoreHistory(ctx, patientID, models.Ascending); err != nil {
		return nil, fmt.Errorf("failed to get score history: %w", err)
	}

	score := ComputeHealthScore(in)

	e.logger.Debug("Health score calculated",
		zap.String("patient_id", patientID),
		zap.Int("overall_score", score.OverallScore),
		zap.String("trend", string(score.Trend)),
		zap.String("risk_level", string(score.RiskLevel)),
		zap.Int("history_size", len(in.History)),
	)

	return &score, nil
}

// DetectHealthCorrelations 读取患者完整历史并检测关联模式
func (e *Evaluator) DetectHealthCorrelations(ctx context.Context, patientID string) ([]models.HealthCorrelation, error) {
	moods, err := e.store.MoodHistory(ctx, patientID, models.Ascending)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood history: %w", err)
	}
	vitals, err := e.store.VitalHistory(ctx, patientID, models.Ascending)
	if err != nil {
		return nil, fmt.Errorf("failed to get vital history: %w", err)
	}
	symptoms, err := e.store.SymptomHistory(ctx, patientID, models.Ascending)
	if err != nil {
		return nil, fmt.Errorf("failed to get symptom history: %w", err)
	}

	correlations := DetectCorrelations(patientID, moods, vitals, symptoms, e.now())

	e.logger.Debug("Health correlations detected",
		zap.String("patient_id", patientID),
		zap.Int("correlation_count", len(correlations)),
	)

	return correlations, nil
}
