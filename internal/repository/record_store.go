package repository

import (
	"context"
	"database/sql"

	"healthpulse-engine/internal/evaluator"
	"healthpulse-engine/internal/models"

	"go.uber.org/zap"
)

var _ evaluator.RecordStore = (*RecordStore)(nil)

// RecordStore 组合各表仓库，供评分引擎读取
type RecordStore struct {
	Vitals       *VitalsRepository
	Symptoms     *SymptomsRepository
	Moods        *MoodsRepository
	Scores       *HealthScoresRepository
	Correlations *CorrelationsRepository
	Alerts       *AnomalyAlertsRepository
	Providers    *ProvidersRepository

	db *sql.DB
}

// NewRecordStore 基于同一个连接池创建全部仓库
func NewRecordStore(db *sql.DB, logger *zap.Logger) *RecordStore {
	return &RecordStore{
		Vitals:       NewVitalsRepository(db, logger),
		Symptoms:     NewSymptomsRepository(db, logger),
		Moods:        NewMoodsRepository(db, logger),
		Scores:       NewHealthScoresRepository(db, logger),
		Correlations: NewCorrelationsRepository(db, logger),
		Alerts:       NewAnomalyAlertsRepository(db, logger),
		Providers:    NewProvidersRepository(db, logger),
		db:           db,
	}
}

func (s *RecordStore) LatestVital(ctx context.Context, patientID string) (*models.VitalReading, error) {
	return s.Vitals.LatestVital(ctx, patientID)
}

func (s *RecordStore) LatestSymptom(ctx context.Context, patientID string) (*models.SymptomReport, error) {
	return s.Symptoms.LatestSymptom(ctx, patientID)
}

func (s *RecordStore) LatestMood(ctx context.Context, patientID string) (*models.MoodCheckIn, error) {
	return s.Moods.LatestMood(ctx, patientID)
}

func (s *RecordStore) VitalHistory(ctx context.Context, patientID string, order models.SortOrder) ([]models.VitalReading, error) {
	return s.Vitals.ListVitals(ctx, patientID, order, 0)
}

func (s *RecordStore) SymptomHistory(ctx context.Context, patientID string, order models.SortOrder) ([]models.SymptomReport, error) {
	return s.Symptoms.ListSymptoms(ctx, patientID, order, 0)
}

func (s *RecordStore) MoodHistory(ctx context.Context, patientID string, order models.SortOrder) ([]models.MoodCheckIn, error) {
	return s.Moods.ListMoods(ctx, patientID, order, 0)
}

func (s *RecordStore) ScoreHistory(ctx context.Context, patientID string, order models.SortOrder) ([]models.HealthScore, error) {
	return s.Scores.ListHealthScores(ctx, patientID, order, 0)
}

// SaveScoreWithCorrelations 在一个事务中写入评分并替换患者的关联
func (s *RecordStore) SaveScoreWithCorrelations(ctx context.Context, score *models.HealthScore, correlations []models.HealthCorrelation) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.Scores.insertHealthScore(ctx, tx, score); err != nil {
			return err
		}
		return s.Correlations.replaceCorrelations(ctx, tx, score.PatientID, correlations)
	})
}
