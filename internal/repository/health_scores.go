package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"healthpulse-engine/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const scoreColumns = `id, patient_id, overall_score, vital_score, symptom_score, mental_score,
	trend, risk_level, auto_alerts, calculated_at`

// HealthScoresRepository 健康评分仓库（health_scores 表，只追加）
type HealthScoresRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHealthScoresRepository 创建健康评分仓库
func NewHealthScoresRepository(db *sql.DB, logger *zap.Logger) *HealthScoresRepository {
	return &HealthScoresRepository{db: db, logger: logger}
}

// insertHealthScore 写入一次评分结果
func (r *HealthScoresRepository) insertHealthScore(ctx context.Context, exec execer, s *models.HealthScore) error {
	if s.ID == "" || s.PatientID == "" {
		return fmt.Errorf("health score id and patient_id are required")
	}

	query := `
		INSERT INTO health_scores (
			id, patient_id, overall_score, vital_score, symptom_score, mental_score,
			trend, risk_level, auto_alerts, calculated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := exec.ExecContext(ctx, query,
		s.ID,
		s.PatientID,
		s.OverallScore,
		s.VitalScore,
		s.SymptomScore,
		s.MentalScore,
		string(s.Trend),
		string(s.RiskLevel),
		pq.Array(s.AutoAlerts),
		s.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert health score: %w", err)
	}

	r.logger.Debug("Health score stored",
		zap.String("score_id", s.ID),
		zap.String("patient_id", s.PatientID),
		zap.Int("overall_score", s.OverallScore),
	)
	return nil
}

// LatestHealthScore 最近一次持久化的评分，没有记录时返回 (nil, nil)
func (r *HealthScoresRepository) LatestHealthScore(ctx context.Context, patientID string) (*models.HealthScore, error) {
	query := orderedQuery(`SELECT `+scoreColumns+` FROM health_scores WHERE patient_id = $1`, "calculated_at", models.Descending, 1)

	s, err := scanHealthScore(r.db.QueryRowContext(ctx, query, patientID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest health score: %w", err)
	}
	return s, nil
}

// ListHealthScores 按 calculated_at 排序的评分历史
func (r *HealthScoresRepository) ListHealthScores(ctx context.Context, patientID string, order models.SortOrder, limit int) ([]models.HealthScore, error) {
	query := orderedQuery(`SELECT `+scoreColumns+` FROM health_scores WHERE patient_id = $1`, "calculated_at", order, limit)

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list health scores: %w", err)
	}
	defer rows.Close()

	var scores []models.HealthScore
	for rows.Next() {
		s, err := scanHealthScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan health score: %w", err)
		}
		scores = append(scores, *s)
	}
	return scores, rows.Err()
}

func scanHealthScore(row rowScanner) (*models.HealthScore, error) {
	var s models.HealthScore
	var trend, risk string

	if err := row.Scan(
		&s.ID,
		&s.PatientID,
		&s.OverallScore,
		&s.VitalScore,
		&s.SymptomScore,
		&s.MentalScore,
		&trend,
		&risk,
		pq.Array(&s.AutoAlerts),
		&s.CalculatedAt,
	); err != nil {
		return nil, err
	}

	s.Trend = models.Trend(trend)
	s.RiskLevel = models.SeverityLevel(risk)
	if s.AutoAlerts == nil {
		s.AutoAlerts = []string{}
	}
	return &s, nil
}
