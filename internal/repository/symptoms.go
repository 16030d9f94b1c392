package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"healthpulse-engine/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const symptomColumns = `id, patient_id, description, duration, affected_areas, notes,
	severity, urgency_score, potential_diagnoses, recorded_at, created_at`

// SymptomsRepository 症状报告仓库（symptoms 表）
type SymptomsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSymptomsRepository 创建症状仓库
func NewSymptomsRepository(db *sql.DB, logger *zap.Logger) *SymptomsRepository {
	return &SymptomsRepository{db: db, logger: logger}
}

// CreateSymptom 写入已分诊的症状报告
func (r *SymptomsRepository) CreateSymptom(ctx context.Context, s *models.SymptomReport) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.RecordedAt = recordedAtOrNow(s.RecordedAt)

	query := `
		INSERT INTO symptoms (
			id, patient_id, description, duration, affected_areas, notes,
			severity, urgency_score, potential_diagnoses, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		s.ID,
		s.PatientID,
		s.Description,
		nullString(s.Duration),
		pq.Array(s.AffectedAreas),
		nullString(s.Notes),
		string(s.Severity),
		s.UrgencyScore,
		pq.Array(s.PotentialDiagnoses),
		s.RecordedAt,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert symptom: %w", err)
	}

	r.logger.Debug("Symptom stored",
		zap.String("symptom_id", s.ID),
		zap.String("patient_id", s.PatientID),
		zap.String("severity", string(s.Severity)),
	)
	return nil
}

// LatestSymptom 最新一条症状，没有记录时返回 (nil, nil)
func (r *SymptomsRepository) LatestSymptom(ctx context.Context, patientID string) (*models.SymptomReport, error) {
	query := orderedQuery(`SELECT `+symptomColumns+` FROM symptoms WHERE patient_id = $1`, "recorded_at", models.Descending, 1)

	s, err := scanSymptom(r.db.QueryRowContext(ctx, query, patientID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest symptom: %w", err)
	}
	return s, nil
}

// ListSymptoms 按 recorded_at 排序的症状列表
func (r *SymptomsRepository) ListSymptoms(ctx context.Context, patientID string, order models.SortOrder, limit int) ([]models.SymptomReport, error) {
	query := orderedQuery(`SELECT `+symptomColumns+` FROM symptoms WHERE patient_id = $1`, "recorded_at", order, limit)

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list symptoms: %w", err)
	}
	defer rows.Close()

	var symptoms []models.SymptomReport
	for rows.Next() {
		s, err := scanSymptom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan symptom: %w", err)
		}
		symptoms = append(symptoms, *s)
	}
	return symptoms, rows.Err()
}

func scanSymptom(row rowScanner) (*models.SymptomReport, error) {
	var s models.SymptomReport
	var duration, notes sql.NullString
	var severity string

	if err := row.Scan(
		&s.ID,
		&s.PatientID,
		&s.Description,
		&duration,
		pq.Array(&s.AffectedAreas),
		&notes,
		&severity,
		&s.UrgencyScore,
		pq.Array(&s.PotentialDiagnoses),
		&s.RecordedAt,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}

	s.Duration = stringPtr(duration)
	s.Notes = stringPtr(notes)
	s.Severity = models.SeverityLevel(severity)
	return &s, nil
}
