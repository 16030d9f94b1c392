package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"healthpulse-engine/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const vitalColumns = `id, patient_id, systolic, diastolic, heart_rate, temperature,
	blood_glucose, oxygen_saturation, respiratory_rate, recorded_at, created_at`

// VitalsRepository 生命体征仓库（vital_signs 表）
type VitalsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVitalsRepository 创建生命体征仓库
func NewVitalsRepository(db *sql.DB, logger *zap.Logger) *VitalsRepository {
	return &VitalsRepository{db: db, logger: logger}
}

// CreateVital 校验并写入一条读数，回填 ID / RecordedAt / CreatedAt
func (r *VitalsRepository) CreateVital(ctx context.Context, v *models.VitalReading) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	v.RecordedAt = recordedAtOrNow(v.RecordedAt)

	query := `
		INSERT INTO vital_signs (
			id, patient_id, systolic, diastolic, heart_rate, temperature,
			blood_glucose, oxygen_saturation, respiratory_rate, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		v.ID,
		v.PatientID,
		v.Systolic,
		v.Diastolic,
		v.HeartRate,
		v.Temperature,
		nullFloat(v.BloodGlucose),
		nullFloat(v.OxygenSaturation),
		nullInt(v.RespiratoryRate),
		v.RecordedAt,
	).Scan(&v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vital reading: %w", err)
	}

	r.logger.Debug("Vital reading stored",
		zap.String("vital_id", v.ID),
		zap.String("patient_id", v.PatientID),
	)
	return nil
}

// LatestVital 最新一条读数，没有记录时返回 (nil, nil)
func (r *VitalsRepository) LatestVital(ctx context.Context, patientID string) (*models.VitalReading, error) {
	query := orderedQuery(`SELECT `+vitalColumns+` FROM vital_signs WHERE patient_id = $1`, "recorded_at", models.Descending, 1)

	v, err := scanVital(r.db.QueryRowContext(ctx, query, patientID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest vital: %w", err)
	}
	return v, nil
}

// ListVitals 按 recorded_at 排序的读数列表
func (r *VitalsRepository) ListVitals(ctx context.Context, patientID string, order models.SortOrder, limit int) ([]models.VitalReading, error) {
	query := orderedQuery(`SELECT `+vitalColumns+` FROM vital_signs WHERE patient_id = $1`, "recorded_at", order, limit)

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vitals: %w", err)
	}
	defer rows.Close()

	var vitals []models.VitalReading
	for rows.Next() {
		v, err := scanVital(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vital: %w", err)
		}
		vitals = append(vitals, *v)
	}
	return vitals, rows.Err()
}

func scanVital(row rowScanner) (*models.VitalReading, error) {
	var v models.VitalReading
	var glucose, spo2 sql.NullFloat64
	var respiratory sql.NullInt64

	if err := row.Scan(
		&v.ID,
		&v.PatientID,
		&v.Systolic,
		&v.Diastolic,
		&v.HeartRate,
		&v.Temperature,
		&glucose,
		&spo2,
		&respiratory,
		&v.RecordedAt,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}

	v.BloodGlucose = floatPtr(glucose)
	v.OxygenSaturation = floatPtr(spo2)
	v.RespiratoryRate = intPtr(respiratory)
	return &v, nil
}
