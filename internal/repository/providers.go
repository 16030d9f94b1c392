package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"healthpulse-engine/internal/models"

	"go.uber.org/zap"
)

// ProvidersRepository 医护人员与患者的分配关系（provider_patients / users 表）
type ProvidersRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProvidersRepository 创建分配关系仓库
func NewProvidersRepository(db *sql.DB, logger *zap.Logger) *ProvidersRepository {
	return &ProvidersRepository{db: db, logger: logger}
}

// ProvidersForPatient 负责该患者的医护人员 ID
func (r *ProvidersRepository) ProvidersForPatient(ctx context.Context, patientID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT provider_id FROM provider_patients WHERE patient_id = $1 ORDER BY provider_id`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer rows.Close()

	var providerIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan provider id: %w", err)
		}
		providerIDs = append(providerIDs, id)
	}
	return providerIDs, rows.Err()
}

// PatientRef 患者姓名；患者不存在时返回 ErrNotFound
func (r *ProvidersRepository) PatientRef(ctx context.Context, patientID string) (*models.PatientRef, error) {
	var p models.PatientRef
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name FROM users WHERE id = $1 AND role = 'PATIENT'`, patientID,
	).Scan(&p.ID, &p.FirstName, &p.LastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("patient %s: %w", patientID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &p, nil
}

// PatientsForProvider 分配给该医护人员的患者（按名字排序）
func (r *ProvidersRepository) PatientsForProvider(ctx context.Context, providerID string) ([]models.PatientRef, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name
		FROM provider_patients pp
		JOIN users u ON u.id = pp.patient_id
		WHERE pp.provider_id = $1
		ORDER BY u.first_name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	patients := []models.PatientRef{}
	for rows.Next() {
		var p models.PatientRef
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// AssignPatient 建立分配关系（已存在时不报错）
func (r *ProvidersRepository) AssignPatient(ctx context.Context, providerID, patientID string) error {
	if _, err := r.PatientRef(ctx, patientID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO provider_patients (provider_id, patient_id)
		VALUES ($1, $2)
		ON CONFLICT (provider_id, patient_id) DO NOTHING
	`, providerID, patientID)
	if err != nil {
		return fmt.Errorf("failed to assign patient: %w", err)
	}

	r.logger.Info("Patient assigned",
		zap.String("provider_id", providerID),
		zap.String("patient_id", patientID),
	)
	return nil
}
