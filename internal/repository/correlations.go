package repository

import (
	"context"
	"database/sql"
	"fmt"

	"healthpulse-engine/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// CorrelationsRepository 健康关联仓库（health_correlations 表）
type CorrelationsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCorrelationsRepository 创建关联仓库
func NewCorrelationsRepository(db *sql.DB, logger *zap.Logger) *CorrelationsRepository {
	return &CorrelationsRepository{db: db, logger: logger}
}

// replaceCorrelations 用本次检测结果替换患者的全部关联（关联每次按完整历史重新计算）
func (r *CorrelationsRepository) replaceCorrelations(ctx context.Context, exec execer, patientID string, correlations []models.HealthCorrelation) error {
	if patientID == "" {
		return fmt.Errorf("patient_id is required")
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM health_correlations WHERE patient_id = $1`, patientID); err != nil {
		return fmt.Errorf("failed to clear correlations: %w", err)
	}

	query := `
		INSERT INTO health_correlations (
			id, patient_id, correlation_type, description, confidence,
			timelapse_hours, evidence, discovered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, c := range correlations {
		if _, err := exec.ExecContext(ctx, query,
			c.ID,
			patientID,
			string(c.CorrelationType),
			c.Description,
			c.Confidence,
			nullInt(c.TimelapseHours),
			pq.Array(c.Evidence),
			c.DiscoveredAt,
		); err != nil {
			return fmt.Errorf("failed to insert correlation %s: %w", c.CorrelationType, err)
		}
	}

	r.logger.Debug("Correlations replaced",
		zap.String("patient_id", patientID),
		zap.Int("count", len(correlations)),
	)
	return nil
}

// ListRecentCorrelations 最近发现的关联（discovered_at 倒序）
func (r *CorrelationsRepository) ListRecentCorrelations(ctx context.Context, patientID string, limit int) ([]models.HealthCorrelation, error) {
	query := orderedQuery(`
		SELECT id, patient_id, correlation_type, description, confidence,
		       timelapse_hours, evidence, discovered_at
		FROM health_correlations
		WHERE patient_id = $1`, "discovered_at", models.Descending, limit)

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list correlations: %w", err)
	}
	defer rows.Close()

	correlations := []models.HealthCorrelation{}
	for rows.Next() {
		var c models.HealthCorrelation
		var ctype string
		var timelapse sql.NullInt64
		if err := rows.Scan(
			&c.ID,
			&c.PatientID,
			&ctype,
			&c.Description,
			&c.Confidence,
			&timelapse,
			pq.Array(&c.Evidence),
			&c.DiscoveredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan correlation: %w", err)
		}
		c.CorrelationType = models.CorrelationType(ctype)
		c.TimelapseHours = intPtr(timelapse)
		correlations = append(correlations, c)
	}
	return correlations, rows.Err()
}
