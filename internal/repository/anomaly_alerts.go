package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"healthpulse-engine/internal/models"

	"go.uber.org/zap"
)

const alertColumns = `id, patient_id, provider_id, anomaly_type, description, severity,
	suggested_action, acknowledged, acknowledged_by, created_at, acknowledged_at`

// AnomalyAlertsRepository 异常告警仓库（anomaly_alerts 表）
type AnomalyAlertsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAnomalyAlertsRepository 创建告警仓库
func NewAnomalyAlertsRepository(db *sql.DB, logger *zap.Logger) *AnomalyAlertsRepository {
	return &AnomalyAlertsRepository{db: db, logger: logger}
}

// CreateAlerts 在一个事务中写入告警（每个医护人员一条）
func (r *AnomalyAlertsRepository) CreateAlerts(ctx context.Context, alerts []models.AnomalyAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	query := `
		INSERT INTO anomaly_alerts (
			id, patient_id, provider_id, anomaly_type, description, severity,
			suggested_action, acknowledged, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, a := range alerts {
			if _, err := tx.ExecContext(ctx, query,
				a.ID,
				a.PatientID,
				a.ProviderID,
				string(a.AnomalyType),
				a.Description,
				string(a.Severity),
				a.SuggestedAction,
				a.Acknowledged,
				a.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert alert for provider %s: %w", a.ProviderID, err)
			}
		}
		return nil
	})
}

// ListAlertsForProvider 医护人员的告警（按确认状态过滤，created_at 倒序）
func (r *AnomalyAlertsRepository) ListAlertsForProvider(ctx context.Context, providerID string, acknowledged bool) ([]models.AnomalyAlert, error) {
	if providerID == "" {
		return nil, fmt.Errorf("provider_id is required")
	}

	query := orderedQuery(`SELECT `+alertColumns+` FROM anomaly_alerts WHERE provider_id = $1 AND acknowledged = $2`,
		"created_at", models.Descending, 0)

	return r.queryAlerts(ctx, query, providerID, acknowledged)
}

// ListAlertsForPatient 患者的全部告警（created_at 倒序）
func (r *AnomalyAlertsRepository) ListAlertsForPatient(ctx context.Context, patientID string, limit int) ([]models.AnomalyAlert, error) {
	query := orderedQuery(`SELECT `+alertColumns+` FROM anomaly_alerts WHERE patient_id = $1`,
		"created_at", models.Descending, limit)

	return r.queryAlerts(ctx, query, patientID)
}

// AcknowledgeAlert 确认告警；告警不存在或不属于该医护人员时返回 ErrNotFound
func (r *AnomalyAlertsRepository) AcknowledgeAlert(ctx context.Context, alertID, providerID string) (*models.AnomalyAlert, error) {
	query := `
		UPDATE anomaly_alerts
		SET acknowledged = TRUE,
		    acknowledged_by = $2,
		    acknowledged_at = $3
		WHERE id = $1
		  AND provider_id = $2
		RETURNING ` + alertColumns

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, alertID, providerID, time.Now()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("alert %s: %w", alertID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	r.logger.Info("Alert acknowledged",
		zap.String("alert_id", alertID),
		zap.String("provider_id", providerID),
	)
	return alert, nil
}

func (r *AnomalyAlertsRepository) queryAlerts(ctx context.Context, query string, args ...any) ([]models.AnomalyAlert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.AnomalyAlert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func scanAlert(row rowScanner) (*models.AnomalyAlert, error) {
	var a models.AnomalyAlert
	var anomalyType, severity string
	var acknowledgedBy sql.NullString
	var acknowledgedAt sql.NullTime

	if err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ProviderID,
		&anomalyType,
		&a.Description,
		&severity,
		&a.SuggestedAction,
		&a.Acknowledged,
		&acknowledgedBy,
		&a.CreatedAt,
		&acknowledgedAt,
	); err != nil {
		return nil, err
	}

	a.AnomalyType = models.AnomalyType(anomalyType)
	a.Severity = models.SeverityLevel(severity)
	a.AcknowledgedBy = stringPtr(acknowledgedBy)
	a.AcknowledgedAt = timePtr(acknowledgedAt)
	return &a, nil
}
