package models

import "time"

// AnomalyType 异常告警类型
type AnomalyType string

const (
	AnomalyVitalSpike     AnomalyType = "VITAL_SPIKE"
	AnomalyUnusualSymptom AnomalyType = "UNUSUAL_SYMPTOM"
	AnomalyMoodShift      AnomalyType = "MOOD_SHIFT"
	AnomalyScoreDrop      AnomalyType = "SCORE_DROP"
)

// AnomalyAlert 推送给医护人员的异常告警（对应 anomaly_alerts 表）
type AnomalyAlert struct {
	ID              string        `json:"id" db:"id"`
	PatientID       string        `json:"patient_id" db:"patient_id"`
	ProviderID      string        `json:"provider_id" db:"provider_id"`
	AnomalyType     AnomalyType   `json:"anomaly_type" db:"anomaly_type"`
	Description     string        `json:"description" db:"description"`
	Severity        SeverityLevel `json:"severity" db:"severity"`
	SuggestedAction string        `json:"suggested_action" db:"suggested_action"`
	Acknowledged    bool          `json:"acknowledged" db:"acknowledged"`
	AcknowledgedBy  *string       `json:"acknowledged_by,omitempty" db:"acknowledged_by"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	AcknowledgedAt  *time.Time    `json:"acknowledged_at,omitempty" db:"acknowledged_at"`
}

// PatientRef 患者基本信息（告警文案使用）
type PatientRef struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Name 患者全名
func (p PatientRef) Name() string {
	return p.FirstName + " " + p.LastName
}
