package models

import "time"

// CorrelationType 关联类型
type CorrelationType string

const (
	CorrelationMoodToVitals    CorrelationType = "MOOD_TO_VITALS"
	CorrelationSleepToSymptoms CorrelationType = "SLEEP_TO_SYMPTOMS"
	CorrelationStressToBP      CorrelationType = "STRESS_TO_BP"
	CorrelationFatiguePattern  CorrelationType = "FATIGUE_PATTERN"
)

// HealthCorrelation 健康信号关联（对应 health_correlations 表）
type HealthCorrelation struct {
	ID              string          `json:"id" db:"id"`
	PatientID       string          `json:"patient_id" db:"patient_id"`
	CorrelationType CorrelationType `json:"correlation_type" db:"correlation_type"`
	Description     string          `json:"description" db:"description"`
	Confidence      float64         `json:"confidence" db:"confidence"` // 0.0-1.0
	TimelapseHours  *int            `json:"timelapse_hours,omitempty" db:"timelapse_hours"`
	Evidence        []string        `json:"evidence" db:"evidence"`
	DiscoveredAt    time.Time       `json:"discovered_at" db:"discovered_at"`
}
