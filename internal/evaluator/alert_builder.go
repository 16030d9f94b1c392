package evaluator

import (
	"fmt"
	"time"

	"healthpulse-engine/internal/models"

	"github.com/google/uuid"
)

// 实时告警阈值（高于评分用的参考范围，只对明显危险的读数告警）
const (
	spikeSystolic      = 180
	spikeDiastolic     = 120
	spikeHeartRate     = 120
	spikeHighHeartRate = 130
)

// AlertCandidate 待分发给医护人员的告警内容
type AlertCandidate struct {
	AnomalyType models.AnomalyType
	Severity    models.SeverityLevel
	Description string
}

// EvaluateVitalAlert 生命体征突变告警
func EvaluateVitalAlert(v models.VitalReading) *AlertCandidate {
	if v.Systolic <= spikeSystolic && v.Diastolic <= spikeDiastolic && v.HeartRate <= spikeHeartRate {
		return nil
	}

	severity := models.SeverityMedium
	if v.HeartRate > spikeHighHeartRate {
		severity = models.SeverityHigh
	}

	return &AlertCandidate{
		AnomalyType: models.AnomalyVitalSpike,
		Severity:    severity,
		Description: fmt.Sprintf("Critical vital signs - BP: %d/%d, HR: %d bpm", v.Systolic, v.Diastolic, v.HeartRate),
	}
}

// EvaluateSymptomAlert 高紧急度症状告警（分诊结果为 HIGH 或 CRITICAL）
func EvaluateSymptomAlert(s models.SymptomReport) *AlertCandidate {
	if s.Severity != models.SeverityHigh && s.Severity != models.SeverityCritical {
		return nil
	}

	return &AlertCandidate{
		AnomalyType: models.AnomalyUnusualSymptom,
		Severity:    s.Severity,
		Description: s.Description,
	}
}

// EvaluateMoodAlert 心理健康告警
func EvaluateMoodAlert(m models.MoodCheckIn) *AlertCandidate {
	if m.MoodLevel > LowMoodLevel && m.AnxietyLevel < HighAnxietyLevel && m.StressLevel < HighStressLevel {
		return nil
	}

	return &AlertCandidate{
		AnomalyType: models.AnomalyMoodShift,
		Severity:    models.SeverityHigh,
		Description: fmt.Sprintf("Mental health concern: Low mood: %d, Anxiety: %d, Stress: %d",
			m.MoodLevel, m.AnxietyLevel, m.StressLevel),
	}
}

// AlertBuilder 告警构建器（每个负责该患者的医护人员一条）
type AlertBuilder struct {
	patient models.PatientRef
	now     func() time.Time
}

// NewAlertBuilder 创建告警构建器
func NewAlertBuilder(patient models.PatientRef) *AlertBuilder {
	return &AlertBuilder{
		patient: patient,
		now:     time.Now,
	}
}

// BuildAlerts 为每个医护人员生成一条未确认的告警
func (b *AlertBuilder) BuildAlerts(candidate *AlertCandidate, providerIDs []string) []models.AnomalyAlert {
	if candidate == nil || len(providerIDs) == 0 {
		return nil
	}

	now := b.now()
	alerts := make([]models.AnomalyAlert, 0, len(providerIDs))
	for _, providerID := range providerIDs {
		alerts = append(alerts, models.AnomalyAlert{
			ID:              uuid.New().String(),
			PatientID:       b.patient.ID,
			ProviderID:      providerID,
			AnomalyType:     candidate.AnomalyType,
			Description:     candidate.Description,
			Severity:        candidate.Severity,
			SuggestedAction: fmt.Sprintf("Review patient %s", b.patient.Name()),
			CreatedAt:       now,
		})
	}
	return alerts
}
