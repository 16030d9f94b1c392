package models

import (
	"strings"
	"time"
)

// SymptomReport 症状报告（对应 symptoms 表）
// Severity / UrgencyScore / PotentialDiagnoses 由分诊结果填充，不是输入
type SymptomReport struct {
	ID                 string        `json:"id" db:"id"`
	PatientID          string        `json:"patient_id" db:"patient_id"`
	Description        string        `json:"description" db:"description"`
	Duration           *string       `json:"duration,omitempty" db:"duration"` // 如 "2 days"
	AffectedAreas      []string      `json:"affected_areas,omitempty" db:"affected_areas"`
	Notes              *string       `json:"notes,omitempty" db:"notes"`
	Severity           SeverityLevel `json:"severity" db:"severity"`
	UrgencyScore       int           `json:"urgency_score" db:"urgency_score"`
	PotentialDiagnoses []string      `json:"potential_diagnoses" db:"potential_diagnoses"`
	RecordedAt         time.Time     `json:"recorded_at" db:"recorded_at"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
}

// SymptomTriageResult 症状分诊结果
type SymptomTriageResult struct {
	UrgencyScore       int           `json:"urgency_score"`
	Severity           SeverityLevel `json:"severity"`
	PotentialDiagnoses []string      `json:"potential_diagnoses"`
	RecommendedAction  string        `json:"recommended_action"`
}

// ApplyTriage 将分诊结果写入报告
func (s *SymptomReport) ApplyTriage(r SymptomTriageResult) {
	s.Severity = r.Severity
	s.UrgencyScore = r.UrgencyScore
	s.PotentialDiagnoses = append([]string(nil), r.PotentialDiagnoses...)
}

// Validate 校验症状报告
func (s *SymptomReport) Validate() error {
	if s.PatientID == "" {
		return invalid("patient_id", "required")
	}
	if strings.TrimSpace(s.Description) == "" {
		return invalid("description", "symptom description required")
	}
	if s.UrgencyScore < 0 || s.UrgencyScore > 100 {
		return invalid("urgency_score", "must be between 0 and 100")
	}
	if s.Severity != "" && !s.Severity.Valid() {
		return invalid("severity", string(s.Severity))
	}
	return nil
}
