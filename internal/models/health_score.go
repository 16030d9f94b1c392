package models

import "time"

// Trend 健康评分趋势
type Trend string

const (
	TrendImproving Trend = "IMPROVING"
	TrendStable    Trend = "STABLE"
	TrendDeclining Trend = "DECLINING"
)

// HealthScore 综合健康评分（对应 health_scores 表，每次计算新建，不修改）
type HealthScore struct {
	ID           string        `json:"id" db:"id"`
	PatientID    string        `json:"patient_id" db:"patient_id"`
	OverallScore int           `json:"overall_score" db:"overall_score"`
	VitalScore   int           `json:"vital_score" db:"vital_score"`
	SymptomScore int           `json:"symptom_score" db:"symptom_score"`
	MentalScore  int           `json:"mental_score" db:"mental_score"`
	Trend        Trend         `json:"trend" db:"trend"`
	RiskLevel    SeverityLevel `json:"risk_level" db:"risk_level"`
	AutoAlerts   []string      `json:"auto_alerts" db:"auto_alerts"`
	CalculatedAt time.Time     `json:"calculated_at" db:"calculated_at"`
}

// ScorePoint 趋势图数据点
type ScorePoint struct {
	CalculatedAt time.Time `json:"calculated_at"`
	OverallScore int       `json:"overall_score"`
}

// HealthOverview 患者评分总览（评分 + 关联 + 最近评分序列）
type HealthOverview struct {
	Score        *HealthScore        `json:"score"`
	Correlations []HealthCorrelation `json:"correlations"`
	Trend        []ScorePoint        `json:"trend"`
}
