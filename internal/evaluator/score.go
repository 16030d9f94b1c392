package evaluator

import (
	"math"
	"time"

	"healthpulse-engine/internal/models"

	"github.com/google/uuid"
)

const (
	alertVitalAnomaly = "Vital signs anomaly detected"
	alertMentalHealth = "Mental health concern flagged"
)

// ScoreInput 综合评分输入：各领域最新记录（可为空）与历史评分（按时间升序）
type ScoreInput struct {
	PatientID     string
	LatestVital   *models.VitalReading
	LatestSymptom *models.SymptomReport
	LatestMood    *models.MoodCheckIn
	History       []models.HealthScore
	Now           time.Time
}

// ComputeHealthScore 计算综合健康评分（纯函数，不落库）
func ComputeHealthScore(in ScoreInput) models.HealthScore {
	vital := defaultVitalScore
	if in.LatestVital != nil {
		vital = maxInt(minDomainScore, 100-AnalyzeVitals(*in.LatestVital).RiskScore)
	}

	symptom := defaultSymptomScore
	if in.LatestSymptom != nil {
		symptom = maxInt(minDomainScore, 100-in.LatestSymptom.UrgencyScore)
	}

	mental := defaultMentalScore
	if in.LatestMood != nil {
		mental = MentalScore(*in.LatestMood)
	}

	overall := roundHalfUp(float64(vital+symptom+mental) / 3)

	// 自动告警：重新分析最新记录，情绪检查不带上一次打卡
	alerts := []string{}
	if in.LatestVital != nil && AnalyzeVitals(*in.LatestVital).HasAnomalies() {
		alerts = append(alerts, alertVitalAnomaly)
	}
	if in.LatestMood != nil && AnalyzeMood(*in.LatestMood, nil).HasAnomalies() {
		alerts = append(alerts, alertMentalHealth)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	return models.HealthScore{
		ID:           uuid.New().String(),
		PatientID:    in.PatientID,
		OverallScore: overall,
		VitalScore:   vital,
		SymptomScore: symptom,
		MentalScore:  mental,
		Trend:        ClassifyTrend(in.History),
		RiskLevel:    RiskLevelFor(overall),
		AutoAlerts:   alerts,
		CalculatedAt: now,
	}
}

// MentalScore 情绪、压力、睡眠加权得分，上限 100
func MentalScore(m models.MoodCheckIn) int {
	moodComponent := float64(m.MoodLevel)/5*40 + 30
	stressComponent := math.Max(0, float64(30-m.StressLevel*3))
	sleepComponent := 20.0
	if m.SleepQuality < 7 {
		sleepComponent = math.Max(5, float64(m.SleepQuality*2))
	}

	score := roundHalfUp(moodComponent + stressComponent + sleepComponent)
	if score > 100 {
		score = 100
	}
	return score
}

// ClassifyTrend 按中点拆分历史评分（升序），比较新旧两半的平均分
func ClassifyTrend(history []models.HealthScore) models.Trend {
	if len(history) < 2 {
		return models.TrendStable
	}

	mid := len(history) / 2
	oldAvg := averageOverall(history[:mid])
	newAvg := averageOverall(history[mid:])

	switch {
	case newAvg > oldAvg+trendThreshold:
		return models.TrendImproving
	case newAvg < oldAvg-trendThreshold:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// RiskLevelFor 综合得分到风险等级的映射
func RiskLevelFor(overall int) models.SeverityLevel {
	switch {
	case overall >= 80:
		return models.SeverityLow
	case overall >= 60:
		return models.SeverityMedium
	case overall >= 40:
		return models.SeverityHigh
	default:
		return models.SeverityCritical
	}
}

func averageOverall(scores []models.HealthScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s.OverallScore
	}
	return float64(sum) / float64(len(scores))
}

// roundHalfUp .5 向上取整（与前端展示保持一致）
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
