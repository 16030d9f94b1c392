package evaluator

import (
	"testing"
	"time"

	"healthpulse-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreHistory(values ...int) []models.HealthScore {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	history := make([]models.HealthScore, 0, len(values))
	for i, v := range values {
		history = append(history, models.HealthScore{
			OverallScore: v,
			CalculatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return history
}

func TestComputeHealthScore_NoRecords(t *testing.T) {
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	score := ComputeHealthScore(ScoreInput{PatientID: "patient-1", Now: now})

	assert.NotEmpty(t, score.ID)
	assert.Equal(t, "patient-1", score.PatientID)
	assert.Equal(t, 60, score.VitalScore)
	assert.Equal(t, 90, score.SymptomScore)
	assert.Equal(t, 70, score.MentalScore)
	assert.Equal(t, 73, score.OverallScore)
	assert.Equal(t, models.SeverityMedium, score.RiskLevel)
	assert.Equal(t, models.TrendStable, score.Trend)
	assert.NotNil(t, score.AutoAlerts)
	assert.Empty(t, score.AutoAlerts)
	assert.Equal(t, now, score.CalculatedAt)
}

func TestComputeHealthScore_AllDomains(t *testing.T) {
	score := ComputeHealthScore(ScoreInput{
		PatientID:     "patient-1",
		LatestVital:   &models.VitalReading{Systolic: 190, Diastolic: 125, HeartRate: 135, Temperature: 37},
		LatestSymptom: &models.SymptomReport{Description: "chest pain", UrgencyScore: 95, Severity: models.SeverityCritical},
		LatestMood:    &models.MoodCheckIn{MoodLevel: 1, StressLevel: 9, SleepQuality: 1, SleepHours: 3, AnxietyLevel: 9},
		Now:           time.Now(),
	})

	assert.Equal(t, 50, score.VitalScore)
	assert.Equal(t, 20, score.SymptomScore)
	assert.Equal(t, 46, score.MentalScore)
	assert.Equal(t, 39, score.OverallScore)
	assert.Equal(t, models.SeverityCritical, score.RiskLevel)
	assert.Equal(t, []string{"Vital signs anomaly detected", "Mental health concern flagged"}, score.AutoAlerts)
}

func TestComputeHealthScore_HealthyPatient(t *testing.T) {
	score := ComputeHealthScore(ScoreInput{
		PatientID:     "patient-1",
		LatestVital:   &models.VitalReading{Systolic: 115, Diastolic: 75, HeartRate: 70, Temperature: 36.8},
		LatestSymptom: &models.SymptomReport{Description: "itchy skin", UrgencyScore: 35, Severity: models.SeverityLow},
		LatestMood:    &models.MoodCheckIn{MoodLevel: 5, StressLevel: 1, SleepQuality: 8, SleepHours: 8, AnxietyLevel: 1},
		History:       scoreHistory(70, 72, 71, 73),
	})

	assert.Equal(t, 100, score.VitalScore)
	assert.Equal(t, 65, score.SymptomScore)
	assert.Equal(t, 100, score.MentalScore)
	assert.Equal(t, 88, score.OverallScore)
	assert.Equal(t, models.SeverityLow, score.RiskLevel)
	assert.Equal(t, models.TrendStable, score.Trend)
	assert.Empty(t, score.AutoAlerts)
	assert.False(t, score.CalculatedAt.IsZero())
}

func TestComputeHealthScore_DomainFloor(t *testing.T) {
	score := ComputeHealthScore(ScoreInput{
		LatestVital: &models.VitalReading{Systolic: 200, Diastolic: 130, HeartRate: 150, Temperature: 39.5,
			BloodGlucose: floatPtr(300), OxygenSaturation: floatPtr(80)},
		LatestSymptom: &models.SymptomReport{UrgencyScore: 100},
	})

	assert.Equal(t, 20, score.VitalScore)
	assert.Equal(t, 20, score.SymptomScore)
}

func TestComputeHealthScore_ScoresWithinBounds(t *testing.T) {
	for mood := 1; mood <= 5; mood++ {
		for stress := 0; stress <= 10; stress += 2 {
			for quality := 0; quality <= 10; quality += 2 {
				score := ComputeHealthScore(ScoreInput{
					LatestMood: &models.MoodCheckIn{MoodLevel: mood, StressLevel: stress, SleepQuality: quality, SleepHours: 6},
				})
				for _, v := range []int{score.OverallScore, score.VitalScore, score.SymptomScore, score.MentalScore} {
					assert.GreaterOrEqual(t, v, 0)
					assert.LessOrEqual(t, v, 100)
				}
			}
		}
	}
}

func TestMentalScore(t *testing.T) {
	tests := []struct {
		name string
		mood models.MoodCheckIn
		want int
	}{
		{"clamped to 100", models.MoodCheckIn{MoodLevel: 5, StressLevel: 0, SleepQuality: 8}, 100},
		{"moderate", models.MoodCheckIn{MoodLevel: 3, StressLevel: 5, SleepQuality: 4}, 77},
		{"distressed", models.MoodCheckIn{MoodLevel: 1, StressLevel: 9, SleepQuality: 1}, 46},
		{"sleep quality below 7 scales", models.MoodCheckIn{MoodLevel: 2, StressLevel: 4, SleepQuality: 6}, 76},
		{"stress component floors at 0", models.MoodCheckIn{MoodLevel: 1, StressLevel: 10, SleepQuality: 0}, 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MentalScore(tt.mood))
		})
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name    string
		history []models.HealthScore
		want    models.Trend
	}{
		{"empty", nil, models.TrendStable},
		{"single", scoreHistory(40), models.TrendStable},
		{"improving", scoreHistory(50, 55, 60, 90, 95, 92), models.TrendImproving},
		{"declining", scoreHistory(90, 95, 92, 50, 55, 60), models.TrendDeclining},
		{"within threshold", scoreHistory(70, 72), models.TrendStable},
		{"exactly threshold", scoreHistory(70, 75), models.TrendStable},
		{"odd length uses floor split", scoreHistory(80, 80, 60, 60, 60), models.TrendDeclining},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTrend(tt.history))
		})
	}
}

func TestComputeHealthScore_TrendFromHistory(t *testing.T) {
	score := ComputeHealthScore(ScoreInput{History: scoreHistory(50, 55, 60, 90, 95, 92)})
	assert.Equal(t, models.TrendImproving, score.Trend)
}

func TestRiskLevelFor(t *testing.T) {
	tests := []struct {
		overall int
		want    models.SeverityLevel
	}{
		{100, models.SeverityLow},
		{80, models.SeverityLow},
		{79, models.SeverityMedium},
		{60, models.SeverityMedium},
		{59, models.SeverityHigh},
		{40, models.SeverityHigh},
		{39, models.SeverityCritical},
		{0, models.SeverityCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevelFor(tt.overall), "overall=%d", tt.overall)
	}
}

func TestRoundHalfUp(t *testing.T) {
	require.Equal(t, 3, roundHalfUp(2.5))
	assert.Equal(t, 73, roundHalfUp(220.0/3))
	assert.Equal(t, 74, roundHalfUp(221.0/3))
	assert.Equal(t, 0, roundHalfUp(0.49))
}
