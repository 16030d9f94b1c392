package evaluator

import (
	"testing"
	"time"

	"healthpulse-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var correlationBase = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return correlationBase.Add(time.Duration(hours) * time.Hour)
}

// calmMood 不触发任何关联规则的打卡
func calmMood(hours, moodLevel, anxiety int) models.MoodCheckIn {
	return models.MoodCheckIn{
		MoodLevel:    moodLevel,
		AnxietyLevel: anxiety,
		SleepQuality: 8,
		SleepHours:   8,
		RecordedAt:   at(hours),
	}
}

func vital(hours, systolic, diastolic int) models.VitalReading {
	return models.VitalReading{Systolic: systolic, Diastolic: diastolic, HeartRate: 80, Temperature: 36.8, RecordedAt: at(hours)}
}

func findCorrelation(t *testing.T, cs []models.HealthCorrelation, ct models.CorrelationType) models.HealthCorrelation {
	t.Helper()
	for _, c := range cs {
		if c.CorrelationType == ct {
			return c
		}
	}
	require.Failf(t, "correlation not found", "type %s", ct)
	return models.HealthCorrelation{}
}

func TestDetectCorrelations_Empty(t *testing.T) {
	cs := DetectCorrelations("patient-1", nil, nil, nil, time.Now())

	assert.NotNil(t, cs)
	assert.Empty(t, cs)
}

func TestDetectCorrelations_StressToBP(t *testing.T) {
	moods := []models.MoodCheckIn{calmMood(0, 3, 8)}
	vitals := []models.VitalReading{
		vital(-20, 135, 85),
		vital(1, 125, 80), // 未升高
		vital(2, 140, 90),
		vital(30, 150, 95), // 窗口外
	}
	now := at(48)

	cs := DetectCorrelations("patient-1", moods, vitals, nil, now)
	require.Len(t, cs, 1)

	c := cs[0]
	assert.Equal(t, models.CorrelationStressToBP, c.CorrelationType)
	assert.Equal(t, []string{"BP: 135/85", "BP: 140/90"}, c.Evidence)
	assert.InDelta(t, 0.9, c.Confidence, 1e-9)
	require.NotNil(t, c.TimelapseHours)
	assert.Equal(t, 12, *c.TimelapseHours)
	assert.Equal(t, "patient-1", c.PatientID)
	assert.Equal(t, now, c.DiscoveredAt)
	assert.NotEmpty(t, c.ID)
}

func TestDetectCorrelations_StressToBPWindowAnchoredOnFirstAnxious(t *testing.T) {
	moods := []models.MoodCheckIn{
		calmMood(0, 3, 7),
		calmMood(48, 3, 9),
		calmMood(96, 3, 9),
	}
	// 只有第一次高焦虑打卡附近的读数计入
	vitals := []models.VitalReading{
		vital(12, 145, 92),
		vital(49, 160, 100),
	}

	cs := DetectCorrelations("patient-1", moods, vitals, nil, at(100))
	c := findCorrelation(t, cs, models.CorrelationStressToBP)

	assert.Equal(t, []string{"BP: 145/92"}, c.Evidence)
	assert.InDelta(t, 1.0/3.0, c.Confidence, 1e-9)
}

func TestDetectCorrelations_StressToBPNeedsElevatedReading(t *testing.T) {
	moods := []models.MoodCheckIn{calmMood(0, 3, 9)}
	vitals := []models.VitalReading{vital(1, 130, 85)}

	assert.Empty(t, DetectCorrelations("patient-1", moods, vitals, nil, at(2)))
}

func TestDetectCorrelations_SleepToSymptoms(t *testing.T) {
	moods := []models.MoodCheckIn{
		{MoodLevel: 3, SleepQuality: 3, SleepHours: 4.9, RecordedAt: at(0)},
		{MoodLevel: 3, SleepQuality: 1, SleepHours: 3, RecordedAt: at(24)},
		{MoodLevel: 3, SleepQuality: 3, SleepHours: 5, RecordedAt: at(48)}, // 时长不满足
	}
	symptoms := []models.SymptomReport{
		{Description: "Feeling tired all morning", RecordedAt: at(10)},
		{Description: "FATIGUE and aches", RecordedAt: at(30)},
		{Description: "headache", RecordedAt: at(50)},
	}

	cs := DetectCorrelations("patient-1", moods, nil, symptoms, at(60))
	require.Len(t, cs, 1)

	c := cs[0]
	assert.Equal(t, models.CorrelationSleepToSymptoms, c.CorrelationType)
	assert.Equal(t, []string{"2 poor sleep nights", "2 fatigue reports"}, c.Evidence)
	assert.InDelta(t, 0.85, c.Confidence, 1e-9)
	require.NotNil(t, c.TimelapseHours)
	assert.Equal(t, 24, *c.TimelapseHours)
}

func TestDetectCorrelations_SleepToSymptomsRatio(t *testing.T) {
	moods := []models.MoodCheckIn{
		{MoodLevel: 3, SleepQuality: 2, SleepHours: 4, RecordedAt: at(0)},
		{MoodLevel: 3, SleepQuality: 2, SleepHours: 4, RecordedAt: at(24)},
		{MoodLevel: 3, SleepQuality: 2, SleepHours: 4, RecordedAt: at(48)},
		{MoodLevel: 3, SleepQuality: 2, SleepHours: 4, RecordedAt: at(72)},
	}
	symptoms := []models.SymptomReport{{Description: "tired", RecordedAt: at(5)}}

	c := findCorrelation(t, DetectCorrelations("patient-1", moods, nil, symptoms, at(80)), models.CorrelationSleepToSymptoms)
	assert.InDelta(t, 0.25, c.Confidence, 1e-9)
}

func TestDetectCorrelations_MoodToVitals(t *testing.T) {
	moods := []models.MoodCheckIn{
		calmMood(0, 5, 1),
		calmMood(24, 3, 1), // 下降 2
		calmMood(48, 2, 1), // 下降 1
		calmMood(72, 4, 1),
		calmMood(96, 1, 1), // 下降 3
	}

	cs := DetectCorrelations("patient-1", moods, nil, nil, at(100))
	require.Len(t, cs, 1)

	c := cs[0]
	assert.Equal(t, models.CorrelationMoodToVitals, c.CorrelationType)
	assert.Equal(t, []string{
		"Mood change recorded at " + at(24).Format(time.RFC3339),
		"Mood change recorded at " + at(96).Format(time.RFC3339),
	}, c.Evidence)
	assert.InDelta(t, 0.72, c.Confidence, 1e-9)
	require.NotNil(t, c.TimelapseHours)
	assert.Equal(t, 6, *c.TimelapseHours)
}

func TestDetectCorrelations_MoodToVitalsLimitedToFive(t *testing.T) {
	var moods []models.MoodCheckIn
	for i := 0; i < 12; i++ {
		level := 5
		if i%2 == 1 {
			level = 3
		}
		moods = append(moods, calmMood(i*12, level, 1))
	}

	c := findCorrelation(t, DetectCorrelations("patient-1", moods, nil, nil, at(200)), models.CorrelationMoodToVitals)
	assert.Len(t, c.Evidence, 5)
	assert.Equal(t, "Mood change recorded at "+at(12).Format(time.RFC3339), c.Evidence[0])
}

func TestDetectCorrelations_AllRules(t *testing.T) {
	moods := []models.MoodCheckIn{
		{MoodLevel: 5, AnxietyLevel: 2, SleepQuality: 8, SleepHours: 8, RecordedAt: at(0)},
		{MoodLevel: 2, AnxietyLevel: 8, SleepQuality: 2, SleepHours: 4, RecordedAt: at(24)},
	}
	vitals := []models.VitalReading{vital(30, 150, 95)}
	symptoms := []models.SymptomReport{{Description: "fatigue", RecordedAt: at(26)}}

	cs := DetectCorrelations("patient-1", moods, vitals, symptoms, at(40))
	require.Len(t, cs, 3)

	assert.Equal(t, models.CorrelationStressToBP, cs[0].CorrelationType)
	assert.Equal(t, models.CorrelationSleepToSymptoms, cs[1].CorrelationType)
	assert.Equal(t, models.CorrelationMoodToVitals, cs[2].CorrelationType)

	ids := map[string]bool{}
	for _, c := range cs {
		assert.GreaterOrEqual(t, c.Confidence, 0.0)
		assert.LessOrEqual(t, c.Confidence, 1.0)
		ids[c.ID] = true
	}
	assert.Len(t, ids, 3)
}
