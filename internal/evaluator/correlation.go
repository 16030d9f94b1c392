package evaluator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"healthpulse-engine/internal/models"

	"github.com/google/uuid"
)

const (
	anxiousLevel          = 7
	elevatedSystolic      = 130
	stressWindow          = 24 * time.Hour
	stressConfidenceCap   = 0.9
	stressTimelapseHours  = 12
	poorSleepQuality      = 3
	sleepConfidenceCap    = 0.85
	sleepTimelapseHours   = 24
	moodDeclineDelta      = 2
	maxMoodDeclines       = 5
	moodVitalsConfidence  = 0.72
	moodVitalsTimelapseHr = 6
)

// DetectCorrelations 在患者完整历史（均按时间升序）中查找跨领域模式
// 三条规则相互独立，每条最多产生一条记录
func DetectCorrelations(patientID string, moods []models.MoodCheckIn, vitals []models.VitalReading, symptoms []models.SymptomReport, now time.Time) []models.HealthCorrelation {
	correlations := []models.HealthCorrelation{}

	if c := stressToBP(moods, vitals); c != nil {
		correlations = append(correlations, *c)
	}
	if c := sleepToSymptoms(moods, symptoms); c != nil {
		correlations = append(correlations, *c)
	}
	if c := moodToVitals(moods); c != nil {
		correlations = append(correlations, *c)
	}

	for i := range correlations {
		correlations[i].ID = uuid.New().String()
		correlations[i].PatientID = patientID
		correlations[i].DiscoveredAt = now
	}
	return correlations
}

// stressToBP 高焦虑打卡前后 24 小时内的收缩压升高
// 时间窗口以第一次高焦虑打卡为准
func stressToBP(moods []models.MoodCheckIn, vitals []models.VitalReading) *models.HealthCorrelation {
	var anxious []models.MoodCheckIn
	for _, m := range moods {
		if m.AnxietyLevel >= anxiousLevel {
			anxious = append(anxious, m)
		}
	}
	if len(anxious) == 0 {
		return nil
	}

	anchor := anxious[0].RecordedAt
	var evidence []string
	for _, v := range vitals {
		if absDuration(v.RecordedAt.Sub(anchor)) <= stressWindow && v.Systolic > elevatedSystolic {
			evidence = append(evidence, fmt.Sprintf("BP: %d/%d", v.Systolic, v.Diastolic))
		}
	}
	if len(evidence) == 0 {
		return nil
	}

	return &models.HealthCorrelation{
		CorrelationType: models.CorrelationStressToBP,
		Description:     "High anxiety correlates with elevated blood pressure within 24 hours",
		Confidence:      math.Min(stressConfidenceCap, float64(len(evidence))/float64(len(anxious))),
		TimelapseHours:  intPtr(stressTimelapseHours),
		Evidence:        evidence,
	}
}

// sleepToSymptoms 睡眠差与疲劳类症状同时出现
func sleepToSymptoms(moods []models.MoodCheckIn, symptoms []models.SymptomReport) *models.HealthCorrelation {
	poorSleep := 0
	for _, m := range moods {
		if m.SleepQuality <= poorSleepQuality && m.SleepHours < ShortSleepHours {
			poorSleep++
		}
	}

	fatigue := 0
	for _, s := range symptoms {
		desc := strings.ToLower(s.Description)
		if strings.Contains(desc, "fatigue") || strings.Contains(desc, "tired") {
			fatigue++
		}
	}

	if poorSleep == 0 || fatigue == 0 {
		return nil
	}

	return &models.HealthCorrelation{
		CorrelationType: models.CorrelationSleepToSymptoms,
		Description:     "Poor sleep quality frequently followed by fatigue symptoms",
		Confidence:      math.Min(sleepConfidenceCap, float64(fatigue)/float64(poorSleep)),
		TimelapseHours:  intPtr(sleepTimelapseHours),
		Evidence: []string{
			fmt.Sprintf("%d poor sleep nights", poorSleep),
			fmt.Sprintf("%d fatigue reports", fatigue),
		},
	}
}

// moodToVitals 相邻两次打卡情绪下降 >= 2，最多取前 5 次
func moodToVitals(moods []models.MoodCheckIn) *models.HealthCorrelation {
	var evidence []string
	for i := 1; i < len(moods) && len(evidence) < maxMoodDeclines; i++ {
		if moods[i-1].MoodLevel-moods[i].MoodLevel >= moodDeclineDelta {
			evidence = append(evidence, fmt.Sprintf("Mood change recorded at %s", moods[i].RecordedAt.Format(time.RFC3339)))
		}
	}
	if len(evidence) == 0 {
		return nil
	}

	return &models.HealthCorrelation{
		CorrelationType: models.CorrelationMoodToVitals,
		Description:     "Mood deterioration correlates with increased heart rate and blood pressure",
		Confidence:      moodVitalsConfidence,
		TimelapseHours:  intPtr(moodVitalsTimelapseHr),
		Evidence:        evidence,
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func intPtr(i int) *int {
	return &i
}
