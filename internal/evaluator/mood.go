package evaluator

import (
	"fmt"

	"healthpulse-engine/internal/models"
)

// AnalyzeMood 检查当前情绪打卡；previous 非空时额外检查与上一次的变化
func AnalyzeMood(current models.MoodCheckIn, previous *models.MoodCheckIn) AnalysisResult {
	var anomalies []string
	risk := 0

	if current.AnxietyLevel >= HighAnxietyLevel {
		anomalies = append(anomalies, "Very high anxiety levels detected")
		risk += weightHighAnxiety
	}
	if current.MoodLevel <= LowMoodLevel {
		anomalies = append(anomalies, "Significantly low mood")
		risk += weightLowMood
	}
	if current.SleepQuality <= PoorSleepQuality && current.SleepHours < ShortSleepHours {
		anomalies = append(anomalies, "Severe sleep deprivation")
		risk += weightSleepDeprived
	}
	if current.StressLevel >= HighStressLevel {
		anomalies = append(anomalies, "Very high stress levels")
		risk += weightHighStress
	}

	if previous != nil {
		moodChange := previous.MoodLevel - current.MoodLevel
		if abs(moodChange) >= MoodSwingDelta {
			direction := "improvement"
			if moodChange > 0 {
				direction = "decline"
			}
			anomalies = append(anomalies, fmt.Sprintf("Significant mood change detected (%s)", direction))
			risk += weightMoodSwing
		}

		if current.AnxietyLevel-previous.AnxietyLevel >= AnxietySpikeDelta {
			anomalies = append(anomalies, "Significant increase in anxiety")
			risk += weightAnxietySpike
		}
	}

	return AnalysisResult{
		Anomalies: anomalies,
		RiskScore: clampScore(risk),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
