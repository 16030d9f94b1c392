package models

import "time"

// MoodCheckIn 情绪打卡（对应 mood_checkins 表）
type MoodCheckIn struct {
	ID           string    `json:"id" db:"id"`
	PatientID    string    `json:"patient_id" db:"patient_id"`
	MoodLevel    int       `json:"mood_level" db:"mood_level"`       // 1-5
	StressLevel  int       `json:"stress_level" db:"stress_level"`   // 0-10
	SleepQuality int       `json:"sleep_quality" db:"sleep_quality"` // 0-10
	SleepHours   float64   `json:"sleep_hours" db:"sleep_hours"`
	AnxietyLevel int       `json:"anxiety_level" db:"anxiety_level"` // 0-10
	Notes        *string   `json:"notes,omitempty" db:"notes"`
	RecordedAt   time.Time `json:"recorded_at" db:"recorded_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Validate 校验情绪打卡的取值范围
func (m *MoodCheckIn) Validate() error {
	if m.PatientID == "" {
		return invalid("patient_id", "required")
	}
	if m.MoodLevel < 1 || m.MoodLevel > 5 {
		return invalid("mood_level", "must be between 1 and 5")
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"stress_level", m.StressLevel},
		{"sleep_quality", m.SleepQuality},
		{"anxiety_level", m.AnxietyLevel},
	} {
		if f.value < 0 || f.value > 10 {
			return invalid(f.name, "must be between 0 and 10")
		}
	}
	if m.SleepHours < 0 {
		return invalid("sleep_hours", "must be non-negative")
	}
	return nil
}
