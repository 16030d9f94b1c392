package service

import (
	"fmt"
	"testing"
	"time"

	"healthpulse-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTimeline_NewestFirst(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	vitals := []models.VitalReading{{ID: "vital-1", RecordedAt: t0}}
	symptoms := []models.SymptomReport{{ID: "sym-1", Description: "mild cough", Severity: models.SeverityMedium, RecordedAt: t0.Add(2 * time.Hour)}}
	moods := []models.MoodCheckIn{{ID: "mood-1", RecordedAt: t0.Add(time.Hour)}}
	alerts := []models.AnomalyAlert{{ID: "alert-1", Description: "Critical vital signs - BP: 190/125, HR: 135 bpm",
		Severity: models.SeverityHigh, CreatedAt: t0.Add(3 * time.Hour)}}

	events := mergeTimeline(vitals, symptoms, moods, alerts, 50)

	require.Len(t, events, 4)
	assert.Equal(t, "alert-1", events[0].ID)
	assert.Equal(t, models.TimelineAlert, events[0].Type)
	require.NotNil(t, events[0].Severity)
	assert.Equal(t, models.SeverityHigh, *events[0].Severity)

	assert.Equal(t, "sym-1", events[1].ID)
	assert.Equal(t, "mild cough", events[1].Title)
	require.NotNil(t, events[1].Severity)
	assert.Equal(t, models.SeverityMedium, *events[1].Severity)

	assert.Equal(t, "mood-1", events[2].ID)
	assert.Equal(t, moodEventTitle, events[2].Title)
	assert.Nil(t, events[2].Severity)

	assert.Equal(t, "vital-1", events[3].ID)
	assert.Equal(t, vitalEventTitle, events[3].Title)
	assert.Nil(t, events[3].Severity)
}

func TestMergeTimeline_Truncates(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var vitals []models.VitalReading
	var moods []models.MoodCheckIn
	for i := 0; i < 40; i++ {
		vitals = append(vitals, models.VitalReading{ID: fmt.Sprintf("vital-%d", i), RecordedAt: t0.Add(time.Duration(i) * time.Minute)})
		moods = append(moods, models.MoodCheckIn{ID: fmt.Sprintf("mood-%d", i), RecordedAt: t0.Add(time.Duration(i)*time.Minute + 30*time.Second)})
	}

	events := mergeTimeline(vitals, nil, moods, nil, 50)

	require.Len(t, events, 50)
	assert.Equal(t, "mood-39", events[0].ID)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.After(events[i-1].Timestamp))
	}
}

func TestMergeTimeline_Empty(t *testing.T) {
	events := mergeTimeline(nil, nil, nil, nil, 50)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}
