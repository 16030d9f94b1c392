package service

import (
	"context"
	"sort"

	"healthpulse-engine/internal/export"
	"healthpulse-engine/internal/models"
	"healthpulse-engine/internal/repository"
)

const (
	vitalEventTitle = "Vital Signs Log"
	moodEventTitle  = "Mood Check-in"
)

// PatientTimeline 患者时间线：各类记录各取最近 50 条，合并后按时间倒序保留前 50 条
func (s *HealthService) PatientTimeline(ctx context.Context, patientID string) ([]models.TimelineEvent, error) {
	limit := repository.TimelineLimit

	vitals, err := s.store.Vitals.ListVitals(ctx, patientID, models.Descending, limit)
	if err != nil {
		return nil, err
	}
	symptoms, err := s.store.Symptoms.ListSymptoms(ctx, patientID, models.Descending, limit)
	if err != nil {
		return nil, err
	}
	moods, err := s.store.Moods.ListMoods(ctx, patientID, models.Descending, limit)
	if err != nil {
		return nil, err
	}
	alerts, err := s.store.Alerts.ListAlertsForPatient(ctx, patientID, limit)
	if err != nil {
		return nil, err
	}

	return mergeTimeline(vitals, symptoms, moods, alerts, limit), nil
}

// ExportTimeline 导出患者时间线与评分历史（XLSX）
func (s *HealthService) ExportTimeline(ctx context.Context, patientID string) ([]byte, error) {
	patient, err := s.store.Providers.PatientRef(ctx, patientID)
	if err != nil {
		return nil, err
	}

	events, err := s.PatientTimeline(ctx, patientID)
	if err != nil {
		return nil, err
	}

	scores, err := s.store.Scores.ListHealthScores(ctx, patientID, models.Descending, repository.TimelineLimit)
	if err != nil {
		return nil, err
	}

	return export.GenerateTimelineExport(*patient, events, scores)
}

func mergeTimeline(
	vitals []models.VitalReading,
	symptoms []models.SymptomReport,
	moods []models.MoodCheckIn,
	alerts []models.AnomalyAlert,
	limit int,
) []models.TimelineEvent {
	events := make([]models.TimelineEvent, 0, len(vitals)+len(symptoms)+len(moods)+len(alerts))

	for _, v := range vitals {
		events = append(events, models.TimelineEvent{
			ID:        v.ID,
			Timestamp: v.RecordedAt,
			Type:      models.TimelineVital,
			Title:     vitalEventTitle,
		})
	}
	for _, sym := range symptoms {
		severity := sym.Severity
		events = append(events, models.TimelineEvent{
			ID:        sym.ID,
			Timestamp: sym.RecordedAt,
			Type:      models.TimelineSymptom,
			Title:     sym.Description,
			Severity:  &severity,
		})
	}
	for _, m := range moods {
		events = append(events, models.TimelineEvent{
			ID:        m.ID,
			Timestamp: m.RecordedAt,
			Type:      models.TimelineMood,
			Title:     moodEventTitle,
		})
	}
	for _, a := range alerts {
		severity := a.Severity
		events = append(events, models.TimelineEvent{
			ID:        a.ID,
			Timestamp: a.CreatedAt,
			Type:      models.TimelineAlert,
			Title:     a.Description,
			Severity:  &severity,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events
}
