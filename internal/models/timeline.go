package models

import "time"

// TimelineEventType 时间线事件类型
type TimelineEventType string

const (
	TimelineVital   TimelineEventType = "VITAL"
	TimelineSymptom TimelineEventType = "SYMPTOM"
	TimelineMood    TimelineEventType = "MOOD"
	TimelineAlert   TimelineEventType = "ALERT"
)

// TimelineEvent 患者时间线条目
type TimelineEvent struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Type      TimelineEventType `json:"type"`
	Title     string            `json:"title"`
	Severity  *SeverityLevel    `json:"severity,omitempty"`
}
