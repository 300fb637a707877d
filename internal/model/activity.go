package model

import "time"

type ActivityType string

const (
	ActivityAppOpen ActivityType = "app_open"
	ActivitySession ActivityType = "session"
)

// UserActivity is an append-only telemetry record
type UserActivity struct {
	ID        string         `json:"_id"`
	UserID    string         `json:"user"`
	Type      ActivityType   `json:"type"`
	Duration  int64          `json:"duration"` // seconds, only meaningful for sessions
	Date      time.Time      `json:"date"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

type RecordActivityRequest struct {
	Type     ActivityType   `json:"type" binding:"required,oneof=app_open session"`
	Duration int64          `json:"duration" binding:"gte=0"`
	Metadata map[string]any `json:"metadata"`
}

// DailyCount is one bucket of a per-day report, keyed by YYYY-MM-DD
type DailyCount struct {
	Date  string `json:"_id"`
	Count int64  `json:"count"`
}

type DailySessionStat struct {
	Date          string  `json:"_id"`
	AvgDuration   float64 `json:"avgDuration"`
	TotalSessions int64   `json:"totalSessions"`
}

// AnalyticsReport is the admin view of usage over the last N days
type AnalyticsReport struct {
	NewUsers           []DailyCount       `json:"newUsers"`
	ActiveUsers        []DailyCount       `json:"activeUsers"`
	AvgSessionDuration []DailySessionStat `json:"avgSessionDuration"`
}
