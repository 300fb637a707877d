package service

import (
	"context"
	"fmt"
	"log/slog"

	"bachat_backend/internal/model"
	"bachat_backend/internal/repository"
)

// DefaultReportDays is the look-back of the admin analytics report
const DefaultReportDays = 7

// AnalyticsService records client telemetry and builds the admin usage report
type AnalyticsService interface {
	RecordActivity(ctx context.Context, userID string, req model.RecordActivityRequest) (*model.UserActivity, error)
	Report(ctx context.Context, days int) (*model.AnalyticsReport, error)
}

type analyticsService struct {
	activities repository.ActivityRepository
	users      repository.UserRepository
	clock      *Clock
	log        *slog.Logger
}

func NewAnalyticsService(activities repository.ActivityRepository, users repository.UserRepository, clock *Clock, log *slog.Logger) AnalyticsService {
	if log == nil {
		log = slog.Default()
	}
	return &analyticsService{activities: activities, users: users, clock: clock, log: log}
}

func (s *analyticsService) RecordActivity(ctx context.Context, userID string, req model.RecordActivityRequest) (*model.UserActivity, error) {
	switch req.Type {
	case model.ActivityAppOpen, model.ActivitySession:
	default:
		return nil, invalid("type", "must be app_open or session")
	}
	if req.Duration < 0 {
		return nil, invalid("duration", "must not be negative")
	}

	now := s.clock.Now()
	if req.Type == model.ActivityAppOpen {
		if err := s.users.UpdateLastLogin(ctx, userID, now); err != nil {
			s.log.Warn("failed to bump last login", slog.String("user_id", userID), slog.Any("error", err))
		}
	}

	activity := &model.UserActivity{
		UserID:   userID,
		Type:     req.Type,
		Duration: req.Duration,
		Date:     now,
		Metadata: req.Metadata,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	return activity, nil
}

// Report aggregates the last days calendar days, starting at midnight days ago.
func (s *analyticsService) Report(ctx context.Context, days int) (*model.AnalyticsReport, error) {
	if days <= 0 {
		days = DefaultReportDays
	}
	until := s.clock.Now()
	since := s.clock.Midnight().AddDate(0, 0, -days)
	tz := s.clock.Location().String()

	newUsers, err := s.activities.NewUsersByDay(ctx, since, until, tz)
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics report: %w", err)
	}
	activeUsers, err := s.activities.ActiveUsersByDay(ctx, since, until, tz)
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics report: %w", err)
	}
	sessions, err := s.activities.SessionStatsByDay(ctx, since, until, tz)
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics report: %w", err)
	}

	return &model.AnalyticsReport{
		NewUsers:           newUsers,
		ActiveUsers:        activeUsers,
		AvgSessionDuration: sessions,
	}, nil
}
