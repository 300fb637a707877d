package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bachat_backend/internal/model"

	"github.com/google/uuid"
)

// ActivityRepository stores telemetry and answers the per-day admin reports.
// Days are bucketed in the named time zone (an IANA name understood by Postgres).
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.UserActivity) error
	NewUsersByDay(ctx context.Context, since, until time.Time, tz string) ([]model.DailyCount, error)
	ActiveUsersByDay(ctx context.Context, since, until time.Time, tz string) ([]model.DailyCount, error)
	SessionStatsByDay(ctx context.Context, since, until time.Time, tz string) ([]model.DailySessionStat, error)
}

type activityRepository struct {
	db DBTX
}

func NewActivityRepository(db DBTX) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, a *model.UserActivity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	var metadata []byte
	if a.Metadata != nil {
		var err error
		if metadata, err = json.Marshal(a.Metadata); err != nil {
			return fmt.Errorf("failed to encode activity metadata: %w", err)
		}
	}
	sql := `INSERT INTO user_activities (id, user_id, type, duration, date, metadata)
            VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
	err := r.db.QueryRow(ctx, sql, a.ID, a.UserID, string(a.Type), a.Duration, a.Date, metadata).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (r *activityRepository) dailyCounts(ctx context.Context, sql string, args ...any) ([]model.DailyCount, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []model.DailyCount{}
	for rows.Next() {
		var c model.DailyCount
		if err := rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// NewUsersByDay counts sign-ups of regular users per day
func (r *activityRepository) NewUsersByDay(ctx context.Context, since, until time.Time, tz string) ([]model.DailyCount, error) {
	sql := `SELECT to_char(created_at AT TIME ZONE $3, 'YYYY-MM-DD') AS day, COUNT(*)
            FROM users
            WHERE created_at >= $1 AND created_at <= $2 AND role = 'user'
            GROUP BY day ORDER BY day`
	counts, err := r.dailyCounts(ctx, sql, since, until, tz)
	if err != nil {
		return nil, fmt.Errorf("failed to count new users by day: %w", err)
	}
	return counts, nil
}

// ActiveUsersByDay counts distinct users that opened the app per day
func (r *activityRepository) ActiveUsersByDay(ctx context.Context, since, until time.Time, tz string) ([]model.DailyCount, error) {
	sql := `SELECT to_char(date AT TIME ZONE $3, 'YYYY-MM-DD') AS day, COUNT(DISTINCT user_id)
            FROM user_activities
            WHERE date >= $1 AND date <= $2 AND type = 'app_open'
            GROUP BY day ORDER BY day`
	counts, err := r.dailyCounts(ctx, sql, since, until, tz)
	if err != nil {
		return nil, fmt.Errorf("failed to count active users by day: %w", err)
	}
	return counts, nil
}

// SessionStatsByDay averages recorded session durations per day
func (r *activityRepository) SessionStatsByDay(ctx context.Context, since, until time.Time, tz string) ([]model.DailySessionStat, error) {
	sql := `SELECT to_char(date AT TIME ZONE $3, 'YYYY-MM-DD') AS day, COALESCE(AVG(duration), 0)::float8, COUNT(*)
            FROM user_activities
            WHERE date >= $1 AND date <= $2 AND type = 'session'
            GROUP BY day ORDER BY day`
	rows, err := r.db.Query(ctx, sql, since, until, tz)
	if err != nil {
		return nil, fmt.Errorf("failed to get session stats: %w", err)
	}
	defer rows.Close()

	stats := []model.DailySessionStat{}
	for rows.Next() {
		var s model.DailySessionStat
		if err := rows.Scan(&s.Date, &s.AvgDuration, &s.TotalSessions); err != nil {
			return nil, fmt.Errorf("failed to scan session stats: %w", err)
		}
		stats = append(stats, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session stats: %w", err)
	}
	return stats, nil
}
