package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database a few times
	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(ctx, dsn)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				logger.Info("connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn("failed to connect to database",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", maxRetries),
			slog.Duration("retry_in", retryInterval),
			slog.Any("error", err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// Schema is applied on every start; each statement is idempotent.
const Schema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		google_id TEXT UNIQUE NOT NULL,
		email TEXT NOT NULL,
		full_name TEXT,
		mobile_number TEXT,
		profile_picture TEXT,
		fcm_token TEXT,
		role TEXT NOT NULL CHECK (role IN ('user', 'admin')) DEFAULT 'user',
		otp_hash TEXT,
		otp_expires TIMESTAMP WITH TIME ZONE,
		device_info JSONB,
		last_ip TEXT,
		last_login TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (lower(email));
	CREATE INDEX IF NOT EXISTS idx_users_role_created_at ON users(role, created_at);

	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount NUMERIC(14, 2) NOT NULL CHECK (amount > 0),
		category VARCHAR(100) NOT NULL,
		date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		notes TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses(user_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category);

	CREATE TABLE IF NOT EXISTS udhaar (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type VARCHAR(4) NOT NULL CHECK (type IN ('LENE', 'DENE')),
		person_name TEXT NOT NULL,
		amount NUMERIC(14, 2) NOT NULL CHECK (amount > 0),
		date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		notes TEXT,
		is_settled BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_udhaar_user_date ON udhaar(user_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_udhaar_unsettled ON udhaar(is_settled) WHERE is_settled = FALSE;

	CREATE TABLE IF NOT EXISTS user_activities (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type VARCHAR(20) NOT NULL CHECK (type IN ('app_open', 'session')),
		duration BIGINT NOT NULL DEFAULT 0,
		date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		metadata JSONB,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_user_activities_type_date ON user_activities(type, date);

    -- Function to update updated_at column
    CREATE OR REPLACE FUNCTION update_updated_at_column()
    RETURNS TRIGGER AS $$
    BEGIN
       NEW.updated_at = NOW();
       RETURN NEW;
    END;
    $$ language 'plpgsql';

    DO $$
    DECLARE
        t TEXT;
    BEGIN
        FOREACH t IN ARRAY ARRAY['users', 'expenses', 'udhaar'] LOOP
            IF NOT EXISTS (
                SELECT 1
                FROM pg_trigger
                WHERE tgname = 'set_' || t || '_updated_at' AND tgrelid = t::regclass
            ) THEN
                EXECUTE format(
                    'CREATE TRIGGER %I BEFORE UPDATE ON %I FOR EACH ROW EXECUTE FUNCTION update_updated_at_column()',
                    'set_' || t || '_updated_at', t);
            END IF;
        END LOOP;
    END
    $$;
`

// AutoMigrate creates tables if they don't exist
func AutoMigrate(ctx context.Context, db *pgxpool.Pool, logger *slog.Logger) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	logger.Info("AutoMigrate applied successfully")
	return nil
}
