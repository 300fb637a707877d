// Command seedadmin grants the admin role to an email address, creating the
// account when it does not exist yet so the owner can sign in with an OTP.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"bachat_backend/internal/config"
	"bachat_backend/internal/repository"
	"bachat_backend/internal/service"
	"bachat_backend/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email address of the admin (required)")
	name := flag.String("name", "Admin", "display name for a newly created admin")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logg, closer, err := logger.New(logger.Options{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	err = run(cfg, logg, *email, *name)
	closer.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *slog.Logger, email, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dsn, err := cfg.DB.DSN()
	if err != nil {
		logg.Error("database config invalid", slog.Any("error", err))
		return err
	}
	pool, err := config.ConnectDB(ctx, dsn, logg)
	if err != nil {
		logg.Error("database unavailable", slog.Any("error", err))
		return err
	}
	defer pool.Close()

	if err := config.AutoMigrate(ctx, pool, logg); err != nil {
		logg.Error("migration failed", slog.Any("error", err))
		return err
	}

	user, created, err := service.ProvisionAdmin(ctx, repository.NewUserRepository(pool), email, name, time.Now())
	if err != nil {
		logg.Error("failed to provision admin", slog.Any("error", err))
		return err
	}
	if created {
		logg.Info("admin user created", slog.String("user_id", user.ID), slog.String("email", user.Email))
	} else {
		logg.Info("existing user promoted to admin", slog.String("user_id", user.ID), slog.String("email", user.Email))
	}
	return nil
}
