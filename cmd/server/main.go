package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bachat_backend/internal/config"
	"bachat_backend/internal/handler"
	"bachat_backend/internal/health"
	"bachat_backend/internal/middleware"
	"bachat_backend/internal/provider"
	"bachat_backend/internal/ratelimit"
	"bachat_backend/internal/repository"
	"bachat_backend/internal/service"
	"bachat_backend/internal/utils"
	"bachat_backend/pkg/logger"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.AppEnv}); err != nil {
			log.Fatalf("Failed to init sentry: %v", err)
		}
	}

	logg, logCloser, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Sentry: cfg.SentryDSN != ""})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	slog.SetDefault(logg)

	err = run(cfg, logg)
	if err != nil {
		logg.Error("server stopped with error", slog.Any("error", err))
	}
	sentry.Flush(2 * time.Second)
	logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.UploadsDir, os.ModePerm); err != nil {
		return err
	}
	logg.Info("uploads directory ready", slog.String("dir", cfg.UploadsDir))

	// --- Database Connection ---
	dsn, err := cfg.DB.DSN()
	if err != nil {
		return err
	}
	dbPool, err := config.ConnectDB(ctx, dsn, logg)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(ctx, dbPool, logg); err != nil {
		return err
	}

	checker := health.NewChecker(logg)
	checker.AddCheck("database", health.NewDBChecker(dbPool))

	// --- Rate limiter ---
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer redisClient.Close()
		limiter = ratelimit.NewRedisLimiter(redisClient, logg)
		checker.AddCheck("redis", health.NewRedisChecker(redisClient))
		logg.Info("otp throttling backed by redis", slog.String("addr", cfg.RedisAddr))
	} else {
		memLimiter := ratelimit.NewMemoryLimiter(logg)
		go memLimiter.RunCleaner(ctx, time.Minute, cfg.OTPRequestWindow)
		limiter = memLimiter
		logg.Info("otp throttling kept in memory")
	}

	// --- External providers ---
	authOpts := service.AuthOptions{
		Limiter:     limiter,
		OTPTTL:      cfg.OTPTTL,
		OTPLimit:    ratelimit.Rule{Limit: cfg.OTPRequestLimit, Window: cfg.OTPRequestWindow},
		VerifyLimit: ratelimit.Rule{Limit: cfg.OTPVerifyLimit, Window: cfg.OTPRequestWindow},
		Logger:      logg,
	}
	if cfg.GoogleClientID != "" {
		verifier, err := provider.NewGoogleVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			return err
		}
		authOpts.Verifier = verifier
	} else {
		logg.Warn("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}
	if cfg.MailerConfigured() {
		authOpts.Mailer = provider.NewSMTPMailer(provider.SMTPConfig{
			Host: cfg.SMTPHost, Port: cfg.SMTPPort, User: cfg.SMTPUser, Pass: cfg.SMTPPass,
		})
	} else {
		logg.Warn("SMTP credentials not set, OTP email disabled")
	}

	var pusher service.Pusher
	if fcm, err := provider.NewFCMPusher(ctx, cfg.FirebaseCredentialsFile); err != nil {
		logg.Warn("firebase setup failed, notifications disabled", slog.Any("error", err))
	} else {
		pusher = fcm
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiration)
	clock := service.NewClock(time.Now, loc)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	expenseRepo := repository.NewExpenseRepository(dbPool)
	udhaarRepo := repository.NewUdhaarRepository(dbPool)
	activityRepo := repository.NewActivityRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, jwtUtil, authOpts)
	expenseService := service.NewExpenseService(expenseRepo, clock)
	udhaarService := service.NewUdhaarService(udhaarRepo, clock)
	adminService := service.NewAdminService(userRepo, expenseRepo, udhaarRepo, clock)
	analyticsService := service.NewAnalyticsService(activityRepo, userRepo, clock, logg)
	notificationService := service.NewNotificationService(userRepo, pusher, cfg.UploadsDir, clock, logg)

	// --- Setup Gin Router ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.Router{
		Auth:           handler.NewAuthHandler(authService, logg),
		Expenses:       handler.NewExpenseHandler(expenseService, logg),
		Udhaar:         handler.NewUdhaarHandler(udhaarService, logg),
		Admin:          handler.NewAdminHandler(adminService, analyticsService, logg),
		Notifications:  handler.NewNotificationHandler(notificationService, logg),
		Health:         handler.NewHealthHandler(checker),
		AuthMiddleware: middleware.JWTAuthMiddleware(jwtUtil, userRepo, logg),
		UploadsDir:     cfg.UploadsDir,
		Logger:         logg,
	}

	// --- Start Server ---
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info("server starting", slog.String("port", cfg.Port), slog.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logg.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logg.Info("server exiting")
	return nil
}
