package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bachat_backend/internal/model"
	"bachat_backend/internal/repository"
	"bachat_backend/pkg/metrics"
)

// MaxImageSize caps notification image uploads
const MaxImageSize = 5 * 1024 * 1024 // 5MB

var allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// Pusher hands a notification to the push transport
type Pusher interface {
	Send(ctx context.Context, msg model.PushMessage) (*model.PushResult, error)
}

// NotificationService broadcasts admin push notifications
type NotificationService interface {
	// Send pushes to the listed users, or to every user with a device token when none are listed.
	// image is optional; when present it is stored and served below publicBaseURL/uploads/.
	Send(ctx context.Context, req model.SendNotificationRequest, image *multipart.FileHeader, publicBaseURL string) (*model.PushResult, error)
}

type notificationService struct {
	users      repository.UserRepository
	pusher     Pusher
	uploadsDir string
	clock      *Clock
	log        *slog.Logger
}

// NewNotificationService creates a NotificationService. A nil pusher disables sending.
func NewNotificationService(users repository.UserRepository, pusher Pusher, uploadsDir string, clock *Clock, log *slog.Logger) NotificationService {
	if log == nil {
		log = slog.Default()
	}
	return &notificationService{users: users, pusher: pusher, uploadsDir: uploadsDir, clock: clock, log: log}
}

func (s *notificationService) Send(ctx context.Context, req model.SendNotificationRequest, image *multipart.FileHeader, publicBaseURL string) (*model.PushResult, error) {
	if s.pusher == nil {
		return nil, ErrPushNotConfigured
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, invalid("body", "is required")
	}
	if image != nil {
		if err := validateImage(image); err != nil {
			return nil, err
		}
	}

	tokens, err := s.users.FindPushTokens(ctx, compactIDs(req.TargetUserIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil, ErrNoDevices
	}

	imageURL := req.ImageURL
	if image != nil {
		fileName, err := s.saveImage(image)
		if err != nil {
			return nil, err
		}
		imageURL = strings.TrimRight(publicBaseURL, "/") + "/uploads/" + fileName
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = model.DefaultNotificationTitle
	}

	result, err := s.pusher.Send(ctx, model.PushMessage{
		Title:    title,
		Body:     req.Body,
		ImageURL: imageURL,
		Tokens:   tokens,
	})
	if err != nil {
		s.log.Error("push dispatch failed", slog.Int("tokens", len(tokens)), slog.Any("error", err))
		return nil, ErrDispatchFailed
	}

	metrics.RecordPushResult(result.SuccessCount, result.FailureCount)
	s.log.Info("notification sent",
		slog.Int("success", result.SuccessCount),
		slog.Int("failure", result.FailureCount))
	return result, nil
}

func validateImage(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxImageSize {
		return ErrFileSizeExceeded
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		return ErrInvalidFileFormat
	}
	return nil
}

// saveImage stores the upload as <unix-ms>-<basename> and returns that file name.
func (s *notificationService) saveImage(fileHeader *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	base := strings.ReplaceAll(filepath.Base(fileHeader.Filename), " ", "_") // Basic sanitization
	fileName := strconv.FormatInt(s.clock.Now().UnixMilli(), 10) + "-" + base
	filePath := filepath.Join(s.uploadsDir, fileName)

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file on server: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(filePath) // Attempt to clean up
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return fileName, nil
}

func compactIDs(ids []string) []string {
	var out []string
	for _, id := range ids {
		for _, part := range strings.Split(id, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
