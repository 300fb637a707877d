package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrUdhaarNotFound  = errors.New("udhaar not found")
	ErrNoDevices       = errors.New("no devices found to send notification")

	ErrInvalidOTP     = errors.New("invalid OTP")
	ErrOTPExpired     = errors.New("OTP expired")
	ErrInvalidIDToken = errors.New("google auth failed")
	ErrEmailInUse     = errors.New("email is already linked to another account")

	ErrInvalidFileFormat = errors.New("invalid file format. only .jpg, .jpeg, .png, .gif, .webp are allowed")
	ErrFileSizeExceeded  = errors.New("file size exceeds limit")

	ErrTooManyRequests = errors.New("too many OTP attempts, try again later")

	ErrMailerNotConfigured = errors.New("email service not configured on server")
	ErrPushNotConfigured   = errors.New("firebase not configured on server")
	ErrGoogleNotConfigured = errors.New("google sign-in not configured on server")

	ErrDispatchFailed = errors.New("failed to deliver message")
)

// ValidationError reports a request that is well-formed but semantically invalid.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
