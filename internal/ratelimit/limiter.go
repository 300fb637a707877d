package ratelimit

import (
	"context"
	"time"
)

// Result captures the outcome of a rate-limit evaluation.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Rule is a sliding window allowance: at most Limit hits per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Limiter counts a hit against key and reports whether it fits the rule.
// A rejected hit is reported through Result.Allowed, not through the error.
type Limiter interface {
	Check(ctx context.Context, key string, rule Rule) (*Result, error)
}

// OTPRequestKey scopes passcode request throttling to one mailbox.
func OTPRequestKey(email string) string {
	return "otp:request:" + email
}

// OTPVerifyKey scopes passcode guesses to one mailbox.
func OTPVerifyKey(email string) string {
	return "otp:verify:" + email
}
